package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	pgrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/postgres"
)

const (
	statusPending   = "pending"
	statusConfirmed = "confirmed"

	// Confirmed plans run in 30-day cycles until a renewal webhook extends
	// them.
	planPeriod = 30 * 24 * time.Hour
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUnsupportedPlan  = errors.New("unsupported plan")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

type PurchaseStore interface {
	CreatePending(ctx context.Context, userID int64, plan enums.Tier, provider string) (model.Purchase, error)
	FindByProviderTx(ctx context.Context, provider, providerTxID string) (model.Purchase, error)
	Get(ctx context.Context, purchaseID int64) (model.Purchase, error)
}

type Confirmer interface {
	ConfirmPurchase(ctx context.Context, purchaseID int64, providerTxID string, userID int64, plan enums.Tier, periodEnd *time.Time) error
}

type Service struct {
	purchases PurchaseStore
	confirmer Confirmer
	provider  string
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(purchases PurchaseStore, confirmer Confirmer, provider string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(provider) == "" {
		provider = "razorpay"
	}

	return &Service{
		purchases: purchases,
		confirmer: confirmer,
		provider:  provider,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout opens a pending purchase for a paid plan. The client completes
// payment with the provider, which then calls the webhook.
func (s *Service) Checkout(ctx context.Context, userID int64, plan string) (model.Purchase, error) {
	if userID <= 0 {
		return model.Purchase{}, ErrValidation
	}

	tier, err := enums.ParseTier(plan)
	if err != nil || tier == enums.TierFree {
		return model.Purchase{}, ErrUnsupportedPlan
	}

	purchase, err := s.purchases.CreatePending(ctx, userID, tier, s.provider)
	if err != nil {
		return model.Purchase{}, fmt.Errorf("create pending purchase: %w", err)
	}

	return purchase, nil
}

type WebhookInput struct {
	PurchaseID   int64
	Provider     string
	ProviderTxID string
	Status       string
}

type WebhookResult struct {
	PurchaseID       int64
	UserID           int64
	Plan             enums.Tier
	Status           string
	AlreadyProcessed bool
}

// ConfirmWebhook processes a payment-success callback. Deliveries are
// at-least-once, so the provider transaction id is the idempotency key: a
// replay finds the already-confirmed purchase and reports it without touching
// the tier again.
func (s *Service) ConfirmWebhook(ctx context.Context, in WebhookInput) (WebhookResult, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	providerTxID := strings.TrimSpace(in.ProviderTxID)
	if provider == "" || providerTxID == "" {
		return WebhookResult{}, ErrValidation
	}
	if provider != s.provider {
		return WebhookResult{}, ErrValidation
	}
	if !strings.EqualFold(in.Status, "paid") && !strings.EqualFold(in.Status, statusConfirmed) {
		return WebhookResult{}, ErrValidation
	}

	existing, err := s.purchases.FindByProviderTx(ctx, provider, providerTxID)
	if err == nil {
		return WebhookResult{
			PurchaseID:       existing.ID,
			UserID:           existing.UserID,
			Plan:             existing.Plan,
			Status:           existing.Status,
			AlreadyProcessed: strings.EqualFold(existing.Status, statusConfirmed),
		}, nil
	}
	if !errors.Is(err, pgrepo.ErrPurchaseNotFound) {
		return WebhookResult{}, err
	}

	if in.PurchaseID <= 0 {
		return WebhookResult{}, ErrValidation
	}

	purchase, err := s.purchases.Get(ctx, in.PurchaseID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return WebhookResult{}, ErrPurchaseNotFound
		}
		return WebhookResult{}, err
	}
	if !strings.EqualFold(purchase.Status, statusPending) {
		return WebhookResult{
			PurchaseID:       purchase.ID,
			UserID:           purchase.UserID,
			Plan:             purchase.Plan,
			Status:           purchase.Status,
			AlreadyProcessed: true,
		}, nil
	}

	periodEnd := s.now().UTC().Add(planPeriod)
	err = s.confirmer.ConfirmPurchase(ctx, purchase.ID, providerTxID, purchase.UserID, purchase.Plan, &periodEnd)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseConfirmed) {
			return WebhookResult{
				PurchaseID:       purchase.ID,
				UserID:           purchase.UserID,
				Plan:             purchase.Plan,
				Status:           statusConfirmed,
				AlreadyProcessed: true,
			}, nil
		}
		return WebhookResult{}, fmt.Errorf("confirm purchase: %w", err)
	}

	s.logger.Info("plan activated",
		zap.Int64("user_id", purchase.UserID),
		zap.String("plan", string(purchase.Plan)),
		zap.Int64("purchase_id", purchase.ID))

	return WebhookResult{
		PurchaseID:       purchase.ID,
		UserID:           purchase.UserID,
		Plan:             purchase.Plan,
		Status:           statusConfirmed,
		AlreadyProcessed: false,
	}, nil
}
