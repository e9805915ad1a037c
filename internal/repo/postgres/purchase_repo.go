package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

var (
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrPurchaseConfirmed = errors.New("purchase already confirmed")
)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

func (r *PurchaseRepo) CreatePending(ctx context.Context, userID int64, plan enums.Tier, provider string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || !plan.Valid() || strings.TrimSpace(provider) == "" {
		return model.Purchase{}, fmt.Errorf("invalid purchase payload")
	}

	p := model.Purchase{
		UserID:   userID,
		Plan:     plan,
		Provider: strings.TrimSpace(provider),
		Status:   "pending",
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO purchases (user_id, plan, provider, status, created_at)
VALUES ($1, $2, $3, 'pending', NOW())
RETURNING id, created_at
`, p.UserID, string(p.Plan), p.Provider).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return model.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}

	return p, nil
}

func (r *PurchaseRepo) FindByProviderTx(ctx context.Context, provider, providerTxID string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		p    model.Purchase
		plan string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, plan, provider, COALESCE(provider_tx_id, ''), status, created_at, confirmed_at
FROM purchases
WHERE provider = $1 AND provider_tx_id = $2
`, provider, providerTxID).Scan(
		&p.ID, &p.UserID, &plan, &p.Provider, &p.ProviderTxID,
		&p.Status, &p.CreatedAt, &p.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("find purchase by provider tx: %w", err)
	}
	p.Plan = enums.Tier(plan)

	return p, nil
}

func (r *PurchaseRepo) Get(ctx context.Context, purchaseID int64) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		p    model.Purchase
		plan string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, plan, provider, COALESCE(provider_tx_id, ''), status, created_at, confirmed_at
FROM purchases
WHERE id = $1
`, purchaseID).Scan(
		&p.ID, &p.UserID, &plan, &p.Provider, &p.ProviderTxID,
		&p.Status, &p.CreatedAt, &p.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	p.Plan = enums.Tier(plan)

	return p, nil
}

// MarkConfirmedTx stamps the provider transaction id and flips the status,
// but only while the purchase is still pending. A second webhook delivery
// for the same transaction finds zero matching rows and gets
// ErrPurchaseConfirmed, which the caller treats as an idempotent replay.
func (r *PurchaseRepo) MarkConfirmedTx(ctx context.Context, tx pgx.Tx, purchaseID int64, providerTxID string) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if purchaseID <= 0 || strings.TrimSpace(providerTxID) == "" {
		return fmt.Errorf("invalid confirmation payload")
	}

	tag, err := tx.Exec(ctx, `
UPDATE purchases
SET status = 'confirmed', provider_tx_id = $2, confirmed_at = NOW()
WHERE id = $1 AND status = 'pending'
`, purchaseID, strings.TrimSpace(providerTxID))
	if err != nil {
		return fmt.Errorf("confirm purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseConfirmed
	}

	return nil
}

// DeleteStalePending drops pending purchases the provider never confirmed.
// Confirmed rows are kept forever as the billing audit trail.
func (r *PurchaseRepo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM purchases
WHERE status = 'pending' AND created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale pending purchases: %w", err)
	}

	return tag.RowsAffected(), nil
}
