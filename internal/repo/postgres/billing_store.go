package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

// BillingStore composes the purchase and user repos for the one write that
// must be atomic: confirming a purchase and switching the tier. If either
// update fails the transaction rolls back and the webhook retry starts from
// a clean pending purchase.
type BillingStore struct {
	pool      *pgxpool.Pool
	purchases *PurchaseRepo
	users     *UserRepo
}

func NewBillingStore(pool *pgxpool.Pool, purchases *PurchaseRepo, users *UserRepo) *BillingStore {
	return &BillingStore{
		pool:      pool,
		purchases: purchases,
		users:     users,
	}
}

func (s *BillingStore) ConfirmPurchase(ctx context.Context, purchaseID int64, providerTxID string, userID int64, plan enums.Tier, periodEnd *time.Time) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	return WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.purchases.MarkConfirmedTx(ctx, tx, purchaseID, providerTxID); err != nil {
			return err
		}
		return s.users.ApplyPlanTx(ctx, tx, userID, plan, periodEnd)
	})
}
