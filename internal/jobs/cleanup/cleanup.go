package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultPendingRetention = 24 * time.Hour

type pendingPurchasePruner interface {
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type planExpirer interface {
	DowngradeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Job is the periodic billing maintenance pass: it prunes pending purchases
// the provider never confirmed and downgrades accounts whose paid period has
// lapsed without a renewal webhook.
type Job struct {
	purchases        pendingPurchasePruner
	users            planExpirer
	pendingRetention time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

func New(purchases pendingPurchasePruner, users planExpirer, pendingRetention time.Duration, logger *zap.Logger) *Job {
	if pendingRetention <= 0 {
		pendingRetention = defaultPendingRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		purchases:        purchases,
		users:            users,
		pendingRetention: pendingRetention,
		now:              time.Now,
		logger:           logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	now := j.now()

	if j.purchases != nil {
		cutoff := now.Add(-j.pendingRetention)
		pruned, err := j.purchases.DeleteStalePending(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune stale pending purchases: %w", err)
		}
		if pruned > 0 {
			j.logger.Info("pruned stale pending purchases", zap.Int64("pruned", pruned))
		}
	}

	if j.users != nil {
		downgraded, err := j.users.DowngradeExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("downgrade expired plans: %w", err)
		}
		if downgraded > 0 {
			j.logger.Info("downgraded expired plans", zap.Int64("downgraded", downgraded))
		}
	}

	return nil
}

// RunEvery executes the job on a fixed interval until the context is
// canceled. The first pass runs immediately.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	if err := j.Run(ctx); err != nil {
		j.logger.Error("cleanup run failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup run failed", zap.Error(err))
			}
		}
	}
}
