package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

type InsightRepo struct {
	pool *pgxpool.Pool
}

func NewInsightRepo(pool *pgxpool.Pool) *InsightRepo {
	return &InsightRepo{pool: pool}
}

func (r *InsightRepo) Insert(ctx context.Context, insight model.Insight) (model.Insight, error) {
	if r.pool == nil {
		return model.Insight{}, fmt.Errorf("postgres pool is nil")
	}
	if insight.UserID <= 0 || strings.TrimSpace(insight.ChannelRef) == "" {
		return model.Insight{}, fmt.Errorf("invalid insight payload")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO insights (user_id, channel_ref, summary, strengths, gaps, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, created_at
`, insight.UserID, strings.TrimSpace(insight.ChannelRef), insight.Summary, insight.Strengths, insight.Gaps).
		Scan(&insight.ID, &insight.CreatedAt)
	if err != nil {
		return model.Insight{}, fmt.Errorf("insert insight: %w", err)
	}

	return insight, nil
}

func (r *InsightRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Insight, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, channel_ref, summary, strengths, gaps, created_at
FROM insights
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var insights []model.Insight
	for rows.Next() {
		var insight model.Insight
		if err := rows.Scan(&insight.ID, &insight.UserID, &insight.ChannelRef, &insight.Summary, &insight.Strengths, &insight.Gaps, &insight.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, insight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}

	return insights, nil
}
