package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

func (r *FeedbackRepo) Insert(ctx context.Context, fb model.Feedback) (model.Feedback, error) {
	if r.pool == nil {
		return model.Feedback{}, fmt.Errorf("postgres pool is nil")
	}
	if fb.UserID <= 0 || strings.TrimSpace(fb.Message) == "" {
		return model.Feedback{}, fmt.Errorf("invalid feedback payload")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO feedback (user_id, category, message, rating, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, created_at
`, fb.UserID, fb.Category, strings.TrimSpace(fb.Message), fb.Rating).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		return model.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}

	return fb, nil
}

func (r *FeedbackRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Feedback, error) {
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
SELECT id, user_id, category, message, rating, created_at
FROM feedback
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var items []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Category, &fb.Message, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}

	return items, nil
}
