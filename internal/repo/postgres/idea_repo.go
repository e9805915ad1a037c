package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

var ErrIdeaNotFound = errors.New("idea not found")

type IdeaRepo struct {
	pool *pgxpool.Pool
}

func NewIdeaRepo(pool *pgxpool.Pool) *IdeaRepo {
	return &IdeaRepo{pool: pool}
}

func (r *IdeaRepo) Insert(ctx context.Context, idea model.Idea) (model.Idea, error) {
	if r.pool == nil {
		return model.Idea{}, fmt.Errorf("postgres pool is nil")
	}
	if idea.UserID <= 0 || strings.TrimSpace(idea.Title) == "" {
		return model.Idea{}, fmt.Errorf("invalid idea payload")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO ideas (user_id, title, angle, hook, tags, source_prompt, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING id, created_at
`, idea.UserID, strings.TrimSpace(idea.Title), idea.Angle, idea.Hook, idea.Tags, idea.SourcePrompt).
		Scan(&idea.ID, &idea.CreatedAt)
	if err != nil {
		return model.Idea{}, fmt.Errorf("insert idea: %w", err)
	}

	return idea, nil
}

func (r *IdeaRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Idea, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, title, angle, hook, tags, source_prompt, created_at
FROM ideas
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		var idea model.Idea
		if err := rows.Scan(&idea.ID, &idea.UserID, &idea.Title, &idea.Angle, &idea.Hook, &idea.Tags, &idea.SourcePrompt, &idea.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}

	return ideas, nil
}

func (r *IdeaRepo) Delete(ctx context.Context, userID, ideaID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || ideaID <= 0 {
		return fmt.Errorf("invalid idea delete payload")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM ideas
WHERE id = $1 AND user_id = $2
`, ideaID, userID)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdeaNotFound
	}

	return nil
}

func (r *IdeaRepo) GetForUser(ctx context.Context, userID, ideaID int64) (model.Idea, error) {
	if r.pool == nil {
		return model.Idea{}, fmt.Errorf("postgres pool is nil")
	}

	var idea model.Idea
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, title, angle, hook, tags, source_prompt, created_at
FROM ideas
WHERE id = $1 AND user_id = $2
`, ideaID, userID).Scan(&idea.ID, &idea.UserID, &idea.Title, &idea.Angle, &idea.Hook, &idea.Tags, &idea.SourcePrompt, &idea.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Idea{}, ErrIdeaNotFound
		}
		return model.Idea{}, fmt.Errorf("get idea: %w", err)
	}

	return idea, nil
}
