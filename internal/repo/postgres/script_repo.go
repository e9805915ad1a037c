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

var ErrScriptNotFound = errors.New("script not found")

type ScriptRepo struct {
	pool *pgxpool.Pool
}

func NewScriptRepo(pool *pgxpool.Pool) *ScriptRepo {
	return &ScriptRepo{pool: pool}
}

func (r *ScriptRepo) Insert(ctx context.Context, script model.Script) (model.Script, error) {
	if r.pool == nil {
		return model.Script{}, fmt.Errorf("postgres pool is nil")
	}
	if script.UserID <= 0 || strings.TrimSpace(script.Title) == "" || strings.TrimSpace(script.Body) == "" {
		return model.Script{}, fmt.Errorf("invalid script payload")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO scripts (user_id, title, outline, body, platform, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING id, created_at, updated_at
`, script.UserID, strings.TrimSpace(script.Title), script.Outline, script.Body, script.Platform).
		Scan(&script.ID, &script.CreatedAt, &script.UpdatedAt)
	if err != nil {
		return model.Script{}, fmt.Errorf("insert script: %w", err)
	}

	return script, nil
}

func (r *ScriptRepo) GetForUser(ctx context.Context, userID, scriptID int64) (model.Script, error) {
	if r.pool == nil {
		return model.Script{}, fmt.Errorf("postgres pool is nil")
	}

	var script model.Script
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, title, outline, body, platform, created_at, updated_at
FROM scripts
WHERE id = $1 AND user_id = $2
`, scriptID, userID).Scan(
		&script.ID, &script.UserID, &script.Title, &script.Outline,
		&script.Body, &script.Platform, &script.CreatedAt, &script.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Script{}, ErrScriptNotFound
		}
		return model.Script{}, fmt.Errorf("get script: %w", err)
	}

	return script, nil
}

func (r *ScriptRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Script, error) {
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
SELECT id, user_id, title, outline, body, platform, created_at, updated_at
FROM scripts
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []model.Script
	for rows.Next() {
		var script model.Script
		if err := rows.Scan(
			&script.ID, &script.UserID, &script.Title, &script.Outline,
			&script.Body, &script.Platform, &script.CreatedAt, &script.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		scripts = append(scripts, script)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scripts: %w", err)
	}

	return scripts, nil
}

func (r *ScriptRepo) Delete(ctx context.Context, userID, scriptID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || scriptID <= 0 {
		return fmt.Errorf("invalid script delete payload")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM scripts
WHERE id = $1 AND user_id = $2
`, scriptID, userID)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScriptNotFound
	}

	return nil
}
