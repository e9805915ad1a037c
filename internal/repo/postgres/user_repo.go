package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type UserRecord struct {
	ID               int64
	Email            string
	PasswordHash     string
	DisplayName      string
	Role             string
	Tier             string
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash, displayName string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, display_name, role, tier, created_at, updated_at)
VALUES ($1, $2, $3, 'user', 'free', NOW(), NOW())
RETURNING id, email, password_hash, display_name, role, tier, current_period_end, created_at, updated_at
`, email, passwordHash, strings.TrimSpace(displayName)).Scan(
		&rec.ID, &rec.Email, &rec.PasswordHash, &rec.DisplayName,
		&rec.Role, &rec.Tier, &rec.CurrentPeriodEnd, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return UserRecord{}, fmt.Errorf("email is required")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, role, tier, current_period_end, created_at, updated_at
FROM users
WHERE email = $1
`, email).Scan(
		&rec.ID, &rec.Email, &rec.PasswordHash, &rec.DisplayName,
		&rec.Role, &rec.Tier, &rec.CurrentPeriodEnd, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("find user by email: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	var rec UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, display_name, role, tier, current_period_end, created_at, updated_at
FROM users
WHERE id = $1
`, userID).Scan(
		&rec.ID, &rec.Email, &rec.PasswordHash, &rec.DisplayName,
		&rec.Role, &rec.Tier, &rec.CurrentPeriodEnd, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return rec, nil
}

// ApplyPlanTx flips the subscription tier inside the purchase-confirmation
// transaction, so the tier change and the purchase status commit together.
func (r *UserRepo) ApplyPlanTx(ctx context.Context, tx pgx.Tx, userID int64, tier enums.Tier, periodEnd *time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 || !tier.Valid() {
		return fmt.Errorf("invalid plan payload")
	}

	tag, err := tx.Exec(ctx, `
UPDATE users
SET tier = $2, current_period_end = $3, updated_at = NOW()
WHERE id = $1
`, userID, string(tier), periodEnd)
	if err != nil {
		return fmt.Errorf("apply plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (rec UserRecord) ToModel() (model.User, error) {
	tier, err := enums.ParseTier(rec.Tier)
	if err != nil {
		return model.User{}, err
	}
	role, err := enums.ParseRole(rec.Role)
	if err != nil {
		return model.User{}, err
	}

	return model.User{
		ID:               rec.ID,
		Email:            rec.Email,
		DisplayName:      rec.DisplayName,
		Role:             role,
		Tier:             tier,
		CurrentPeriodEnd: rec.CurrentPeriodEnd,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}, nil
}

// DowngradeExpired drops every paid account whose billing period has lapsed
// back to the free tier. Returns the number of downgraded accounts.
func (r *UserRepo) DowngradeExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET tier = 'free', current_period_end = NULL, updated_at = NOW()
WHERE tier <> 'free' AND current_period_end IS NOT NULL AND current_period_end < $1
`, now)
	if err != nil {
		return 0, fmt.Errorf("downgrade expired plans: %w", err)
	}

	return tag.RowsAffected(), nil
}
