package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
)

// StorageCountRepo answers "how many rows does this user hold in that
// collection" for the storage-count enforcer. Counts are always live; no
// cached counter exists to drift when entities are deleted.
type StorageCountRepo struct {
	pool *pgxpool.Pool
}

func NewStorageCountRepo(pool *pgxpool.Pool) *StorageCountRepo {
	return &StorageCountRepo{pool: pool}
}

func (r *StorageCountRepo) CountEntities(ctx context.Context, userID int64, kind enums.CollectionKind) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var table string
	switch kind {
	case enums.CollectionSavedIdeas:
		table = "ideas"
	case enums.CollectionSavedScripts:
		table = "scripts"
	default:
		return 0, fmt.Errorf("uncountable collection kind %q", kind)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, table)
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	return count, nil
}
