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
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/rules"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
)

var ErrUnknownCounter = errors.New("unknown usage counter column")

// UsageRepo owns the usage_records table. Counter columns are interpolated
// into SQL, so every entry point re-checks the column against the closed
// resolver lists before building a statement.
type UsageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

// Get loads the user's usage record together with the current tier, creating
// a zero-valued record on first touch. Tier lives on users so a webhook tier
// change binds on the very next read.
func (r *UsageRepo) Get(ctx context.Context, userID int64) (model.UsageRecord, error) {
	if userID <= 0 {
		return model.UsageRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.UsageRecord{}, fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO usage_records (user_id, last_daily_reset, last_monthly_reset, updated_at)
VALUES ($1, NOW(), NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`, userID); err != nil {
		return model.UsageRecord{}, fmt.Errorf("ensure usage record: %w", err)
	}

	var (
		rec         model.UsageRecord
		tier        string
		searches    int
		analyses    int
		ideations   int
		generations int
	)
	err := r.pool.QueryRow(ctx, `
SELECT u.tier,
	r.search_queries_today,
	r.channel_analyses_today,
	r.content_ideations_month,
	r.script_generations_month,
	r.last_daily_reset,
	r.last_monthly_reset,
	r.tz_name,
	r.updated_at
FROM usage_records r
JOIN users u ON u.id = r.user_id
WHERE r.user_id = $1
`, userID).Scan(
		&tier,
		&searches,
		&analyses,
		&ideations,
		&generations,
		&rec.LastDailyReset,
		&rec.LastMonthlyReset,
		&rec.TZName,
		&rec.UpdatedAt,
	)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("load usage record: %w", err)
	}

	parsedTier, err := enums.ParseTier(tier)
	if err != nil {
		return model.UsageRecord{}, fmt.Errorf("usage record for user %d: %w", userID, err)
	}

	rec.UserID = userID
	rec.Tier = parsedTier
	rec.Daily = map[enums.Feature]int{
		enums.FeatureSearchQueries:   searches,
		enums.FeatureChannelAnalyses: analyses,
	}
	rec.Monthly = map[enums.Feature]int{
		enums.FeatureContentIdeations:  ideations,
		enums.FeatureScriptGenerations: generations,
	}
	return rec, nil
}

// PinTimezone stores the zone the user's window boundaries are evaluated in.
// The guard only lets an unpinned record accept a zone, so once set the
// boundary cannot be dragged around by later requests.
func (r *UsageRepo) PinTimezone(ctx context.Context, userID int64, tzName string) error {
	if userID <= 0 || tzName == "" {
		return fmt.Errorf("invalid timezone payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE usage_records
SET tz_name = $2, updated_at = NOW()
WHERE user_id = $1 AND tz_name = ''
`, userID, tzName); err != nil {
		return fmt.Errorf("pin usage timezone: %w", err)
	}
	return nil
}

// ApplyResets zeroes a window's counters and advances its reset timestamp in
// one statement, guarded by the old timestamp. The guard makes concurrent
// first-requests-of-the-window idempotent: whichever update lands first wins,
// the rest match zero rows. Zeroing and timestamp always travel together so a
// crash cannot produce a half-applied reset.
func (r *UsageRepo) ApplyResets(ctx context.Context, userID int64, decision rules.ResetDecision) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if decision.ResetDaily {
		if err := r.resetWindow(ctx, userID, rules.DailyColumns(), "last_daily_reset", decision.DayStart); err != nil {
			return fmt.Errorf("apply daily reset: %w", err)
		}
	}
	if decision.ResetMonthly {
		if err := r.resetWindow(ctx, userID, rules.MonthlyColumns(), "last_monthly_reset", decision.CycleStart); err != nil {
			return fmt.Errorf("apply monthly reset: %w", err)
		}
	}
	return nil
}

func (r *UsageRepo) resetWindow(ctx context.Context, userID int64, columns []string, tsColumn string, boundary time.Time) error {
	assignments := make([]string, 0, len(columns)+2)
	for _, col := range columns {
		assignments = append(assignments, col+" = 0")
	}
	assignments = append(assignments, tsColumn+" = NOW()", "updated_at = NOW()")

	query := fmt.Sprintf(`
UPDATE usage_records
SET %s
WHERE user_id = $1 AND %s < $2
`, strings.Join(assignments, ",\n\t"), tsColumn)

	if _, err := r.pool.Exec(ctx, query, userID, boundary); err != nil {
		return err
	}
	return nil
}

// ConsumeIfBelow is the atomic check-then-increment: one conditional UPDATE
// that only lands while the counter is under the ceiling. Two racing requests
// at ceiling-1 serialize inside postgres; exactly one gets the row back and
// the other surfaces quota.ErrCeilingReached. Never called for unlimited
// ceilings.
func (r *UsageRepo) ConsumeIfBelow(ctx context.Context, userID int64, column string, ceiling int) (int, error) {
	if userID <= 0 || ceiling <= 0 {
		return 0, fmt.Errorf("invalid consume payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if !knownCounterColumn(column) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCounter, column)
	}

	query := fmt.Sprintf(`
UPDATE usage_records
SET %s = %s + 1, updated_at = NOW()
WHERE user_id = $1 AND %s < $2
RETURNING %s
`, column, column, column, column)

	var used int
	err := r.pool.QueryRow(ctx, query, userID, ceiling).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, quotasvc.ErrCeilingReached
		}
		return 0, fmt.Errorf("consume usage counter %s: %w", column, err)
	}

	return used, nil
}

// CounterValue reads a single counter, used to report observed usage on a
// rejection.
func (r *UsageRepo) CounterValue(ctx context.Context, userID int64, column string) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if !knownCounterColumn(column) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCounter, column)
	}

	query := fmt.Sprintf(`
SELECT %s
FROM usage_records
WHERE user_id = $1
`, column)

	var value int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read usage counter %s: %w", column, err)
	}

	return value, nil
}

func knownCounterColumn(column string) bool {
	for _, c := range rules.DailyColumns() {
		if c == column {
			return true
		}
	}
	for _, c := range rules.MonthlyColumns() {
		if c == column {
			return true
		}
	}
	return false
}
