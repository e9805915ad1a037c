package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/rules"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/infra/metrics"
)

var (
	// ErrStorageUnavailable is returned whenever the usage store cannot
	// answer. The enforcer fails closed: an unreadable counter is treated as
	// a denial, never as a free pass.
	ErrStorageUnavailable = errors.New("usage storage unavailable")

	// ErrCeilingReached is the store-level signal that a conditional
	// increment found the counter already at its ceiling.
	ErrCeilingReached = errors.New("usage ceiling reached")
)

// QuotaExceededError reports a counter that has hit its ceiling, with the
// observed usage and the moment the window rolls over.
type QuotaExceededError struct {
	Tier    enums.Tier
	Window  enums.Window
	Feature enums.Feature
	Used    int
	Limit   int
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s limit reached for %s: %d/%d", e.Window, e.Feature, e.Used, e.Limit)
}

// StorageLimitError reports a saved-collection that is full. Freeing a slot
// by deleting an item lifts it immediately because the count is live.
type StorageLimitError struct {
	Tier  enums.Tier
	Kind  enums.CollectionKind
	Used  int
	Limit int
}

func (e *StorageLimitError) Error() string {
	return fmt.Sprintf("storage limit reached for %s: %d/%d", e.Kind, e.Used, e.Limit)
}

type UsageStore interface {
	Get(ctx context.Context, userID int64) (model.UsageRecord, error)
	PinTimezone(ctx context.Context, userID int64, tzName string) error
	ApplyResets(ctx context.Context, userID int64, decision rules.ResetDecision) error
	ConsumeIfBelow(ctx context.Context, userID int64, column string, ceiling int) (int, error)
	CounterValue(ctx context.Context, userID int64, column string) (int, error)
}

type CollectionCounter interface {
	CountEntities(ctx context.Context, userID int64, kind enums.CollectionKind) (int, error)
}

// Decision is the outcome of a successful consume.
type Decision struct {
	Window    enums.Window
	Feature   enums.Feature
	Used      int
	Limit     int
	Unlimited bool
	ResetAt   time.Time
}

// Service is the quota enforcer. Every metered endpoint calls CheckAndConsume
// before doing work; every save endpoint calls CheckStorageLimit before
// inserting.
type Service struct {
	usage      UsageStore
	storage    CollectionCounter
	limits     *rules.LimitTable
	renewalDay int
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(usage UsageStore, storage CollectionCounter, limits *rules.LimitTable, renewalDay int, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		usage:      usage,
		storage:    storage,
		limits:     limits,
		renewalDay: renewalDay,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckAndConsume enforces the feature's ceiling and, when under it, claims
// one unit. The claim is a single conditional increment in the store, so two
// racing requests at the last slot cannot both succeed. Unlimited features
// are allowed without touching a counter. The requested loc only matters on
// the user's first touch, when it is pinned on the record; after that the
// pinned zone governs every boundary.
func (s *Service) CheckAndConsume(ctx context.Context, userID int64, feature enums.Feature, loc *time.Location) (Decision, error) {
	window, err := rules.WindowOf(feature)
	if err != nil {
		return Decision{}, err
	}

	rec, loc, err := s.refreshed(ctx, userID, loc)
	if err != nil {
		metrics.QuotaDecisions.WithLabelValues(string(window), string(feature), "error").Inc()
		return Decision{}, err
	}

	limit, err := s.limits.Ceiling(rec.Tier, window, feature)
	if err != nil {
		return Decision{}, err
	}

	now := s.now()
	resetAt := s.windowResetAt(window, now, loc)

	if rules.IsUnlimited(limit) {
		metrics.QuotaDecisions.WithLabelValues(string(window), string(feature), "unlimited").Inc()
		return Decision{
			Window:    window,
			Feature:   feature,
			Limit:     rules.Unlimited,
			Unlimited: true,
			ResetAt:   resetAt,
		}, nil
	}

	column, err := rules.CounterColumn(window, feature)
	if err != nil {
		return Decision{}, err
	}

	used, err := s.usage.ConsumeIfBelow(ctx, userID, column, limit)
	if err != nil {
		if errors.Is(err, ErrCeilingReached) {
			observed := limit
			if v, readErr := s.usage.CounterValue(ctx, userID, column); readErr == nil {
				observed = v
			}
			metrics.QuotaDecisions.WithLabelValues(string(window), string(feature), "denied").Inc()
			return Decision{}, &QuotaExceededError{
				Tier:    rec.Tier,
				Window:  window,
				Feature: feature,
				Used:    observed,
				Limit:   limit,
				ResetAt: resetAt,
			}
		}
		s.logger.Error("quota consume failed",
			zap.Int64("user_id", userID),
			zap.String("feature", string(feature)),
			zap.Error(err))
		metrics.QuotaDecisions.WithLabelValues(string(window), string(feature), "error").Inc()
		return Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	metrics.QuotaDecisions.WithLabelValues(string(window), string(feature), "allowed").Inc()
	return Decision{
		Window:  window,
		Feature: feature,
		Used:    used,
		Limit:   limit,
		ResetAt: resetAt,
	}, nil
}

// CheckStorageLimit compares the live collection count against the tier's
// storage ceiling. Nothing is consumed: the insert that follows is the
// consumption, and a later delete frees the slot on its own.
func (s *Service) CheckStorageLimit(ctx context.Context, userID int64, kind enums.CollectionKind) error {
	rec, _, err := s.refreshed(ctx, userID, nil)
	if err != nil {
		metrics.StorageDecisions.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	limit, err := s.limits.StorageCeiling(rec.Tier, kind)
	if err != nil {
		return err
	}
	if rules.IsUnlimited(limit) {
		metrics.StorageDecisions.WithLabelValues(string(kind), "unlimited").Inc()
		return nil
	}

	count, err := s.storage.CountEntities(ctx, userID, kind)
	if err != nil {
		s.logger.Error("storage count failed",
			zap.Int64("user_id", userID),
			zap.String("collection", string(kind)),
			zap.Error(err))
		metrics.StorageDecisions.WithLabelValues(string(kind), "error").Inc()
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if count >= limit {
		metrics.StorageDecisions.WithLabelValues(string(kind), "denied").Inc()
		return &StorageLimitError{Tier: rec.Tier, Kind: kind, Used: count, Limit: limit}
	}

	metrics.StorageDecisions.WithLabelValues(string(kind), "allowed").Inc()
	return nil
}

// FeatureUsage is one tracked counter in a snapshot.
type FeatureUsage struct {
	Feature   enums.Feature
	Window    enums.Window
	Used      int
	Limit     int
	Unlimited bool
}

// StorageUsage is one saved-collection in a snapshot.
type StorageUsage struct {
	Kind      enums.CollectionKind
	Used      int
	Limit     int
	Unlimited bool
}

// Snapshot is the read-only usage view served to clients.
type Snapshot struct {
	UserID         int64
	Tier           enums.Tier
	Features       []FeatureUsage
	Storage        []StorageUsage
	DailyResetAt   time.Time
	MonthlyResetAt time.Time
}

// Snapshot reports current usage against every ceiling. It applies any due
// window resets first, so the first read of a new day already shows zeroed
// counters.
func (s *Service) Snapshot(ctx context.Context, userID int64, loc *time.Location) (Snapshot, error) {
	rec, loc, err := s.refreshed(ctx, userID, loc)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.now()
	snap := Snapshot{
		UserID:         userID,
		Tier:           rec.Tier,
		DailyResetAt:   rules.NextDailyResetAt(now, loc),
		MonthlyResetAt: rules.NextMonthlyResetAt(now, s.renewalDay, loc),
	}

	for _, feature := range enums.AllFeatures() {
		window, err := rules.WindowOf(feature)
		if err != nil {
			return Snapshot{}, err
		}
		limit, err := s.limits.Ceiling(rec.Tier, window, feature)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Features = append(snap.Features, FeatureUsage{
			Feature:   feature,
			Window:    window,
			Used:      rec.Counter(window, feature),
			Limit:     limit,
			Unlimited: rules.IsUnlimited(limit),
		})
	}

	for _, kind := range enums.AllCollectionKinds() {
		limit, err := s.limits.StorageCeiling(rec.Tier, kind)
		if err != nil {
			return Snapshot{}, err
		}
		count, err := s.storage.CountEntities(ctx, userID, kind)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		snap.Storage = append(snap.Storage, StorageUsage{
			Kind:      kind,
			Used:      count,
			Limit:     limit,
			Unlimited: rules.IsUnlimited(limit),
		})
	}

	return snap, nil
}

// refreshed loads the usage record with any elapsed windows already zeroed,
// and reports the timezone those windows are evaluated in. The reset lands
// before the caller's ceiling comparison, which is what makes the first
// request of a new window see a fresh counter rather than yesterday's
// exhausted one.
func (s *Service) refreshed(ctx context.Context, userID int64, requested *time.Location) (model.UsageRecord, *time.Location, error) {
	rec, err := s.usage.Get(ctx, userID)
	if err != nil {
		s.logger.Error("load usage record failed", zap.Int64("user_id", userID), zap.Error(err))
		return model.UsageRecord{}, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	loc, err := s.resetLocation(ctx, userID, &rec, requested)
	if err != nil {
		return model.UsageRecord{}, nil, err
	}

	decision := rules.EvaluateReset(s.now(), rec.LastDailyReset, rec.LastMonthlyReset, s.renewalDay, loc)
	if !decision.Any() {
		return rec, loc, nil
	}

	if err := s.usage.ApplyResets(ctx, userID, decision); err != nil {
		s.logger.Error("apply window reset failed", zap.Int64("user_id", userID), zap.Error(err))
		return model.UsageRecord{}, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	rec, err = s.usage.Get(ctx, userID)
	if err != nil {
		return model.UsageRecord{}, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return rec, loc, nil
}

// resetLocation resolves the zone the record's window boundaries live in. The
// zone is pinned on first touch, from the request when one was sent, and the
// pinned zone wins over every later request: a boundary that moved with the
// caller's declared zone would hand out a fresh window per zone change.
func (s *Service) resetLocation(ctx context.Context, userID int64, rec *model.UsageRecord, requested *time.Location) (*time.Location, error) {
	if rec.TZName != "" {
		loc, err := time.LoadLocation(rec.TZName)
		if err == nil {
			return loc, nil
		}
		s.logger.Warn("pinned timezone unloadable, using default",
			zap.Int64("user_id", userID),
			zap.String("tz_name", rec.TZName),
			zap.Error(err))
		return s.loc, nil
	}

	loc := requested
	if loc == nil {
		loc = s.loc
	}
	if err := s.usage.PinTimezone(ctx, userID, loc.String()); err != nil {
		s.logger.Error("pin timezone failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	rec.TZName = loc.String()
	return loc, nil
}

func (s *Service) windowResetAt(window enums.Window, now time.Time, loc *time.Location) time.Time {
	if window == enums.WindowMonthly {
		return rules.NextMonthlyResetAt(now, s.renewalDay, loc)
	}
	return rules.NextDailyResetAt(now, loc)
}
