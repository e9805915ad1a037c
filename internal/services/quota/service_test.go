package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/rules"
)

type stubUsageStore struct {
	mu          sync.Mutex
	tier        enums.Tier
	counters    map[string]int
	lastDaily   time.Time
	lastMonthly time.Time
	tzName      string
	fail        bool
}

func newStubUsageStore(tier enums.Tier, at time.Time) *stubUsageStore {
	return &stubUsageStore{
		tier:        tier,
		counters:    map[string]int{},
		lastDaily:   at,
		lastMonthly: at,
	}
}

func (s *stubUsageStore) Get(_ context.Context, userID int64) (model.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return model.UsageRecord{}, fmt.Errorf("connection refused")
	}

	rec := model.UsageRecord{
		UserID:           userID,
		Tier:             s.tier,
		Daily:            map[enums.Feature]int{},
		Monthly:          map[enums.Feature]int{},
		LastDailyReset:   s.lastDaily,
		LastMonthlyReset: s.lastMonthly,
		TZName:           s.tzName,
	}
	for _, feature := range enums.AllFeatures() {
		window, err := rules.WindowOf(feature)
		if err != nil {
			return model.UsageRecord{}, err
		}
		column, err := rules.CounterColumn(window, feature)
		if err != nil {
			return model.UsageRecord{}, err
		}
		if window == enums.WindowDaily {
			rec.Daily[feature] = s.counters[column]
		} else {
			rec.Monthly[feature] = s.counters[column]
		}
	}
	return rec, nil
}

func (s *stubUsageStore) PinTimezone(_ context.Context, _ int64, tzName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return fmt.Errorf("connection refused")
	}
	if s.tzName == "" {
		s.tzName = tzName
	}
	return nil
}

func (s *stubUsageStore) ApplyResets(_ context.Context, _ int64, decision rules.ResetDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return fmt.Errorf("connection refused")
	}

	if decision.ResetDaily && s.lastDaily.Before(decision.DayStart) {
		for _, column := range rules.DailyColumns() {
			s.counters[column] = 0
		}
		s.lastDaily = decision.DayStart
	}
	if decision.ResetMonthly && s.lastMonthly.Before(decision.CycleStart) {
		for _, column := range rules.MonthlyColumns() {
			s.counters[column] = 0
		}
		s.lastMonthly = decision.CycleStart
	}
	return nil
}

func (s *stubUsageStore) ConsumeIfBelow(_ context.Context, _ int64, column string, ceiling int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return 0, fmt.Errorf("connection refused")
	}
	if s.counters[column] >= ceiling {
		return 0, ErrCeilingReached
	}
	s.counters[column]++
	return s.counters[column], nil
}

func (s *stubUsageStore) CounterValue(_ context.Context, _ int64, column string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[column], nil
}

func (s *stubUsageStore) set(column string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[column] = value
}

func (s *stubUsageStore) setTier(tier enums.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tier = tier
}

type stubCollectionCounter struct {
	counts map[enums.CollectionKind]int
	fail   bool
}

func (s *stubCollectionCounter) CountEntities(_ context.Context, _ int64, kind enums.CollectionKind) (int, error) {
	if s.fail {
		return 0, fmt.Errorf("connection refused")
	}
	return s.counts[kind], nil
}

func testLimitTable(t *testing.T) *rules.LimitTable {
	t.Helper()

	table, err := rules.NewLimitTable(map[enums.Tier]rules.TierCeilings{
		enums.TierFree: {
			Daily: map[enums.Feature]int{
				enums.FeatureSearchQueries:   5,
				enums.FeatureChannelAnalyses: 3,
			},
			Monthly: map[enums.Feature]int{
				enums.FeatureContentIdeations:  5,
				enums.FeatureScriptGenerations: 3,
			},
			Storage: map[enums.CollectionKind]int{
				enums.CollectionSavedIdeas:   10,
				enums.CollectionSavedScripts: 5,
			},
		},
		enums.TierPro: {
			Daily: map[enums.Feature]int{
				enums.FeatureSearchQueries:   50,
				enums.FeatureChannelAnalyses: 25,
			},
			Monthly: map[enums.Feature]int{
				enums.FeatureContentIdeations:  100,
				enums.FeatureScriptGenerations: 60,
			},
			Storage: map[enums.CollectionKind]int{
				enums.CollectionSavedIdeas:   rules.Unlimited,
				enums.CollectionSavedScripts: rules.Unlimited,
			},
		},
		enums.TierAgency: {
			Daily: map[enums.Feature]int{
				enums.FeatureSearchQueries:   rules.Unlimited,
				enums.FeatureChannelAnalyses: rules.Unlimited,
			},
			Monthly: map[enums.Feature]int{
				enums.FeatureContentIdeations:  rules.Unlimited,
				enums.FeatureScriptGenerations: rules.Unlimited,
			},
			Storage: map[enums.CollectionKind]int{
				enums.CollectionSavedIdeas:   rules.Unlimited,
				enums.CollectionSavedScripts: rules.Unlimited,
			},
		},
	})
	if err != nil {
		t.Fatalf("build limit table: %v", err)
	}
	return table
}

func newTestService(t *testing.T, tier enums.Tier, at time.Time) (*Service, *stubUsageStore, *stubCollectionCounter) {
	t.Helper()

	usage := newStubUsageStore(tier, at)
	storage := &stubCollectionCounter{counts: map[enums.CollectionKind]int{}}
	svc := NewService(usage, storage, testLimitTable(t), rules.DefaultRenewalDay, time.UTC, nil)
	svc.now = func() time.Time { return at }
	return svc, usage, storage
}

func TestConsumeUntilCeiling(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if decision.Used != i {
			t.Fatalf("consume %d: expected used %d, got %d", i, i, decision.Used)
		}
	}

	_, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
	var exceeded *QuotaExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if exceeded.Used != 5 || exceeded.Limit != 5 {
		t.Fatalf("expected 5/5 in rejection, got %d/%d", exceeded.Used, exceeded.Limit)
	}
	if want := rules.NextDailyResetAt(at, time.UTC); !exceeded.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, exceeded.ResetAt)
	}

	// A denial must not advance the counter.
	if got, _ := usage.CounterValue(ctx, 1, "search_queries_today"); got != 5 {
		t.Fatalf("expected counter to stay at 5 after denial, got %d", got)
	}
}

func TestIndependentCounters(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); err != nil {
			t.Fatalf("consume search: %v", err)
		}
	}

	// Exhausting searches must not touch analyses.
	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureChannelAnalyses, nil)
	if err != nil {
		t.Fatalf("consume analysis: %v", err)
	}
	if decision.Used != 1 {
		t.Fatalf("expected fresh analysis counter, got %d", decision.Used)
	}
}

func TestUnlimitedTierIsUntracked(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierAgency, at)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if !decision.Unlimited || decision.Limit != rules.Unlimited {
			t.Fatalf("expected unlimited decision, got %+v", decision)
		}
	}

	if got, _ := usage.CounterValue(ctx, 1, "search_queries_today"); got != 0 {
		t.Fatalf("expected unlimited usage to stay untracked, got %d", got)
	}
}

func TestDailyWindowResetsNextDay(t *testing.T) {
	at := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.set("search_queries_today", 5)
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); err == nil {
		t.Fatal("expected denial at ceiling")
	}

	next := time.Date(2025, time.March, 11, 0, 5, 0, 0, time.UTC)
	svc.now = func() time.Time { return next }

	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
	if err != nil {
		t.Fatalf("consume after day boundary: %v", err)
	}
	if decision.Used != 1 {
		t.Fatalf("expected fresh daily counter, got %d", decision.Used)
	}
}

func TestMonthlyWindowResetsAfterRollover(t *testing.T) {
	last := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, last)
	ctx := context.Background()

	usage.set("content_ideations_month", 5)
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureContentIdeations, nil); err == nil {
		t.Fatal("expected denial at monthly ceiling")
	}

	april := time.Date(2025, time.April, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return april }

	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureContentIdeations, nil)
	if err != nil {
		t.Fatalf("consume after month rollover: %v", err)
	}
	if decision.Used != 1 {
		t.Fatalf("expected fresh monthly counter, got %d", decision.Used)
	}
}

func TestResetAppliesAtMostOnce(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.set("search_queries_today", 5)

	next := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return next }

	// First call of the new day applies the reset and consumes one.
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); err != nil {
		t.Fatalf("first consume of new day: %v", err)
	}
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); err != nil {
		t.Fatalf("second consume of new day: %v", err)
	}

	// Re-evaluating the same boundary, as a concurrent request would, must
	// not zero what has been consumed since.
	snap, err := svc.Snapshot(ctx, 1, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, f := range snap.Features {
		if f.Feature == enums.FeatureSearchQueries && f.Used != 2 {
			t.Fatalf("expected 2 used after single reset, got %d", f.Used)
		}
	}
}

func TestLastSlotRace(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.set("search_queries_today", 4)

	var (
		wg      sync.WaitGroup
		allowed int
		denied  int
		mu      sync.Mutex
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
			mu.Lock()
			defer mu.Unlock()
			var exceeded *QuotaExceededError
			switch {
			case err == nil:
				allowed++
			case errors.As(err, &exceeded):
				denied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if allowed != 1 || denied != 1 {
		t.Fatalf("expected exactly one winner for the last slot, got allowed=%d denied=%d", allowed, denied)
	}
	if got, _ := usage.CounterValue(ctx, 1, "search_queries_today"); got != 5 {
		t.Fatalf("expected counter at ceiling, got %d", got)
	}
}

func TestFailsClosedWhenStoreUnavailable(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.fail = true
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := svc.CheckStorageLimit(ctx, 1, enums.CollectionSavedIdeas); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage check to fail closed, got %v", err)
	}
}

func TestStorageLimitCountsLiveRows(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, _, storage := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	storage.counts[enums.CollectionSavedIdeas] = 10
	err := svc.CheckStorageLimit(ctx, 1, enums.CollectionSavedIdeas)
	var full *StorageLimitError
	if !errors.As(err, &full) {
		t.Fatalf("expected StorageLimitError, got %v", err)
	}
	if full.Used != 10 || full.Limit != 10 {
		t.Fatalf("expected 10/10, got %d/%d", full.Used, full.Limit)
	}

	// Deleting an item frees the slot immediately.
	storage.counts[enums.CollectionSavedIdeas] = 9
	if err := svc.CheckStorageLimit(ctx, 1, enums.CollectionSavedIdeas); err != nil {
		t.Fatalf("expected slot after delete, got %v", err)
	}
}

func TestStorageLimitUnlimitedTier(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, _, storage := newTestService(t, enums.TierPro, at)
	ctx := context.Background()

	storage.counts[enums.CollectionSavedIdeas] = 500
	if err := svc.CheckStorageLimit(ctx, 1, enums.CollectionSavedIdeas); err != nil {
		t.Fatalf("expected unlimited storage, got %v", err)
	}
}

func TestSnapshotReportsAllCeilings(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, storage := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.set("search_queries_today", 3)
	storage.counts[enums.CollectionSavedIdeas] = 7

	snap, err := svc.Snapshot(ctx, 1, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Tier != enums.TierFree {
		t.Fatalf("expected free tier, got %q", snap.Tier)
	}
	if len(snap.Features) != len(enums.AllFeatures()) {
		t.Fatalf("expected every feature reported, got %d", len(snap.Features))
	}

	for _, f := range snap.Features {
		if f.Feature == enums.FeatureSearchQueries {
			if f.Used != 3 || f.Limit != 5 {
				t.Fatalf("expected 3/5 searches, got %d/%d", f.Used, f.Limit)
			}
		}
	}
	for _, s := range snap.Storage {
		if s.Kind == enums.CollectionSavedIdeas && (s.Used != 7 || s.Limit != 10) {
			t.Fatalf("expected 7/10 saved ideas, got %d/%d", s.Used, s.Limit)
		}
	}
	if want := rules.NextDailyResetAt(at, time.UTC); !snap.DailyResetAt.Equal(want) {
		t.Fatalf("expected daily reset at %v, got %v", want, snap.DailyResetAt)
	}
}

func TestPinnedTimezoneGovernsDayBoundary(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("timezone db unavailable: %v", err)
	}

	// 20:00 UTC on Mar 10 is already Mar 11 in Kolkata, so a record pinned
	// to Kolkata and last reset at 10:00 UTC rolls over even when the
	// request carries no zone at all.
	last := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, last)
	ctx := context.Background()

	usage.tzName = kolkata.String()
	usage.set("search_queries_today", 5)
	now := time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
	if err != nil {
		t.Fatalf("consume in local new day: %v", err)
	}
	if decision.Used != 1 {
		t.Fatalf("expected fresh counter in local day, got %d", decision.Used)
	}
}

func TestFirstTouchPinsRequestedZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("timezone db unavailable: %v", err)
	}

	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, kolkata); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if usage.tzName != "Asia/Kolkata" {
		t.Fatalf("expected first request to pin its zone, got %q", usage.tzName)
	}

	// Once pinned the zone survives zone-less requests: the Kolkata day
	// rolls at 18:30 UTC, so a bare request at 20:00 UTC sees a reset.
	svc.now = func() time.Time { return time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC) }
	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil)
	if err != nil {
		t.Fatalf("consume after local rollover: %v", err)
	}
	if decision.Used != 1 {
		t.Fatalf("expected counter reset in pinned zone, got %d", decision.Used)
	}
}

func TestSwitchingZonesCannotMintExtraWindow(t *testing.T) {
	kiritimati, err := time.LoadLocation("Pacific/Kiritimati")
	if err != nil {
		t.Skipf("timezone db unavailable: %v", err)
	}

	at := time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	// Exhaust the daily ceiling early in the UTC day. The first request
	// pins UTC on the record.
	for i := 0; i < 5; i++ {
		if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, nil); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}

	// Kiritimati is UTC+14, so at 11:00 UTC its local date is already
	// tomorrow. Declaring it must not move the pinned boundary: every
	// further consume the same real day stays denied.
	svc.now = func() time.Time { return time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC) }
	for i := 0; i < 5; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, enums.FeatureSearchQueries, kiritimati)
		var exceeded *QuotaExceededError
		if !errors.As(err, &exceeded) {
			t.Fatalf("attempt %d: expected denial after zone switch, got %v", i, err)
		}
	}
	if got, _ := usage.CounterValue(ctx, 1, "search_queries_today"); got != 5 {
		t.Fatalf("expected counter untouched at 5, got %d", got)
	}
	if usage.tzName != "UTC" {
		t.Fatalf("expected pin to survive the zone switch, got %q", usage.tzName)
	}
}

func TestTierUpgradeBindsOnNextCall(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc, usage, _ := newTestService(t, enums.TierFree, at)
	ctx := context.Background()

	usage.set("content_ideations_month", 5)
	if _, err := svc.CheckAndConsume(ctx, 1, enums.FeatureContentIdeations, nil); err == nil {
		t.Fatal("expected denial at the free ceiling")
	}

	// A billing webhook lands mid-window. The very next call must compare
	// the same counter against the pro ceiling, without any reset.
	usage.setTier(enums.TierPro)

	decision, err := svc.CheckAndConsume(ctx, 1, enums.FeatureContentIdeations, nil)
	if err != nil {
		t.Fatalf("consume after upgrade: %v", err)
	}
	if decision.Used != 6 || decision.Limit != 100 {
		t.Fatalf("expected 6/100 after upgrade, got %d/%d", decision.Used, decision.Limit)
	}

	// The counter carried over rather than being zeroed by the change.
	if got, _ := usage.CounterValue(ctx, 1, "content_ideations_month"); got != 6 {
		t.Fatalf("expected carried counter at 6, got %d", got)
	}
}
