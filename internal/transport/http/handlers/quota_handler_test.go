package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/rules"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
)

type usageStoreStub struct {
	mu          sync.Mutex
	tier        enums.Tier
	counters    map[string]int
	lastDaily   time.Time
	lastMonthly time.Time
	tzName      string
}

func newUsageStoreStub(tier enums.Tier) *usageStoreStub {
	now := time.Now().UTC()
	return &usageStoreStub{
		tier:        tier,
		counters:    map[string]int{},
		lastDaily:   now,
		lastMonthly: now,
	}
}

func (s *usageStoreStub) Get(_ context.Context, userID int64) (model.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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

func (s *usageStoreStub) PinTimezone(_ context.Context, _ int64, tzName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tzName == "" {
		s.tzName = tzName
	}
	return nil
}

func (s *usageStoreStub) ApplyResets(_ context.Context, _ int64, decision rules.ResetDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

func (s *usageStoreStub) ConsumeIfBelow(_ context.Context, _ int64, column string, ceiling int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counters[column] >= ceiling {
		return 0, quotasvc.ErrCeilingReached
	}
	s.counters[column]++
	return s.counters[column], nil
}

func (s *usageStoreStub) CounterValue(_ context.Context, _ int64, column string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[column], nil
}

type collectionCounterStub struct {
	counts map[enums.CollectionKind]int
}

func (s *collectionCounterStub) CountEntities(_ context.Context, _ int64, kind enums.CollectionKind) (int, error) {
	return s.counts[kind], nil
}

func testLimits(t *testing.T) *rules.LimitTable {
	t.Helper()

	table, err := rules.NewLimitTable(map[enums.Tier]rules.TierCeilings{
		enums.TierFree: {
			Daily: map[enums.Feature]int{
				enums.FeatureSearchQueries:   2,
				enums.FeatureChannelAnalyses: 1,
			},
			Monthly: map[enums.Feature]int{
				enums.FeatureContentIdeations:  2,
				enums.FeatureScriptGenerations: 1,
			},
			Storage: map[enums.CollectionKind]int{
				enums.CollectionSavedIdeas:   1,
				enums.CollectionSavedScripts: 1,
			},
		},
		enums.TierPro: {
			Daily: map[enums.Feature]int{
				enums.FeatureSearchQueries:   50,
				enums.FeatureChannelAnalyses: 20,
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

func newQuotaService(t *testing.T, tier enums.Tier) (*quotasvc.Service, *usageStoreStub) {
	t.Helper()

	usage := newUsageStoreStub(tier)
	counts := &collectionCounterStub{counts: map[enums.CollectionKind]int{}}
	return quotasvc.NewService(usage, counts, testLimits(t), 1, time.UTC, nil), usage
}

func withIdentity(r *http.Request, userID int64) *http.Request {
	return r.WithContext(authsvc.WithIdentity(r.Context(), authsvc.Identity{
		UserID: userID,
		SID:    fmt.Sprintf("sid-%d", userID),
		Role:   "user",
	}))
}

func TestQuotaHandlerRequiresAuth(t *testing.T) {
	svc, _ := newQuotaService(t, enums.TierFree)
	h := NewQuotaHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestQuotaHandlerReportsSnapshot(t *testing.T) {
	svc, _ := newQuotaService(t, enums.TierFree)
	h := NewQuotaHandler(svc)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/usage", nil), 7)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Tier     string `json:"tier"`
		Features []struct {
			Feature   string `json:"feature"`
			Window    string `json:"window"`
			Used      int    `json:"used"`
			Limit     int    `json:"limit"`
			Unlimited bool   `json:"unlimited"`
		} `json:"features"`
		Storage []struct {
			Collection string `json:"collection"`
			Limit      int    `json:"limit"`
		} `json:"storage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.Tier != "free" {
		t.Fatalf("unexpected tier: got %q want %q", payload.Tier, "free")
	}
	if len(payload.Features) != len(enums.AllFeatures()) {
		t.Fatalf("unexpected feature count: got %d want %d", len(payload.Features), len(enums.AllFeatures()))
	}
	if len(payload.Storage) != len(enums.AllCollectionKinds()) {
		t.Fatalf("unexpected storage count: got %d want %d", len(payload.Storage), len(enums.AllCollectionKinds()))
	}
	for _, f := range payload.Features {
		if f.Used != 0 {
			t.Fatalf("expected fresh counters, got %d for %s", f.Used, f.Feature)
		}
	}
}
