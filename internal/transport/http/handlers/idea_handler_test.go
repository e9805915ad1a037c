package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	ideasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/ideas"
)

type ideaStoreStub struct {
	ideas []model.Idea
}

func (s *ideaStoreStub) Insert(_ context.Context, idea model.Idea) (model.Idea, error) {
	idea.ID = int64(len(s.ideas) + 1)
	s.ideas = append(s.ideas, idea)
	return idea, nil
}

func (s *ideaStoreStub) ListForUser(_ context.Context, _ int64, _ int) ([]model.Idea, error) {
	return s.ideas, nil
}

func (s *ideaStoreStub) GetForUser(_ context.Context, _, _ int64) (model.Idea, error) {
	return model.Idea{}, nil
}

func (s *ideaStoreStub) Delete(_ context.Context, _, _ int64) error {
	return nil
}

type textGenStub struct {
	response string
	err      error
	calls    int
}

func (g *textGenStub) Generate(_ context.Context, _, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func performIdeate(t *testing.T, h *IdeaHandler, topic string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{"topic": topic, "count": 2})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/ideas/ideate", bytes.NewReader(body)), 42)
	rec := httptest.NewRecorder()
	h.Ideate(rec, req)
	return rec
}

func TestIdeaHandlerIdeateReturnsIdeasAndQuota(t *testing.T) {
	quotas, _ := newQuotaService(t, enums.TierFree)
	gen := &textGenStub{response: `[{"title":"Morning routine myths","angle":"debunk","hook":"You waste an hour daily","tags":["productivity"]}]`}
	svc := ideasvc.NewService(&ideaStoreStub{}, quotas, gen, nil)
	h := NewIdeaHandler(svc, nil)

	rec := performIdeate(t, h, "productivity")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Ideas []struct {
			Title string `json:"title"`
		} `json:"ideas"`
		Quota struct {
			Feature string `json:"feature"`
			Window  string `json:"window"`
			Used    int    `json:"used"`
			Limit   int    `json:"limit"`
		} `json:"quota"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(payload.Ideas) != 1 || payload.Ideas[0].Title != "Morning routine myths" {
		t.Fatalf("unexpected ideas payload: %s", rec.Body.String())
	}
	if payload.Quota.Feature != "content_ideations" || payload.Quota.Window != "monthly" {
		t.Fatalf("unexpected quota payload: %s", rec.Body.String())
	}
	if payload.Quota.Used != 1 || payload.Quota.Limit != 2 {
		t.Fatalf("unexpected quota usage: got %d/%d", payload.Quota.Used, payload.Quota.Limit)
	}
}

func TestIdeaHandlerIdeateMonthlyLimitReturns429(t *testing.T) {
	quotas, _ := newQuotaService(t, enums.TierFree)
	gen := &textGenStub{response: `[]`}
	svc := ideasvc.NewService(&ideaStoreStub{}, quotas, gen, nil)
	h := NewIdeaHandler(svc, nil)

	for i := 0; i < 2; i++ {
		if rec := performIdeate(t, h, "topic"); rec.Code != http.StatusOK {
			t.Fatalf("unexpected status on request %d: got %d", i+1, rec.Code)
		}
	}
	callsBefore := gen.calls

	rec := performIdeate(t, h, "topic")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status past the ceiling: got %d want %d", rec.Code, http.StatusTooManyRequests)
	}
	if gen.calls != callsBefore {
		t.Fatalf("provider must not be called on a denied request")
	}

	var payload struct {
		Code    string `json:"code"`
		Used    int    `json:"used"`
		Limit   int    `json:"limit"`
		Window  string `json:"window"`
		ResetAt string `json:"reset_at"`
		Upgrade string `json:"upgrade"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.Code != "MONTHLY_LIMIT_REACHED" {
		t.Fatalf("unexpected error code: got %q", payload.Code)
	}
	if payload.Used != 2 || payload.Limit != 2 {
		t.Fatalf("unexpected usage in denial: got %d/%d", payload.Used, payload.Limit)
	}
	if payload.Window != "monthly" {
		t.Fatalf("unexpected window: got %q", payload.Window)
	}
	if payload.ResetAt == "" {
		t.Fatalf("expected reset_at in denial payload")
	}
	if payload.Upgrade != "pro" {
		t.Fatalf("unexpected upgrade hint: got %q want %q", payload.Upgrade, "pro")
	}
}

func TestIdeaHandlerIdeateRequiresTopic(t *testing.T) {
	quotas, _ := newQuotaService(t, enums.TierFree)
	svc := ideasvc.NewService(&ideaStoreStub{}, quotas, &textGenStub{response: "[]"}, nil)
	h := NewIdeaHandler(svc, nil)

	rec := performIdeate(t, h, "  ")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
