package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/model"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
)

var ErrInvalidInput = errors.New("invalid input")

type InsightStore interface {
	Insert(ctx context.Context, insight model.Insight) (model.Insight, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Insight, error)
}

type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID int64, feature enums.Feature, loc *time.Location) (quota.Decision, error)
}

type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Service struct {
	store  InsightStore
	quotas QuotaGate
	gen    TextGenerator
	logger *zap.Logger
}

func NewService(store InsightStore, quotas QuotaGate, gen TextGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		quotas: quotas,
		gen:    gen,
		logger: logger,
	}
}

type analysisPayload struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// Analyze consumes one channel_analyses unit, runs the analysis and persists
// the result. Insights are history, not a capped collection, so no storage
// check applies.
func (s *Service) Analyze(ctx context.Context, userID int64, loc *time.Location, channelRef, focus string) (model.Insight, quota.Decision, error) {
	if strings.TrimSpace(channelRef) == "" {
		return model.Insight{}, quota.Decision{}, ErrInvalidInput
	}

	decision, err := s.quotas.CheckAndConsume(ctx, userID, enums.FeatureChannelAnalyses, loc)
	if err != nil {
		return model.Insight{}, quota.Decision{}, err
	}

	raw, err := s.gen.Generate(ctx, llm.SystemPrompt(), llm.ChannelAnalysisPrompt(channelRef, focus))
	if err != nil {
		return model.Insight{}, decision, fmt.Errorf("generate analysis: %w", err)
	}

	payload := parseAnalysis(raw)
	if payload.Summary == "" {
		s.logger.Warn("analysis returned unparseable payload", zap.Int64("user_id", userID))
		payload.Summary = strings.TrimSpace(raw)
	}

	insight, err := s.store.Insert(ctx, model.Insight{
		UserID:     userID,
		ChannelRef: strings.TrimSpace(channelRef),
		Summary:    payload.Summary,
		Strengths:  payload.Strengths,
		Gaps:       payload.Gaps,
	})
	if err != nil {
		return model.Insight{}, decision, fmt.Errorf("save insight: %w", err)
	}

	return insight, decision, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Insight, error) {
	return s.store.ListForUser(ctx, userID, limit)
}

func parseAnalysis(raw string) analysisPayload {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return analysisPayload{}
	}
	return payload
}
