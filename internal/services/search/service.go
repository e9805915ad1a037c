package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
)

var ErrInvalidInput = errors.New("invalid input")

type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID int64, feature enums.Feature, loc *time.Location) (quota.Decision, error)
}

type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Result is a trend search answer. Searches are metered but never stored.
type Result struct {
	Query    string
	Platform string
	Insight  string
}

type Service struct {
	quotas QuotaGate
	gen    TextGenerator
}

func NewService(quotas QuotaGate, gen TextGenerator) *Service {
	return &Service{
		quotas: quotas,
		gen:    gen,
	}
}

// Trends consumes one search_queries unit and returns trend insight for the
// query.
func (s *Service) Trends(ctx context.Context, userID int64, loc *time.Location, query, platform string) (Result, quota.Decision, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, quota.Decision{}, ErrInvalidInput
	}

	decision, err := s.quotas.CheckAndConsume(ctx, userID, enums.FeatureSearchQueries, loc)
	if err != nil {
		return Result{}, quota.Decision{}, err
	}

	insight, err := s.gen.Generate(ctx, llm.SystemPrompt(), llm.TrendSearchPrompt(query, platform))
	if err != nil {
		return Result{}, decision, fmt.Errorf("search trends: %w", err)
	}

	return Result{
		Query:    strings.TrimSpace(query),
		Platform: platform,
		Insight:  strings.TrimSpace(insight),
	}, decision, nil
}
