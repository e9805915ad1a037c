package ideas

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
	pgrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/postgres"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("idea not found")
)

type IdeaStore interface {
	Insert(ctx context.Context, idea model.Idea) (model.Idea, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Idea, error)
	GetForUser(ctx context.Context, userID, ideaID int64) (model.Idea, error)
	Delete(ctx context.Context, userID, ideaID int64) error
}

type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID int64, feature enums.Feature, loc *time.Location) (quota.Decision, error)
	CheckStorageLimit(ctx context.Context, userID int64, kind enums.CollectionKind) error
}

type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GeneratedIdea is one suggestion out of an ideation call. Nothing is
// persisted until the user saves it.
type GeneratedIdea struct {
	Title string   `json:"title"`
	Angle string   `json:"angle"`
	Hook  string   `json:"hook"`
	Tags  []string `json:"tags,omitempty"`
}

type Service struct {
	store  IdeaStore
	quotas QuotaGate
	gen    TextGenerator
	logger *zap.Logger
}

func NewService(store IdeaStore, quotas QuotaGate, gen TextGenerator, logger *zap.Logger) *Service {
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

// Ideate consumes one content_ideations unit and generates idea suggestions.
// The quota is claimed before the provider call, so a failed generation still
// costs a unit; refunding would let a flaky provider mint free retries.
func (s *Service) Ideate(ctx context.Context, userID int64, loc *time.Location, topic, platform string, count int) ([]GeneratedIdea, quota.Decision, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, quota.Decision{}, ErrInvalidInput
	}

	decision, err := s.quotas.CheckAndConsume(ctx, userID, enums.FeatureContentIdeations, loc)
	if err != nil {
		return nil, quota.Decision{}, err
	}

	raw, err := s.gen.Generate(ctx, llm.SystemPrompt(), llm.IdeationPrompt(topic, platform, count))
	if err != nil {
		return nil, decision, fmt.Errorf("generate ideas: %w", err)
	}

	generated := parseGeneratedIdeas(raw)
	if len(generated) == 0 {
		s.logger.Warn("ideation returned unparseable payload", zap.Int64("user_id", userID))
		generated = []GeneratedIdea{{Title: strings.TrimSpace(topic), Angle: strings.TrimSpace(raw)}}
	}

	return generated, decision, nil
}

// Save persists a picked idea. The storage ceiling is checked against the
// live row count right before the insert.
func (s *Service) Save(ctx context.Context, userID int64, idea GeneratedIdea, sourcePrompt string) (model.Idea, error) {
	if strings.TrimSpace(idea.Title) == "" {
		return model.Idea{}, ErrInvalidInput
	}

	if err := s.quotas.CheckStorageLimit(ctx, userID, enums.CollectionSavedIdeas); err != nil {
		return model.Idea{}, err
	}

	saved, err := s.store.Insert(ctx, model.Idea{
		UserID:       userID,
		Title:        strings.TrimSpace(idea.Title),
		Angle:        strings.TrimSpace(idea.Angle),
		Hook:         strings.TrimSpace(idea.Hook),
		Tags:         idea.Tags,
		SourcePrompt: strings.TrimSpace(sourcePrompt),
	})
	if err != nil {
		return model.Idea{}, fmt.Errorf("save idea: %w", err)
	}

	return saved, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Idea, error) {
	return s.store.ListForUser(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID, ideaID int64) (model.Idea, error) {
	idea, err := s.store.GetForUser(ctx, userID, ideaID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrIdeaNotFound) {
			return model.Idea{}, ErrNotFound
		}
		return model.Idea{}, err
	}
	return idea, nil
}

func (s *Service) Delete(ctx context.Context, userID, ideaID int64) error {
	if ideaID <= 0 {
		return ErrInvalidInput
	}
	if err := s.store.Delete(ctx, userID, ideaID); err != nil {
		if errors.Is(err, pgrepo.ErrIdeaNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// parseGeneratedIdeas tolerates models that wrap the JSON array in markdown
// fences or stray prose.
func parseGeneratedIdeas(raw string) []GeneratedIdea {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			raw = raw[start : end+1]
		}
	}

	var generated []GeneratedIdea
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil
	}

	out := generated[:0]
	for _, idea := range generated {
		if strings.TrimSpace(idea.Title) != "" {
			out = append(out, idea)
		}
	}
	return out
}
