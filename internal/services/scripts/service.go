package scripts

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
	ErrNotFound     = errors.New("script not found")
)

type ScriptStore interface {
	Insert(ctx context.Context, script model.Script) (model.Script, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Script, error)
	GetForUser(ctx context.Context, userID, scriptID int64) (model.Script, error)
	Delete(ctx context.Context, userID, scriptID int64) error
}

type QuotaGate interface {
	CheckAndConsume(ctx context.Context, userID int64, feature enums.Feature, loc *time.Location) (quota.Decision, error)
	CheckStorageLimit(ctx context.Context, userID int64, kind enums.CollectionKind) error
}

type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Exporter interface {
	UploadScript(ctx context.Context, userID int64, script model.Script) (string, error)
}

// GeneratedScript is an unsaved generation result.
type GeneratedScript struct {
	Title    string `json:"title"`
	Outline  string `json:"outline"`
	Body     string `json:"body"`
	Platform string `json:"platform,omitempty"`
}

type Service struct {
	store    ScriptStore
	quotas   QuotaGate
	gen      TextGenerator
	exporter Exporter
	logger   *zap.Logger
}

func NewService(store ScriptStore, quotas QuotaGate, gen TextGenerator, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:    store,
		quotas:   quotas,
		gen:      gen,
		exporter: exporter,
		logger:   logger,
	}
}

// Generate consumes one script_generations unit and produces a script draft.
// Like ideation, the unit is spent whether or not the provider delivers.
func (s *Service) Generate(ctx context.Context, userID int64, loc *time.Location, title, platform, tone string) (GeneratedScript, quota.Decision, error) {
	if strings.TrimSpace(title) == "" {
		return GeneratedScript{}, quota.Decision{}, ErrInvalidInput
	}

	decision, err := s.quotas.CheckAndConsume(ctx, userID, enums.FeatureScriptGenerations, loc)
	if err != nil {
		return GeneratedScript{}, quota.Decision{}, err
	}

	raw, err := s.gen.Generate(ctx, llm.SystemPrompt(), llm.ScriptPrompt(title, platform, tone))
	if err != nil {
		return GeneratedScript{}, decision, fmt.Errorf("generate script: %w", err)
	}

	script := parseGeneratedScript(raw)
	script.Title = strings.TrimSpace(title)
	script.Platform = platform
	if script.Body == "" {
		s.logger.Warn("script generation returned unparseable payload", zap.Int64("user_id", userID))
		script.Body = strings.TrimSpace(raw)
	}

	return script, decision, nil
}

func (s *Service) Save(ctx context.Context, userID int64, script GeneratedScript) (model.Script, error) {
	if strings.TrimSpace(script.Title) == "" || strings.TrimSpace(script.Body) == "" {
		return model.Script{}, ErrInvalidInput
	}

	if err := s.quotas.CheckStorageLimit(ctx, userID, enums.CollectionSavedScripts); err != nil {
		return model.Script{}, err
	}

	saved, err := s.store.Insert(ctx, model.Script{
		UserID:   userID,
		Title:    strings.TrimSpace(script.Title),
		Outline:  strings.TrimSpace(script.Outline),
		Body:     script.Body,
		Platform: script.Platform,
	})
	if err != nil {
		return model.Script{}, fmt.Errorf("save script: %w", err)
	}

	return saved, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]model.Script, error) {
	return s.store.ListForUser(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID, scriptID int64) (model.Script, error) {
	script, err := s.store.GetForUser(ctx, userID, scriptID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrScriptNotFound) {
			return model.Script{}, ErrNotFound
		}
		return model.Script{}, err
	}
	return script, nil
}

func (s *Service) Delete(ctx context.Context, userID, scriptID int64) error {
	if scriptID <= 0 {
		return ErrInvalidInput
	}
	if err := s.store.Delete(ctx, userID, scriptID); err != nil {
		if errors.Is(err, pgrepo.ErrScriptNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Export uploads a saved script to object storage and returns a presigned
// download URL.
func (s *Service) Export(ctx context.Context, userID, scriptID int64) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("script export is not configured")
	}

	script, err := s.Get(ctx, userID, scriptID)
	if err != nil {
		return "", err
	}

	url, err := s.exporter.UploadScript(ctx, userID, script)
	if err != nil {
		return "", fmt.Errorf("export script: %w", err)
	}

	return url, nil
}

func parseGeneratedScript(raw string) GeneratedScript {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}

	var script GeneratedScript
	if err := json.Unmarshal([]byte(trimmed), &script); err != nil {
		return GeneratedScript{}
	}
	return script
}
