package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/infra/metrics"
)

// Generator binds a provider to the configured model and sampling settings,
// so feature services only supply prompts.
type Generator struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
}

func NewGenerator(provider Provider, model string, maxTokens int, temperature float64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Generator{
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (g *Generator) Generate(ctx context.Context, system, user string) (string, error) {
	if g.provider == nil {
		return "", fmt.Errorf("%w: no provider configured", ErrProviderUnavailable)
	}
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("empty prompt")
	}

	messages := make([]Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: user})

	resp, err := g.provider.Complete(ctx, &Request{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		RequestID:   uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	metrics.LLMTokens.WithLabelValues("input").Add(float64(resp.InputTokens))
	metrics.LLMTokens.WithLabelValues("output").Add(float64(resp.OutputTokens))

	return resp.Content, nil
}
