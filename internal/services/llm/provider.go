package llm

import (
	"context"
	"errors"
)

// ErrProviderUnavailable wraps transport and upstream failures so callers can
// map every provider problem to one client-facing error.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	RequestID   string
}

type Response struct {
	ID           string
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	Provider     string
}

type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() string
}
