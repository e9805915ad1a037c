package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAICompleteParsesResponse(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 {
			t.Errorf("unexpected request payload: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(openAIResponse{
			ID:    "cmpl-1",
			Model: "gpt-4o-mini",
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: "three ideas"}},
			},
			Usage: openAIUsage{PromptTokens: 42, CompletionTokens: 17},
		})
	}))
	defer server.Close()

	provider := NewOpenAI("sk-test", server.URL, server.Client())
	resp, err := provider.Complete(context.Background(), &Request{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: "system", Content: "be useful"},
			{Role: "user", Content: "ideas please"},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "three ideas" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.InputTokens != 42 || resp.OutputTokens != 17 {
		t.Fatalf("unexpected token usage: %+v", resp)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestOpenAICompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAI("sk-test", server.URL, server.Client())
	_, err := provider.Complete(context.Background(), &Request{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOpenAICompleteMissingKey(t *testing.T) {
	provider := NewOpenAI("", "", nil)
	_, err := provider.Complete(context.Background(), &Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
