package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIGenerate(t *testing.T) {
	var gotReq openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "pong"}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("openai", server.URL, "test-key", "gpt-test", 5*time.Second)
	got, err := c.Generate(context.Background(), []Turn{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "ping"},
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "pong" {
		t.Fatalf("unexpected reply: %q", got)
	}

	if gotReq.Model != "gpt-test" || len(gotReq.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Fatalf("roles not mapped one to one: %+v", gotReq.Messages)
	}
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("openai", server.URL, "k", "m", 5*time.Second)
	_, err := c.Generate(context.Background(), []Turn{{Role: RoleUser, Content: "hi"}}, DefaultParams())

	var be *BackendError
	if !errors.As(err, &be) || be.Kind != FailureUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestOpenAIGenerateContentFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": ""}, "finish_reason": "content_filter"},
			},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("openai", server.URL, "k", "m", 5*time.Second)
	_, err := c.Generate(context.Background(), []Turn{{Role: RoleUser, Content: "hi"}}, DefaultParams())

	var be *BackendError
	if !errors.As(err, &be) || be.Kind != FailureRejected {
		t.Fatalf("expected rejected error, got %v", err)
	}
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewOpenAIClient("openai", server.URL, "k", "m", 5*time.Second)
	_, err := c.Generate(context.Background(), []Turn{{Role: RoleUser, Content: "hi"}}, DefaultParams())

	var be *BackendError
	if !errors.As(err, &be) || be.Kind != FailureUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
