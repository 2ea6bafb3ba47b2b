package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"

	"docanalysis-backend/internal/llm"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  ", time.Second); !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307","content":[{"type":"text","text":"analysis ok"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", time.Second, option.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := client.Complete(context.Background(), llm.Request{
		Model:  "claude-3-haiku-20240307",
		System: "be precise",
		Prompt: "compare these",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "analysis ok" {
		t.Fatalf("unexpected text %q", text)
	}
	if got["model"] != "claude-3-haiku-20240307" {
		t.Fatalf("unexpected model %v", got["model"])
	}
	if got["max_tokens"] != float64(llm.MaxOutputTokens) {
		t.Fatalf("unexpected max_tokens %v", got["max_tokens"])
	}
	if got["temperature"] != float64(0) {
		t.Fatalf("unexpected temperature %v", got["temperature"])
	}
	messages, _ := got["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}
	if first, _ := messages[0].(map[string]any); first["role"] != "user" {
		t.Fatalf("expected user role, got %v", first["role"])
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"not_found_error","message":"model: claude-2.0"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", time.Second, option.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Model: "claude-2.0", Prompt: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCompleteEmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", time.Second, option.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Model: "m", Prompt: "x"})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
