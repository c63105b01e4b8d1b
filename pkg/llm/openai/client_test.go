package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.OpenAIConfig{
		Key:     "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	}, tracker.New())
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  a fine narration  "}},
			},
		})
	})

	got, err := c.GenerateText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateText() error: %v", err)
	}
	if got != "a fine narration" {
		t.Errorf("GenerateText() = %q", got)
	}
}

func TestGenerateTextAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid key", "type": "auth"},
		})
	})

	if _, err := c.GenerateText(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error on API failure")
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient(config.OpenAIConfig{BaseURL: "http://unused", Model: "m"}, tracker.New())
	if c.Configured() {
		t.Error("client without key must report unconfigured")
	}
	if _, err := c.GenerateText(context.Background(), "s", "u"); err == nil {
		t.Error("unconfigured client must error without a network call")
	}
}
