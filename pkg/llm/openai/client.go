// Package openai implements llm.Provider for any OpenAI-compatible
// chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
)

// Client implements llm.Provider for any OpenAI-compatible API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	tracker *tracker.Tracker
}

// Request follows the standard OpenAI Chat Completions format.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response follows the standard Chat Completions response format.
type Response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenAI client.
func NewClient(cfg config.OpenAIConfig, t *tracker.Tracker) *Client {
	return &Client{
		apiKey:  cfg.Key,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
		tracker: t,
	}
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "openai" }

// Configured implements llm.Provider.
func (c *Client) Configured() bool { return c.apiKey != "" }

// GenerateText implements llm.Provider.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openai client not configured")
	}

	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	u := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if out.Error != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api error: unexpected status %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api returned no choices")
	}

	c.tracker.TrackAPISuccess(c.Name())
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
