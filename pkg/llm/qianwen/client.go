// Package qianwen implements llm.Provider for the Alibaba DashScope
// (Tongyi Qianwen) text-generation API.
package qianwen

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

// Client implements llm.Provider for DashScope.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	tracker *tracker.Tracker
}

// request follows the DashScope native text-generation format.
type request struct {
	Model      string     `json:"model"`
	Input      input      `json:"input"`
	Parameters parameters `json:"parameters"`
}

type input struct {
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type parameters struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

// response matches the DashScope response format.
type response struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewClient creates a new DashScope client.
func NewClient(cfg config.QianwenConfig, t *tracker.Tracker) *Client {
	return &Client{
		apiKey:  cfg.Key,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
		tracker: t,
	}
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "qianwen" }

// Configured implements llm.Provider.
func (c *Client) Configured() bool { return c.apiKey != "" }

// GenerateText implements llm.Provider.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("qianwen client not configured")
	}

	reqBody := request{
		Model: c.model,
		Input: input{
			Messages: []message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
		},
		Parameters: parameters{
			MaxTokens:   300,
			Temperature: 0.7,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	u := c.baseURL + "/services/aigc/text-generation/generation"
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

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || out.Code != "" {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api error (status %d): %s %s", resp.StatusCode, out.Code, out.Message)
	}
	if out.Output.Text == "" {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("api returned empty output")
	}

	c.tracker.TrackAPISuccess(c.Name())
	return strings.TrimSpace(out.Output.Text), nil
}
