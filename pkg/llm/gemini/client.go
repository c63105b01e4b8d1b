// Package gemini implements llm.Provider for Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
)

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	modelName   string
	tracker     *tracker.Tracker
}

// NewClient creates a new Gemini client. With an empty key the client is
// constructed unconfigured, so the fallback chain can skip it.
func NewClient(cfg config.GeminiConfig, t *tracker.Tracker) (*Client, error) {
	c := &Client{
		modelName: cfg.Model,
		tracker:   t,
	}
	if c.modelName == "" {
		c.modelName = "gemini-2.5-flash-lite"
	}

	if cfg.Key == "" {
		return c, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client
	return c, nil
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "gemini" }

// Configured implements llm.Provider.
func (c *Client) Configured() bool { return c.genaiClient != nil }

// GenerateText implements llm.Provider.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.genaiClient == nil {
		return "", fmt.Errorf("gemini client not configured")
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), genCfg)
	if err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", fmt.Errorf("generate text error: %w", err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.tracker.TrackAPIFailure(c.Name())
		return "", err
	}

	c.tracker.TrackAPISuccess(c.Name())
	return strings.TrimSpace(text), nil
}

func getResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return sb.String(), nil
}
