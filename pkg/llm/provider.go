package llm

import (
	"context"
)

// Provider defines the interface for narration LLM services.
type Provider interface {
	// Name identifies the provider in logs, stats, and results.
	Name() string

	// Configured reports whether the provider has the credentials it needs.
	// Unconfigured providers are skipped by the fallback chain.
	Configured() bool

	// GenerateText sends a system + user prompt pair and returns the text
	// response. One attempt per call; retry policy belongs to the caller.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
