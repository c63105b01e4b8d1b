// Package narrator orchestrates narration generation across a chain of LLM
// providers, falling back to templated text when the chain is exhausted.
package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/binxuan98/ai-audio-guide/pkg/llm"
	"github.com/binxuan98/ai-audio-guide/pkg/prompt"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
)

// FallbackProvider is the provider name reported when templated fallback
// text was used instead of a generated narration.
const FallbackProvider = "fallback"

// Request names the spot and conditions for one narration.
type Request struct {
	Spot    spot.Spot
	Style   string
	Context prompt.Context
}

// Result is a finished narration.
type Result struct {
	Content  string
	Provider string
	Style    string
	Keywords []string
	Elapsed  time.Duration
}

// Generator runs narration requests through an ordered provider chain.
type Generator struct {
	providers []llm.Provider
	timeout   time.Duration
	logPath   string
	tracker   *tracker.Tracker
	logger    *slog.Logger
}

// NewGenerator creates a Generator. Providers are tried in order; logPath
// ("" disables) receives a request/response log for debugging.
func NewGenerator(providers []llm.Provider, timeout time.Duration, logPath string, t *tracker.Tracker, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		providers: providers,
		timeout:   timeout,
		logPath:   logPath,
		tracker:   t,
		logger:    logger,
	}
}

// Generate produces a narration for the request. It never fails: when every
// provider errors out (or none is configured) the templated fallback text is
// returned with Provider set to FallbackProvider.
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	p := prompt.Build(req.Spot.Name, req.Spot.Description, req.Style)
	userPrompt := prompt.Enhance(p.User, req.Context)

	start := time.Now()
	for _, provider := range g.providers {
		if !provider.Configured() {
			continue
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if g.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		}
		content, err := provider.GenerateText(callCtx, p.System, userPrompt)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			g.logger.Warn("LLM provider failed, falling back", "provider", provider.Name(), "spot", req.Spot.Name, "error", err)
			g.logRequest(provider.Name(), userPrompt, "", err)
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			g.logger.Warn("LLM provider returned empty narration", "provider", provider.Name(), "spot", req.Spot.Name)
			continue
		}

		g.logRequest(provider.Name(), userPrompt, content, nil)
		return Result{
			Content:  content,
			Provider: provider.Name(),
			Style:    p.Style,
			Keywords: p.Keywords,
			Elapsed:  time.Since(start),
		}
	}

	if g.tracker != nil {
		g.tracker.TrackFallback(FallbackProvider)
	}
	return Result{
		Content:  prompt.Fallback(req.Spot.Name, req.Spot.Description, req.Style),
		Provider: FallbackProvider,
		Style:    p.Style,
		Keywords: p.Keywords,
		Elapsed:  time.Since(start),
	}
}

// logRequest appends the prompt and outcome to the request log file.
// Log failures are silent; the log is a debugging aid, not a dependency.
func (g *Generator) logRequest(providerName, userPrompt, response string, err error) {
	if g.logPath == "" {
		return
	}

	if mkErr := os.MkdirAll(filepath.Dir(g.logPath), 0o755); mkErr != nil {
		return
	}
	file, fErr := os.OpenFile(g.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if fErr != nil {
		return
	}
	defer file.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	var entry string
	if err != nil {
		entry = fmt.Sprintf("[%s][%s] ERROR: %v\n%s\n",
			timestamp, strings.ToUpper(providerName), err, strings.Repeat("-", 80))
	} else {
		entry = fmt.Sprintf("[%s][%s] PROMPT:\n%s\n\nRESPONSE:\n%s\n%s\n",
			timestamp, strings.ToUpper(providerName), userPrompt, llm.WordWrap(response, 80), strings.Repeat("-", 80))
	}
	_, _ = file.WriteString(entry)
}
