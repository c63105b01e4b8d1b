package narrator

import (
	"context"
	"time"

	"github.com/binxuan98/ai-audio-guide/pkg/prompt"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
)

// BatchItem is one finished spot/style combination from a batch run.
type BatchItem struct {
	Spot   spot.Spot
	Result Result
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Fallbacks int `json:"fallbacks"`
}

// Batch generates narrations for every spot in every style, pausing throttle
// between provider calls to stay under rate limits. Each finished item is
// handed to fn before the next one starts, so callers can persist results as
// they arrive. Cancelling ctx stops the run after the current item.
func (g *Generator) Batch(ctx context.Context, spots []spot.Spot, styles []string, throttle time.Duration, fn func(BatchItem)) BatchSummary {
	if len(styles) == 0 {
		for _, s := range prompt.Styles() {
			styles = append(styles, s.Key)
		}
	}

	summary := BatchSummary{Total: len(spots) * len(styles)}
	for _, sp := range spots {
		for _, style := range styles {
			res := g.Generate(ctx, Request{Spot: sp, Style: style})
			if res.Provider == FallbackProvider {
				summary.Fallbacks++
			} else {
				summary.Generated++
			}
			if fn != nil {
				fn(BatchItem{Spot: sp, Result: res})
			}

			select {
			case <-ctx.Done():
				return summary
			case <-time.After(throttle):
			}
		}
	}
	return summary
}
