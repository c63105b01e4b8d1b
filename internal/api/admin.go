package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/binxuan98/ai-audio-guide/pkg/cache"
	"github.com/binxuan98/ai-audio-guide/pkg/narrator"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

// AdminHandler serves the maintenance endpoints.
type AdminHandler struct {
	store     *spot.Store
	cache     *cache.Cache
	generator *narrator.Generator
	synth     *tts.Synthesizer
	tracker   *tracker.Tracker
	throttle  time.Duration
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store *spot.Store, c *cache.Cache, g *narrator.Generator, s *tts.Synthesizer, t *tracker.Tracker, throttle time.Duration) *AdminHandler {
	return &AdminHandler{store: store, cache: c, generator: g, synth: s, tracker: t, throttle: throttle}
}

// HandleClearCache handles POST /admin/clear-cache. By default only expired
// entries are swept; {"all": true} removes everything.
func (h *AdminHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	var req struct {
		All bool `json:"all"`
	}
	// An empty body means the default sweep.
	_ = json.NewDecoder(r.Body).Decode(&req)

	var deleted int
	if req.All {
		deleted = h.cache.Clear()
	} else {
		deleted = h.cache.Sweep()
	}
	writeSuccess(w, map[string]any{"deleted": deleted, "all": req.All})
}

// HandleBatchGenerate handles POST /admin/batch-generate. It generates
// narrations for every spot in the requested styles, caches the successful
// ones, and optionally synthesizes audio.
func (h *AdminHandler) HandleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Styles     []string `json:"styles"`
		EnableTTS  bool     `json:"enable_tts"`
		VoiceStyle string   `json:"voice_style"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	voiceStyle := req.VoiceStyle
	if voiceStyle == "" {
		voiceStyle = tts.DefaultVoiceStyle
	}

	spots := h.store.Load()
	if len(spots) == 0 {
		writeError(w, http.StatusNotFound, "no spots available")
		return
	}

	audioGenerated := 0
	summary := h.generator.Batch(r.Context(), spots, req.Styles, h.throttle, func(item narrator.BatchItem) {
		if item.Result.Provider == narrator.FallbackProvider {
			return
		}

		audioURL := ""
		if req.EnableTTS {
			audio, err := h.synth.Synthesize(r.Context(), item.Result.Content, voiceStyle)
			if err != nil {
				slog.Warn("Batch speech synthesis failed", "spot", item.Spot.Name, "error", err)
			} else {
				audioURL = audio.AudioURL
				audioGenerated++
			}
		}

		h.cache.Put(item.Spot.ID, item.Result.Style, cache.Entry{
			GeneratedContent: item.Result.Content,
			AudioURL:         audioURL,
			Provider:         item.Result.Provider,
		})
	})

	writeSuccess(w, map[string]any{
		"total":           summary.Total,
		"generated":       summary.Generated,
		"fallbacks":       summary.Fallbacks,
		"audio_generated": audioGenerated,
	})
}

// HandleAudioInfo handles GET /admin/audio/info.
func (h *AdminHandler) HandleAudioInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.synth.Info()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, info)
}

// HandleAudioCleanup handles POST /admin/audio/cleanup.
func (h *AdminHandler) HandleAudioCleanup(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Days int `json:"days"`
	}{Days: 7}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be positive")
		return
	}

	res, err := h.synth.CleanupOlderThan(req.Days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, res)
}

// HandleStats handles GET /admin/stats.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"providers": h.tracker.Snapshot()})
}
