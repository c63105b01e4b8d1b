package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/binxuan98/ai-audio-guide/pkg/cache"
	"github.com/binxuan98/ai-audio-guide/pkg/geo"
	"github.com/binxuan98/ai-audio-guide/pkg/narrator"
	"github.com/binxuan98/ai-audio-guide/pkg/prompt"
	"github.com/binxuan98/ai-audio-guide/pkg/scorer"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

// coordinate decodes a JSON number or a numeric string, tracking presence so
// a missing field can be told apart from zero.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		c.value, c.set = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("coordinate %q is not numeric", s)
		}
		c.value, c.set = f, true
		return nil
	}

	if string(data) == "null" {
		return nil
	}
	return fmt.Errorf("coordinate must be a number")
}

type guideRequest struct {
	Latitude  coordinate `json:"latitude"`
	Longitude coordinate `json:"longitude"`

	EnableTTS  bool   `json:"enable_tts"`
	EnableLLM  *bool  `json:"enable_llm"`
	UseCache   *bool  `json:"use_cache"`
	GuideStyle string `json:"guide_style"`
	VoiceStyle string `json:"voice_style"`

	TimeOfDay          string `json:"time_of_day"`
	Weather            string `json:"weather"`
	VisitorType        string `json:"visitor_type"`
	Language           string `json:"language"`
	DurationPreference string `json:"duration_preference"`
}

// GuideHandler serves the guide endpoints.
type GuideHandler struct {
	store        *spot.Store
	cache        *cache.Cache
	generator    *narrator.Generator
	synth        *tts.Synthesizer
	tracker      *tracker.Tracker
	defaultStyle string
}

// NewGuideHandler creates a new guide handler.
func NewGuideHandler(store *spot.Store, c *cache.Cache, g *narrator.Generator, s *tts.Synthesizer, t *tracker.Tracker, defaultStyle string) *GuideHandler {
	if defaultStyle == "" {
		defaultStyle = prompt.DefaultStyle
	}
	return &GuideHandler{store: store, cache: c, generator: g, synth: s, tracker: t, defaultStyle: defaultStyle}
}

// HandleGuide handles POST /guide.
func (h *GuideHandler) HandleGuide(w http.ResponseWriter, r *http.Request) {
	var req guideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if !req.Latitude.set || !req.Longitude.set {
		writeError(w, http.StatusBadRequest, "missing required parameters: latitude and longitude")
		return
	}

	lat, lon := req.Latitude.value, req.Longitude.value
	if !geo.ValidLatitude(lat) || !geo.ValidLongitude(lon) {
		writeError(w, http.StatusBadRequest, "coordinates out of valid range")
		return
	}

	resolved, err := h.store.Nearest(lat, lon)
	if err != nil {
		writeError(w, http.StatusNotFound, "no spots available")
		return
	}

	style := prompt.Lookup(req.styleOrDefault(h.defaultStyle)).Key
	resolved.GuideStyle = style

	useCache := req.UseCache == nil || *req.UseCache
	if useCache {
		if entry, ok := h.cache.Get(resolved.ID, style); ok {
			h.tracker.TrackCacheHit("content")
			resolved.GeneratedContent = entry.GeneratedContent
			resolved.Provider = entry.Provider
			resolved.Cached = true
			if entry.AudioURL != "" {
				resolved.AudioURL = entry.AudioURL
			}
			resolved.QualityScore = scorer.Score(entry.GeneratedContent, prompt.Lookup(style).Keywords)
			writeSuccess(w, resolved)
			return
		}
		h.tracker.TrackCacheMiss("content")
	}

	enableLLM := req.EnableLLM == nil || *req.EnableLLM
	if enableLLM {
		result := h.generator.Generate(r.Context(), narrator.Request{
			Spot:  resolved.Spot,
			Style: style,
			Context: prompt.Context{
				TimeOfDay:          req.TimeOfDay,
				Weather:            req.Weather,
				VisitorType:        req.VisitorType,
				Language:           req.Language,
				DurationPreference: req.DurationPreference,
			},
		})
		resolved.GeneratedContent = result.Content
		resolved.Provider = result.Provider
		resolved.QualityScore = scorer.Score(result.Content, result.Keywords)
	} else {
		resolved.GeneratedContent = resolved.Description
		resolved.Provider = "none"
		resolved.QualityScore = scorer.Score(resolved.Description, prompt.Lookup(style).Keywords)
	}

	if req.EnableTTS {
		voiceStyle := req.VoiceStyle
		if voiceStyle == "" {
			voiceStyle = tts.DefaultVoiceStyle
		}
		audio, err := h.synth.Synthesize(r.Context(), resolved.GeneratedContent, voiceStyle)
		if err != nil {
			// Audio is best-effort; the narration still goes out.
			slog.Warn("Speech synthesis failed", "spot", resolved.Name, "error", err)
		} else {
			resolved.AudioURL = audio.AudioURL
		}
	}

	// Fallback narrations are not cached: a transient provider outage must
	// not freeze a spot's narration in fallback mode for the full TTL.
	if useCache && resolved.Provider != narrator.FallbackProvider {
		h.cache.Put(resolved.ID, style, cache.Entry{
			GeneratedContent: resolved.GeneratedContent,
			AudioURL:         resolved.AudioURL,
			Provider:         resolved.Provider,
		})
	}

	writeSuccess(w, resolved)
}

func (req *guideRequest) styleOrDefault(def string) string {
	if req.GuideStyle != "" {
		return req.GuideStyle
	}
	return def
}

// HandleStyles handles GET /guide/styles.
func (h *GuideHandler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"styles": prompt.Styles(), "default": h.defaultStyle})
}

// HandleVoiceStyles handles GET /guide/voice-styles.
func (h *GuideHandler) HandleVoiceStyles(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"voice_styles": tts.VoiceStyles(), "default": tts.DefaultVoiceStyle})
}

// HandlePing handles GET /ping.
func HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"message":"pong"}` + "\n")); err != nil {
		slog.Error("Failed to write ping response", "error", err)
	}
}
