package api

import (
	"net/http"
	"time"
)

// NewServer wires the handlers into an http.Server with sane timeouts.
// audioDir is served under /static/audio/ so clients can fetch artifacts.
func NewServer(addr string, guide *GuideHandler, admin *AdminHandler, audioDir string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", HandlePing)

	mux.HandleFunc("POST /guide", guide.HandleGuide)
	mux.HandleFunc("GET /guide/styles", guide.HandleStyles)
	mux.HandleFunc("GET /guide/voice-styles", guide.HandleVoiceStyles)

	mux.HandleFunc("POST /admin/clear-cache", admin.HandleClearCache)
	mux.HandleFunc("POST /admin/batch-generate", admin.HandleBatchGenerate)
	mux.HandleFunc("GET /admin/audio/info", admin.HandleAudioInfo)
	mux.HandleFunc("POST /admin/audio/cleanup", admin.HandleAudioCleanup)
	mux.HandleFunc("GET /admin/stats", admin.HandleStats)

	mux.Handle("GET /static/audio/", http.StripPrefix("/static/audio/", http.FileServer(http.Dir(audioDir))))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
