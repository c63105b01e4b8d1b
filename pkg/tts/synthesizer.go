package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Result describes a synthesized (or already present) audio artifact.
type Result struct {
	AudioURL string        `json:"audio_url"`
	Path     string        `json:"audio_path"`
	Provider string        `json:"provider"`
	Cached   bool          `json:"cached"`
	FileSize int64         `json:"file_size"`
	Elapsed  time.Duration `json:"-"`
}

// FileInfo describes one audio file on disk.
type FileInfo struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DirInfo summarizes the audio directory.
type DirInfo struct {
	Count      int        `json:"count"`
	TotalBytes int64      `json:"total_bytes"`
	Files      []FileInfo `json:"files"`
}

// CleanupResult reports what CleanupOlderThan removed.
type CleanupResult struct {
	Deleted        int   `json:"deleted"`
	BytesReclaimed int64 `json:"bytes_reclaimed"`
}

// Synthesizer runs text through an ordered provider chain and stores the
// resulting MP3 files under a content-addressed name.
type Synthesizer struct {
	dir       string
	urlPrefix string
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	disabled map[string]bool

	now func() time.Time
}

// NewSynthesizer creates a Synthesizer writing files to dir and referencing
// them under urlPrefix. Providers are tried in order.
func NewSynthesizer(dir, urlPrefix string, providers []Provider, timeout time.Duration, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		disabled:  make(map[string]bool),
		now:       time.Now,
	}
}

// Filename derives the content-addressed file name for a text/voice-style
// pair. The same pair always maps to the same name.
func Filename(text, voiceStyle string) string {
	sum := sha256.Sum256([]byte(text + "_" + voiceStyle))
	return fmt.Sprintf("audio_%s.mp3", hex.EncodeToString(sum[:8]))
}

// Synthesize produces an audio file for text in the given voice style. If the
// file already exists it is reused without calling any provider. All provider
// failures are absorbed until the chain is exhausted.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voiceStyle string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}
	if voiceStyle == "" {
		voiceStyle = DefaultVoiceStyle
	}

	name := Filename(text, voiceStyle)
	path := filepath.Join(s.dir, name)
	url := s.urlPrefix + "/" + name

	if fi, err := os.Stat(path); err == nil && fi.Size() >= MinAudioSize {
		return &Result{AudioURL: url, Path: path, Provider: "cache", Cached: true, FileSize: fi.Size()}, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir: %w", err)
	}

	start := s.now()
	var lastErr error
	for _, p := range s.providers {
		if !p.Configured() || s.isDisabled(p.Name()) {
			continue
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if s.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		err := p.Synthesize(callCtx, text, voiceStyle, path)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			// A FatalError means the provider itself is broken (bad key,
			// rejected request) and will not heal on its own; stop offering
			// it text. Transient errors get another chance next call.
			if IsFatalError(err) {
				s.disable(p.Name())
				s.logger.Warn("TTS provider disabled after fatal error", "provider", p.Name(), "error", err)
			} else {
				s.logger.Warn("TTS provider failed", "provider", p.Name(), "error", err)
			}
			lastErr = err
			_ = os.Remove(path)
			continue
		}

		fi, statErr := os.Stat(path)
		if statErr != nil || fi.Size() < MinAudioSize {
			s.logger.Warn("TTS provider produced undersized audio", "provider", p.Name(), "path", path)
			lastErr = fmt.Errorf("provider %s produced invalid audio", p.Name())
			_ = os.Remove(path)
			continue
		}

		return &Result{
			AudioURL: url,
			Path:     path,
			Provider: p.Name(),
			FileSize: fi.Size(),
			Elapsed:  s.now().Sub(start),
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all TTS providers failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no TTS provider configured")
}

// Info lists the audio files currently on disk.
func (s *Synthesizer) Info() (*DirInfo, error) {
	info := &DirInfo{Files: []FileInfo{}}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return nil, fmt.Errorf("failed to read audio dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isAudioFile(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		info.Count++
		info.TotalBytes += fi.Size()
		info.Files = append(info.Files, FileInfo{
			Name:     e.Name(),
			URL:      s.urlPrefix + "/" + e.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}
	return info, nil
}

// CleanupOlderThan deletes audio files whose mtime is older than the given
// number of days.
func (s *Synthesizer) CleanupOlderThan(days int) (CleanupResult, error) {
	var res CleanupResult

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("failed to read audio dir: %w", err)
	}

	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	for _, e := range entries {
		if e.IsDir() || !isAudioFile(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil || !fi.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete audio file", "path", path, "error", err)
			continue
		}
		res.Deleted++
		res.BytesReclaimed += fi.Size()
	}
	return res, nil
}

func (s *Synthesizer) isDisabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled[name]
}

func (s *Synthesizer) disable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[name] = true
}

func isAudioFile(name string) bool {
	return strings.HasPrefix(name, "audio_") && strings.HasSuffix(name, ".mp3")
}
