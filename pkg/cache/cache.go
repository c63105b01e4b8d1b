package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Entry is one cached generation result, keyed by (spot id, guide style).
type Entry struct {
	GeneratedContent string `json:"generated_content"`
	AudioURL         string `json:"audio_url,omitempty"`
	Provider         string `json:"provider,omitempty"`
	Style            string `json:"style"`
	Timestamp        int64  `json:"timestamp"`
}

var styleSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Cache is a file-per-entry content cache. It is an optimization only:
// every read, write, or parse failure degrades to a miss and is never
// surfaced to callers. Writes are plain overwrites; concurrent writers to
// the same (spot, style) key race with last-write-wins, which is acceptable
// because entries are point-in-time equivalent, not accumulating.
type Cache struct {
	dir    string
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Cache rooted at dir with the given expiry window.
func New(dir string, expiry time.Duration) *Cache {
	return &Cache{
		dir:    dir,
		expiry: expiry,
		logger: slog.With("component", "content_cache"),
		now:    time.Now,
	}
}

// Key derives the deterministic cache file name for a (spot id, style) pair.
func Key(spotID int, style string) string {
	s := styleSanitizer.ReplaceAllString(strings.ToLower(style), "-")
	return fmt.Sprintf("spot_%d_%s.json", spotID, s)
}

// Get returns the entry for (spotID, style) if present and fresh. Expired
// entries are treated as absent but not deleted here; Sweep handles removal.
func (c *Cache) Get(spotID int, style string) (*Entry, bool) {
	path := filepath.Join(c.dir, Key(spotID, style))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Debug("Discarding unreadable cache entry", "path", path, "error", err)
		return nil, false
	}

	if c.expired(e.Timestamp) {
		return nil, false
	}
	return &e, true
}

// Put overwrites the entry for (spotID, style) with a fresh timestamp.
// Failures are logged and swallowed.
func (c *Cache) Put(spotID int, style string, e Entry) {
	e.Style = style
	e.Timestamp = c.now().Unix()

	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to marshal cache entry", "error", err)
		return
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("Failed to create cache directory", "dir", c.dir, "error", err)
		return
	}

	path := filepath.Join(c.dir, Key(spotID, style))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("Failed to write cache entry", "path", path, "error", err)
	}
}

// Sweep deletes every expired entry and returns the number removed.
// Run at startup and on the explicit maintenance trigger.
func (c *Cache) Sweep() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	deleted := 0
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "spot_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(c.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var e Entry
		if err := json.Unmarshal(data, &e); err != nil || c.expired(e.Timestamp) {
			if err := os.Remove(path); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		c.logger.Info("Cache sweep complete", "deleted", deleted)
	}
	return deleted
}

// Clear deletes every cache entry regardless of age and returns the number
// removed.
func (c *Cache) Clear() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	deleted := 0
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "spot_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err == nil {
			deleted++
		}
	}

	c.logger.Info("Cache cleared", "deleted", deleted)
	return deleted
}

func (c *Cache) expired(ts int64) bool {
	age := c.now().Sub(time.Unix(ts, 0))
	return age >= c.expiry
}
