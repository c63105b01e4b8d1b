package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKeyDeterministic(t *testing.T) {
	tests := []struct {
		id    int
		style string
		want  string
	}{
		{1, "historical-cultural", "spot_1_historical-cultural.json"},
		{7, "Poetic Literary", "spot_7_poetic-literary.json"},
		{3, "a/b\\c", "spot_3_a-b-c.json"},
	}
	for _, tt := range tests {
		if got := Key(tt.id, tt.style); got != tt.want {
			t.Errorf("Key(%d, %q) = %q, want %q", tt.id, tt.style, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	c.Put(1, "anecdotal", Entry{
		GeneratedContent: "a tale of the old bridge",
		AudioURL:         "/static/audio/audio_abc.mp3",
		Provider:         "openai",
	})

	e, ok := c.Get(1, "anecdotal")
	if !ok {
		t.Fatal("expected cache hit after put")
	}
	if e.GeneratedContent != "a tale of the old bridge" {
		t.Errorf("content = %q", e.GeneratedContent)
	}
	if e.AudioURL != "/static/audio/audio_abc.mp3" {
		t.Errorf("audio url = %q", e.AudioURL)
	}
	if e.Timestamp == 0 {
		t.Error("timestamp not set on put")
	}
}

func TestExpiryTreatedAsMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	c.Put(2, "biographical", Entry{GeneratedContent: "old"})

	// Shift the clock past the expiry window.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, ok := c.Get(2, "biographical"); ok {
		t.Error("expired entry must be treated as a miss")
	}

	// The file is not removed on read, only on sweep.
	path := filepath.Join(c.dir, Key(2, "biographical"))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expired entry should survive reads: %v", err)
	}
}

func TestSweepDeletesExpiredOnly(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	c.Put(1, "historical-cultural", Entry{GeneratedContent: "fresh"})

	// Write an already-expired entry by backdating the clock.
	c.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	c.Put(2, "anecdotal", Entry{GeneratedContent: "stale"})
	c.now = time.Now

	if deleted := c.Sweep(); deleted != 1 {
		t.Errorf("Sweep() = %d, want 1", deleted)
	}
	if _, ok := c.Get(1, "historical-cultural"); !ok {
		t.Error("fresh entry must survive sweep")
	}
	if _, ok := c.Get(2, "anecdotal"); ok {
		t.Error("stale entry must be gone after sweep")
	}
}

func TestSweepRemovesCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "spot_9_x.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if deleted := c.Sweep(); deleted != 1 {
		t.Errorf("Sweep() = %d, want 1 corrupt entry removed", deleted)
	}
}

func TestErrorsDegradeToMiss(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing-dir"), time.Hour)
	if _, ok := c.Get(1, "anecdotal"); ok {
		t.Error("missing directory must read as a miss")
	}
	if deleted := c.Sweep(); deleted != 0 {
		t.Errorf("Sweep() on missing dir = %d, want 0", deleted)
	}
}

func TestClearDeletesEverything(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	c.Put(1, "anecdotal", Entry{GeneratedContent: "one"})
	c.Put(2, "science", Entry{GeneratedContent: "two"})

	if got := c.Clear(); got != 2 {
		t.Errorf("Clear() = %d, want 2", got)
	}
	if _, ok := c.Get(1, "anecdotal"); ok {
		t.Error("entry must be gone after clear")
	}
	if got := c.Clear(); got != 0 {
		t.Errorf("second Clear() = %d, want 0", got)
	}
}
