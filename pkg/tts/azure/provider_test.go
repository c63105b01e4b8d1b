package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

func TestBuildSSML(t *testing.T) {
	ssml := buildSSML("hello <world>", "gentle")
	if !strings.Contains(ssml, "zh-CN-XiaoyiNeural") {
		t.Errorf("ssml missing gentle voice: %s", ssml)
	}
	if !strings.Contains(ssml, "rate='-10%'") {
		t.Errorf("ssml missing gentle prosody: %s", ssml)
	}
	if strings.Contains(ssml, "<world>") {
		t.Error("text must be XML-escaped")
	}

	ssml = buildSSML("text", "no-such-style")
	if !strings.Contains(ssml, "zh-CN-XiaoxiaoNeural") {
		t.Errorf("unknown style must fall back to standard voice: %s", ssml)
	}
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "key" {
			t.Errorf("subscription key header = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/ssml+xml" {
			t.Errorf("content type = %q", got)
		}
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	p := NewProvider(config.AzureSpeechConfig{Key: "key", Region: "eastasia"}, tracker.New())
	p.url = srv.URL

	out := filepath.Join(t.TempDir(), "audio_test.mp3")
	if err := p.Synthesize(context.Background(), "some narration", "standard", out); err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil || fi.Size() != 2048 {
		t.Errorf("output file stat = %v, %v", fi, err)
	}
}

func TestSynthesizeFatalOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProvider(config.AzureSpeechConfig{Key: "key", Region: "eastasia"}, tracker.New())
	p.url = srv.URL

	err := p.Synthesize(context.Background(), "text", "standard", filepath.Join(t.TempDir(), "a.mp3"))
	if !tts.IsFatalError(err) {
		t.Fatalf("error = %v, want FatalError", err)
	}
}

func TestUnconfigured(t *testing.T) {
	p := NewProvider(config.AzureSpeechConfig{}, nil)
	if p.Configured() {
		t.Error("provider without key must report unconfigured")
	}
}
