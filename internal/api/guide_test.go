package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/binxuan98/ai-audio-guide/pkg/cache"
	"github.com/binxuan98/ai-audio-guide/pkg/llm"
	"github.com/binxuan98/ai-audio-guide/pkg/narrator"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

type mockLLM struct {
	name    string
	content string
	err     error
	calls   int
}

func (m *mockLLM) Name() string     { return m.name }
func (m *mockLLM) Configured() bool { return true }

func (m *mockLLM) GenerateText(context.Context, string, string) (string, error) {
	m.calls++
	return m.content, m.err
}

type mockTTS struct {
	name  string
	err   error
	calls int
}

func (m *mockTTS) Name() string     { return m.name }
func (m *mockTTS) Configured() bool { return true }

func (m *mockTTS) Synthesize(_ context.Context, _, _, outputPath string) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputPath, bytes.Repeat([]byte{0xff}, tts.MinAudioSize+1), 0o644)
}

type fixture struct {
	srv      *httptest.Server
	cache    *cache.Cache
	cacheDir string
	llm      *mockLLM
	tts      *mockTTS
	tracker  *tracker.Tracker
}

func writeSpots(t *testing.T, spots []spot.Spot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spots.json")
	data, err := json.Marshal(spots)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var fixtureSpots = []spot.Spot{
	{ID: 1, Name: "A", Latitude: 39.90, Longitude: 116.40, Description: "d1"},
	{ID: 2, Name: "B", Latitude: 40.50, Longitude: 117.00, Description: "d2"},
}

func newFixture(t *testing.T, spots []spot.Spot, providers ...llm.Provider) *fixture {
	t.Helper()

	f := &fixture{tracker: tracker.New()}
	f.cacheDir = t.TempDir()
	f.cache = cache.New(f.cacheDir, time.Hour)
	f.llm = &mockLLM{name: "mock", content: "generated narration"}
	f.tts = &mockTTS{name: "mock-tts"}

	if providers == nil {
		providers = []llm.Provider{f.llm}
	}

	store := spot.NewStore(writeSpots(t, spots))
	gen := narrator.NewGenerator(providers, time.Second, "", f.tracker, nil)
	synth := tts.NewSynthesizer(t.TempDir(), "/static/audio", []tts.Provider{f.tts}, time.Second, nil)

	guide := NewGuideHandler(store, f.cache, gen, synth, f.tracker, "")
	admin := NewAdminHandler(store, f.cache, gen, synth, f.tracker, 0)

	httpSrv := NewServer(":0", guide, admin, t.TempDir())
	f.srv = httptest.NewServer(httpSrv.Handler)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) post(t *testing.T, path, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(f.srv.URL+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func dataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", env.Data)
	}
	return m
}

func TestPing(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	resp, err := http.Get(f.srv.URL + "/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "pong" {
		t.Errorf(`message = %q, want "pong"`, body["message"])
	}
}

func TestGuideNearestSpot(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	resp, env := f.post(t, "/guide", `{"latitude":39.90,"longitude":116.40}`)

	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, success = %v", resp.StatusCode, env.Success)
	}
	data := dataMap(t, env)
	if data["name"] != "A" {
		t.Errorf("name = %v, want A", data["name"])
	}
	if data["distance"] != 0.0 {
		t.Errorf("distance = %v, want 0", data["distance"])
	}
	if data["generated_content"] != "generated narration" {
		t.Errorf("generated_content = %v", data["generated_content"])
	}
	if data["provider"] != "mock" {
		t.Errorf("provider = %v", data["provider"])
	}
	if data["cached"] != false {
		t.Errorf("cached = %v, want false", data["cached"])
	}
}

func TestGuideCoordinateStringCoercion(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	resp, env := f.post(t, "/guide", `{"latitude":"39.90","longitude":"116.40"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, message = %q", resp.StatusCode, env.Message)
	}
	if dataMap(t, env)["name"] != "A" {
		t.Error("numeric strings must resolve like numbers")
	}
}

func TestGuideValidation(t *testing.T) {
	f := newFixture(t, fixtureSpots)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing longitude", `{"latitude":39.9}`},
		{"non-numeric latitude", `{"latitude":"north","longitude":116.4}`},
		{"latitude out of range", `{"latitude":91,"longitude":0}`},
		{"longitude out of range", `{"latitude":0,"longitude":180.0001}`},
		{"null coordinates", `{"latitude":null,"longitude":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := f.post(t, "/guide", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if env.Success {
				t.Error("success must be false")
			}
		})
	}
}

func TestGuideBoundaryCoordinatesAccepted(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	resp, _ := f.post(t, "/guide", `{"latitude":90,"longitude":-180}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for boundary coordinates", resp.StatusCode)
	}
}

func TestGuideEmptyStore(t *testing.T) {
	f := newFixture(t, nil)
	resp, env := f.post(t, "/guide", `{"latitude":39.9,"longitude":116.4}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if env.Success {
		t.Error("success must be false")
	}
}

func TestGuideCacheHitSkipsProviders(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	body := `{"latitude":39.90,"longitude":116.40,"enable_llm":false,"use_cache":true}`

	_, env := f.post(t, "/guide", body)
	if dataMap(t, env)["cached"] != false {
		t.Fatal("first call must be a miss")
	}

	_, env = f.post(t, "/guide", body)
	data := dataMap(t, env)
	if data["cached"] != true {
		t.Fatal("second call must hit the cache")
	}
	if data["generated_content"] != "d1" {
		t.Errorf("cached content = %v, want base description", data["generated_content"])
	}
	if f.llm.calls != 0 {
		t.Errorf("llm calls = %d, want 0 with enable_llm=false", f.llm.calls)
	}
	if f.tts.calls != 0 {
		t.Errorf("tts calls = %d, want 0", f.tts.calls)
	}
}

func TestGuideCacheDisabled(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	body := `{"latitude":39.90,"longitude":116.40,"use_cache":false}`

	f.post(t, "/guide", body)
	f.post(t, "/guide", body)

	if f.llm.calls != 2 {
		t.Errorf("llm calls = %d, want 2 with use_cache=false", f.llm.calls)
	}
	if _, ok := f.cache.Get(1, "historical-cultural"); ok {
		t.Error("nothing must be cached with use_cache=false")
	}
}

func TestGuideFallbackNarration(t *testing.T) {
	failing := &mockLLM{name: "openai", err: fmt.Errorf("provider down")}
	f := newFixture(t, fixtureSpots, failing)

	resp, env := f.post(t, "/guide", `{"latitude":39.90,"longitude":116.40}`)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, success = %v, provider failure must not fail the request", resp.StatusCode, env.Success)
	}
	data := dataMap(t, env)
	if data["provider"] != narrator.FallbackProvider {
		t.Errorf("provider = %v, want %q", data["provider"], narrator.FallbackProvider)
	}

	// Fallback content must not be written to the cache.
	if _, ok := f.cache.Get(1, "historical-cultural"); ok {
		t.Error("fallback narration must not be cached")
	}
}

func TestGuideTTS(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	_, env := f.post(t, "/guide", `{"latitude":39.90,"longitude":116.40,"enable_tts":true,"voice_style":"warm"}`)

	data := dataMap(t, env)
	url, _ := data["audio_url"].(string)
	if url == "" {
		t.Fatal("audio_url missing with enable_tts=true")
	}
	if f.tts.calls != 1 {
		t.Errorf("tts calls = %d, want 1", f.tts.calls)
	}
}

func TestGuideTTSFailureDegrades(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	f.tts.err = fmt.Errorf("synthesis down")

	resp, env := f.post(t, "/guide", `{"latitude":39.90,"longitude":116.40,"enable_tts":true}`)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatal("TTS failure must not fail the request")
	}
	if url, _ := dataMap(t, env)["audio_url"].(string); url != "" {
		t.Errorf("audio_url = %q, want empty on synthesis failure", url)
	}
}

func TestGuideUnknownStyleFallsBackToDefault(t *testing.T) {
	f := newFixture(t, fixtureSpots)
	_, env := f.post(t, "/guide", `{"latitude":39.90,"longitude":116.40,"guide_style":"operatic"}`)
	if got := dataMap(t, env)["guide_style"]; got != "historical-cultural" {
		t.Errorf("guide_style = %v, want default", got)
	}
}

func TestStylesEndpoints(t *testing.T) {
	f := newFixture(t, fixtureSpots)

	resp, env := f.get(t, "/guide/styles")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	styles, _ := dataMap(t, env)["styles"].([]any)
	if len(styles) != 6 {
		t.Errorf("len(styles) = %d, want 6", len(styles))
	}

	resp, env = f.get(t, "/guide/voice-styles")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	voices, _ := dataMap(t, env)["voice_styles"].([]any)
	if len(voices) != 5 {
		t.Errorf("len(voice_styles) = %d, want 5", len(voices))
	}
}
