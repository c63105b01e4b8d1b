// Package baidu implements tts.Provider for the Baidu short-text synthesis
// API (text2audio).
package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

// personMap selects the Baidu speaker (per parameter) for each voice style.
var personMap = map[string]string{
	"standard":     "0",
	"gentle":       "1",
	"energetic":    "3",
	"warm":         "4",
	"professional": "106",
}

// Provider implements tts.Provider for Baidu TTS.
type Provider struct {
	key       string
	secretKey string
	baseURL   string
	tokenURL  string
	client    *http.Client
	tracker   *tracker.Tracker

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewProvider creates a new Baidu TTS provider.
func NewProvider(cfg config.BaiduTTSConfig, t *tracker.Tracker) *Provider {
	return &Provider{
		key:       cfg.Key,
		secretKey: cfg.SecretKey,
		baseURL:   cfg.BaseURL,
		tokenURL:  cfg.TokenURL,
		client:    &http.Client{},
		tracker:   t,
	}
}

// Name implements tts.Provider.
func (p *Provider) Name() string { return "baidu" }

// Configured implements tts.Provider.
func (p *Provider) Configured() bool { return p.key != "" && p.secretKey != "" }

// Synthesize generates speech from text using the Baidu text2audio endpoint.
func (p *Provider) Synthesize(ctx context.Context, text, voiceStyle, outputPath string) error {
	if !p.Configured() {
		return fmt.Errorf("baidu tts is not configured")
	}

	token, err := p.getAccessToken(ctx)
	if err != nil {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return err
	}

	per, ok := personMap[voiceStyle]
	if !ok {
		per = personMap["standard"]
	}

	form := url.Values{
		"tex":  {text},
		"tok":  {token},
		"cuid": {"ai_audio_guide"},
		"ctp":  {"1"},
		"lan":  {"zh"},
		"spd":  {"5"},
		"pit":  {"5"},
		"vol":  {"9"},
		"per":  {per},
		"aue":  {"3"}, // mp3
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log("BAIDU", text, 0, err)
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tts.Log("BAIDU", text, resp.StatusCode, nil)
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return tts.NewFatalError(resp.StatusCode, fmt.Sprintf("baidu tts request failed (status %d)", resp.StatusCode))
	}

	// A JSON body instead of audio means an API-level error.
	if !strings.Contains(resp.Header.Get("Content-Type"), "audio") {
		body, _ := io.ReadAll(resp.Body)
		tts.Log("BAIDU", text, resp.StatusCode, fmt.Errorf("non-audio response"))
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return tts.NewFatalError(resp.StatusCode, fmt.Sprintf("baidu tts error response: %s", string(body)))
	}

	tts.Log("BAIDU", text, resp.StatusCode, nil)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return fmt.Errorf("failed to write audio to file: %w", err)
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess(p.Name())
	}
	return nil
}

// getAccessToken fetches (and caches) an OAuth access token.
func (p *Provider) getAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.key},
		"client_secret": {p.secretKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL+"?"+form.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token: %s", string(body))
	}

	p.accessToken = out.AccessToken
	// Refresh a minute early so in-flight requests never use a stale token.
	p.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}
