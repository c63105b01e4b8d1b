// Package azure implements tts.Provider for the Azure Speech REST API.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
)

// voiceProfile maps a voice style to an Azure neural voice plus prosody.
type voiceProfile struct {
	voice string
	style string
	rate  string
	pitch string
}

var profiles = map[string]voiceProfile{
	"standard":     {voice: "zh-CN-XiaoxiaoNeural", style: "general", rate: "0%", pitch: "0%"},
	"gentle":       {voice: "zh-CN-XiaoyiNeural", style: "gentle", rate: "-10%", pitch: "-5%"},
	"energetic":    {voice: "zh-CN-YunjianNeural", style: "cheerful", rate: "+10%", pitch: "+5%"},
	"warm":         {voice: "zh-CN-XiaochenNeural", style: "friendly", rate: "0%", pitch: "0%"},
	"professional": {voice: "zh-CN-XiaoxuanNeural", style: "newscast", rate: "0%", pitch: "0%"},
}

// Provider implements tts.Provider for Azure Speech.
type Provider struct {
	key     string
	region  string
	client  *http.Client
	url     string
	tracker *tracker.Tracker
}

// NewProvider creates a new Azure Speech TTS provider.
func NewProvider(cfg config.AzureSpeechConfig, t *tracker.Tracker) *Provider {
	return &Provider{
		key:     cfg.Key,
		region:  cfg.Region,
		client:  &http.Client{},
		url:     fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region),
		tracker: t,
	}
}

// Name implements tts.Provider.
func (p *Provider) Name() string { return "azure" }

// Configured implements tts.Provider.
func (p *Provider) Configured() bool { return p.key != "" && p.region != "" }

// Synthesize generates speech from text using Azure Speech.
func (p *Provider) Synthesize(ctx context.Context, text, voiceStyle, outputPath string) error {
	if !p.Configured() {
		return fmt.Errorf("azure speech is not configured")
	}

	ssml := buildSSML(text, voiceStyle)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBufferString(ssml))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-160kbitrate-mono-mp3")
	req.Header.Set("User-Agent", "ai-audio-guide")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log("AZURE", ssml, 0, err)
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tts.Log("AZURE", ssml, resp.StatusCode, nil)
		body, readErr := io.ReadAll(resp.Body)
		bodyStr := string(body)
		if readErr != nil {
			bodyStr = fmt.Sprintf("[failed to read body: %v]", readErr)
		}
		if bodyStr == "" {
			bodyStr = "[empty body]"
		}
		if p.tracker != nil {
			p.tracker.TrackAPIFailure(p.Name())
		}
		return tts.NewFatalError(resp.StatusCode, fmt.Sprintf("azure speech api error (status %d): %s", resp.StatusCode, bodyStr))
	}

	tts.Log("AZURE", ssml, resp.StatusCode, nil)

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

func buildSSML(text, voiceStyle string) string {
	profile, ok := profiles[voiceStyle]
	if !ok {
		profile = profiles["standard"]
	}

	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xmlns:mstts='https://www.w3.org/2001/mstts' xml:lang='zh-CN'><voice name='%s'><mstts:express-as style='%s'><prosody rate='%s' pitch='%s'>%s</prosody></mstts:express-as></voice></speak>`,
		profile.voice, profile.style, profile.rate, profile.pitch, escapeXML(text),
	)
}

func escapeXML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(text)
}
