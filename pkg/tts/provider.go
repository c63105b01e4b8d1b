// Package tts turns narration text into audio files through a chain of
// speech-synthesis providers.
package tts

import (
	"context"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio file (1KB).
	// Files smaller than this are likely failed synthesis attempts.
	MinAudioSize = 1024
)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Name returns the provider identifier used in responses and stats.
	Name() string

	// Configured reports whether the provider has the credentials it needs.
	// Unconfigured providers are skipped by the synthesizer chain.
	Configured() bool

	// Synthesize generates MP3 audio from text and writes it to outputPath.
	// voiceStyle is one of the keys returned by VoiceStyles.
	Synthesize(ctx context.Context, text, voiceStyle, outputPath string) error
}

// FatalError represents a TTS error that should trigger fallback to another
// provider. Examples: rate limits (429), server errors (5xx), auth failures.
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	return e.Message
}

// NewFatalError creates a new FatalError with the given status code and message.
func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError checks if an error is a TTS fatal error that should trigger fallback.
func IsFatalError(err error) bool {
	_, ok := err.(*FatalError)
	return ok
}

// VoiceStyle describes one of the synthesis profiles providers understand.
type VoiceStyle struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultVoiceStyle is used when a request does not name a voice style.
const DefaultVoiceStyle = "standard"

var voiceStyles = []VoiceStyle{
	{Key: "standard", Name: "Standard", Description: "Neutral narration voice"},
	{Key: "gentle", Name: "Gentle", Description: "Soft, slightly slower delivery"},
	{Key: "energetic", Name: "Energetic", Description: "Upbeat, faster delivery"},
	{Key: "warm", Name: "Warm", Description: "Friendly, welcoming tone"},
	{Key: "professional", Name: "Professional", Description: "Newscast-style delivery"},
}

// VoiceStyles returns the supported voice styles in presentation order.
func VoiceStyles() []VoiceStyle {
	out := make([]VoiceStyle, len(voiceStyles))
	copy(out, voiceStyles)
	return out
}

// KnownVoiceStyle reports whether key names a supported voice style.
func KnownVoiceStyle(key string) bool {
	for _, vs := range voiceStyles {
		if vs.Key == key {
			return true
		}
	}
	return false
}
