package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Cache    CacheConfig    `yaml:"cache"`
	Audio    AudioConfig    `yaml:"audio"`
	Log      LogConfig      `yaml:"log"`
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Narrator NarratorConfig `yaml:"narrator"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DataConfig holds static dataset paths.
type DataConfig struct {
	SpotsFile string `yaml:"spots_file"`
}

// CacheConfig holds content-cache settings.
type CacheConfig struct {
	Dir         string `yaml:"dir"`
	ExpireHours int    `yaml:"expire_hours"`
}

// AudioConfig holds audio artifact storage settings.
type AudioConfig struct {
	Dir       string `yaml:"dir"`
	URLPrefix string `yaml:"url_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LLMConfig holds settings for the narration provider chain.
type LLMConfig struct {
	// Fallback lists provider names in priority order.
	Fallback []string       `yaml:"fallback"`
	Timeout  Duration       `yaml:"timeout"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Qianwen  QianwenConfig  `yaml:"qianwen"`
	Gemini   GeminiConfig   `yaml:"gemini"`
}

// OpenAIConfig holds settings for any OpenAI-compatible API.
type OpenAIConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// QianwenConfig holds settings for the DashScope text-generation API.
type QianwenConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// GeminiConfig holds settings for Google Gemini.
type GeminiConfig struct {
	Key   string `yaml:"key"`
	Model string `yaml:"model"`
}

// TTSConfig holds settings for the speech-synthesis provider chain.
type TTSConfig struct {
	Fallback []string          `yaml:"fallback"`
	Timeout  Duration          `yaml:"timeout"`
	Azure    AzureSpeechConfig `yaml:"azure"`
	Baidu    BaiduTTSConfig    `yaml:"baidu"`
}

// AzureSpeechConfig holds settings for Azure Speech TTS.
type AzureSpeechConfig struct {
	Key    string `yaml:"key"`
	Region string `yaml:"region"`
}

// BaiduTTSConfig holds settings for Baidu TTS.
type BaiduTTSConfig struct {
	Key       string `yaml:"key"`
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
	TokenURL  string `yaml:"token_url"`
}

// NarratorConfig holds narration defaults.
type NarratorConfig struct {
	DefaultStyle  string   `yaml:"default_style"`
	BatchThrottle Duration `yaml:"batch_throttle"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":5001",
		},
		Data: DataConfig{
			SpotsFile: "data/spots.json",
		},
		Cache: CacheConfig{
			Dir:         "data/cache",
			ExpireHours: 24,
		},
		Audio: AudioConfig{
			Dir:       "static/audio",
			URLPrefix: "/static/audio",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		LLM: LLMConfig{
			Fallback: []string{"openai", "qianwen", "gemini"},
			Timeout:  Duration(30 * time.Second),
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			Qianwen: QianwenConfig{
				BaseURL: "https://dashscope.aliyuncs.com/api/v1",
				Model:   "qwen-turbo",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash-lite",
			},
		},
		TTS: TTSConfig{
			Fallback: []string{"azure", "baidu", "edge"},
			Timeout:  Duration(30 * time.Second),
			Baidu: BaiduTTSConfig{
				BaseURL:  "https://tsn.baidu.com/text2audio",
				TokenURL: "https://aip.baidubce.com/oauth/2.0/token",
			},
		},
		Narrator: NarratorConfig{
			DefaultStyle:  "historical-cultural",
			BatchThrottle: Duration(500 * time.Millisecond),
		},
	}
}

// Load loads the configuration from the given path. If the file does not
// exist, it is created with defaults. Secrets missing from the file fall back
// to environment variables but are never written back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills empty secrets from the environment.
func (c *Config) applyEnv() {
	fill := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	fill(&c.LLM.OpenAI.Key, "OPENAI_API_KEY")
	fill(&c.LLM.Qianwen.Key, "DASHSCOPE_API_KEY", "QIANWEN_API_KEY")
	fill(&c.LLM.Gemini.Key, "GEMINI_API_KEY")
	fill(&c.TTS.Azure.Key, "AZURE_SPEECH_KEY")
	fill(&c.TTS.Azure.Region, "AZURE_SPEECH_REGION")
	fill(&c.TTS.Baidu.Key, "BAIDU_TTS_API_KEY")
	fill(&c.TTS.Baidu.SecretKey, "BAIDU_TTS_SECRET_KEY")
}

// CacheExpiry returns the cache time-to-live as a duration.
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.Cache.ExpireHours) * time.Hour
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# AI Audio Guide Configuration
# ----------------------------
# Secrets (API keys) may be left empty here and provided via environment
# variables instead: OPENAI_API_KEY, DASHSCOPE_API_KEY, GEMINI_API_KEY,
# AZURE_SPEECH_KEY, AZURE_SPEECH_REGION, BAIDU_TTS_API_KEY, BAIDU_TTS_SECRET_KEY.
# Duration units: ns, us, ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
