package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/binxuan98/ai-audio-guide/internal/api"
	"github.com/binxuan98/ai-audio-guide/pkg/cache"
	"github.com/binxuan98/ai-audio-guide/pkg/config"
	"github.com/binxuan98/ai-audio-guide/pkg/llm"
	"github.com/binxuan98/ai-audio-guide/pkg/llm/gemini"
	"github.com/binxuan98/ai-audio-guide/pkg/llm/openai"
	"github.com/binxuan98/ai-audio-guide/pkg/llm/qianwen"
	"github.com/binxuan98/ai-audio-guide/pkg/logging"
	"github.com/binxuan98/ai-audio-guide/pkg/narrator"
	"github.com/binxuan98/ai-audio-guide/pkg/spot"
	"github.com/binxuan98/ai-audio-guide/pkg/tracker"
	"github.com/binxuan98/ai-audio-guide/pkg/tts"
	"github.com/binxuan98/ai-audio-guide/pkg/tts/azure"
	"github.com/binxuan98/ai-audio-guide/pkg/tts/baidu"
	"github.com/binxuan98/ai-audio-guide/pkg/tts/edgetts"
)

var (
	configPath = flag.String("config", "configs/aiguide.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Secrets come from .env or the process environment, never the YAML.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	tts.SetLogPath(filepath.Join(filepath.Dir(cfg.Log.Server.Path), "tts.log"))

	slog.Info("AI audio guide started", "addr", cfg.Server.Address)

	tr := tracker.New()
	store := spot.NewStore(cfg.Data.SpotsFile)

	contentCache := cache.New(cfg.Cache.Dir, cfg.CacheExpiry())
	if deleted := contentCache.Sweep(); deleted > 0 {
		slog.Info("Startup cache sweep", "deleted", deleted)
	}

	generator := narrator.NewGenerator(
		buildLLMChain(cfg, tr),
		time.Duration(cfg.LLM.Timeout),
		filepath.Join(filepath.Dir(cfg.Log.Server.Path), "llm.log"),
		tr,
		slog.Default(),
	)

	synth := tts.NewSynthesizer(
		cfg.Audio.Dir,
		cfg.Audio.URLPrefix,
		buildTTSChain(cfg, tr),
		time.Duration(cfg.TTS.Timeout),
		slog.Default(),
	)

	guideH := api.NewGuideHandler(store, contentCache, generator, synth, tr, cfg.Narrator.DefaultStyle)
	adminH := api.NewAdminHandler(store, contentCache, generator, synth, tr, time.Duration(cfg.Narrator.BatchThrottle))

	srv := api.NewServer(cfg.Server.Address, guideH, adminH, cfg.Audio.Dir)
	srv.Handler = loggingMiddleware(srv.Handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	return runServerLifecycle(ctx, srv, quit)
}

// buildLLMChain assembles the narration provider chain in configured order.
// Unknown names are logged and skipped.
func buildLLMChain(cfg *config.Config, tr *tracker.Tracker) []llm.Provider {
	var chain []llm.Provider
	for _, name := range cfg.LLM.Fallback {
		switch name {
		case "openai":
			chain = append(chain, openai.NewClient(cfg.LLM.OpenAI, tr))
		case "qianwen":
			chain = append(chain, qianwen.NewClient(cfg.LLM.Qianwen, tr))
		case "gemini":
			client, err := gemini.NewClient(cfg.LLM.Gemini, tr)
			if err != nil {
				slog.Warn("Failed to initialize Gemini client", "error", err)
				continue
			}
			chain = append(chain, client)
		default:
			slog.Warn("Unknown LLM provider in fallback list", "name", name)
		}
	}
	return chain
}

// buildTTSChain assembles the speech provider chain in configured order.
func buildTTSChain(cfg *config.Config, tr *tracker.Tracker) []tts.Provider {
	var chain []tts.Provider
	for _, name := range cfg.TTS.Fallback {
		switch name {
		case "azure":
			chain = append(chain, azure.NewProvider(cfg.TTS.Azure, tr))
		case "baidu":
			chain = append(chain, baidu.NewProvider(cfg.TTS.Baidu, tr))
		case "edge":
			chain = append(chain, edgetts.NewProvider(tr))
		default:
			slog.Warn("Unknown TTS provider in fallback list", "name", name)
		}
	}
	return chain
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
