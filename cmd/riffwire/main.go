package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alvarmz/riffwire/internal/ai"
	"github.com/alvarmz/riffwire/internal/config"
	"github.com/alvarmz/riffwire/internal/history"
	"github.com/alvarmz/riffwire/internal/pipeline"
	"github.com/alvarmz/riffwire/internal/publisher"
	"github.com/alvarmz/riffwire/internal/reader"
	"github.com/alvarmz/riffwire/internal/similarity"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	weekdayFlag := flag.String("weekday", "", "Override the rotation weekday (e.g. Monday)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("riffwire %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// A .env file is optional; deployments usually set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting riffwire", "version", version, "band", cfg.Band.Name)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	day := time.Now().Weekday()
	if *weekdayFlag != "" {
		parsed, err := parseWeekday(*weekdayFlag)
		if err != nil {
			slog.Error("Invalid weekday flag", "error", err)
			os.Exit(1)
		}
		day = parsed
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Error("Failed to open history database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	provider, err := ai.NewProvider(providerConfig(cfg))
	if err != nil {
		slog.Error("Failed to initialize AI provider", "error", err)
		os.Exit(1)
	}
	slog.Info("AI provider ready", "provider", provider.Name())

	processor := ai.NewProcessor(provider, ai.Band{
		Name:          cfg.Band.Name,
		Members:       cfg.Band.Members,
		FormerMembers: cfg.Band.FormerMembers,
		SideProjects:  cfg.Band.SideProjects,
	})

	pipe := pipeline.New(pipeline.Deps{
		Reader:     reader.New(),
		Processor:  processor,
		Publisher:  publisher.NewClient(cfg.Publish.Endpoint, cfg.Publish.APIKey, cfg.Publish.DefaultImage),
		History:    store,
		Similarity: similarity.New(cfg.Similarity.Threshold, cfg.Similarity.NGramSize),
	})

	startedAt := time.Now()
	stats := pipe.Run(context.Background(), day)

	if err := store.RecordRun(stats, startedAt); err != nil {
		slog.Warn("Failed to record run summary", "error", err)
	}
}

func providerConfig(cfg config.Config) ai.ProviderConfig {
	var pc config.ProviderConfig
	switch cfg.AI.Provider {
	case "gemini":
		pc = cfg.AI.Gemini
	case "cohere":
		pc = cfg.AI.Cohere
	default:
		pc = cfg.AI.OpenAI
	}
	return ai.ProviderConfig{
		Kind:     cfg.AI.Provider,
		APIKey:   pc.APIKey,
		Model:    pc.Model,
		Endpoint: pc.Endpoint,
	}
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
