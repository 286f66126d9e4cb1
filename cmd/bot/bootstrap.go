package main

import (
	"context"
	"fmt"

	"astro-forecast-bot/internal/astro"
	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/forecastlog"
	"astro-forecast-bot/internal/interfaces"
	"astro-forecast-bot/internal/llm/llmobs"
	"astro-forecast-bot/internal/llm/noop"
	"astro-forecast-bot/internal/llm/openai"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/news"
	"astro-forecast-bot/internal/pipeline"
	"astro-forecast-bot/internal/retrieval"

	"github.com/joho/godotenv"
)

// initializeSystem loads environment variables and the structured logger.
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old forecast log files if retention is configured
func compressOldLogs(ctx context.Context, cfg *config.Config) {
	if cfg.Log.RetentionDays <= 0 {
		return
	}
	if err := forecastlog.CompressOlder(cfg.Log.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

// initializeCompleter initializes and returns the narrative generator with
// observability
func initializeCompleter(ctx context.Context, cfg *config.Config) interfaces.Completer {
	var completer interfaces.Completer

	switch cfg.LLM.Provider {
	case "OPENAI":
		completer = openai.NewCompleter(cfg)
	default:
		completer = noop.NewCompleter()
		logger.Warn(ctx, "No LLM provider configured - using canned narrative")
	}

	// Wrap with observability middleware
	return llmobs.Wrap(completer)
}

// initializePipeline wires the stage components into the forecast pipeline.
func initializePipeline(ctx context.Context, cfg *config.Config) *pipeline.Pipeline {
	calculator := astro.NewCalculator(astro.NewClient(cfg))

	var scraper *news.Scraper
	if cfg.News.ScraperFallback {
		scraper = news.NewScraper(cfg.News.ScraperTimeout)
	}
	newsService := news.NewService(cfg, news.NewClient(cfg), scraper)

	retriever := retrieval.NewRetriever(retrieval.NewClient(cfg))

	return pipeline.New(cfg, calculator, newsService, retriever, initializeCompleter(ctx, cfg))
}
