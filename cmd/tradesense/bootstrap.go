package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"tradesense/internal/engine"
	"tradesense/internal/journal"
	"tradesense/internal/logger"
	"tradesense/internal/marketdata"
	"tradesense/internal/news"
	"tradesense/internal/quote"
	"tradesense/internal/recorder"
	"tradesense/internal/store"
	"tradesense/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration.
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("TRADESENSE_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADESENSE_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := journal.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeQuotes wires the Yahoo quote source behind the cache and retry
// policy from the config.
func initializeQuotes(cfg *store.Config, yahoo *marketdata.YahooClient) *quote.CachedSource {
	return quote.NewCached(yahoo, quote.Options{
		TTL:     time.Duration(cfg.Quote.CacheTTLSeconds) * time.Second,
		Retries: cfg.Quote.RetryMax,
		Backoff: time.Duration(cfg.Quote.RetryBackoffMS) * time.Millisecond,
	})
}

// initializeRecorder returns the SQLite recorder, or a noop when disabled or
// when the database cannot be opened.
func initializeRecorder(ctx context.Context, cfg *store.Config) recorder.Recorder {
	if !cfg.Recorder.Enabled {
		return recorder.Noop{}
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Recorder.Path)
	if err != nil {
		logger.Warn(ctx, "Recorder disabled, failed to open database", "path", cfg.Recorder.Path, "error", err)
		return recorder.Noop{}
	}
	logger.Info(ctx, "Recorder enabled", "path", cfg.Recorder.Path)
	return rec
}

// initializeNews builds the headline sentiment service from the config.
func initializeNews(cfg *store.Config) *news.Service {
	return news.NewService(&news.ServiceConfig{
		MaxHeadlines:   cfg.News.MaxHeadlines,
		CacheDuration:  time.Duration(cfg.News.CacheTTLMinutes) * time.Minute,
		ScraperTimeout: 30 * time.Second,
		Enabled:        cfg.News.Enabled,
	})
}

// initializeEngine builds the analysis engine from its collaborators.
func initializeEngine(cfg *store.Config, yahoo *marketdata.YahooClient, quotes *quote.CachedSource, rec recorder.Recorder) *engine.Engine {
	return engine.New(cfg, yahoo, yahoo, quotes, rec)
}
