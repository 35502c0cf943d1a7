package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Universe is the set of tickers the CLI analyzes each cycle.
	Universe []string `yaml:"universe"`

	// HistoryPeriod is the lookback range fetched per analysis, e.g. "6mo".
	HistoryPeriod string `yaml:"history_period"`

	PollSeconds int `yaml:"poll_seconds"`

	Session struct {
		InitialCash float64 `yaml:"initial_cash"`
	} `yaml:"session"`

	// Trading drives the demo session: buy on ExploreFurther, exit on
	// BeCautious. Disabled sessions only analyze and value.
	Trading struct {
		Enabled  bool `yaml:"enabled"`
		Quantity int  `yaml:"quantity"`
	} `yaml:"trading"`

	Quote struct {
		TimeoutSeconds  int `yaml:"timeout_seconds"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
		RetryMax        int `yaml:"retry_max"`
		RetryBackoffMS  int `yaml:"retry_backoff_ms"`
	} `yaml:"quote"`

	// SectorPEOverrides replaces individual sector benchmark entries.
	SectorPEOverrides map[string]float64 `yaml:"sector_pe_overrides"`

	News struct {
		Enabled         bool `yaml:"enabled"`
		MaxHeadlines    int  `yaml:"max_headlines"`
		CacheTTLMinutes int  `yaml:"cache_ttl_minutes"`
	} `yaml:"news"`

	Recorder struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"recorder"`

	Valuation struct {
		// Cron is a six-field cron spec for periodic valuation refreshes.
		Cron string `yaml:"cron"`
	} `yaml:"valuation"`
}

func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe cannot be empty")
	}
	if c.Session.InitialCash < 0 {
		return fmt.Errorf("session.initial_cash must not be negative, got %.2f", c.Session.InitialCash)
	}
	if c.Quote.RetryMax < 0 {
		return fmt.Errorf("quote.retry_max must not be negative, got %d", c.Quote.RetryMax)
	}
	if c.Trading.Enabled && c.Trading.Quantity < 0 {
		return fmt.Errorf("trading.quantity must not be negative, got %d", c.Trading.Quantity)
	}
	if c.Recorder.Enabled && c.Recorder.Path == "" {
		return fmt.Errorf("recorder.path is required when the recorder is enabled")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.HistoryPeriod == "" {
		c.HistoryPeriod = "6mo"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 300
	}
	if c.Session.InitialCash == 0 {
		c.Session.InitialCash = 10000
	}
	if c.Trading.Quantity == 0 {
		c.Trading.Quantity = 1
	}
	if c.Quote.TimeoutSeconds == 0 {
		c.Quote.TimeoutSeconds = 10
	}
	if c.Quote.CacheTTLSeconds == 0 {
		c.Quote.CacheTTLSeconds = 300
	}
	if c.Quote.RetryBackoffMS == 0 {
		c.Quote.RetryBackoffMS = 500
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 15
	}
	if c.News.CacheTTLMinutes == 0 {
		c.News.CacheTTLMinutes = 60
	}
	if c.Valuation.Cron == "" {
		c.Valuation.Cron = "0 */15 * * * *"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
