// Package news scrapes financial headlines for a ticker and tags them with
// keyword sentiment. It is advisory display data: failures degrade to a
// neutral result and never fail the caller.
package news

import (
	"context"
	"sync"
	"time"

	"tradesense/internal/logger"
	"tradesense/internal/types"
)

// Service provides headline sentiment with caching.
type Service struct {
	scraper  *Scraper
	analyzer *Analyzer
	cache    *sentimentCache
	cfg      *ServiceConfig
}

// ServiceConfig configures the news sentiment service.
type ServiceConfig struct {
	MaxHeadlines   int
	CacheDuration  time.Duration
	ScraperTimeout time.Duration
	Enabled        bool
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   15,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

// sentimentCache stores sentiment results temporarily.
type sentimentCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	sentiment types.NewsSentiment
	timestamp time.Time
}

func newSentimentCache(ttl time.Duration) *sentimentCache {
	return &sentimentCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *sentimentCache) get(ticker string) (types.NewsSentiment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[ticker]
	if !exists {
		return types.NewsSentiment{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return types.NewsSentiment{}, false
	}
	return entry.sentiment, true
}

func (c *sentimentCache) set(ticker string, sentiment types.NewsSentiment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[ticker] = &cacheEntry{
		sentiment: sentiment,
		timestamp: time.Now(),
	}
}

// cleanup removes expired entries.
func (c *sentimentCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for ticker, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, ticker)
		}
	}
}

// NewService creates a news sentiment service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper:  NewScraper(cfg.ScraperTimeout),
		analyzer: NewAnalyzer(),
		cache:    newSentimentCache(cfg.CacheDuration),
		cfg:      cfg,
	}
}

// GetSentiment retrieves headline sentiment for a ticker, cached or fresh.
// On any failure a neutral result is returned instead of an error.
func (s *Service) GetSentiment(ctx context.Context, ticker string) types.NewsSentiment {
	if !s.cfg.Enabled {
		return types.NewsSentiment{
			Ticker:           ticker,
			OverallSentiment: "NEUTRAL",
			Summary:          "Sentiment analysis disabled",
			Timestamp:        time.Now().Unix(),
		}
	}

	if cached, ok := s.cache.get(ticker); ok {
		logger.Debug(ctx, "Using cached sentiment", "ticker", ticker)
		return cached
	}

	headlines, err := s.scraper.ScrapeHeadlines(ctx, ticker, s.cfg.MaxHeadlines)
	if err != nil || len(headlines) == 0 {
		logger.Info(ctx, "No headlines from primary sources, trying Google News", "ticker", ticker)
		headlines, err = s.scraper.ScrapeGoogleNews(ctx, ticker, s.cfg.MaxHeadlines)
		if err != nil {
			logger.ErrorWithErr(ctx, "Google News fallback failed", err, "ticker", ticker)
		}
	}

	sentiment := s.analyzer.Analyze(ctx, ticker, headlines)
	s.cache.set(ticker, sentiment)
	return sentiment
}

// ClearCache removes all cached sentiment data.
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedTickers returns the tickers with cached sentiment.
func (s *Service) CachedTickers() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	tickers := make([]string, 0, len(s.cache.data))
	for ticker := range s.cache.data {
		tickers = append(tickers, ticker)
	}
	return tickers
}
