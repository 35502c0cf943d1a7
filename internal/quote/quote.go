// Package quote wraps a QuoteSource with the session resource policy:
// bounded retries with backoff for transient failures, a TTL cache, and a
// last-known-good fallback so valuation stays usable when quoting degrades.
package quote

import (
	"context"
	"errors"
	"sync"
	"time"

	"tradesense/internal/interfaces"
	"tradesense/internal/logger"
	"tradesense/internal/marketdata"
	"tradesense/internal/valuation"
)

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

// CachedSource decorates a QuoteSource with per-ticker caching. Failures
// surface as "unavailable", never as errors into the core.
type CachedSource struct {
	src     interfaces.QuoteSource
	ttl     time.Duration
	retries int
	backoff time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// Options tunes the cache and retry policy.
type Options struct {
	TTL     time.Duration
	Retries int
	Backoff time.Duration
}

// NewCached wraps src. Zero option fields get conservative defaults.
func NewCached(src interfaces.QuoteSource, opts Options) *CachedSource {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	return &CachedSource{
		src:     src,
		ttl:     opts.TTL,
		retries: opts.Retries,
		backoff: opts.Backoff,
		entries: make(map[string]cacheEntry),
	}
}

// Quote returns a quote for the ticker, preferring a fresh cache entry.
// On fetch failure a stale entry is returned as last-known-good; ok is
// false only when no quote was ever obtained this session.
func (c *CachedSource) Quote(ctx context.Context, ticker string) (float64, bool) {
	c.mu.RLock()
	entry, cached := c.entries[ticker]
	c.mu.RUnlock()

	if cached && time.Since(entry.fetchedAt) < c.ttl {
		return entry.price, true
	}

	price, err := c.fetchWithRetry(ctx, ticker)
	if err == nil {
		c.mu.Lock()
		c.entries[ticker] = cacheEntry{price: price, fetchedAt: time.Now()}
		c.mu.Unlock()
		return price, true
	}

	if cached {
		logger.Warn(ctx, "Quote fetch failed, serving last known good", "ticker", ticker, "age", time.Since(entry.fetchedAt), "error", err)
		return entry.price, true
	}
	logger.Warn(ctx, "Quote unavailable", "ticker", ticker, "error", err)
	return 0, false
}

// fetchWithRetry retries transient failures only. "Not found" is final and
// returned immediately.
func (c *CachedSource) fetchWithRetry(ctx context.Context, ticker string) (float64, error) {
	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		price, err := c.src.Quote(ctx, ticker)
		if err == nil {
			return price, nil
		}
		if errors.Is(err, marketdata.ErrNotFound) {
			return 0, err
		}
		lastErr = err
	}
	return 0, lastErr
}

// LookupFunc adapts the cached source to the valuation contract.
func (c *CachedSource) LookupFunc(ctx context.Context) valuation.QuoteFunc {
	return func(ticker string) (float64, bool) {
		return c.Quote(ctx, ticker)
	}
}
