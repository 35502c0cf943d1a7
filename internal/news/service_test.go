package news

import (
	"context"
	"testing"
	"time"

	"tradesense/internal/types"
)

func TestSentimentCache(t *testing.T) {
	cache := newSentimentCache(50 * time.Millisecond)

	ticker := "AAPL"
	sentiment := types.NewsSentiment{
		Ticker:           ticker,
		OverallSentiment: "POSITIVE",
		HeadlineCount:    3,
		Timestamp:        time.Now().Unix(),
	}

	cache.set(ticker, sentiment)

	retrieved, found := cache.get(ticker)
	if !found {
		t.Fatal("expected to find cached sentiment")
	}
	if retrieved.Ticker != ticker {
		t.Errorf("expected ticker %s, got %s", ticker, retrieved.Ticker)
	}
	if retrieved.OverallSentiment != "POSITIVE" {
		t.Errorf("expected POSITIVE, got %s", retrieved.OverallSentiment)
	}

	time.Sleep(100 * time.Millisecond)
	if _, found = cache.get(ticker); found {
		t.Error("expected cache entry to be expired")
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newSentimentCache(10 * time.Millisecond)

	for _, tk := range []string{"AAPL", "MSFT", "TSLA"} {
		cache.set(tk, types.NewsSentiment{Ticker: tk, Timestamp: time.Now().Unix()})
	}

	time.Sleep(30 * time.Millisecond)
	cache.cleanup()

	cache.mu.RLock()
	count := len(cache.data)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("expected 0 cache entries after cleanup, got %d", count)
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(&ServiceConfig{Enabled: false})

	sentiment := svc.GetSentiment(context.Background(), "AAPL")
	if sentiment.OverallSentiment != "NEUTRAL" {
		t.Errorf("expected NEUTRAL sentiment when disabled, got %s", sentiment.OverallSentiment)
	}
	if sentiment.Summary != "Sentiment analysis disabled" {
		t.Errorf("expected disabled message, got %s", sentiment.Summary)
	}
}

func TestCachedTickersAndClear(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	for _, tk := range []string{"AAPL", "MSFT"} {
		svc.cache.set(tk, types.NewsSentiment{Ticker: tk, Timestamp: time.Now().Unix()})
	}
	if got := len(svc.CachedTickers()); got != 2 {
		t.Fatalf("expected 2 cached tickers, got %d", got)
	}

	svc.ClearCache()
	if got := len(svc.CachedTickers()); got != 0 {
		t.Errorf("expected 0 cached tickers after clear, got %d", got)
	}
}
