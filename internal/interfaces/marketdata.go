package interfaces

import (
	"context"

	"tradesense/internal/types"
)

// HistorySource supplies historical bars for a ticker over a lookback
// period such as "6mo".
type HistorySource interface {
	FetchHistory(ctx context.Context, ticker, period string) (types.PriceSeries, error)
}

// FundamentalsSource supplies per-ticker fundamentals. Fields of the
// snapshot are individually optional on partial provider data.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (types.FundamentalSnapshot, error)
}

// QuoteSource supplies a live quote for a ticker.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (float64, error)
}
