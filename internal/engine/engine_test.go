package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradesense/internal/ledger"
	"tradesense/internal/marketdata"
	"tradesense/internal/quote"
	"tradesense/internal/store"
	"tradesense/internal/types"
)

type fakeHistory struct {
	series types.PriceSeries
	err    error
}

func (f *fakeHistory) FetchHistory(ctx context.Context, ticker, period string) (types.PriceSeries, error) {
	return f.series, f.err
}

type fakeFundamentals struct {
	snap types.FundamentalSnapshot
	err  error
}

func (f *fakeFundamentals) FetchFundamentals(ctx context.Context, ticker string) (types.FundamentalSnapshot, error) {
	return f.snap, f.err
}

type fakeQuoteSource struct {
	price float64
	err   error
	calls int
}

func (f *fakeQuoteSource) Quote(ctx context.Context, ticker string) (float64, error) {
	f.calls++
	return f.price, f.err
}

func risingSeries(n int) types.PriceSeries {
	bars := make([]types.PriceBar, n)
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 100.0 + float64(i)
		bars[i] = types.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Open:  price,
			High:  price + 1,
			Low:   price - 1,
			Close: price,
		}
	}
	return types.PriceSeries{Ticker: "AAPL", Bars: bars}
}

func testConfig() *store.Config {
	cfg := &store.Config{Universe: []string{"AAPL"}, HistoryPeriod: "6mo"}
	return cfg
}

func newTestEngine(h *fakeHistory, f *fakeFundamentals, q *fakeQuoteSource, cfg *store.Config) *Engine {
	if cfg == nil {
		cfg = testConfig()
	}
	quotes := quote.NewCached(q, quote.Options{TTL: time.Minute, Backoff: time.Millisecond})
	return New(cfg, h, f, quotes, nil)
}

func TestAnalyzeFavorableTicker(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	h := &fakeHistory{series: risingSeries(250)}
	f := &fakeFundamentals{snap: types.FundamentalSnapshot{
		Ticker:  "AAPL",
		Sector:  "Technology",
		PERatio: types.Float(20),
	}}
	eng := newTestEngine(h, f, &fakeQuoteSource{price: 349}, nil)

	a, err := eng.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if a.Recommendation.Verdict != types.ExploreFurther {
		t.Errorf("verdict = %s, want %s", a.Recommendation.Verdict, types.ExploreFurther)
	}
	if a.Price != 349 {
		t.Errorf("price = %.2f, want latest close 349", a.Price)
	}
	if !a.Indicators.SMA200.Valid {
		t.Error("SMA200 should be available with 250 bars")
	}
}

func TestAnalyzeFundamentalsFailureDegrades(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	h := &fakeHistory{series: risingSeries(250)}
	f := &fakeFundamentals{err: errors.New("provider down")}
	eng := newTestEngine(h, f, &fakeQuoteSource{price: 349}, nil)

	a, err := eng.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Analyze should not fail on fundamentals error: %v", err)
	}
	// Favorable momentum with unavailable valuation stays at observe.
	if a.Recommendation.Verdict != types.Observe {
		t.Errorf("verdict = %s, want %s", a.Recommendation.Verdict, types.Observe)
	}
	found := false
	for _, r := range a.Recommendation.Reasons {
		if r == "P/E ratio not available." {
			found = true
		}
	}
	if !found {
		t.Errorf("missing valuation-unavailable reason, got %v", a.Recommendation.Reasons)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, &fakeQuoteSource{}, nil)

	if _, err := eng.Analyze(context.Background(), "AAPL"); !errors.Is(err, ErrNoHistory) {
		t.Errorf("err = %v, want ErrNoHistory", err)
	}
}

func TestAnalyzeHistoryErrorPassesThrough(t *testing.T) {
	h := &fakeHistory{err: marketdata.ErrNotFound}
	eng := newTestEngine(h, &fakeFundamentals{}, &fakeQuoteSource{}, nil)

	if _, err := eng.Analyze(context.Background(), "BAD"); !errors.Is(err, marketdata.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAnalyzeSectorOverride(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	cfg := testConfig()
	cfg.SectorPEOverrides = map[string]float64{"Technology": 10}

	h := &fakeHistory{series: risingSeries(250)}
	f := &fakeFundamentals{snap: types.FundamentalSnapshot{
		Ticker:  "AAPL",
		Sector:  "Technology",
		PERatio: types.Float(20),
	}}
	eng := newTestEngine(h, f, &fakeQuoteSource{price: 349}, cfg)

	a, err := eng.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	// P/E 20 against the overridden benchmark 10 flips valuation to
	// unfavorable, so momentum and valuation disagree.
	if a.Recommendation.Verdict != types.Observe {
		t.Errorf("verdict = %s, want %s with overridden benchmark", a.Recommendation.Verdict, types.Observe)
	}
}

func TestExecuteBuyAndSell(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	q := &fakeQuoteSource{price: 50}
	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, q, nil)
	l := ledger.New(10000)

	price, err := eng.ExecuteBuy(context.Background(), l, "AAPL", 10)
	if err != nil {
		t.Fatalf("ExecuteBuy failed: %v", err)
	}
	if price != 50 {
		t.Errorf("buy price = %.2f, want 50", price)
	}
	if got, ok := l.Position("AAPL"); !ok || got != 10 {
		t.Errorf("position = %d (held %v), want 10", got, ok)
	}

	res, err := eng.ExecuteSell(context.Background(), l, "AAPL", 25)
	if err != nil {
		t.Fatalf("ExecuteSell failed: %v", err)
	}
	if !res.Clamped || res.Executed != 10 {
		t.Errorf("sell result = %+v, want clamped execution of 10", res)
	}
	if got := l.Cash().InexactFloat64(); got != 10000 {
		t.Errorf("cash = %.2f, want 10000 after round trip", got)
	}
}

func TestExecuteBuyQuoteUnavailable(t *testing.T) {
	q := &fakeQuoteSource{err: marketdata.ErrNotFound}
	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, q, nil)
	l := ledger.New(10000)

	if _, err := eng.ExecuteBuy(context.Background(), l, "GONE", 1); !errors.Is(err, ErrQuoteUnavailable) {
		t.Errorf("err = %v, want ErrQuoteUnavailable", err)
	}
	if len(l.Transactions()) != 0 {
		t.Error("no transaction should be recorded without a quote")
	}
}

func analysisWithVerdict(ticker string, verdict types.Verdict) *types.Analysis {
	return &types.Analysis{
		Ticker:         ticker,
		Recommendation: types.Recommendation{Verdict: verdict},
	}
}

func TestActBuysOnExploreFurther(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, &fakeQuoteSource{price: 50}, nil)
	l := ledger.New(10000)

	traded, err := eng.Act(context.Background(), l, analysisWithVerdict("AAPL", types.ExploreFurther), 3)
	if err != nil {
		t.Fatalf("Act failed: %v", err)
	}
	if !traded {
		t.Fatal("expected a buy to execute")
	}
	if got, ok := l.Position("AAPL"); !ok || got != 3 {
		t.Errorf("position = %d (held %v), want 3", got, ok)
	}
	if len(l.Transactions()) != 1 {
		t.Errorf("transactions = %d, want 1", len(l.Transactions()))
	}
}

func TestActExitsOnBeCautious(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, &fakeQuoteSource{price: 50}, nil)
	l := ledger.New(10000)
	if err := l.Buy("AAPL", 4, 50); err != nil {
		t.Fatalf("seed buy failed: %v", err)
	}

	traded, err := eng.Act(context.Background(), l, analysisWithVerdict("AAPL", types.BeCautious), 1)
	if err != nil {
		t.Fatalf("Act failed: %v", err)
	}
	if !traded {
		t.Fatal("expected the position to be sold")
	}
	// The whole position exits, not just the configured quantity.
	if _, ok := l.Position("AAPL"); ok {
		t.Error("position should be removed after exit")
	}
}

func TestActNoOpCases(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, &fakeQuoteSource{price: 50}, nil)
	l := ledger.New(10000)

	cases := []struct {
		name string
		a    *types.Analysis
		qty  int
	}{
		{"observe", analysisWithVerdict("AAPL", types.Observe), 1},
		{"cautious without position", analysisWithVerdict("MSFT", types.BeCautious), 1},
		{"zero quantity", analysisWithVerdict("AAPL", types.ExploreFurther), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			traded, err := eng.Act(context.Background(), l, tc.a, tc.qty)
			if err != nil {
				t.Fatalf("Act failed: %v", err)
			}
			if traded {
				t.Error("no trade should execute")
			}
		})
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("transactions = %d, want 0", len(l.Transactions()))
	}
}

func TestActInsufficientCashHolds(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, &fakeQuoteSource{price: 500}, nil)
	l := ledger.New(1000)

	traded, err := eng.Act(context.Background(), l, analysisWithVerdict("AAPL", types.ExploreFurther), 10)
	if err != nil {
		t.Fatalf("insufficient cash must not be an error: %v", err)
	}
	if traded {
		t.Error("no trade should execute without cash")
	}
	if got := l.Cash().InexactFloat64(); got != 1000 {
		t.Errorf("cash = %.2f, want untouched 1000", got)
	}
}

func TestValuationUsesCachedQuotes(t *testing.T) {
	t.Setenv("TRADESENSE_LOG_DIR", t.TempDir())

	q := &fakeQuoteSource{price: 100}
	eng := newTestEngine(&fakeHistory{}, &fakeFundamentals{}, q, nil)
	l := ledger.New(10000)

	if _, err := eng.ExecuteBuy(context.Background(), l, "AAPL", 20); err != nil {
		t.Fatalf("ExecuteBuy failed: %v", err)
	}

	report := eng.Valuation(context.Background(), l)
	if report.TotalValue != 2000 {
		t.Errorf("total value = %.2f, want 2000", report.TotalValue)
	}
	if report.CashBalance != 8000 {
		t.Errorf("cash = %.2f, want 8000", report.CashBalance)
	}
	// The buy already warmed the cache; valuation must not refetch.
	if q.calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (cached)", q.calls)
	}
}
