// Package engine wires the analysis pipeline and the mock trading session:
// fetch history and fundamentals, compute indicators, produce a
// recommendation, and execute ledger trades at live quotes.
package engine

import (
	"context"
	"errors"

	oteltrace "go.opentelemetry.io/otel/trace"

	"tradesense/internal/indicator"
	"tradesense/internal/interfaces"
	"tradesense/internal/journal"
	"tradesense/internal/ledger"
	"tradesense/internal/logger"
	"tradesense/internal/quote"
	"tradesense/internal/recommend"
	"tradesense/internal/recorder"
	"tradesense/internal/store"
	"tradesense/internal/trace"
	"tradesense/internal/types"
	"tradesense/internal/valuation"
)

var (
	// ErrNoHistory means the provider returned no usable bars for the
	// ticker.
	ErrNoHistory = errors.New("engine: no historical data for ticker")

	// ErrQuoteUnavailable means no live quote could be obtained, so a
	// trade cannot be priced.
	ErrQuoteUnavailable = errors.New("engine: live quote unavailable")
)

type Engine struct {
	cfg          *store.Config
	history      interfaces.HistorySource
	fundamentals interfaces.FundamentalsSource
	quotes       *quote.CachedSource
	benchmarks   recommend.BenchmarkTable
	rec          recorder.Recorder
}

// New creates an engine. Sector benchmark overrides from the config are
// applied on top of the defaults.
func New(cfg *store.Config, history interfaces.HistorySource, fundamentals interfaces.FundamentalsSource, quotes *quote.CachedSource, rec recorder.Recorder) *Engine {
	benchmarks := recommend.DefaultBenchmarks()
	for sector, pe := range cfg.SectorPEOverrides {
		benchmarks[sector] = pe
	}
	if rec == nil {
		rec = recorder.Noop{}
	}
	return &Engine{
		cfg:          cfg,
		history:      history,
		fundamentals: fundamentals,
		quotes:       quotes,
		benchmarks:   benchmarks,
		rec:          rec,
	}
}

// Analyze runs the full recommendation pipeline for one ticker. A
// fundamentals failure degrades to an empty snapshot, so the
// recommendation reports valuation as unavailable instead of failing.
func (e *Engine) Analyze(ctx context.Context, ticker string) (*types.Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "analyze-ticker", oteltrace.WithAttributes(trace.Ticker(ticker)))
	defer span.End()

	series, err := e.history.FetchHistory(ctx, ticker, e.cfg.HistoryPeriod)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch history", err, "ticker", ticker)
		return nil, err
	}
	if len(series.Bars) == 0 {
		logger.Warn(ctx, "No historical data", "ticker", ticker)
		return nil, ErrNoHistory
	}

	latest := series.Bars[len(series.Bars)-1]
	price := latest.Close

	inds := indicator.Compute(series)
	logger.Debug(ctx, "Indicators computed",
		"ticker", ticker,
		"bars", len(series.Bars),
		"sma50", inds.SMA50.Or(-1),
		"sma200", inds.SMA200.Or(-1),
		"rsi14", inds.RSI14.Or(-1),
	)

	fund, err := e.fundamentals.FetchFundamentals(ctx, ticker)
	if err != nil {
		// Fundamentals are optional inputs; absence shifts the valuation
		// signal to neutral rather than failing the analysis.
		logger.Warn(ctx, "Fundamentals unavailable", "ticker", ticker, "error", err)
		fund = types.FundamentalSnapshot{Ticker: ticker}
	}

	rec := recommend.Recommend(price, inds, fund, e.benchmarks)

	logger.Decision(ctx, ticker, string(rec.Verdict), rec.Reasons, "price", price)
	_ = journal.AppendDecision(journal.DecisionEntry{
		Ticker:  ticker,
		Verdict: string(rec.Verdict),
		Reasons: rec.Reasons,
		Price:   price,
		Indicators: map[string]float64{
			"SMA50":  inds.SMA50.Or(-1),
			"SMA200": inds.SMA200.Or(-1),
			"RSI14":  inds.RSI14.Or(-1),
		},
	})

	analysis := &types.Analysis{
		Ticker:         ticker,
		Price:          price,
		Time:           latest.Date.Unix(),
		Indicators:     inds,
		Fundamentals:   fund,
		Recommendation: rec,
	}
	if err := e.rec.RecordAnalysis(ctx, analysis); err != nil {
		logger.Warn(ctx, "Failed to record analysis", "ticker", ticker, "error", err)
	}
	return analysis, nil
}

// ExecuteBuy buys at the current live quote. Ledger rejections pass
// through unchanged so callers can show the typed error.
func (e *Engine) ExecuteBuy(ctx context.Context, l *ledger.Ledger, ticker string, qty int) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "execute-buy", oteltrace.WithAttributes(trace.Ticker(ticker)))
	defer span.End()

	price, ok := e.quotes.Quote(ctx, ticker)
	if !ok {
		return 0, ErrQuoteUnavailable
	}
	if err := l.Buy(ticker, qty, price); err != nil {
		logger.Warn(ctx, "Buy rejected", "ticker", ticker, "qty", qty, "price", price, "error", err)
		return 0, err
	}

	logger.Trade(ctx, ticker, string(ledger.TxnBuy), qty, price)
	_ = journal.Append(journal.Entry{Ticker: ticker, Side: string(ledger.TxnBuy), Qty: qty, Price: price})
	e.recordLastTransaction(ctx, l)
	return price, nil
}

// ExecuteSell sells at the current live quote, clamping to the held
// quantity per the ledger contract.
func (e *Engine) ExecuteSell(ctx context.Context, l *ledger.Ledger, ticker string, qty int) (ledger.SellResult, error) {
	ctx, span := trace.StartSpan(ctx, "execute-sell", oteltrace.WithAttributes(trace.Ticker(ticker)))
	defer span.End()

	price, ok := e.quotes.Quote(ctx, ticker)
	if !ok {
		return ledger.SellResult{}, ErrQuoteUnavailable
	}
	res, err := l.Sell(ticker, qty, price)
	if err != nil {
		logger.Warn(ctx, "Sell rejected", "ticker", ticker, "qty", qty, "price", price, "error", err)
		return ledger.SellResult{}, err
	}
	if res.Clamped {
		logger.Warn(ctx, "Sell clamped to held quantity", "ticker", ticker, "requested", res.Requested, "executed", res.Executed)
	}

	logger.Trade(ctx, ticker, string(ledger.TxnSell), res.Executed, price)
	_ = journal.Append(journal.Entry{Ticker: ticker, Side: string(ledger.TxnSell), Qty: res.Executed, Price: price, Clamped: res.Clamped})
	e.recordLastTransaction(ctx, l)
	return res, nil
}

// Act applies the demo trading policy to one analysis: buy qty shares on
// an ExploreFurther verdict, exit the whole position on BeCautious, do
// nothing on Observe. Returns whether a trade executed. An insufficient
// cash balance skips the buy without error; the session simply holds.
func (e *Engine) Act(ctx context.Context, l *ledger.Ledger, a *types.Analysis, qty int) (bool, error) {
	switch a.Recommendation.Verdict {
	case types.ExploreFurther:
		if qty <= 0 {
			return false, nil
		}
		if _, err := e.ExecuteBuy(ctx, l, a.Ticker, qty); err != nil {
			if errors.Is(err, ledger.ErrInsufficientFunds) {
				logger.Info(ctx, "Buy skipped, insufficient cash", "ticker", a.Ticker, "qty", qty)
				return false, nil
			}
			return false, err
		}
		return true, nil
	case types.BeCautious:
		held, ok := l.Position(a.Ticker)
		if !ok {
			return false, nil
		}
		if _, err := e.ExecuteSell(ctx, l, a.Ticker, held); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// Valuation prices the session's holdings with cached live quotes.
func (e *Engine) Valuation(ctx context.Context, l *ledger.Ledger) valuation.Report {
	ctx, span := trace.StartSpan(ctx, "valuate-holdings")
	defer span.End()

	report := valuation.Valuate(l, e.quotes.LookupFunc(ctx))
	logger.Info(ctx, "Valuation computed",
		"positions", len(report.Positions),
		"total_value", report.TotalValue,
		"cash", report.CashBalance,
	)
	return report
}

func (e *Engine) recordLastTransaction(ctx context.Context, l *ledger.Ledger) {
	txns := l.Transactions()
	if len(txns) == 0 {
		return
	}
	if err := e.rec.RecordTransaction(ctx, txns[len(txns)-1]); err != nil {
		logger.Warn(ctx, "Failed to record transaction", "error", err)
	}
}
