package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradesense/internal/engine"
	"tradesense/internal/ledger"
	"tradesense/internal/logger"
	"tradesense/internal/marketdata"
	"tradesense/internal/news"
	"tradesense/internal/scheduler"
	"tradesense/internal/store"
	"tradesense/internal/trace"
	"tradesense/internal/valuation"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(ctx)

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	yahoo := marketdata.NewYahooClient(time.Duration(cfg.Quote.TimeoutSeconds) * time.Second)
	quotes := initializeQuotes(cfg, yahoo)
	rec := initializeRecorder(ctx, cfg)
	defer rec.Close()
	sentiment := initializeNews(cfg)
	eng := initializeEngine(cfg, yahoo, quotes, rec)

	// One mock trading session per process. Nothing is persisted; a restart
	// starts over with the configured cash.
	session := ledger.New(cfg.Session.InitialCash)
	logger.Info(ctx, "Session opened", "initial_cash", session.Cash().InexactFloat64(), "universe", cfg.Universe)

	// The cron callback only signals; the valuation itself runs on this
	// goroutine so the session has a single writer and reader.
	valuate := make(chan struct{}, 1)
	sched := scheduler.New(ctx)
	must(sched.RegisterValuation(cfg.Valuation.Cron, func(context.Context) {
		select {
		case valuate <- struct{}{}:
		default:
		}
	}))
	sched.Start()
	defer sched.Stop()

	analyzeUniverse(ctx, cfg, eng, session, sentiment)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			analyzeUniverse(ctx, cfg, eng, session, sentiment)
		case <-valuate:
			printReport(eng.Valuation(ctx, session))
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			printReport(eng.Valuation(ctx, session))
			return
		case <-ctx.Done():
			return
		}
	}
}

func analyzeUniverse(ctx context.Context, cfg *store.Config, eng *engine.Engine, session *ledger.Ledger, sentiment *news.Service) {
	for _, ticker := range cfg.Universe {
		a, err := eng.Analyze(ctx, ticker)
		if err != nil {
			logger.Warn(ctx, "Analysis skipped", "ticker", ticker, "error", err)
			continue
		}
		b, _ := json.Marshal(a)
		fmt.Println(string(b))

		if cfg.Trading.Enabled {
			if _, err := eng.Act(ctx, session, a, cfg.Trading.Quantity); err != nil {
				logger.Warn(ctx, "Trade failed", "ticker", ticker, "error", err)
			}
		}

		ns := sentiment.GetSentiment(ctx, ticker)
		if ns.HeadlineCount > 0 {
			logger.Info(ctx, "News sentiment", "ticker", ticker, "sentiment", ns.OverallSentiment, "headlines", ns.HeadlineCount)
		}
	}
}

func printReport(report valuation.Report) {
	b, _ := json.Marshal(report)
	fmt.Println(string(b))
}
