package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"tradesense/internal/ledger"
	"tradesense/internal/types"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external tools can read while the session writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			ticker    TEXT NOT NULL,
			price     REAL,
			sma50     REAL,
			sma200    REAL,
			rsi14     REAL,
			pe_ratio  REAL,
			sector    TEXT,
			verdict   TEXT,
			reasons   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker ON analyses(ticker)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			type      TEXT NOT NULL,
			ticker    TEXT NOT NULL,
			quantity  INTEGER NOT NULL,
			price     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable converts an optional value to its SQL representation.
func nullable(o types.OptFloat) any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// RecordAnalysis stores one recommendation snapshot. Unavailable indicator
// values are stored as NULL, never as zero.
func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, a *types.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses (timestamp, ticker, price, sma50, sma200, rsi14, pe_ratio, sector, verdict, reasons)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Time,
		a.Ticker,
		a.Price,
		nullable(a.Indicators.SMA50),
		nullable(a.Indicators.SMA200),
		nullable(a.Indicators.RSI14),
		nullable(a.Fundamentals.PERatio),
		a.Fundamentals.Sector,
		string(a.Recommendation.Verdict),
		strings.Join(a.Recommendation.Reasons, " | "),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// RecordTransaction stores one executed ledger transaction.
func (r *SQLiteRecorder) RecordTransaction(ctx context.Context, txn ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (timestamp, type, ticker, quantity, price) VALUES (?, ?, ?, ?, ?)`,
		txn.Timestamp.Unix(),
		string(txn.Type),
		txn.Ticker,
		txn.Quantity,
		txn.Price,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
