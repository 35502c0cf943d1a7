// Package recorder persists recommendation snapshots and executed
// transactions for later inspection. Recording is write-only history: the
// ledger never reloads state from it, so a restart still begins a fresh
// session.
package recorder

import (
	"context"

	"tradesense/internal/ledger"
	"tradesense/internal/types"
)

// Recorder persists analysis and trading history.
type Recorder interface {
	RecordAnalysis(ctx context.Context, a *types.Analysis) error
	RecordTransaction(ctx context.Context, txn ledger.Transaction) error
	Close() error
}
