package recorder

import (
	"context"

	"tradesense/internal/ledger"
	"tradesense/internal/types"
)

// Noop discards all records. Used when the recorder is disabled.
type Noop struct{}

func (Noop) RecordAnalysis(ctx context.Context, a *types.Analysis) error { return nil }

func (Noop) RecordTransaction(ctx context.Context, txn ledger.Transaction) error { return nil }

func (Noop) Close() error { return nil }
