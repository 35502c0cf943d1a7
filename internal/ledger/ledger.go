// Package ledger implements the session-scoped mock trading ledger: a cash
// balance, share positions and an append-only transaction log. One Ledger is
// created per session, threaded explicitly through every operation, and
// discarded when the session ends. Nothing is persisted or restored.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialCash is the session bootstrap balance when the caller does
// not configure one.
const DefaultInitialCash = 10000

type TxnType string

const (
	TxnBuy  TxnType = "BUY"
	TxnSell TxnType = "SELL"
)

// Transaction is one executed buy or sell. The log is append-only: entries
// are never rewritten.
type Transaction struct {
	Type      TxnType   `json:"type"`
	Ticker    string    `json:"ticker"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Position is a held quantity for one ticker. Quantity is always positive;
// a position that reaches zero is removed from the ledger.
type Position struct {
	Ticker   string
	Quantity int
}

// SellResult reports what a sell actually executed. When the requested
// quantity exceeds the held quantity the sale is clamped rather than
// rejected; Clamped is set so callers can surface it to the user.
type SellResult struct {
	Ticker    string
	Requested int
	Executed  int
	Clamped   bool
	Proceeds  decimal.Decimal
}

// Ledger tracks cash and positions for one session. Cash arithmetic uses
// decimals so repeated buys and sells cannot drift. Not safe for concurrent
// use; a session is single-writer by construction.
type Ledger struct {
	cash      decimal.Decimal
	positions map[string]int
	log       []Transaction
	now       func() time.Time
}

// New creates a ledger with the given starting cash balance. A non-positive
// balance falls back to DefaultInitialCash.
func New(initialCash float64) *Ledger {
	if initialCash <= 0 {
		initialCash = DefaultInitialCash
	}
	return &Ledger{
		cash:      decimal.NewFromFloat(initialCash),
		positions: make(map[string]int),
		now:       time.Now,
	}
}

// Buy purchases quantity shares at the quoted price. Validation happens
// before any mutation: either cash, the position and the log all update
// together, or the ledger is untouched and a typed error is returned.
func (l *Ledger) Buy(ticker string, quantity int, quote float64) error {
	if ticker == "" || quote <= 0 {
		return ErrInvalidQuote
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	cost := decimal.NewFromFloat(quote).Mul(decimal.NewFromInt(int64(quantity)))
	if cost.GreaterThan(l.cash) {
		return ErrInsufficientFunds
	}

	l.cash = l.cash.Sub(cost)
	l.positions[ticker] += quantity
	l.log = append(l.log, Transaction{
		Type:      TxnBuy,
		Ticker:    ticker,
		Quantity:  quantity,
		Price:     quote,
		Timestamp: l.now(),
	})
	return nil
}

// Sell sells up to quantity shares at the quoted price. Selling more than
// is held clamps to the held quantity (see SellResult.Clamped). The logged
// transaction records the effective quantity, and a position sold down to
// zero is removed.
func (l *Ledger) Sell(ticker string, quantity int, quote float64) (SellResult, error) {
	if ticker == "" || quote <= 0 {
		return SellResult{}, ErrInvalidQuote
	}
	if quantity <= 0 {
		return SellResult{}, ErrInvalidQuantity
	}
	held, ok := l.positions[ticker]
	if !ok {
		return SellResult{}, ErrUnknownPosition
	}

	executed := quantity
	clamped := false
	if executed > held {
		executed = held
		clamped = true
	}
	proceeds := decimal.NewFromFloat(quote).Mul(decimal.NewFromInt(int64(executed)))

	l.cash = l.cash.Add(proceeds)
	if held == executed {
		delete(l.positions, ticker)
	} else {
		l.positions[ticker] = held - executed
	}
	l.log = append(l.log, Transaction{
		Type:      TxnSell,
		Ticker:    ticker,
		Quantity:  executed,
		Price:     quote,
		Timestamp: l.now(),
	})

	return SellResult{
		Ticker:    ticker,
		Requested: quantity,
		Executed:  executed,
		Clamped:   clamped,
		Proceeds:  proceeds,
	}, nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal { return l.cash }

// Position returns the held quantity for a ticker.
func (l *Ledger) Position(ticker string) (int, bool) {
	q, ok := l.positions[ticker]
	return q, ok
}

// Positions returns the held positions sorted by ticker so callers render
// and log them in a stable order.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for ticker, qty := range l.positions {
		out = append(out, Position{Ticker: ticker, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Transactions returns a copy of the transaction log in append order.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}
