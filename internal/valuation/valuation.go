// Package valuation computes the current market value of a ledger's
// positions from live quotes. A failing quote marks that position as
// unpriced; it never aborts the rest of the report.
package valuation

import (
	"github.com/shopspring/decimal"

	"tradesense/internal/ledger"
	"tradesense/internal/types"
)

// QuoteFunc resolves a ticker to a live quote. ok is false when no quote
// could be obtained.
type QuoteFunc func(ticker string) (float64, bool)

// Holdings is the slice of ledger state valuation needs.
type Holdings interface {
	Positions() []ledger.Position
	Cash() decimal.Decimal
}

// PositionValue is one position's row in the report. Price and MarketValue
// are unavailable when the quote lookup failed.
type PositionValue struct {
	Ticker      string
	Quantity    int
	Price       types.OptFloat
	MarketValue types.OptFloat
}

// Report summarizes the holdings. TotalValue sums only positions whose
// quote succeeded; CashBalance is always reported exactly as stored.
type Report struct {
	Positions   []PositionValue
	TotalValue  float64
	CashBalance float64
}

// Valuate prices every held position through lookup. Positions appear in
// the ledger's sorted order so reports are reproducible.
func Valuate(h Holdings, lookup QuoteFunc) Report {
	positions := h.Positions()
	report := Report{
		Positions:   make([]PositionValue, 0, len(positions)),
		CashBalance: h.Cash().InexactFloat64(),
	}

	total := decimal.Zero
	for _, p := range positions {
		row := PositionValue{Ticker: p.Ticker, Quantity: p.Quantity}
		if price, ok := lookup(p.Ticker); ok {
			value := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(p.Quantity)))
			row.Price = types.Float(price)
			row.MarketValue = types.Float(value.InexactFloat64())
			total = total.Add(value)
		}
		report.Positions = append(report.Positions, row)
	}
	report.TotalValue = total.InexactFloat64()
	return report
}
