// Package recommend turns indicator and fundamental snapshots into a
// categorical verdict with ordered, human-readable reasons.
package recommend

import (
	"fmt"

	"tradesense/internal/types"
)

// signal is the tagged state of one input to the verdict table.
type signal int

const (
	neutral signal = iota
	favorable
	unfavorable
)

// Recommend evaluates the fixed rule set and returns a verdict with reasons
// in a fixed order: momentum, long-term trend, valuation, oscillator. It is
// a pure function; identical inputs always produce an identical result.
//
// Only momentum and valuation feed the verdict; trend and oscillator are
// advisory reasons. Two agreeing primary signals are required for a
// directional verdict, everything else defaults to Observe.
func Recommend(price float64, ind types.IndicatorSnapshot, fund types.FundamentalSnapshot, benchmarks BenchmarkTable) types.Recommendation {
	reasons := make([]string, 0, 4)

	momentum, momentumReason := momentumSignal(price, ind.SMA50)
	reasons = append(reasons, momentumReason)

	// Long-term trend is advisory and omitted entirely without enough history.
	if ind.SMA200.Valid {
		if price > ind.SMA200.Value {
			reasons = append(reasons, "The price is above its 200-day moving average (long-term strength).")
		} else {
			reasons = append(reasons, "The price is below its 200-day moving average (long-term caution).")
		}
	}

	valuation, valuationReason := valuationSignal(fund, benchmarks)
	reasons = append(reasons, valuationReason)

	reasons = append(reasons, oscillatorReason(ind.RSI14))

	return types.Recommendation{
		Verdict: verdictFor(momentum, valuation),
		Reasons: reasons,
	}
}

func momentumSignal(price float64, sma50 types.OptFloat) (signal, string) {
	if !sma50.Valid {
		return neutral, "The 50-day moving average is unavailable (insufficient history), so momentum cannot be assessed (caution)."
	}
	if price > sma50.Value {
		return favorable, "The price is above its 50-day moving average (positive momentum)."
	}
	return unfavorable, "The price is below its 50-day moving average (caution)."
}

func valuationSignal(fund types.FundamentalSnapshot, benchmarks BenchmarkTable) (signal, string) {
	if !fund.PERatio.Valid {
		return neutral, "P/E ratio not available."
	}
	sectorPE := benchmarks.SectorPE(fund.Sector)
	if fund.PERatio.Value < sectorPE {
		return favorable, fmt.Sprintf("The P/E ratio (%.1f) is below the sector average (%.0f).", fund.PERatio.Value, sectorPE)
	}
	return unfavorable, fmt.Sprintf("The P/E ratio (%.1f) is above the sector average (%.0f).", fund.PERatio.Value, sectorPE)
}

func oscillatorReason(rsi types.OptFloat) string {
	switch {
	case !rsi.Valid:
		return "RSI(14) has no signal (insufficient history)."
	case rsi.Value >= 70:
		return fmt.Sprintf("RSI(14) is %.0f (overbought).", rsi.Value)
	case rsi.Value <= 30:
		return fmt.Sprintf("RSI(14) is %.0f (oversold).", rsi.Value)
	default:
		return fmt.Sprintf("RSI(14) is %.0f (neutral).", rsi.Value)
	}
}

// verdictFor is the exhaustive four-case decision table over the two
// primary signals.
func verdictFor(momentum, valuation signal) types.Verdict {
	switch {
	case momentum == favorable && valuation == favorable:
		return types.ExploreFurther
	case momentum == unfavorable && valuation == unfavorable:
		return types.BeCautious
	default:
		return types.Observe
	}
}
