// Package indicator derives trend and momentum indicators from a price
// series. Every call recomputes from the series it is given; nothing is
// cached between calls.
package indicator

import (
	"tradesense/internal/ta"
	"tradesense/internal/types"
)

const (
	shortWindow = 50
	longWindow  = 200
	rsiPeriod   = 14
)

// Compute derives SMA50, SMA200 and RSI14 from the series. An indicator
// whose window exceeds the available history is left unavailable; missing
// data is never reported as zero.
func Compute(series types.PriceSeries) types.IndicatorSnapshot {
	closes := series.Closes()

	var snap types.IndicatorSnapshot
	if v, ok := ta.SMA(closes, shortWindow); ok {
		snap.SMA50 = types.Float(v)
	}
	if v, ok := ta.SMA(closes, longWindow); ok {
		snap.SMA200 = types.Float(v)
	}
	if v, ok := ta.RSI(closes, rsiPeriod); ok {
		snap.RSI14 = types.Float(v)
	}
	return snap
}
