package indicator

import (
	"testing"
	"time"

	"tradesense/internal/types"
)

func series(closes ...float64) types.PriceSeries {
	bars := make([]types.PriceBar, len(closes))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = types.PriceBar{Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return types.PriceSeries{Ticker: "TEST", Bars: bars}
}

func flatCloses(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func TestComputeEmptySeries(t *testing.T) {
	snap := Compute(types.PriceSeries{Ticker: "TEST"})
	if snap.SMA50.Valid || snap.SMA200.Valid || snap.RSI14.Valid {
		t.Fatalf("expected all indicators unavailable for empty series, got %+v", snap)
	}
}

func TestComputeShortHistory(t *testing.T) {
	snap := Compute(series(flatCloses(49, 100)...))
	if snap.SMA50.Valid {
		t.Error("SMA50 should be unavailable with 49 bars")
	}
	if snap.SMA200.Valid {
		t.Error("SMA200 should be unavailable with 49 bars")
	}
	if !snap.RSI14.Valid {
		t.Error("RSI14 should be available with 49 bars")
	}
}

func TestComputeFiftyBars(t *testing.T) {
	snap := Compute(series(flatCloses(50, 120)...))
	if !snap.SMA50.Valid {
		t.Fatal("SMA50 should be available with exactly 50 bars")
	}
	if snap.SMA50.Value != 120 {
		t.Errorf("expected SMA50 120, got %.4f", snap.SMA50.Value)
	}
	if snap.SMA200.Valid {
		t.Error("SMA200 should be unavailable with 50 bars")
	}
}

func TestComputeFullHistory(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	snap := Compute(series(closes...))
	if !snap.SMA50.Valid || !snap.SMA200.Valid || !snap.RSI14.Valid {
		t.Fatalf("expected all indicators available, got %+v", snap)
	}
	if snap.SMA50.Value <= snap.SMA200.Value {
		t.Errorf("rising series should have SMA50 (%.2f) above SMA200 (%.2f)", snap.SMA50.Value, snap.SMA200.Value)
	}
	if snap.RSI14.Value != 100 {
		t.Errorf("expected RSI 100 for strictly rising closes, got %.2f", snap.RSI14.Value)
	}
}
