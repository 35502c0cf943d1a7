package recommend

// BenchmarkTable maps a sector name to its average trailing P/E ratio.
type BenchmarkTable map[string]float64

// DefaultKey is the fallback entry used for unrecognized or missing sectors.
const DefaultKey = "Default"

// DefaultBenchmarks holds static sector averages. Callers may override
// individual entries through configuration.
func DefaultBenchmarks() BenchmarkTable {
	return BenchmarkTable{
		"Technology":             28,
		"Healthcare":             20,
		"Financial Services":     14,
		"Consumer Cyclical":      25,
		"Industrials":            20,
		"Energy":                 12,
		"Consumer Defensive":     19,
		"Communication Services": 18,
		"Utilities":              16,
		"Real Estate":            18,
		"Basic Materials":        15,
		DefaultKey:               20,
	}
}

// SectorPE returns the benchmark for the given sector, falling back to the
// table's default entry when the sector is unknown or empty.
func (t BenchmarkTable) SectorPE(sector string) float64 {
	if v, ok := t[sector]; ok && sector != "" {
		return v
	}
	return t[DefaultKey]
}
