package types

import "time"

// OptFloat is an explicitly optional numeric value. The zero value means
// "unavailable": a signal that could not be computed is never reported as 0.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float wraps a present value.
func Float(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// Or returns the value, or def when unavailable.
func (o OptFloat) Or(def float64) float64 {
	if o.Valid {
		return o.Value
	}
	return def
}

// PriceBar is a single historical bar. Immutable once produced.
type PriceBar struct {
	Date                   time.Time
	Open, High, Low, Close float64
	Volume                 float64
}

// PriceSeries holds the historical bars for one ticker, ascending by date.
// It may be empty and is owned transiently by the caller per request.
type PriceSeries struct {
	Ticker string
	Bars   []PriceBar
}

// Closes extracts the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// IndicatorSnapshot holds the indicators derived from a PriceSeries. A field
// is unavailable when the series has fewer bars than the indicator's window.
type IndicatorSnapshot struct {
	SMA50  OptFloat
	SMA200 OptFloat
	RSI14  OptFloat
}

// FundamentalSnapshot carries per-ticker fundamental data. Fields are
// individually optional on partial data from the provider.
type FundamentalSnapshot struct {
	Ticker    string
	Name      string
	Sector    string
	PERatio   OptFloat
	MarketCap OptFloat
}

type Verdict string

const (
	ExploreFurther Verdict = "EXPLORE_FURTHER"
	Observe        Verdict = "OBSERVE"
	BeCautious     Verdict = "BE_CAUTIOUS"
)

// Recommendation is the categorical output of the rule engine. Reasons are
// ordered deterministically: identical inputs yield identical output.
type Recommendation struct {
	Verdict Verdict  `json:"verdict"`
	Reasons []string `json:"reasons"`
}

// Analysis is the full result of analyzing one ticker.
type Analysis struct {
	Ticker         string              `json:"ticker"`
	Price          float64             `json:"price"`
	Time           int64               `json:"time"`
	Indicators     IndicatorSnapshot   `json:"-"`
	Fundamentals   FundamentalSnapshot `json:"-"`
	Recommendation Recommendation      `json:"recommendation"`
}

// NewsHeadline is a scraped headline for a ticker.
type NewsHeadline struct {
	Title       string
	URL         string
	Source      string
	PublishedAt string
}

// HeadlineSentiment is the keyword tag for a single headline.
type HeadlineSentiment struct {
	Title     string
	URL       string
	Sentiment string // "POSITIVE", "NEGATIVE", or "NEUTRAL"
	Score     int    // positive keyword hits minus negative keyword hits
}

// NewsSentiment aggregates headline sentiment for one ticker.
type NewsSentiment struct {
	Ticker           string
	OverallSentiment string
	HeadlineCount    int
	Headlines        []HeadlineSentiment
	Summary          string
	Timestamp        int64
}
