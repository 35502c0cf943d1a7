package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradesense/internal/logger"
	"tradesense/internal/types"
)

// Keyword lists for headline tagging. Matching is case-insensitive on word
// fragments, so "outperforms" hits "outperform".
var (
	positiveKeywords = []string{
		"beat", "beats", "surge", "soar", "rally", "record", "growth",
		"upgrade", "outperform", "strong", "gain", "jump", "profit",
		"bullish", "buyback", "dividend", "expand", "breakthrough",
	}
	negativeKeywords = []string{
		"miss", "misses", "plunge", "slump", "fall", "drop", "cut",
		"downgrade", "underperform", "weak", "loss", "lawsuit", "probe",
		"bearish", "recall", "layoff", "warning", "fraud", "decline",
	}
)

// Analyzer tags headlines with keyword sentiment.
type Analyzer struct{}

// NewAnalyzer creates a keyword sentiment analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// TagHeadline scores a single headline: positive keyword hits minus
// negative keyword hits.
func (a *Analyzer) TagHeadline(headline types.NewsHeadline) types.HeadlineSentiment {
	lower := strings.ToLower(headline.Title)

	score := 0
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			score--
		}
	}

	sentiment := "NEUTRAL"
	if score > 0 {
		sentiment = "POSITIVE"
	} else if score < 0 {
		sentiment = "NEGATIVE"
	}

	return types.HeadlineSentiment{
		Title:     headline.Title,
		URL:       headline.URL,
		Sentiment: sentiment,
		Score:     score,
	}
}

// Analyze tags every headline and aggregates an overall sentiment for the
// ticker. A clear majority (more than double the opposing count) is needed
// for a directional overall tag.
func (a *Analyzer) Analyze(ctx context.Context, ticker string, headlines []types.NewsHeadline) types.NewsSentiment {
	if len(headlines) == 0 {
		return types.NewsSentiment{
			Ticker:           ticker,
			OverallSentiment: "NEUTRAL",
			Summary:          "No headlines found for analysis",
			Timestamp:        time.Now().Unix(),
		}
	}

	tagged := make([]types.HeadlineSentiment, 0, len(headlines))
	counts := map[string]int{"POSITIVE": 0, "NEGATIVE": 0, "NEUTRAL": 0}
	for _, h := range headlines {
		t := a.TagHeadline(h)
		tagged = append(tagged, t)
		counts[t.Sentiment]++
	}

	overall := "NEUTRAL"
	switch {
	case counts["POSITIVE"] > counts["NEGATIVE"]*2:
		overall = "POSITIVE"
	case counts["NEGATIVE"] > counts["POSITIVE"]*2:
		overall = "NEGATIVE"
	case counts["POSITIVE"] > 0 && counts["NEGATIVE"] > 0:
		overall = "MIXED"
	}

	summary := fmt.Sprintf("Tagged %d headlines: %d positive, %d negative, %d neutral.",
		len(tagged), counts["POSITIVE"], counts["NEGATIVE"], counts["NEUTRAL"])

	logger.Info(ctx, "Headline sentiment aggregated", "ticker", ticker, "overall", overall, "headlines", len(tagged))

	return types.NewsSentiment{
		Ticker:           ticker,
		OverallSentiment: overall,
		HeadlineCount:    len(tagged),
		Headlines:        tagged,
		Summary:          summary,
		Timestamp:        time.Now().Unix(),
	}
}
