// Package marketdata implements the price-history, fundamentals and
// live-quote adapters against the Yahoo Finance public API.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"tradesense/internal/api"
	"tradesense/internal/logger"
	"tradesense/internal/types"
)

const (
	chartBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	summaryBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
)

// YahooClient fetches history, fundamentals and quotes from Yahoo Finance.
type YahooClient struct {
	client      *api.Client
	chartBase   string
	summaryBase string
}

// NewYahooClient creates a Yahoo-backed market data client.
func NewYahooClient(timeout time.Duration) *YahooClient {
	return &YahooClient{
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithHeader("User-Agent", "Mozilla/5.0"),
		),
		chartBase:   chartBaseURL,
		summaryBase: summaryBaseURL,
	}
}

// chartResponse is the Yahoo chart API payload. OHLCV arrays carry nulls on
// market holidays, hence interface{} elements.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// mapStatusErr converts provider HTTP failures into the adapter taxonomy.
func mapStatusErr(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 404:
			return ErrNotFound
		case 429:
			return ErrRateLimited
		}
	}
	return err
}

// FetchHistory returns daily bars over the given period ("1mo", "6mo",
// "1y", ...), ascending by date.
func (c *YahooClient) FetchHistory(ctx context.Context, ticker, period string) (types.PriceSeries, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=%s", c.chartBase, url.PathEscape(ticker), url.QueryEscape(period))

	var chart chartResponse
	if err := c.client.GetJSON(ctx, u, &chart); err != nil {
		return types.PriceSeries{}, mapStatusErr(err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return types.PriceSeries{}, ErrNotFound
		}
		return types.PriceSeries{}, fmt.Errorf("chart api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		// A valid ticker with an empty result set still yields an empty
		// series, not an error; indicators report unavailable downstream.
		return types.PriceSeries{Ticker: ticker}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return types.PriceSeries{Ticker: ticker}, nil
	}
	quote := result.Indicators.Quote[0]

	// Malformed payloads can carry OHLCV arrays shorter than the timestamp
	// list; only index what every array covers.
	n := len(result.Timestamp)
	for _, arr := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	bars := make([]types.PriceBar, 0, n)
	for i, ts := range result.Timestamp[:n] {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bar (holiday etc.)
		}
		bars = append(bars, types.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: toFloat(quote.Volume[i]),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	logger.Debug(ctx, "History fetched", "ticker", ticker, "period", period, "bars", len(bars))
	return types.PriceSeries{Ticker: ticker, Bars: bars}, nil
}

// summaryResponse is the quoteSummary payload trimmed to the modules used.
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE struct {
					Raw *float64 `json:"raw"`
				} `json:"trailingPE"`
				MarketCap struct {
					Raw *float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"summaryDetail"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
			Price struct {
				LongName string `json:"longName"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals returns the fundamental snapshot for a ticker. Missing
// provider fields stay unavailable in the snapshot rather than failing the
// call.
func (c *YahooClient) FetchFundamentals(ctx context.Context, ticker string) (types.FundamentalSnapshot, error) {
	u := fmt.Sprintf("%s/%s?modules=summaryDetail,assetProfile,price", c.summaryBase, url.PathEscape(ticker))

	var summary summaryResponse
	if err := c.client.GetJSON(ctx, u, &summary); err != nil {
		return types.FundamentalSnapshot{}, mapStatusErr(err)
	}
	if summary.QuoteSummary.Error != nil {
		if summary.QuoteSummary.Error.Code == "Not Found" {
			return types.FundamentalSnapshot{}, ErrNotFound
		}
		return types.FundamentalSnapshot{}, fmt.Errorf("quoteSummary api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return types.FundamentalSnapshot{}, ErrNotFound
	}

	result := summary.QuoteSummary.Result[0]
	snap := types.FundamentalSnapshot{
		Ticker: ticker,
		Name:   result.Price.LongName,
		Sector: result.AssetProfile.Sector,
	}
	if pe := result.SummaryDetail.TrailingPE.Raw; pe != nil {
		snap.PERatio = types.Float(*pe)
	}
	if mc := result.SummaryDetail.MarketCap.Raw; mc != nil {
		snap.MarketCap = types.Float(*mc)
	}
	return snap, nil
}

// Quote returns the latest close for a ticker.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (float64, error) {
	series, err := c.FetchHistory(ctx, ticker, "1d")
	if err != nil {
		return 0, err
	}
	if len(series.Bars) == 0 {
		return 0, ErrNotFound
	}
	return series.Bars[len(series.Bars)-1].Close, nil
}
