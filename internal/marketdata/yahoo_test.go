package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *YahooClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewYahooClient(5 * time.Second)
	c.chartBase = srv.URL + "/v8/finance/chart"
	c.summaryBase = srv.URL + "/v10/finance/quoteSummary"
	return c
}

func TestFetchHistoryTruncatedQuoteArrays(t *testing.T) {
	// Three timestamps but only two OHLCV entries; the extra timestamp must
	// be dropped, not panic on the index.
	payload := `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400,1700172800],
		"indicators":{"quote":[{
			"open":[10,11],"high":[12,13],"low":[9,10],
			"close":[11,12],"volume":[1000,1100]
		}]}
	}],"error":null}}`
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	series, err := c.FetchHistory(context.Background(), "AAPL", "1mo")
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if len(series.Bars) != 2 {
		t.Fatalf("bars = %d, want 2 (covered by every array)", len(series.Bars))
	}
	if series.Bars[1].Close != 12 {
		t.Errorf("last close = %.2f, want 12", series.Bars[1].Close)
	}
}

func TestFetchHistorySkipsNullBars(t *testing.T) {
	payload := `{"chart":{"result":[{
		"timestamp":[1700000000,1700086400],
		"indicators":{"quote":[{
			"open":[10,null],"high":[12,null],"low":[9,null],
			"close":[11,null],"volume":[1000,null]
		}]}
	}],"error":null}}`
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	series, err := c.FetchHistory(context.Background(), "AAPL", "1mo")
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if len(series.Bars) != 1 {
		t.Errorf("bars = %d, want 1 after skipping the null bar", len(series.Bars))
	}
}

func TestFetchHistoryNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := c.FetchHistory(context.Background(), "NOPE", "1mo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchHistoryEmptyResult(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	series, err := c.FetchHistory(context.Background(), "AAPL", "1mo")
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(series.Bars) != 0 {
		t.Errorf("bars = %d, want 0", len(series.Bars))
	}
}
