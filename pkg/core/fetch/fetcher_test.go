package fetch

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const statsFixture = `
<html><body>
<table><tbody>
<tr><td>Market Cap</td><td>2,850.12B</td></tr>
<tr><td>Shares Outstanding</td><td>15.50B</td></tr>
<tr><td>Beta (5Y)</td><td>1.25</td></tr>
<tr><td>PE Ratio</td><td>29.5</td></tr>
</tbody></table>
<table><tbody>
<tr><td>Revenue</td><td>383.28B</td></tr>
<tr><td>Net Income</td><td>97.00B</td></tr>
<tr><td>Operating Cash Flow</td><td>110.50B</td></tr>
<tr><td>Capital Expenditures</td><td>-10.96B</td></tr>
<tr><td>Total Debt</td><td>111.09B</td></tr>
<tr><td>Total Cash</td><td>61.55B</td></tr>
<tr><td>Dividend Yield</td><td>0.55%</td></tr>
<tr><td>Payout Ratio</td><td>n/a</td></tr>
</tbody></table>
</body></html>`

// Truncated on purpose: the brace for "chart" never closes, the way the
// endpoint fails under rate limiting. json-repair has to save it.
const quoteFixtureTruncated = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD","regularMarketPrice":185.5,"previousClose":184.2}}],"error":null`

func newTestFetcher(t *testing.T, quoteBody, statsBody string) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/statistics") {
			w.Write([]byte(statsBody))
			return
		}
		w.Write([]byte(quoteBody))
	}))
	t.Cleanup(srv.Close)

	return &Fetcher{
		httpClient:   srv.Client(),
		quoteURL:     srv.URL + "/quote",
		statsURL:     srv.URL + "/stocks",
		requestDelay: 0,
	}
}

func TestFetchSnapshot(t *testing.T) {
	f := newTestFetcher(t, quoteFixtureTruncated, statsFixture)

	s, err := f.FetchSnapshot(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if s.Ticker != "AAPL" {
		t.Errorf("Expected AAPL, got %s", s.Ticker)
	}
	if math.Abs(s.Price-185.5) > 1e-9 {
		t.Errorf("Expected price 185.5, got %f", s.Price)
	}
	if math.Abs(s.MarketCap-2850.12e9) > 1e6 {
		t.Errorf("Expected market cap 2850.12e9, got %f", s.MarketCap)
	}
	if math.Abs(s.SharesOutstanding-15.5e9) > 1e6 {
		t.Errorf("Expected 15.5e9 shares, got %f", s.SharesOutstanding)
	}
	// No direct FCF row, so Normalize derives it: 110.50B - 10.96B = 99.54B.
	if math.Abs(s.FreeCashFlow-99.54e9) > 1e6 {
		t.Errorf("Expected derived FCF 99.54e9, got %f", s.FreeCashFlow)
	}
	if math.Abs(s.Beta-1.25) > 1e-9 {
		t.Errorf("Expected beta 1.25, got %f", s.Beta)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Fetched snapshot should be complete: %v", err)
	}
}

func TestFetchSnapshotNoPriceFails(t *testing.T) {
	f := newTestFetcher(t, `{"chart":{"result":[],"error":"Not Found"}}`, statsFixture)
	if _, err := f.FetchSnapshot(context.Background(), "ZZZZ"); err == nil {
		t.Error("Expected error when the quote endpoint has no result")
	}
}

func TestFetchSnapshotEmptyTicker(t *testing.T) {
	f := newTestFetcher(t, quoteFixtureTruncated, statsFixture)
	if _, err := f.FetchSnapshot(context.Background(), "  "); err == nil {
		t.Error("Expected error for empty ticker")
	}
}

func TestFetchSnapshotSurvivesMissingFundamentals(t *testing.T) {
	// 404 on the statistics page: snapshot comes back price-only and its
	// Validate reports what is missing.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/statistics") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(quoteFixtureTruncated))
	}))
	defer srv.Close()

	f := &Fetcher{
		httpClient: srv.Client(),
		quoteURL:   srv.URL + "/quote",
		statsURL:   srv.URL + "/stocks",
	}
	s, err := f.FetchSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Price-only snapshot should still come back: %v", err)
	}
	if s.Price != 185.5 {
		t.Errorf("Expected price 185.5, got %f", s.Price)
	}
	if err := s.Validate(); err == nil {
		t.Error("Expected incomplete snapshot to fail validation")
	}
}

func TestParseCompactNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.23B", 1.23e9, true},
		{"456.7M", 456.7e6, true},
		{"2.5T", 2.5e12, true},
		{"850K", 850e3, true},
		{"2,500", 2500, true},
		{"$185.50", 185.50, true},
		{"-10.96B", -10.96e9, true},
		{"12.5%", 0.125, true},
		{"n/a", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseCompactNumber(tc.in)
		if ok != tc.ok {
			t.Errorf("%q: expected ok=%v, got %v", tc.in, tc.ok, ok)
			continue
		}
		if ok && math.Abs(got-tc.want) > math.Abs(tc.want)*1e-12 {
			t.Errorf("%q: expected %f, got %f", tc.in, tc.want, got)
		}
	}
}
