// Package fetch is the market-data collaborator: it turns a ticker into a
// normalized FinancialSnapshot by combining a quote API call with a scrape of
// the statistics page. The valuation core never sees this package; it only
// receives the snapshot. Retries and rate-limit pacing live here, not in the
// core.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"reverse_dcf/pkg/core/snapshot"
)

const (
	defaultQuoteURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultStatsURL = "https://stockanalysis.com/stocks"

	// Finance endpoints rate limit aggressively; space requests out.
	defaultRequestDelay = 1 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// quoteResponse is the trimmed shape of the chart API payload. Only the meta
// block matters here.
type quoteResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// Fetcher fetches and normalizes company data.
type Fetcher struct {
	httpClient   *http.Client
	quoteURL     string
	statsURL     string
	requestDelay time.Duration

	lastRequest  time.Time
	requestMutex sync.Mutex
}

// NewFetcher creates a fetcher with production endpoints and pacing.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		quoteURL:     defaultQuoteURL,
		statsURL:     defaultStatsURL,
		requestDelay: defaultRequestDelay,
	}
}

// FetchSnapshot assembles a snapshot for the ticker: price from the quote
// API, fundamentals from the statistics page, both merged through
// snapshot.Normalize. A missing price is fatal (the caller should fall back
// to manual entry); missing fundamentals are tolerated and reported by the
// snapshot's own Validate.
func (f *Fetcher) FetchSnapshot(ctx context.Context, ticker string) (*snapshot.FinancialSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	rec := snapshot.PartialRecord{Ticker: ticker}

	price, err := f.fetchQuote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quote fetch for %s failed: %w", ticker, err)
	}
	rec.Price = &price

	f.pace()

	if err := f.fetchFundamentals(ctx, ticker, &rec); err != nil {
		// Fundamentals are best-effort; the snapshot records what is
		// missing and the caller decides.
		fmt.Printf("[FETCH] Fundamentals for %s incomplete: %v\n", ticker, err)
	}

	s := snapshot.Normalize(rec)
	if s.Price <= 0 {
		return nil, fmt.Errorf("no usable price for %s", ticker)
	}
	return &s, nil
}

// fetchQuote returns the current price from the chart API. The body goes
// through json-repair first: under rate limiting these endpoints return
// truncated or otherwise mangled JSON, and a repairable payload beats a
// retry.
func (f *Fetcher) fetchQuote(ctx context.Context, ticker string) (float64, error) {
	body, err := f.get(ctx, fmt.Sprintf("%s/%s", f.quoteURL, ticker))
	if err != nil {
		return 0, err
	}

	repaired, err := jsonrepair.RepairJSON(string(body))
	if err != nil {
		repaired = string(body)
	}

	var quote quoteResponse
	if err := json.Unmarshal([]byte(repaired), &quote); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(quote.Chart.Result) == 0 {
		return 0, fmt.Errorf("quote response has no results (error: %v)", quote.Chart.Error)
	}

	meta := quote.Chart.Result[0].Meta
	if meta.RegularMarketPrice > 0 {
		return meta.RegularMarketPrice, nil
	}
	if meta.PreviousClose > 0 {
		return meta.PreviousClose, nil
	}
	return 0, fmt.Errorf("quote response carries no price")
}

// fetchFundamentals scrapes the statistics page and fills the record.
func (f *Fetcher) fetchFundamentals(ctx context.Context, ticker string, rec *snapshot.PartialRecord) error {
	body, err := f.get(ctx, fmt.Sprintf("%s/%s/statistics/", f.statsURL, strings.ToLower(ticker)))
	if err != nil {
		return err
	}
	stats, err := parseStatisticsPage(body)
	if err != nil {
		return err
	}
	stats.apply(rec)
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// pace enforces the inter-request delay.
func (f *Fetcher) pace() {
	f.requestMutex.Lock()
	defer f.requestMutex.Unlock()

	if elapsed := time.Since(f.lastRequest); elapsed < f.requestDelay {
		time.Sleep(f.requestDelay - elapsed)
	}
	f.lastRequest = time.Now()
}
