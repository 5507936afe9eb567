package fetch

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reverse_dcf/pkg/core/snapshot"
)

// pageStats is the label -> parsed value map scraped from a statistics page.
type pageStats map[string]float64

// statLabels maps the page's row labels to record fields. Several labels can
// feed one field; the first one present wins.
var statLabels = map[string][]string{
	"market_cap":          {"Market Cap"},
	"shares_outstanding":  {"Shares Outstanding"},
	"free_cash_flow":      {"Free Cash Flow"},
	"operating_cash_flow": {"Operating Cash Flow"},
	"capital_expenditure": {"Capital Expenditures"},
	"revenue":             {"Revenue", "Total Revenue"},
	"net_income":          {"Net Income"},
	"total_debt":          {"Total Debt"},
	"cash":                {"Total Cash", "Cash & Cash Equivalents", "Cash & Equivalents"},
	"beta":                {"Beta", "Beta (5Y)"},
}

// parseStatisticsPage scans every two-column table row for label/value pairs.
func parseStatisticsPage(html []byte) (pageStats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse statistics html: %w", err)
	}

	stats := pageStats{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		raw := strings.TrimSpace(cells.Eq(1).Text())
		if label == "" || raw == "" {
			return
		}
		if v, ok := parseCompactNumber(raw); ok {
			if _, seen := stats[label]; !seen {
				stats[label] = v
			}
		}
	})

	if len(stats) == 0 {
		return nil, fmt.Errorf("statistics page contained no parseable rows")
	}
	return stats, nil
}

// apply copies scraped values into the partial record, leaving fields the
// page did not report as nil so Normalize can derive or default them.
func (p pageStats) apply(rec *snapshot.PartialRecord) {
	lookup := func(field string) *float64 {
		for _, label := range statLabels[field] {
			if v, ok := p[label]; ok {
				value := v
				return &value
			}
		}
		return nil
	}

	rec.MarketCap = lookup("market_cap")
	rec.SharesOutstanding = lookup("shares_outstanding")
	rec.FreeCashFlow = lookup("free_cash_flow")
	rec.OperatingCashFlow = lookup("operating_cash_flow")
	rec.CapitalExpenditure = lookup("capital_expenditure")
	rec.Revenue = lookup("revenue")
	rec.NetIncome = lookup("net_income")
	rec.TotalDebt = lookup("total_debt")
	rec.Cash = lookup("cash")
	rec.Beta = lookup("beta")
}

// parseCompactNumber parses display values like "1.23B", "456.7M", "2,500",
// "12.5%", "-3.4B" or "n/a" into absolute floats. Percentages come back as
// decimals. Returns false for placeholders.
func parseCompactNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		multiplier = 0.01
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "T"):
		multiplier = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
