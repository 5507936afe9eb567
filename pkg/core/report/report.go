// Package report renders a full analysis (forward valuation, implied growth,
// WACC provenance, sensitivity grid) as Markdown, and optionally as HTML for
// the API. Formatting decisions live here; the core hands over raw floats.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/snapshot"
)

// Analysis bundles everything one valuation run produced. Optional sections
// (nil fields) are simply omitted from the report.
type Analysis struct {
	ID        string
	Generated time.Time

	Snapshot    *snapshot.FinancialSnapshot
	Assumptions dcf.Assumptions

	Valuation *dcf.CompanyValuation
	Implied   *dcf.SolveResult
	TargetEV  float64

	DiscountRate  float64
	WACCBreakdown *dcf.WACCBreakdown

	Sensitivity []dcf.SensitivityCell
}

// NewAnalysis stamps an analysis with an ID and timestamp.
func NewAnalysis(snap *snapshot.FinancialSnapshot, a dcf.Assumptions) *Analysis {
	return &Analysis{
		ID:          uuid.NewString(),
		Generated:   time.Now().UTC(),
		Snapshot:    snap,
		Assumptions: a,
	}
}

// money formats absolute currency values compactly for display. Presentation
// only; nothing upstream is rounded.
func money(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// BuildMarkdown renders the analysis as a Markdown document.
func BuildMarkdown(a *Analysis) string {
	var b strings.Builder

	snap := a.Snapshot
	fmt.Fprintf(&b, "# Valuation Report: %s (%s)\n\n", snap.CompanyName, snap.Ticker)
	fmt.Fprintf(&b, "Analysis `%s`, generated %s\n\n", a.ID, a.Generated.Format(time.RFC3339))

	b.WriteString("## Inputs\n\n")
	fmt.Fprintf(&b, "| Price | Shares | Market Cap | Base FCF | Cash | Debt |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.2f | %s | %s | %s | %s | %s |\n\n",
		snap.Price, money(snap.SharesOutstanding), money(snap.EffectiveMarketCap()),
		money(snap.FreeCashFlow), money(snap.Cash), money(snap.TotalDebt))

	fmt.Fprintf(&b, "Assumptions: growth %s, terminal %s, discount %s, %d years.\n\n",
		pct(a.Assumptions.GrowthRate), pct(a.Assumptions.TerminalGrowth),
		pct(a.Assumptions.DiscountRate), a.Assumptions.ProjectionYears)

	if w := a.WACCBreakdown; w != nil {
		b.WriteString("## Discount Rate\n\n")
		fmt.Fprintf(&b, "WACC %s (%s): cost of equity %s (beta %.2f), after-tax cost of debt %s, weights %s equity / %s debt.\n\n",
			pct(w.WACC), w.Source, pct(w.CostOfEquity), w.Beta,
			pct(w.CostOfDebtAfter), pct(w.WeightEquity), pct(w.WeightDebt))
		for _, note := range w.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
		if len(w.Notes) > 0 {
			b.WriteString("\n")
		}
	}

	if v := a.Valuation; v != nil {
		b.WriteString("## Forward DCF\n\n")
		b.WriteString("| Year | Projected FCF | Present Value |\n|---|---|---|\n")
		for _, y := range v.Years {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", y.Year, money(y.ProjectedFCF), money(y.PresentValue))
		}
		fmt.Fprintf(&b, "\nTerminal value %s (PV %s). Enterprise value **%s**, equity value %s, intrinsic value **%.2f/share**",
			money(v.TerminalValue), money(v.PVOfTerminal),
			money(v.EnterpriseValue), money(v.EquityValue), v.IntrinsicValuePerShare)
		if snap.Price > 0 {
			fmt.Fprintf(&b, " (%+.1f%% vs. price %.2f)", v.UpsidePercent, snap.Price)
		}
		b.WriteString(".\n\n")
	}

	if s := a.Implied; s != nil {
		b.WriteString("## Market-Implied Growth\n\n")
		fmt.Fprintf(&b, "Against enterprise value %s, the market is pricing in **%s** annual FCF growth.\n",
			money(a.TargetEV), pct(s.ImpliedGrowthRate))
		if !s.Converged {
			fmt.Fprintf(&b, "\n> Approximation only: %s\n", s.Diagnostic)
		}
		b.WriteString("\n")
	}

	if len(a.Sensitivity) > 0 {
		b.WriteString("## Sensitivity (implied growth)\n\n")
		b.WriteString(sensitivityTable(a.Sensitivity))
		b.WriteString("\n")
	}

	return b.String()
}

// sensitivityTable pivots the cells into a discount-rate x terminal-growth
// matrix. Skipped (invalid) combinations render as "n/a".
func sensitivityTable(cells []dcf.SensitivityCell) string {
	discounts := orderedKeys(cells, func(c dcf.SensitivityCell) float64 { return c.DiscountRate })
	terminals := orderedKeys(cells, func(c dcf.SensitivityCell) float64 { return c.TerminalGrowth })

	byPair := make(map[[2]float64]dcf.SensitivityCell, len(cells))
	for _, c := range cells {
		byPair[[2]float64{c.DiscountRate, c.TerminalGrowth}] = c
	}

	var b strings.Builder
	b.WriteString("| WACC \\ Terminal |")
	for _, tg := range terminals {
		fmt.Fprintf(&b, " %s |", pct(tg))
	}
	b.WriteString("\n|---|")
	for range terminals {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, dr := range discounts {
		fmt.Fprintf(&b, "| %s |", pct(dr))
		for _, tg := range terminals {
			if c, ok := byPair[[2]float64{dr, tg}]; ok {
				mark := ""
				if !c.Converged {
					mark = "*"
				}
				fmt.Fprintf(&b, " %s%s |", pct(c.ImpliedGrowth), mark)
			} else {
				b.WriteString(" n/a |")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// orderedKeys extracts the distinct axis values, ascending.
func orderedKeys(cells []dcf.SensitivityCell, key func(dcf.SensitivityCell) float64) []float64 {
	var keys []float64
	seen := map[float64]bool{}
	for _, c := range cells {
		k := key(c)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Float64s(keys)
	return keys
}

// RenderHTML converts the Markdown report to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report html: %w", err)
	}
	return buf.String(), nil
}
