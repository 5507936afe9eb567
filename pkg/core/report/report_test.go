package report

import (
	"strings"
	"testing"

	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/snapshot"
)

func buildFullAnalysis(t *testing.T) *Analysis {
	t.Helper()

	snap := &snapshot.FinancialSnapshot{
		Ticker:            "TEST",
		CompanyName:       "Test Corp",
		Price:             80,
		SharesOutstanding: 2.5e9,
		MarketCap:         200e9,
		FreeCashFlow:      10e9,
		Cash:              20e9,
		TotalDebt:         5e9,
		Beta:              1.1,
	}
	assumptions := dcf.Assumptions{
		GrowthRate:      0.15,
		TerminalGrowth:  0.025,
		DiscountRate:    0.10,
		ProjectionYears: 5,
	}

	a := NewAnalysis(snap, assumptions)

	rate, breakdown := dcf.EstimateDiscountRate(snap, dcf.MarketAssumptions{
		RiskFreeRate: 0.045,
		MarketReturn: 0.10,
		TaxRate:      0.21,
	})
	a.DiscountRate = rate
	a.WACCBreakdown = &breakdown

	val, err := dcf.ValueCompany(snap, assumptions)
	if err != nil {
		t.Fatalf("ValueCompany failed: %v", err)
	}
	a.Valuation = val

	a.TargetEV = snap.EnterpriseValue()
	sol, err := dcf.SolveImpliedGrowth(a.TargetEV, snap.FreeCashFlow, assumptions.DiscountRate, assumptions.TerminalGrowth, 0)
	if err != nil {
		t.Fatalf("SolveImpliedGrowth failed: %v", err)
	}
	a.Implied = &sol

	grid, err := dcf.BuildSensitivityGrid(snap.FreeCashFlow, a.TargetEV, assumptions.DiscountRate, assumptions.TerminalGrowth, 0)
	if err != nil {
		t.Fatalf("BuildSensitivityGrid failed: %v", err)
	}
	a.Sensitivity = grid

	return a
}

func TestNewAnalysisStampsIdentity(t *testing.T) {
	a := buildFullAnalysis(t)
	if a.ID == "" {
		t.Error("Expected a non-empty analysis ID")
	}
	if a.Generated.IsZero() {
		t.Error("Expected a generation timestamp")
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	a := buildFullAnalysis(t)
	md := BuildMarkdown(a)

	for _, want := range []string{
		"# Valuation Report: Test Corp (TEST)",
		"## Inputs",
		"## Discount Rate",
		"## Forward DCF",
		"## Market-Implied Growth",
		"## Sensitivity (implied growth)",
		a.ID,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}

	// Five projection rows plus the header rows.
	if got := strings.Count(md, "| 1 |")+strings.Count(md, "| 5 |"); got < 2 {
		t.Errorf("Expected projection rows for years 1 and 5, got %d", got)
	}
}

func TestBuildMarkdownOmitsEmptySections(t *testing.T) {
	snap := &snapshot.FinancialSnapshot{Ticker: "X", CompanyName: "X", FreeCashFlow: 1e9}
	a := NewAnalysis(snap, dcf.Assumptions{GrowthRate: 0.05, TerminalGrowth: 0.02, DiscountRate: 0.09, ProjectionYears: 5})
	md := BuildMarkdown(a)

	for _, absent := range []string{"## Forward DCF", "## Market-Implied Growth", "## Sensitivity"} {
		if strings.Contains(md, absent) {
			t.Errorf("Report should omit %q when the section has no data", absent)
		}
	}
}

func TestBuildMarkdownMarksApproximation(t *testing.T) {
	a := buildFullAnalysis(t)
	a.Implied = &dcf.SolveResult{
		ImpliedGrowthRate: -0.20,
		Converged:         false,
		Diagnostic:        "no growth rate in range reproduces the target",
	}
	md := BuildMarkdown(a)
	if !strings.Contains(md, "Approximation only") {
		t.Error("Non-converged solve should be flagged in the report")
	}
	if !strings.Contains(md, a.Implied.Diagnostic) {
		t.Error("Diagnostic text should be included")
	}
}

func TestRenderHTML(t *testing.T) {
	a := buildFullAnalysis(t)
	html, err := RenderHTML(BuildMarkdown(a))
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "Test Corp") {
		t.Error("Expected rendered HTML with headings")
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.5e12, "2.50T"},
		{227.93e9, "227.93B"},
		{456.7e6, "456.70M"},
		{185.5, "185.50"},
		{-10.96e9, "-10.96B"},
	}
	for _, tc := range cases {
		if got := money(tc.in); got != tc.want {
			t.Errorf("money(%f): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
