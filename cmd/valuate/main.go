// Command valuate runs a full analysis for one company from the terminal:
// fetch (or load) a snapshot, estimate the discount rate, project forward,
// solve the market-implied growth, and print the report.
//
// Usage:
//
//	valuate -ticker AAPL -growth 0.12
//	valuate -file snapshot.hjson -discount 0.09 -terminal 0.02 -html report.html
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"reverse_dcf/pkg/core/config"
	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/fetch"
	"reverse_dcf/pkg/core/report"
	"reverse_dcf/pkg/core/snapshot"
)

func main() {
	godotenv.Load()

	ticker := flag.String("ticker", "", "Ticker to fetch from the market-data provider")
	file := flag.String("file", "", "Hjson snapshot file (manual entry), overrides -ticker")
	configPath := flag.String("config", "config/market.yaml", "Market assumptions YAML")
	growth := flag.Float64("growth", 0, "Forward growth assumption (decimal); 0 skips the forward projection")
	discount := flag.Float64("discount", 0, "Discount rate override; 0 means the WACC estimate")
	terminal := flag.Float64("terminal", 0, "Terminal growth override")
	years := flag.Int("years", 0, "Projection years override")
	htmlOut := flag.String("html", "", "Also write the report as HTML to this path")
	flag.Parse()

	if *ticker == "" && *file == "" {
		fmt.Println("Error: provide -ticker or -file")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("[WARNING] Bad market config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	snap, err := loadSnapshot(*ticker, *file)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := snap.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("  Fill the gaps in an hjson file and re-run with -file.")
		os.Exit(1)
	}

	assumptions := dcf.Assumptions{
		GrowthRate:      *growth,
		TerminalGrowth:  *terminal,
		DiscountRate:    *discount,
		ProjectionYears: *years,
	}
	if assumptions.TerminalGrowth == 0 {
		assumptions.TerminalGrowth = cfg.TerminalGrowth
	}
	if assumptions.ProjectionYears <= 0 {
		assumptions.ProjectionYears = cfg.ProjectionYears
	}

	rate, breakdown := dcf.EstimateDiscountRate(snap, cfg.MarketAssumptions())
	if assumptions.DiscountRate == 0 {
		assumptions.DiscountRate = rate
	}

	analysis := report.NewAnalysis(snap, assumptions)
	analysis.DiscountRate = assumptions.DiscountRate
	analysis.WACCBreakdown = &breakdown

	if *growth != 0 {
		val, err := dcf.ValueCompany(snap, assumptions)
		if err != nil {
			fmt.Printf("Error: forward projection failed: %v\n", err)
			os.Exit(1)
		}
		analysis.Valuation = val
	}

	analysis.TargetEV = snap.EnterpriseValue()
	sol, err := dcf.SolveImpliedGrowth(analysis.TargetEV, snap.FreeCashFlow,
		assumptions.DiscountRate, assumptions.TerminalGrowth, assumptions.ProjectionYears)
	if err != nil {
		fmt.Printf("Error: implied growth solve failed: %v\n", err)
		os.Exit(1)
	}
	analysis.Implied = &sol

	cells, err := dcf.BuildSensitivityGrid(snap.FreeCashFlow, analysis.TargetEV,
		assumptions.DiscountRate, assumptions.TerminalGrowth, assumptions.ProjectionYears)
	if err != nil {
		fmt.Printf("Error: sensitivity grid failed: %v\n", err)
		os.Exit(1)
	}
	analysis.Sensitivity = cells

	md := report.BuildMarkdown(analysis)
	fmt.Println(md)

	if *htmlOut != "" {
		html, err := report.RenderHTML(md)
		if err != nil {
			fmt.Printf("Error: html render failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*htmlOut, []byte(html), 0644); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[REPORT] HTML written to %s\n", *htmlOut)
	}
}

func loadSnapshot(ticker, file string) (*snapshot.FinancialSnapshot, error) {
	if file != "" {
		fmt.Printf("[SNAPSHOT] Loading manual record from %s\n", file)
		return snapshot.LoadManual(file)
	}

	fmt.Printf("[SNAPSHOT] Fetching %s...\n", ticker)
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	return fetch.NewFetcher().FetchSnapshot(ctx, ticker)
}
