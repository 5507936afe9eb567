package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apisnapshot "reverse_dcf/pkg/api/snapshot"
	apivaluation "reverse_dcf/pkg/api/valuation"
	"reverse_dcf/pkg/core/config"
	"reverse_dcf/pkg/core/fetch"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := os.Getenv("MARKET_CONFIG")
	if configPath == "" {
		configPath = "config/market.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load market config: %v\n", err)
		fmt.Println("  Falling back to built-in defaults")
		cfg = config.Default()
	}
	fmt.Printf("[CONFIG] risk-free %.2f%%, market return %.2f%%, terminal growth %.2f%%\n",
		cfg.RiskFreeRate*100, cfg.MarketReturn*100, cfg.TerminalGrowth*100)

	// Snapshot acquisition endpoints
	snapshotHandler := apisnapshot.NewHandler(fetch.NewFetcher())
	http.HandleFunc("/api/snapshot/fetch", snapshotHandler.HandleFetch)
	http.HandleFunc("/api/snapshot/manual", snapshotHandler.HandleManual)

	// Valuation endpoints
	valuationHandler := apivaluation.NewHandler(cfg)
	http.HandleFunc("/api/valuation/project", valuationHandler.HandleProject)
	http.HandleFunc("/api/valuation/implied", valuationHandler.HandleImplied)
	http.HandleFunc("/api/valuation/sensitivity", valuationHandler.HandleSensitivity)
	http.HandleFunc("/api/valuation/wacc", valuationHandler.HandleWACC)
	http.HandleFunc("/api/valuation/report", valuationHandler.HandleReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/snapshot/fetch       {ticker}")
	fmt.Println("  - POST /api/snapshot/manual      (hjson body)")
	fmt.Println("  - POST /api/valuation/project    forward DCF")
	fmt.Println("  - POST /api/valuation/implied    reverse solve")
	fmt.Println("  - POST /api/valuation/sensitivity")
	fmt.Println("  - POST /api/valuation/wacc")
	fmt.Println("  - POST /api/valuation/report     (format: markdown|html)")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
