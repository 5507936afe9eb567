// Package config loads the market assumption defaults that seed every
// analysis. Values live in a YAML file so the rates can be revised without a
// rebuild; a missing file means the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"reverse_dcf/pkg/core/dcf"
)

// MarketConfig holds the analysis-wide defaults.
type MarketConfig struct {
	RiskFreeRate        float64 `yaml:"risk_free_rate"`
	MarketReturn        float64 `yaml:"market_return"`
	TaxRate             float64 `yaml:"tax_rate"`
	DefaultCostOfDebt   float64 `yaml:"default_cost_of_debt"`
	DefaultDiscountRate float64 `yaml:"default_discount_rate"`
	TerminalGrowth      float64 `yaml:"terminal_growth"`
	ProjectionYears     int     `yaml:"projection_years"`
}

// Default returns the built-in market assumptions: 10-year treasury around
// 4.5%, long-run equity return 10%, statutory tax 21%, terminal growth at
// trend GDP.
func Default() MarketConfig {
	return MarketConfig{
		RiskFreeRate:        0.045,
		MarketReturn:        0.10,
		TaxRate:             0.21,
		DefaultCostOfDebt:   0.05,
		DefaultDiscountRate: 0.10,
		TerminalGrowth:      0.025,
		ProjectionYears:     dcf.DefaultProjectionYears,
	}
}

// Load reads a MarketConfig from a YAML file. A missing file is not an
// error; the defaults are returned so the tool runs out of the box. Fields
// the file leaves at zero keep their default values.
func Load(path string) (MarketConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}

	// Zero-valued fields fall back rather than poisoning the math.
	def := Default()
	if cfg.RiskFreeRate <= 0 {
		cfg.RiskFreeRate = def.RiskFreeRate
	}
	if cfg.MarketReturn <= 0 {
		cfg.MarketReturn = def.MarketReturn
	}
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = def.TaxRate
	}
	if cfg.DefaultCostOfDebt <= 0 {
		cfg.DefaultCostOfDebt = def.DefaultCostOfDebt
	}
	if cfg.DefaultDiscountRate <= 0 {
		cfg.DefaultDiscountRate = def.DefaultDiscountRate
	}
	if cfg.TerminalGrowth <= 0 {
		cfg.TerminalGrowth = def.TerminalGrowth
	}
	if cfg.ProjectionYears <= 0 {
		cfg.ProjectionYears = def.ProjectionYears
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate rejects rate combinations the valuation core would refuse anyway.
func (c MarketConfig) Validate() error {
	if c.DefaultDiscountRate <= c.TerminalGrowth {
		return fmt.Errorf("default discount rate %.4f must exceed terminal growth %.4f",
			c.DefaultDiscountRate, c.TerminalGrowth)
	}
	if c.MarketReturn <= c.RiskFreeRate {
		return fmt.Errorf("market return %.4f must exceed risk-free rate %.4f (negative equity risk premium)",
			c.MarketReturn, c.RiskFreeRate)
	}
	if c.TaxRate >= 1 {
		return fmt.Errorf("tax rate %.4f must be below 1", c.TaxRate)
	}
	return nil
}

// MarketAssumptions adapts the config to the WACC estimator's input.
func (c MarketConfig) MarketAssumptions() dcf.MarketAssumptions {
	return dcf.MarketAssumptions{
		RiskFreeRate:      c.RiskFreeRate,
		MarketReturn:      c.MarketReturn,
		TaxRate:           c.TaxRate,
		DefaultCostOfDebt: c.DefaultCostOfDebt,
	}
}
