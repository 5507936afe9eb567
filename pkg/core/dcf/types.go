// Package dcf implements the two-stage Discounted Cash Flow engine: forward
// projection, reverse (implied growth) solving, WACC estimation, and the
// discount-rate / terminal-growth sensitivity grid. Every entry point is a
// pure function of its inputs; nothing here does I/O or holds state between
// calls.
package dcf

import "errors"

// DefaultProjectionYears is the explicit projection horizon used when the
// caller does not override it.
const DefaultProjectionYears = 5

// gordonEpsilon guards the terminal value denominator. A discount rate this
// close to the terminal growth rate would blow the Gordon formula up, so the
// pair is rejected as invalid before any arithmetic runs.
const gordonEpsilon = 1e-6

var (
	// ErrNonPositiveCashFlow rejects a DCF on zero or negative base cash
	// flow. Compounding a non-positive base produces a nonsense valuation,
	// so the run is refused rather than silently computed.
	ErrNonPositiveCashFlow = errors.New("base free cash flow must be positive")

	// ErrInvalidAssumptions rejects assumption sets where the discount rate
	// does not exceed the terminal growth rate by at least gordonEpsilon.
	ErrInvalidAssumptions = errors.New("discount rate must exceed terminal growth rate")
)

// Assumptions is the input to the forward projector.
type Assumptions struct {
	GrowthRate      float64 `json:"growth_rate"`      // per-year FCF growth, decimal, may be negative
	TerminalGrowth  float64 `json:"terminal_growth"`  // perpetual growth beyond the horizon
	DiscountRate    float64 `json:"discount_rate"`    // WACC, decimal, > TerminalGrowth
	ProjectionYears int     `json:"projection_years"` // 0 means DefaultProjectionYears
}

// YearCashFlow is one row of the explicit projection period.
type YearCashFlow struct {
	Year         int     `json:"year"`
	ProjectedFCF float64 `json:"projected_fcf"`
	PresentValue float64 `json:"present_value"`
}

// ProjectionResult holds the forward DCF outputs.
type ProjectionResult struct {
	Years           []YearCashFlow `json:"years"`
	TerminalValue   float64        `json:"terminal_value"`
	PVOfTerminal    float64        `json:"pv_of_terminal"`
	EnterpriseValue float64        `json:"enterprise_value"`
}

// CompanyValuation attributes an enterprise value to equity holders using the
// company's capital structure.
type CompanyValuation struct {
	ProjectionResult
	EquityValue            float64 `json:"equity_value"`              // EV + cash - debt
	IntrinsicValuePerShare float64 `json:"intrinsic_value_per_share"` // equity / shares
	UpsidePercent          float64 `json:"upside_percent"`            // vs. current price, 0 when price unknown
}

// SolveResult is the output of the implied growth solver. Diagnostic is set
// only when Converged is false, and then describes how the approximation was
// produced.
type SolveResult struct {
	ImpliedGrowthRate float64 `json:"implied_growth_rate"`
	Converged         bool    `json:"converged"`
	Diagnostic        string  `json:"diagnostic,omitempty"`
}

// SensitivityCell is one grid entry: the growth the market would be pricing
// in under an alternative discount-rate / terminal-growth pair.
type SensitivityCell struct {
	DiscountRate   float64 `json:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	ImpliedGrowth  float64 `json:"implied_growth"`
	Converged      bool    `json:"converged"`
}

// RateSource labels where a discount rate (or one of its components) came
// from, so the provenance can be shown next to the number.
type RateSource string

const (
	SourceCalculated RateSource = "calculated"
	SourceDefault    RateSource = "default"
)

// MarketAssumptions are the market-level inputs to the WACC estimator.
// Zero-valued fields fall back to the documented defaults.
type MarketAssumptions struct {
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketReturn      float64 `json:"market_return"`
	TaxRate           float64 `json:"tax_rate"`
	DefaultCostOfDebt float64 `json:"default_cost_of_debt"`
}

// WACCBreakdown records how a discount rate was assembled. Source is
// "calculated" when the capital-structure math produced the rate, "default"
// when the estimator had to fall back; Notes explains any substitutions
// either way.
type WACCBreakdown struct {
	CostOfEquity    float64    `json:"cost_of_equity"`
	CostOfDebtPre   float64    `json:"cost_of_debt_pretax"`
	CostOfDebtAfter float64    `json:"cost_of_debt_after_tax"`
	WeightEquity    float64    `json:"weight_equity"`
	WeightDebt      float64    `json:"weight_debt"`
	Beta            float64    `json:"beta"`
	WACC            float64    `json:"wacc"`
	Source          RateSource `json:"source"`
	Notes           []string   `json:"notes,omitempty"`
}

// withDefaults fills the projection horizon.
func (a Assumptions) withDefaults() Assumptions {
	if a.ProjectionYears <= 0 {
		a.ProjectionYears = DefaultProjectionYears
	}
	return a
}

// validate applies the projector preconditions shared by every entry point.
func (a Assumptions) validate(fcfBase float64) error {
	if fcfBase <= 0 {
		return ErrNonPositiveCashFlow
	}
	if a.DiscountRate-a.TerminalGrowth < gordonEpsilon {
		return ErrInvalidAssumptions
	}
	return nil
}
