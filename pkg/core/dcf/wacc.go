package dcf

import (
	"fmt"

	"reverse_dcf/pkg/core/snapshot"
)

// Documented fallback constants for the WACC estimator. Any missing input is
// substituted rather than failing: a discount rate is always produced, and
// the breakdown says which parts were substituted.
const (
	DefaultDiscountRate = 0.10 // used whenever the estimate cannot be trusted
	defaultBeta         = 1.0  // market beta when the company's is unknown
	defaultRiskFree     = 0.045
	defaultMarketReturn = 0.10
	defaultTaxRate      = 0.21
	defaultCostOfDebt   = 0.05

	// Sanity band: a WACC outside this range would make the downstream
	// Gordon denominator either explosive or absurd, so the estimate is
	// discarded in favor of the default.
	waccFloor   = 0.03
	waccCeiling = 0.30
)

// EstimateDiscountRate derives a WACC from the snapshot's capital structure:
// CAPM cost of equity (risk-free + beta * equity risk premium), after-tax
// cost of debt (interest expense over total debt when both are known), each
// weighted by its share of market cap + debt.
//
// The estimator never fails. Missing inputs fall back to the documented
// defaults and are listed in the breakdown's Notes; an estimate outside the
// [3%, 30%] sanity band is replaced wholesale by DefaultDiscountRate with
// Source set to "default".
func EstimateDiscountRate(snap *snapshot.FinancialSnapshot, m MarketAssumptions) (float64, WACCBreakdown) {
	b := WACCBreakdown{Source: SourceCalculated}

	riskFree := m.RiskFreeRate
	if riskFree <= 0 {
		riskFree = defaultRiskFree
		b.Notes = append(b.Notes, fmt.Sprintf("risk-free rate not supplied, using %.1f%%", defaultRiskFree*100))
	}
	marketReturn := m.MarketReturn
	if marketReturn <= 0 {
		marketReturn = defaultMarketReturn
		b.Notes = append(b.Notes, fmt.Sprintf("market return not supplied, using %.1f%%", defaultMarketReturn*100))
	}
	taxRate := m.TaxRate
	if taxRate <= 0 || taxRate >= 1 {
		taxRate = defaultTaxRate
		b.Notes = append(b.Notes, fmt.Sprintf("tax rate not supplied, using %.0f%%", defaultTaxRate*100))
	}

	b.Beta = snap.Beta
	if b.Beta <= 0 {
		b.Beta = defaultBeta
		b.Notes = append(b.Notes, "beta not supplied, using market beta 1.0")
	}

	// CAPM: Ke = Rf + beta * (Rm - Rf)
	b.CostOfEquity = riskFree + b.Beta*(marketReturn-riskFree)

	// Cost of debt from the income statement when possible.
	if snap.InterestExpense > 0 && snap.TotalDebt > 0 {
		b.CostOfDebtPre = snap.InterestExpense / snap.TotalDebt
	} else {
		b.CostOfDebtPre = m.DefaultCostOfDebt
		if b.CostOfDebtPre <= 0 {
			b.CostOfDebtPre = defaultCostOfDebt
		}
		if snap.TotalDebt > 0 {
			b.Notes = append(b.Notes, fmt.Sprintf("interest expense unavailable, assuming %.1f%% cost of debt", b.CostOfDebtPre*100))
		}
	}
	b.CostOfDebtAfter = b.CostOfDebtPre * (1 - taxRate)

	marketCap := snap.EffectiveMarketCap()
	if marketCap <= 0 {
		b.Source = SourceDefault
		b.Notes = append(b.Notes, fmt.Sprintf("market cap unavailable, returning default %.0f%%", DefaultDiscountRate*100))
		b.WACC = DefaultDiscountRate
		b.WeightEquity = 1
		return DefaultDiscountRate, b
	}

	total := marketCap + snap.TotalDebt
	b.WeightEquity = marketCap / total
	b.WeightDebt = snap.TotalDebt / total

	b.WACC = b.CostOfEquity*b.WeightEquity + b.CostOfDebtAfter*b.WeightDebt

	if b.WACC < waccFloor || b.WACC > waccCeiling {
		b.Notes = append(b.Notes, fmt.Sprintf(
			"computed WACC %.2f%% outside sanity band [%.0f%%, %.0f%%], returning default %.0f%%",
			b.WACC*100, waccFloor*100, waccCeiling*100, DefaultDiscountRate*100))
		b.Source = SourceDefault
		b.WACC = DefaultDiscountRate
		return DefaultDiscountRate, b
	}

	return b.WACC, b
}
