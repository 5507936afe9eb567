package dcf

import (
	"math"

	"reverse_dcf/pkg/core/snapshot"
)

// Project runs the forward two-stage DCF: compound fcfBase year by year at
// the growth rate, discount each year back to present value, then capitalize
// the final year with the Gordon growth formula and discount that terminal
// value over the full horizon.
//
// Preconditions: fcfBase > 0 and DiscountRate > TerminalGrowth (by more than
// gordonEpsilon). All math is float64; nothing is rounded here.
func Project(fcfBase float64, a Assumptions) (*ProjectionResult, error) {
	a = a.withDefaults()
	if err := a.validate(fcfBase); err != nil {
		return nil, err
	}

	res := &ProjectionResult{
		Years: make([]YearCashFlow, 0, a.ProjectionYears),
	}

	fcf := fcfBase
	var sumPV float64
	for year := 1; year <= a.ProjectionYears; year++ {
		fcf *= 1 + a.GrowthRate
		pv := fcf / math.Pow(1+a.DiscountRate, float64(year))
		sumPV += pv
		res.Years = append(res.Years, YearCashFlow{
			Year:         year,
			ProjectedFCF: fcf,
			PresentValue: pv,
		})
	}

	// Terminal value: final-year FCF grown once at the perpetual rate,
	// capitalized at (r - g). The denominator was range-checked above.
	res.TerminalValue = fcf * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	res.PVOfTerminal = res.TerminalValue / math.Pow(1+a.DiscountRate, float64(a.ProjectionYears))
	res.EnterpriseValue = sumPV + res.PVOfTerminal

	return res, nil
}

// ValueCompany projects the snapshot's base free cash flow and attributes the
// resulting enterprise value to equity: EV + cash - debt, divided across
// shares outstanding. UpsidePercent compares intrinsic value to the snapshot
// price when one is present.
func ValueCompany(snap *snapshot.FinancialSnapshot, a Assumptions) (*CompanyValuation, error) {
	proj, err := Project(snap.FreeCashFlow, a)
	if err != nil {
		return nil, err
	}

	val := &CompanyValuation{
		ProjectionResult: *proj,
		EquityValue:      proj.EnterpriseValue + snap.Cash - snap.TotalDebt,
	}
	if snap.SharesOutstanding > 0 {
		val.IntrinsicValuePerShare = val.EquityValue / snap.SharesOutstanding
	}
	if snap.Price > 0 && val.IntrinsicValuePerShare != 0 {
		val.UpsidePercent = (val.IntrinsicValuePerShare - snap.Price) / snap.Price * 100
	}
	return val, nil
}
