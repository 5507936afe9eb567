package dcf

import (
	"fmt"
	"math"
)

// Solver search bounds. The bracket is deliberately wide: -30% to +200%
// annual growth covers everything from terminal decline to hypergrowth. The
// fallback scan uses a tighter band where an approximate answer is still
// worth reporting.
const (
	bracketLow  = -0.30
	bracketHigh = 2.00

	scanLow     = -0.20
	scanHigh    = 1.50
	scanSamples = 130

	maxBisectIterations = 200
)

// evResidualTolerance returns the acceptable |EV(g) - target| for a given
// target. Relative for large targets, with an absolute floor so tiny targets
// do not demand impossible precision.
func evResidualTolerance(targetEV float64) float64 {
	return math.Max(1e-4, 1e-9*math.Abs(targetEV))
}

// SolveImpliedGrowth inverts the forward projection: it finds the growth rate
// at which the two-stage DCF reproduces targetEV. EV is monotonically
// increasing in growth, so bisection over [bracketLow, bracketHigh] is the
// primary strategy. When the target sits outside the EV range that bracket
// can reach, there is no root; the solver then densely scans a narrower band
// and returns the closest approximation with Converged=false and a
// diagnostic, never an error.
//
// years <= 0 selects DefaultProjectionYears. A non-positive targetEV is
// allowed (it simply drives the implied growth deeply negative); fcfBase and
// the rate pair are validated the same way as in Project.
func SolveImpliedGrowth(targetEV, fcfBase, discountRate, terminalGrowth float64, years int) (SolveResult, error) {
	a := Assumptions{
		TerminalGrowth:  terminalGrowth,
		DiscountRate:    discountRate,
		ProjectionYears: years,
	}.withDefaults()
	if err := a.validate(fcfBase); err != nil {
		return SolveResult{}, err
	}

	// residual(g) = EV(g) - target; positive when g overshoots.
	residual := func(g float64) float64 {
		a.GrowthRate = g
		proj, err := Project(fcfBase, a)
		if err != nil {
			// Inputs were validated above; Project cannot fail here.
			return math.NaN()
		}
		return proj.EnterpriseValue - targetEV
	}

	tol := evResidualTolerance(targetEV)

	lo, hi := bracketLow, bracketHigh
	fLo, fHi := residual(lo), residual(hi)

	if math.Abs(fLo) <= tol {
		return SolveResult{ImpliedGrowthRate: lo, Converged: true}, nil
	}
	if math.Abs(fHi) <= tol {
		return SolveResult{ImpliedGrowthRate: hi, Converged: true}, nil
	}
	if fLo*fHi > 0 {
		return scanForClosest(residual, targetEV), nil
	}

	var mid, fMid float64
	for i := 0; i < maxBisectIterations; i++ {
		mid = (lo + hi) / 2
		fMid = residual(mid)
		if math.Abs(fMid) <= tol {
			return SolveResult{ImpliedGrowthRate: mid, Converged: true}, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}

	// The interval collapsed without the residual crossing the tolerance.
	// With 200 halvings this is a degenerate numeric case, but the contract
	// still holds: report the midpoint as an approximation.
	return SolveResult{
		ImpliedGrowthRate: mid,
		Converged:         false,
		Diagnostic: fmt.Sprintf(
			"bisection exhausted %d iterations; closest growth %.4f leaves EV residual %.2f",
			maxBisectIterations, mid, fMid),
	}, nil
}

// scanForClosest handles targets no growth rate in the bracket can reproduce.
// It samples the scan band densely and returns the growth minimizing the
// absolute EV residual, flagged as a non-converged approximation.
func scanForClosest(residual func(float64) float64, targetEV float64) SolveResult {
	step := (scanHigh - scanLow) / float64(scanSamples)
	bestG := scanLow
	bestAbs := math.Inf(1)

	for i := 0; i <= scanSamples; i++ {
		g := scanLow + step*float64(i)
		if r := math.Abs(residual(g)); r < bestAbs {
			bestAbs = r
			bestG = g
		}
	}

	return SolveResult{
		ImpliedGrowthRate: bestG,
		Converged:         false,
		Diagnostic: fmt.Sprintf(
			"no growth rate in [%.0f%%, %.0f%%] reproduces EV %.0f; nearest match %.4f leaves residual %.0f",
			bracketLow*100, bracketHigh*100, targetEV, bestG, bestAbs),
	}
}
