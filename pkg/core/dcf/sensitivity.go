package dcf

// Grid geometry: 5 discount-rate samples spanning +/-3 percentage points and
// 5 terminal-growth samples spanning +/-1 percentage point around the base
// case, 25 combinations before invalid pairs are dropped.
const (
	gridSteps          = 5
	discountRateSpread = 0.03
	terminalSpread     = 0.01
)

// BuildSensitivityGrid re-solves the implied growth rate under each
// combination of perturbed discount rate and terminal growth. Combinations
// where the discount rate does not exceed the terminal growth are skipped
// (the DCF is undefined there), not errored, so the result may hold fewer
// than 25 cells. Rows are ordered discount rate ascending, then terminal
// growth ascending, ready for tabular or heatmap rendering.
func BuildSensitivityGrid(fcfBase, targetEV, baseDiscountRate, baseTerminalGrowth float64, years int) ([]SensitivityCell, error) {
	if fcfBase <= 0 {
		return nil, ErrNonPositiveCashFlow
	}

	discountStep := 2 * discountRateSpread / float64(gridSteps-1)
	terminalStep := 2 * terminalSpread / float64(gridSteps-1)

	cells := make([]SensitivityCell, 0, gridSteps*gridSteps)
	for i := 0; i < gridSteps; i++ {
		dr := baseDiscountRate - discountRateSpread + discountStep*float64(i)
		for j := 0; j < gridSteps; j++ {
			tg := baseTerminalGrowth - terminalSpread + terminalStep*float64(j)
			if dr-tg < gordonEpsilon {
				continue
			}

			sol, err := SolveImpliedGrowth(targetEV, fcfBase, dr, tg, years)
			if err != nil {
				// Preconditions were checked above and per-cell rate pairs
				// pre-filtered; nothing left can fail.
				return nil, err
			}
			cells = append(cells, SensitivityCell{
				DiscountRate:   dr,
				TerminalGrowth: tg,
				ImpliedGrowth:  sol.ImpliedGrowthRate,
				Converged:      sol.Converged,
			})
		}
	}
	return cells, nil
}
