// Package snapshot defines the normalized per-company record that feeds the
// valuation core. Providers return partial, loosely shaped data; everything is
// reconciled here at the boundary so the core only ever sees a complete
// FinancialSnapshot.
package snapshot

import (
	"fmt"
	"strings"
	"time"
)

// FinancialSnapshot is an immutable per-analysis record. All monetary values
// are absolute currency units (not scaled to millions/billions).
type FinancialSnapshot struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`

	Price             float64 `json:"price"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	MarketCap         float64 `json:"market_cap"`

	FreeCashFlow float64 `json:"free_cash_flow"`
	Revenue      float64 `json:"revenue"`
	NetIncome    float64 `json:"net_income"`

	Cash            float64 `json:"cash"`
	TotalDebt       float64 `json:"total_debt"`
	InterestExpense float64 `json:"interest_expense"`

	Beta float64 `json:"beta"`

	FetchTime time.Time `json:"fetch_time"`
}

// PartialRecord is the duck-typed shape a data provider (or a manual entry
// form) actually produces. Nil means the source did not report the field.
type PartialRecord struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`

	Price             *float64 `json:"price"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	MarketCap         *float64 `json:"market_cap"`

	FreeCashFlow *float64 `json:"free_cash_flow"`
	// Components for deriving FCF when the direct line is missing.
	OperatingCashFlow  *float64 `json:"operating_cash_flow"`
	CapitalExpenditure *float64 `json:"capital_expenditure"`

	Revenue   *float64 `json:"revenue"`
	NetIncome *float64 `json:"net_income"`

	Cash            *float64 `json:"cash"`
	TotalDebt       *float64 `json:"total_debt"`
	InterestExpense *float64 `json:"interest_expense"`

	Beta *float64 `json:"beta"`
}

func deref(v *float64) float64 {
	if v != nil {
		return *v
	}
	return 0.0
}

// Normalize reconciles a partial provider record into a complete snapshot.
// Derivations:
//   - MarketCap falls back to Price * SharesOutstanding
//   - SharesOutstanding falls back to MarketCap / Price
//   - FreeCashFlow falls back to OperatingCashFlow + CapitalExpenditure
//     (capex is reported as a negative number, so addition subtracts it)
//
// MarketCap and Price*Shares are NOT forced to agree when both are reported;
// data sources disagree and the mismatch is tolerated.
func Normalize(rec PartialRecord) FinancialSnapshot {
	s := FinancialSnapshot{
		Ticker:            strings.ToUpper(strings.TrimSpace(rec.Ticker)),
		CompanyName:       rec.CompanyName,
		Price:             deref(rec.Price),
		SharesOutstanding: deref(rec.SharesOutstanding),
		MarketCap:         deref(rec.MarketCap),
		FreeCashFlow:      deref(rec.FreeCashFlow),
		Revenue:           deref(rec.Revenue),
		NetIncome:         deref(rec.NetIncome),
		Cash:              deref(rec.Cash),
		TotalDebt:         deref(rec.TotalDebt),
		InterestExpense:   deref(rec.InterestExpense),
		Beta:              deref(rec.Beta),
		FetchTime:         time.Now(),
	}

	if s.CompanyName == "" {
		s.CompanyName = s.Ticker
	}

	if s.MarketCap == 0 && s.Price > 0 && s.SharesOutstanding > 0 {
		s.MarketCap = s.Price * s.SharesOutstanding
	}
	if s.SharesOutstanding == 0 && s.Price > 0 && s.MarketCap > 0 {
		s.SharesOutstanding = s.MarketCap / s.Price
	}

	if rec.FreeCashFlow == nil && rec.OperatingCashFlow != nil {
		s.FreeCashFlow = deref(rec.OperatingCashFlow) + deref(rec.CapitalExpenditure)
	}

	return s
}

// EffectiveMarketCap prefers the reported market cap, falling back to
// price * shares when only those were reported.
func (s *FinancialSnapshot) EffectiveMarketCap() float64 {
	if s.MarketCap > 0 {
		return s.MarketCap
	}
	return s.Price * s.SharesOutstanding
}

// EnterpriseValue is the market-implied EV: market cap plus debt minus cash.
// This is the reverse solver's target.
func (s *FinancialSnapshot) EnterpriseValue() float64 {
	return s.EffectiveMarketCap() + s.TotalDebt - s.Cash
}

// MissingFields lists the inputs a DCF run needs but this snapshot lacks.
// An empty result means the snapshot is usable as-is.
func (s *FinancialSnapshot) MissingFields() []string {
	var missing []string
	if s.Price <= 0 {
		missing = append(missing, "price")
	}
	if s.SharesOutstanding <= 0 {
		missing = append(missing, "shares_outstanding")
	}
	if s.FreeCashFlow == 0 {
		missing = append(missing, "free_cash_flow")
	}
	return missing
}

// Validate returns an error naming the missing fields, so the caller can
// route the user to manual entry instead of running a meaningless DCF.
func (s *FinancialSnapshot) Validate() error {
	if missing := s.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("snapshot for %s is incomplete: missing %s", s.Ticker, strings.Join(missing, ", "))
	}
	return nil
}
