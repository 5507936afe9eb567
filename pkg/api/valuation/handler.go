// Package valuation exposes the DCF core over HTTP. Handlers only decode,
// delegate, and encode; every number comes out of pkg/core.
package valuation

import (
	"encoding/json"
	"errors"
	"net/http"

	"reverse_dcf/pkg/core/config"
	"reverse_dcf/pkg/core/dcf"
	"reverse_dcf/pkg/core/report"
	"reverse_dcf/pkg/core/snapshot"
)

// Handler holds the analysis-wide defaults shared by all endpoints.
type Handler struct {
	cfg config.MarketConfig
}

// NewHandler creates a valuation handler.
func NewHandler(cfg config.MarketConfig) *Handler {
	return &Handler{cfg: cfg}
}

// Request is the shared input shape: a partial snapshot plus optional
// assumption overrides. Zero-valued assumptions fall back to the configured
// defaults (and the discount rate to the WACC estimate).
type Request struct {
	Snapshot    snapshot.PartialRecord `json:"snapshot"`
	Assumptions dcf.Assumptions        `json:"assumptions"`
	TargetEV    float64                `json:"target_ev"` // 0 means the snapshot's market-implied EV
	Format      string                 `json:"format"`    // report endpoint: "markdown" (default) or "html"
}

// resolved is the request after normalization and default filling.
type resolved struct {
	snap        snapshot.FinancialSnapshot
	assumptions dcf.Assumptions
	targetEV    float64
	rate        float64
	breakdown   dcf.WACCBreakdown
}

func (h *Handler) resolve(req Request) resolved {
	r := resolved{
		snap:        snapshot.Normalize(req.Snapshot),
		assumptions: req.Assumptions,
		targetEV:    req.TargetEV,
	}

	r.rate, r.breakdown = dcf.EstimateDiscountRate(&r.snap, h.cfg.MarketAssumptions())
	if r.assumptions.DiscountRate == 0 {
		r.assumptions.DiscountRate = r.rate
	}
	if r.assumptions.TerminalGrowth == 0 {
		r.assumptions.TerminalGrowth = h.cfg.TerminalGrowth
	}
	if r.assumptions.ProjectionYears <= 0 {
		r.assumptions.ProjectionYears = h.cfg.ProjectionYears
	}
	if r.targetEV == 0 {
		r.targetEV = r.snap.EnterpriseValue()
	}
	return r
}

// cors sets the access headers the local UI needs. Returns true when the
// request was a preflight and is already answered.
func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func decode(w http.ResponseWriter, r *http.Request, req *Request) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// coreStatus maps core precondition failures to 422 and anything else to 500.
func coreStatus(err error) int {
	if errors.Is(err, dcf.ErrNonPositiveCashFlow) || errors.Is(err, dcf.ErrInvalidAssumptions) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// HandleProject runs the forward DCF and attributes equity value.
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res := h.resolve(req)

	val, err := dcf.ValueCompany(&res.snap, res.assumptions)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	respond(w, struct {
		*dcf.CompanyValuation
		Assumptions dcf.Assumptions `json:"assumptions"`
	}{val, res.assumptions})
}

// HandleImplied solves for the growth rate the market is pricing in.
func (h *Handler) HandleImplied(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res := h.resolve(req)

	sol, err := dcf.SolveImpliedGrowth(res.targetEV, res.snap.FreeCashFlow,
		res.assumptions.DiscountRate, res.assumptions.TerminalGrowth, res.assumptions.ProjectionYears)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	respond(w, struct {
		dcf.SolveResult
		TargetEV     float64 `json:"target_ev"`
		DiscountRate float64 `json:"discount_rate"`
	}{sol, res.targetEV, res.assumptions.DiscountRate})
}

// HandleSensitivity builds the implied-growth grid.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res := h.resolve(req)

	cells, err := dcf.BuildSensitivityGrid(res.snap.FreeCashFlow, res.targetEV,
		res.assumptions.DiscountRate, res.assumptions.TerminalGrowth, res.assumptions.ProjectionYears)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	respond(w, struct {
		Cells    []dcf.SensitivityCell `json:"cells"`
		TargetEV float64               `json:"target_ev"`
	}{cells, res.targetEV})
}

// HandleWACC returns the estimated discount rate with its provenance.
func (h *Handler) HandleWACC(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res := h.resolve(req)

	respond(w, struct {
		Rate      float64           `json:"rate"`
		Breakdown dcf.WACCBreakdown `json:"breakdown"`
	}{res.rate, res.breakdown})
}

// HandleReport runs the full analysis and returns it rendered.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req Request
	if !decode(w, r, &req) {
		return
	}
	res := h.resolve(req)

	analysis := report.NewAnalysis(&res.snap, res.assumptions)
	analysis.DiscountRate = res.rate
	analysis.WACCBreakdown = &res.breakdown
	analysis.TargetEV = res.targetEV

	val, err := dcf.ValueCompany(&res.snap, res.assumptions)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	analysis.Valuation = val

	sol, err := dcf.SolveImpliedGrowth(res.targetEV, res.snap.FreeCashFlow,
		res.assumptions.DiscountRate, res.assumptions.TerminalGrowth, res.assumptions.ProjectionYears)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	analysis.Implied = &sol

	cells, err := dcf.BuildSensitivityGrid(res.snap.FreeCashFlow, res.targetEV,
		res.assumptions.DiscountRate, res.assumptions.TerminalGrowth, res.assumptions.ProjectionYears)
	if err != nil {
		http.Error(w, err.Error(), coreStatus(err))
		return
	}
	analysis.Sensitivity = cells

	md := report.BuildMarkdown(analysis)
	if req.Format == "html" {
		html, err := report.RenderHTML(md)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}

	respond(w, struct {
		ID       string `json:"id"`
		Markdown string `json:"markdown"`
	}{analysis.ID, md})
}
