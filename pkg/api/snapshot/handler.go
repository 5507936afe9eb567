// Package snapshot exposes the snapshot acquisition endpoints: provider
// fetch by ticker, and manual entry for when the provider comes back empty.
package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	core "reverse_dcf/pkg/core/snapshot"
)

// Provider is the data-fetch collaborator. Declared here so tests can swap
// the network out.
type Provider interface {
	FetchSnapshot(ctx context.Context, ticker string) (*core.FinancialSnapshot, error)
}

// Handler serves snapshot acquisition.
type Handler struct {
	provider Provider
}

// NewHandler creates a snapshot handler backed by the given provider.
func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

type fetchRequest struct {
	Ticker string `json:"ticker"`
}

type snapshotResponse struct {
	Snapshot *core.FinancialSnapshot `json:"snapshot"`
	// Missing lists DCF inputs the snapshot lacks, so the UI can prompt for
	// manual entry instead of failing later.
	Missing []string `json:"missing,omitempty"`
}

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

// HandleFetch resolves a ticker through the market-data provider.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Ticker == "" {
		http.Error(w, "Missing ticker", http.StatusBadRequest)
		return
	}

	snap, err := h.provider.FetchSnapshot(r.Context(), req.Ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotResponse{
		Snapshot: snap,
		Missing:  snap.MissingFields(),
	})
}

// HandleManual accepts a hand-entered Hjson record as the request body and
// normalizes it exactly like fetched data.
func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	snap, err := core.ParseManual(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotResponse{
		Snapshot: snap,
		Missing:  snap.MissingFields(),
	})
}
