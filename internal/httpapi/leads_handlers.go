package httpapi

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"prospect-engine/internal/config"
	"prospect-engine/internal/events"
	"prospect-engine/internal/leads"
	"prospect-engine/internal/store"
)

type LeadsHandler struct {
	Store    *leads.Store
	Claimer  BatchClaimer
	Reverter ClaimReverter
	Hub      *events.Hub
	CfgVal   *atomic.Value // config.Config
}

func (h LeadsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.Load(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, d.Summary())
}

// Claim answers 200 with an empty leads array when no list is eligible.
func (h LeadsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	batchSize, minEligible := 0, 0
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok {
			batchSize, minEligible = cfg.Leads.BatchSize, cfg.Leads.MinEligible
		}
	}
	batchSize, ok := queryInt(r, "batch_size", batchSize, config.MaxBatchSize)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("batch_size must be an integer in 0..%d", config.MaxBatchSize))
		return
	}
	minEligible, ok = queryInt(r, "min_eligible", minEligible, config.MaxMinEligible)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("min_eligible must be an integer in 0..%d", config.MaxMinEligible))
		return
	}

	res, err := h.Claimer.ClaimBatch(r.Context(), batchSize, minEligible)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !res.Empty() {
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeLeadsClaimed, map[string]any{
			"listId":  res.ListID,
			"batchId": res.BatchID,
			"count":   len(res.Leads),
		})
	}
	writeJSON(w, res)
}

func (h LeadsHandler) Revert(w http.ResponseWriter, r *http.Request) {
	n, err := h.Reverter.RevertStuckClaims(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if n > 0 {
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeLeadsReverted, map[string]any{"reverted": n})
	}
	writeJSON(w, map[string]any{"reverted": n})
}

type ClaimsHandler struct {
	History ClaimHistory
}

func (h ClaimsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "journal_unavailable", "claim journal is not open")
		return
	}
	limit, ok := queryInt(r, "limit", 100, 5000)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
		return
	}
	entries, err := h.History.RecentClaims(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}
	if entries == nil {
		entries = []store.ClaimEntry{}
	}
	writeJSON(w, entries)
}
