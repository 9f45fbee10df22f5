package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"prospect-engine/internal/config"
)

type NotionHandler struct {
	CfgVal     *atomic.Value // config.Config
	NewCounter func() (StatusCounter, error)
}

// Counts reports page counts per status. ?status=a,b overrides the
// configured statuses, ?db= the configured database, ?all=1 follows cursors.
func (h NotionHandler) Counts(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	q := r.URL.Query()

	dbID := strings.TrimSpace(q.Get("db"))
	if dbID == "" {
		dbID = cfg.Notion.DatabaseID
	}
	if dbID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_database", "no Notion database id configured")
		return
	}

	statuses := cfg.Notion.Statuses
	if s := q.Get("status"); s != "" {
		statuses = nil
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, part)
			}
		}
	}
	if len(statuses) == 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_status", "no statuses to count")
		return
	}

	if h.NewCounter == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "notion_unavailable", "Notion client not configured")
		return
	}
	counter, err := h.NewCounter()
	if err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "notion_unavailable", err.Error())
		return
	}

	all := q.Get("all") == "1" || q.Get("all") == "true"
	counts, err := counter.CountStatuses(r.Context(), dbID, statuses, all)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "notion_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"database_id": dbID, "counts": counts})
}
