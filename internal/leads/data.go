package leads

import (
	"bytes"
	"encoding/json"
	"sort"

	"prospect-engine/internal/domain"
)

const leadsDataKey = "leads_data"

// Data is the whole persisted document: lists of leads keyed by list id.
// Top-level fields other than leads_data are carried through unchanged.
type Data struct {
	Lists map[string][]domain.Lead
	Extra map[string]json.RawMessage

	// leads_data was JSON null in the source document
	nullLists bool
}

func (d Data) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+1)
	for k, v := range d.Extra {
		m[k] = v
	}
	switch {
	case len(d.Lists) == 0 && d.nullLists:
		m[leadsDataKey] = nil
	case d.Lists == nil:
		m[leadsDataKey] = map[string][]domain.Lead{}
	default:
		m[leadsDataKey] = d.Lists
	}
	return json.Marshal(m)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*d = Data{Lists: map[string][]domain.Lead{}}
	if raw, ok := m[leadsDataKey]; ok {
		delete(m, leadsDataKey)
		d.nullLists = bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
		if err := json.Unmarshal(raw, &d.Lists); err != nil {
			return err
		}
		if d.Lists == nil {
			d.Lists = map[string][]domain.Lead{}
		}
	}
	if len(m) > 0 {
		d.Extra = m
	}
	return nil
}

// ListIDs returns the list ids in sorted order.
func (d Data) ListIDs() []string {
	ids := make([]string, 0, len(d.Lists))
	for id := range d.Lists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CountStatus counts leads in one list with the given status.
func (d Data) CountStatus(listID string, st domain.Status) int {
	n := 0
	for _, l := range d.Lists[listID] {
		if l.Status == st {
			n++
		}
	}
	return n
}

type ListSummary struct {
	ListID   string         `json:"list_id"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

type Summary struct {
	Lists    []ListSummary  `json:"lists"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func (d Data) Summary() Summary {
	out := Summary{ByStatus: map[string]int{}}
	for _, id := range d.ListIDs() {
		ls := ListSummary{ListID: id, ByStatus: map[string]int{}}
		for _, l := range d.Lists[id] {
			ls.Total++
			ls.ByStatus[string(l.Status)]++
			out.ByStatus[string(l.Status)]++
		}
		out.Total += ls.Total
		out.Lists = append(out.Lists, ls)
	}
	return out
}

// Append adds freshly scanned leads to a list. Leads with no status start as
// new; leads whose key already appears anywhere in the store are skipped.
func (d *Data) Append(listID string, incoming []domain.Lead) (added, skipped int) {
	if d.Lists == nil {
		d.Lists = map[string][]domain.Lead{}
	}
	seen := map[string]bool{}
	for _, ls := range d.Lists {
		for _, l := range ls {
			if k := l.Key(); k != "" {
				seen[k] = true
			}
		}
	}
	for _, l := range incoming {
		k := l.Key()
		if k != "" && seen[k] {
			skipped++
			continue
		}
		if l.Status == "" {
			l.Status = domain.StatusNew
		}
		if k != "" {
			seen[k] = true
		}
		d.Lists[listID] = append(d.Lists[listID], l)
		added++
	}
	return added, skipped
}
