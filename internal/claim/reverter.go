package claim

import (
	"context"
	"log"

	"prospect-engine/internal/domain"
	"prospect-engine/internal/leads"
)

type Reverter struct {
	Store   *leads.Store
	Journal Journal
}

func NewReverter(s *leads.Store, j Journal) *Reverter {
	return &Reverter{Store: s, Journal: j}
}

// RevertStuckClaims moves every processing lead back to new and returns how
// many moved. It cannot tell an abandoned claim from one a live run is still
// working on, so it must only run when no batch is in flight. A missing
// store reverts nothing.
func (r *Reverter) RevertStuckClaims(ctx context.Context) (int, error) {
	var keys []string
	err := r.Store.Update(ctx, func(d *leads.Data) (bool, error) {
		keys = keys[:0]
		for _, id := range d.ListIDs() {
			ls := d.Lists[id]
			for i := range ls {
				if ls[i].Status == domain.StatusProcessing {
					ls[i].Status = domain.StatusNew
					keys = append(keys, ls[i].Key())
				}
			}
		}
		return len(keys) > 0, nil
	})
	if leads.IsNotFound(err) {
		log.Printf("level=info msg=\"no lead store, nothing to revert\" path=%s", r.Store.Path())
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		log.Printf("level=info msg=\"reverted claims\" count=%d", len(keys))
		if r.Journal != nil {
			if jerr := r.Journal.RecordRevert(ctx, keys); jerr != nil {
				log.Printf("level=warn msg=\"journal revert failed\" err=%v", jerr)
			}
		}
	}
	return len(keys), nil
}
