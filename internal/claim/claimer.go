package claim

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/google/uuid"

	"prospect-engine/internal/domain"
	"prospect-engine/internal/leads"
)

const (
	DefaultBatchSize   = 5
	DefaultMinEligible = 5
)

// Chooser picks an index in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// Journal records claim activity. It observes only; a failing journal never
// fails a claim.
type Journal interface {
	RecordClaim(ctx context.Context, batchID, listID string, keys []string) error
	RecordRevert(ctx context.Context, keys []string) error
}

type Result struct {
	ListID  string        `json:"listId,omitempty"`
	BatchID string        `json:"batchId,omitempty"`
	Leads   []domain.Lead `json:"leads"`
	Message string        `json:"message,omitempty"`
}

// Empty reports the "no eligible work" outcome. It is not an error.
func (r Result) Empty() bool { return len(r.Leads) == 0 }

type Claimer struct {
	Store   *leads.Store
	Chooser Chooser
	Journal Journal
	NewID   func() string
}

func NewClaimer(s *leads.Store, j Journal) *Claimer {
	return &Claimer{
		Store:   s,
		Chooser: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Journal: j,
		NewID:   uuid.NewString,
	}
}

// ClaimBatch moves up to batchSize new leads of one eligible list to
// processing and returns exactly those leads. A list is eligible when it has
// at least minEligible new leads; among eligible lists one is picked at
// random. Non-positive arguments fall back to the defaults.
func (c *Claimer) ClaimBatch(ctx context.Context, batchSize, minEligible int) (Result, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if minEligible <= 0 {
		minEligible = DefaultMinEligible
	}

	var res Result
	err := c.Store.Update(ctx, func(d *leads.Data) (bool, error) {
		eligible := eligibleLists(*d, minEligible)
		if len(eligible) == 0 {
			res = Result{Leads: []domain.Lead{}, Message: fmt.Sprintf("No lists have %d+ new leads.", minEligible)}
			return false, nil
		}

		listID := eligible[c.choose(len(eligible))]
		ls := d.Lists[listID]
		batch := make([]domain.Lead, 0, min(batchSize, len(ls)))
		for i := range ls {
			if len(batch) >= batchSize {
				break
			}
			if ls[i].Status != domain.StatusNew {
				continue
			}
			ls[i].Status = domain.StatusProcessing
			batch = append(batch, ls[i])
		}
		res = Result{ListID: listID, BatchID: c.newID(), Leads: batch}
		return true, nil
	})
	if err != nil {
		return Result{}, err
	}

	if !res.Empty() {
		log.Printf("level=info msg=\"claimed batch\" list=%s batch=%s leads=%d", res.ListID, res.BatchID, len(res.Leads))
		c.record(ctx, res)
	}
	return res, nil
}

// eligibleLists returns ids sorted so a seeded chooser picks deterministically.
func eligibleLists(d leads.Data, minEligible int) []string {
	var out []string
	for _, id := range d.ListIDs() {
		if d.CountStatus(id, domain.StatusNew) >= minEligible {
			out = append(out, id)
		}
	}
	return out
}

func (c *Claimer) choose(n int) int {
	if n == 1 || c.Chooser == nil {
		return 0
	}
	i := c.Chooser.IntN(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func (c *Claimer) newID() string {
	if c.NewID == nil {
		return uuid.NewString()
	}
	return c.NewID()
}

func (c *Claimer) record(ctx context.Context, res Result) {
	if c.Journal == nil {
		return
	}
	keys := make([]string, 0, len(res.Leads))
	for _, l := range res.Leads {
		keys = append(keys, l.Key())
	}
	if err := c.Journal.RecordClaim(ctx, res.BatchID, res.ListID, keys); err != nil {
		log.Printf("level=warn msg=\"journal claim failed\" batch=%s err=%v", res.BatchID, err)
	}
}
