package importer

import (
	"context"
	"log"

	"prospect-engine/internal/notion"
	"prospect-engine/internal/store"
)

type PageCreator interface {
	CreatePage(ctx context.Context, databaseID string, properties map[string]any) (notion.Page, error)
}

// Ledger remembers which rows already became pages. Optional.
type Ledger interface {
	ImportSeen(ctx context.Context, key string) (bool, error)
	MarkImported(ctx context.Context, key, databaseID, name string) (bool, error)
}

type Summary struct {
	Total   int `json:"total"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Importer struct {
	Pages      PageCreator
	Ledger     Ledger
	DatabaseID string
}

// Properties maps a lead CSV row onto the lead database columns.
func Properties(r Row) map[string]any {
	return map[string]any{
		"Name":        notion.Title(r.Get("Name")),
		"URL":         notion.URL(r.Get("URL")),
		"Account":     notion.RichText(r.Get("Account")),
		"Geography":   notion.RichText(r.Get("Geography")),
		"Profile URL": notion.URL(r.Get("Profile URL")),
	}
}

// Run creates one page per row, in order. A row that fails is logged and
// counted and the import moves on; only cancellation or a broken ledger
// stops it early.
func (im *Importer) Run(ctx context.Context, rows []Row) (Summary, error) {
	sum := Summary{Total: len(rows)}
	log.Printf("[import] found %d rows to import", len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := row.Get("Name")
		key := store.ImportKey(im.DatabaseID, name, row.Get("URL"))

		if im.Ledger != nil {
			seen, err := im.Ledger.ImportSeen(ctx, key)
			if err != nil {
				return sum, err
			}
			if seen {
				sum.Skipped++
				log.Printf("[import] [%d/%d] skipped (already imported): %s", i+1, len(rows), name)
				continue
			}
		}

		if _, err := im.Pages.CreatePage(ctx, im.DatabaseID, Properties(row)); err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			log.Printf("level=warn msg=\"import row failed\" row=%d name=%q err=%v", i+1, name, err)
			continue
		}
		sum.Added++
		log.Printf("[import] [%d/%d] added: %s", i+1, len(rows), name)

		if im.Ledger != nil {
			if _, err := im.Ledger.MarkImported(ctx, key, im.DatabaseID, name); err != nil {
				return sum, err
			}
		}
	}
	log.Printf("[import] complete added=%d skipped=%d failed=%d", sum.Added, sum.Skipped, sum.Failed)
	return sum, nil
}
