package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"prospect-engine/internal/notion"
)

const leadsCSV = "\ufeffName,URL,Account,Geography\n" +
	"Ada Lovelace,https://x/ada,\"Analytical Engines, Ltd\",London\n" +
	"\"Bob \"\"The Builder\"\"\",,Bob Co\n" +
	"Cy,https://x/cy,Cy Inc,\"Austin, TX\"\n"

func TestDecodeQuotedFields(t *testing.T) {
	rows, err := Decode(strings.NewReader(leadsCSV))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Get("Name") != "Ada Lovelace" || rows[0].Get("Account") != "Analytical Engines, Ltd" {
		t.Fatalf("row 0: %v", rows[0])
	}
	if rows[1].Get("Name") != `Bob "The Builder"` || rows[1].Get("Geography") != "" {
		t.Fatalf("row 1: %v", rows[1])
	}
	if rows[2].Get("Geography") != "Austin, TX" {
		t.Fatalf("row 2: %v", rows[2])
	}
}

func TestRowGetCollapsesWhitespace(t *testing.T) {
	r := Row{"Name": "  Ada\u00a0 \tLovelace "}
	if got := r.Get("Name"); got != "Ada Lovelace" {
		t.Fatalf("got %q", got)
	}
	if got := r.Get("missing"); got != "" {
		t.Fatalf("missing column %q", got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	rows, err := Decode(strings.NewReader(""))
	if err != nil || len(rows) != 0 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
}

type fakePages struct {
	created []string
	failOn  string
}

func (f *fakePages) CreatePage(_ context.Context, _ string, props map[string]any) (notion.Page, error) {
	title := props["Name"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"].(string)
	if title == f.failOn {
		return notion.Page{}, &notion.APIError{StatusCode: 400, Body: "bad"}
	}
	f.created = append(f.created, title)
	return notion.Page{ID: fmt.Sprint(len(f.created))}, nil
}

type memLedger map[string]bool

func (m memLedger) ImportSeen(_ context.Context, key string) (bool, error) { return m[key], nil }
func (m memLedger) MarkImported(_ context.Context, key, _, _ string) (bool, error) {
	added := !m[key]
	m[key] = true
	return added, nil
}

func TestRunContinuesPastFailuresAndSkipsImported(t *testing.T) {
	rows, err := Decode(strings.NewReader(leadsCSV))
	if err != nil {
		t.Fatal(err)
	}
	pages := &fakePages{failOn: `Bob "The Builder"`}
	ledger := memLedger{}
	im := &Importer{Pages: pages, Ledger: ledger, DatabaseID: "db"}

	sum, err := im.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum != (Summary{Total: 3, Added: 2, Failed: 1}) {
		t.Fatalf("first run %+v", sum)
	}

	pages.failOn = ""
	sum, err = im.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if sum != (Summary{Total: 3, Added: 1, Skipped: 2}) {
		t.Fatalf("second run %+v", sum)
	}
	if len(pages.created) != 3 {
		t.Fatalf("created %v", pages.created)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	im := &Importer{Pages: &fakePages{}, DatabaseID: "db"}
	_, err := im.Run(ctx, []Row{{"Name": "Ada"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProperties(t *testing.T) {
	props := Properties(Row{"Name": " Ada ", "URL": "", "Account": "Acme"})
	if u := props["URL"].(map[string]any); u["url"] != nil {
		t.Fatalf("empty URL should be null")
	}
	if u := props["Profile URL"].(map[string]any); u["url"] != nil {
		t.Fatalf("missing Profile URL should be null")
	}
	for _, k := range []string{"Name", "URL", "Account", "Geography", "Profile URL"} {
		if _, ok := props[k]; !ok {
			t.Fatalf("missing property %s", k)
		}
	}
}
