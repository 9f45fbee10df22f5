package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "prospect.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTest(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var v int
	if err := db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil || v != 1 {
		t.Fatalf("user_version=%d err=%v", v, err)
	}
}

func TestClaimJournal(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }

	if err := db.RecordClaim(ctx, "b1", "L1", []string{"u1", "u2"}); err != nil {
		t.Fatalf("record claim: %v", err)
	}
	if err := db.RecordRevert(ctx, []string{"u2"}); err != nil {
		t.Fatalf("record revert: %v", err)
	}
	if err := db.RecordRevert(ctx, nil); err != nil {
		t.Fatalf("empty revert: %v", err)
	}

	got, err := db.RecentClaims(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Action != ActionRevert || got[0].LeadKey != "u2" {
		t.Fatalf("newest entry %+v", got[0])
	}
	if got[2].BatchID != "b1" || got[2].ListID != "L1" || got[2].At != base.Format(time.RFC3339Nano) {
		t.Fatalf("oldest entry %+v", got[2])
	}
}

func TestImportLedger(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	key := ImportKey("db", "Ada", "https://x/ada")

	seen, err := db.ImportSeen(ctx, key)
	if err != nil || seen {
		t.Fatalf("seen=%v err=%v", seen, err)
	}
	added, err := db.MarkImported(ctx, key, "db", "Ada")
	if err != nil || !added {
		t.Fatalf("added=%v err=%v", added, err)
	}
	added, err = db.MarkImported(ctx, key, "db", "Ada")
	if err != nil || added {
		t.Fatalf("second mark added=%v err=%v", added, err)
	}
	seen, err = db.ImportSeen(ctx, key)
	if err != nil || !seen {
		t.Fatalf("seen=%v err=%v", seen, err)
	}
	if ImportKey("other", "Ada", "https://x/ada") == key {
		t.Fatalf("key must depend on database id")
	}
}
