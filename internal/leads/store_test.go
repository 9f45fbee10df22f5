package leads

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"prospect-engine/internal/domain"
)

const sampleDoc = `{
  "updated_by": "scanner",
  "leads_data": {
    "L1": [
      {"name": "Ada", "profile_url": "https://x/ada", "status": "new", "scanned_at": "2026-02-25T14:44:00Z"},
      {"name": "Bob", "profile_url": "https://x/bob", "status": "invited", "tags": ["a", "b"]}
    ],
    "L2": [
      {"name": "Cy", "status": "processing"}
    ]
  }
}`

func canonical(t *testing.T, b []byte) any {
	t.Helper()
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend([]byte(sampleDoc))
	s := NewStore(mem, nil)

	d, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := canonical(t, []byte(sampleDoc))
	got := canonical(t, mem.Bytes())
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip changed document\nwant %v\ngot  %v", want, got)
	}

	d2, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	names := []string{d2.Lists["L1"][0].Name, d2.Lists["L1"][1].Name}
	if names[0] != "Ada" || names[1] != "Bob" {
		t.Fatalf("order not preserved: %v", names)
	}
}

func TestLoadSaveKeepsMissingAndNullFields(t *testing.T) {
	docs := []string{
		`{"leads_data":{"L":[{"name":"a"}]}}`,
		`{"leads_data":{"L":[{"name":"a","status":null}]}}`,
		`{"leads_data":{"L":[{"name":null,"profile_url":"","status":"new"}]}}`,
		`{"leads_data":{"L":[null,{"name":"b","status":"new"}]}}`,
		`{"leads_data":{"L":null}}`,
		`{"leads_data":null,"v":1}`,
		`{"v":1}`,
	}
	for _, doc := range docs {
		mem := NewMemoryBackend([]byte(doc))
		s := NewStore(mem, nil)
		d, err := s.Load(context.Background())
		if err != nil {
			t.Fatalf("%s: load: %v", doc, err)
		}
		if err := s.Save(context.Background(), d); err != nil {
			t.Fatalf("%s: save: %v", doc, err)
		}
		want := canonical(t, []byte(doc))
		if doc == `{"v":1}` {
			// a store without leads_data gains an empty one
			want = canonical(t, []byte(`{"leads_data":{},"v":1}`))
		}
		if got := canonical(t, mem.Bytes()); !reflect.DeepEqual(want, got) {
			t.Fatalf("round trip changed %s\ngot %s", doc, mem.Bytes())
		}
	}
}

func TestClaimedLeadNextToNullStatusLeads(t *testing.T) {
	doc := `{"leads_data":{"L":[{"name":"a","status":"new"},{"name":"b"},{"name":"c","status":null}]}}`
	mem := NewMemoryBackend([]byte(doc))
	s := NewStore(mem, nil)
	err := s.Update(context.Background(), func(d *Data) (bool, error) {
		d.Lists["L"][0].Status = domain.StatusProcessing
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := canonical(t, []byte(`{"leads_data":{"L":[{"name":"a","status":"processing"},{"name":"b"},{"name":"c","status":null}]}}`))
	if got := canonical(t, mem.Bytes()); !reflect.DeepEqual(want, got) {
		t.Fatalf("untouched leads changed: %s", mem.Bytes())
	}
}

func TestLoadUnreadableIsReadError(t *testing.T) {
	dir := t.TempDir()
	// a directory where the store file should be
	path := filepath.Join(dir, "leads.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path, time.Second)
	_, err := s.Load(context.Background())
	var re *ReadError
	if !errors.As(err, &re) || re.Path != path {
		t.Fatalf("expected ReadError for %s, got %v", path, err)
	}
}

func TestLoadMissing(t *testing.T) {
	s := NewStore(NewMemoryBackend(nil), nil)
	_, err := s.Load(context.Background())
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	for _, doc := range []string{"{not json", "", `{"leads_data": {"L1": "nope"}}`} {
		s := NewStore(NewMemoryBackend([]byte(doc)), nil)
		_, err := s.Load(context.Background())
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("doc %q: expected DecodeError, got %v", doc, err)
		}
	}
}

func TestSaveWriteError(t *testing.T) {
	mem := NewMemoryBackend([]byte(sampleDoc))
	mem.WriteErr = errors.New("disk full")
	s := NewStore(mem, nil)

	err := s.Save(context.Background(), Data{})
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError, got %v", err)
	}
}

func TestUpdateSkipsSaveWhenUnchangedOrFailed(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend([]byte(sampleDoc))
	s := NewStore(mem, nil)

	if err := s.Update(ctx, func(d *Data) (bool, error) { return false, nil }); err != nil {
		t.Fatalf("update: %v", err)
	}
	boom := errors.New("boom")
	err := s.Update(ctx, func(d *Data) (bool, error) {
		d.Lists["L1"][0].Status = domain.StatusProcessing
		return true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if mem.Writes() != 0 {
		t.Fatalf("expected no writes, got %d", mem.Writes())
	}
}

func TestUpdateMissingStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.json")
	s := NewFileStore(path, time.Second)

	called := false
	err := s.Update(context.Background(), func(d *Data) (bool, error) {
		called = true
		return true, nil
	})
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if called {
		t.Fatalf("fn must not run without a store")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files created, found %d", len(entries))
	}
}

func TestFileBackendAtomicWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "leads.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path, time.Second)

	err := s.Update(ctx, func(d *Data) (bool, error) {
		d.Lists["L2"][0].Status = domain.StatusNew
		return true, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	d, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Lists["L2"][0].Status != domain.StatusNew {
		t.Fatalf("status not persisted: %s", d.Lists["L2"][0].Status)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFlockLockerTimesOut(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leads.json")

	first := NewFlockLocker(path, time.Second)
	release, err := first.Lock(ctx)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	defer release()

	second := NewFlockLocker(path, 100*time.Millisecond)
	if _, err := second.Lock(ctx); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	release()
	again, err := second.Lock(ctx)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	again()
}

func TestInitCreatesOnlyWhenMissing(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend(nil)
	s := NewStore(mem, nil)

	created, err := s.Init(ctx)
	if err != nil || !created {
		t.Fatalf("expected created, got %v %v", created, err)
	}
	created, err = s.Init(ctx)
	if err != nil || created {
		t.Fatalf("expected existing store kept, got %v %v", created, err)
	}
	d, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.Lists) != 0 {
		t.Fatalf("expected empty store, got %d lists", len(d.Lists))
	}
}
