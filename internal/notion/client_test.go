package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func rows(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": fmt.Sprint(i)}
	}
	return out
}

// fakeNotion serves two pages for "start" (100 + 20) and one page for anything else (7).
func fakeNotion(t *testing.T) (*httptest.Server, *[]queryRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" || r.Header.Get("Notion-Version") != DefaultVersion {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
			return
		}
		if r.URL.Path != "/databases/db-1/query" {
			http.NotFound(w, r)
			return
		}
		var q queryRequest
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		seen = append(seen, q)
		mu.Unlock()

		var resp map[string]any
		switch {
		case q.Filter.Status.Equals == "start" && q.StartCursor == "":
			resp = map[string]any{"results": rows(100), "has_more": true, "next_cursor": "c2"}
		case q.Filter.Status.Equals == "start" && q.StartCursor == "c2":
			resp = map[string]any{"results": rows(20), "has_more": false, "next_cursor": nil}
		default:
			resp = map[string]any{"results": rows(7), "has_more": false, "next_cursor": nil}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestCountStatusFirstPageOnly(t *testing.T) {
	srv, seen := fakeNotion(t)
	c := New("secret", Options{BaseURL: srv.URL})

	sc, err := c.CountStatus(context.Background(), "db-1", "start", false)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if sc.Count != 100 || !sc.HasMore || sc.NextCursor != "c2" || sc.Pages != 1 {
		t.Fatalf("unexpected count %+v", sc)
	}
	if (*seen)[0].PageSize != 100 || (*seen)[0].Filter.Property != "Status" {
		t.Fatalf("unexpected request %+v", (*seen)[0])
	}
}

func TestCountStatusFollowsCursor(t *testing.T) {
	srv, _ := fakeNotion(t)
	c := New("secret", Options{BaseURL: srv.URL})

	sc, err := c.CountStatus(context.Background(), "db-1", "start", true)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if sc.Count != 120 || sc.HasMore || sc.Pages != 2 {
		t.Fatalf("unexpected count %+v", sc)
	}
}

func TestCountStatusesKeepsOrder(t *testing.T) {
	srv, _ := fakeNotion(t)
	c := New("secret", Options{BaseURL: srv.URL})

	got, err := c.CountStatuses(context.Background(), "db-1", []string{"done", "start"}, true)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(got) != 2 || got[0].Status != "done" || got[0].Count != 7 || got[1].Count != 120 {
		t.Fatalf("unexpected counts %+v", got)
	}
}

func TestAPIError(t *testing.T) {
	srv, _ := fakeNotion(t)
	c := New("wrong", Options{BaseURL: srv.URL})

	_, err := c.CountStatus(context.Background(), "db-1", "start", false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Body, "unauthorized") {
		t.Fatalf("body not kept: %q", apiErr.Body)
	}
}

func TestCreatePage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"page-1","url":"https://notion.so/page-1"}`))
	}))
	defer srv.Close()

	c := New("secret", Options{BaseURL: srv.URL})
	p, err := c.CreatePage(context.Background(), "db-2", map[string]any{
		"Name": Title("Ada"),
		"URL":  URL(""),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != "page-1" {
		t.Fatalf("page %+v", p)
	}
	parent := got["parent"].(map[string]any)
	if parent["database_id"] != "db-2" {
		t.Fatalf("parent %v", parent)
	}
	props := got["properties"].(map[string]any)
	if u := props["URL"].(map[string]any); u["url"] != nil {
		t.Fatalf("empty url should be null, got %v", u["url"])
	}
}
