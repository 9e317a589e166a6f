package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/atelierhq/studio-platform/internal/app/storage"
	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

// fakeDocstore is a minimal PostgREST stand-in covering the requests the
// store issues.
type fakeDocstore struct {
	t *testing.T

	rejectOrdered bool
	rows          []map[string]any
	lastPrefer    string
	lastQuery     string
	reorderBatch  []map[string]any
}

func (f *fakeDocstore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/projects") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.lastPrefer = r.Header.Get("Prefer")
		f.lastQuery = r.URL.RawQuery

		switch r.Method {
		case http.MethodGet:
			if strings.Contains(r.URL.RawQuery, "order=") && f.rejectOrdered {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"message":"failed to parse order"}`)
				return
			}
			rows := f.rows
			if off, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
				if off > len(rows) {
					off = len(rows)
				}
				rows = rows[off:]
			}
			if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim < len(rows) {
				rows = rows[:lim]
			}
			json.NewEncoder(w).Encode(rows)

		case http.MethodPost:
			var batch []map[string]any
			if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if strings.Contains(r.Header.Get("Prefer"), "merge-duplicates") {
				f.reorderBatch = batch
			}
			json.NewEncoder(w).Encode(batch)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newTestStore(t *testing.T, fake *fakeDocstore) (*Store, func()) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New(client, nil), srv.Close
}

func seedRows() []map[string]any {
	// Deliberately unsorted; sort_order 2 appears twice to exercise the
	// created_at then id tiebreak.
	return []map[string]any{
		{"id": "p3", "title": "C", "sort_order": 2, "active": true, "created_at": "2024-01-02T00:00:00Z", "updated_at": "2024-01-02T00:00:00Z"},
		{"id": "p1", "title": "A", "sort_order": 1, "active": true, "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"},
		{"id": "p2", "title": "B", "sort_order": 2, "active": true, "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"},
	}
}

func TestListProjectsUsesOrderedQuery(t *testing.T) {
	fake := &fakeDocstore{t: t, rows: seedRows()}
	store, done := newTestStore(t, fake)
	defer done()

	_, err := store.ListProjects(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(fake.lastQuery, "order=sort_order.asc") {
		t.Fatalf("expected ordered query, got %q", fake.lastQuery)
	}
}

func TestListProjectsFallbackSortsIdentically(t *testing.T) {
	fake := &fakeDocstore{t: t, rows: seedRows(), rejectOrdered: true}
	store, done := newTestStore(t, fake)
	defer done()

	list, err := store.ListProjects(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("list with fallback: %v", err)
	}

	wantIDs := []string{"p1", "p2", "p3"}
	if len(list) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(list))
	}
	for i, want := range wantIDs {
		if list[i].ID != want {
			t.Fatalf("fallback position %d: want %s got %s", i, want, list[i].ID)
		}
	}
}

func TestListProjectsFallbackPagesThroughLargeTables(t *testing.T) {
	orig := fallbackPageSize
	fallbackPageSize = 2
	defer func() { fallbackPageSize = orig }()

	// Rows arrive in descending display order so the sort has to work across
	// page boundaries.
	rows := make([]map[string]any, 0, 5)
	for i := 5; i >= 1; i-- {
		rows = append(rows, map[string]any{
			"id": fmt.Sprintf("p%d", i), "title": fmt.Sprintf("P%d", i), "sort_order": i,
			"active": true, "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
		})
	}
	fake := &fakeDocstore{t: t, rows: rows, rejectOrdered: true}
	store, done := newTestStore(t, fake)
	defer done()

	list, err := store.ListProjects(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("list with paged fallback: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("expected all 5 projects across pages, got %d", len(list))
	}
	for i, p := range list {
		if p.Order != i+1 {
			t.Fatalf("position %d: want order %d got %d (%s)", i, i+1, p.Order, p.ID)
		}
	}
}

func TestListProjectsActiveFilterQuery(t *testing.T) {
	fake := &fakeDocstore{t: t, rows: []map[string]any{}}
	store, done := newTestStore(t, fake)
	defer done()

	if _, err := store.ListProjects(context.Background(), storage.Filter{ActiveOnly: true}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(fake.lastQuery, "active=eq.true") {
		t.Fatalf("expected active filter in query, got %q", fake.lastQuery)
	}
}

func TestReorderSendsSingleUpsertBatch(t *testing.T) {
	fake := &fakeDocstore{t: t}
	store, done := newTestStore(t, fake)
	defer done()

	if err := store.ReorderProjects(context.Background(), []string{"p2", "p1"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	if len(fake.reorderBatch) != 2 {
		t.Fatalf("expected one batch of 2 entries, got %+v", fake.reorderBatch)
	}
	if fake.reorderBatch[0]["id"] != "p2" || fake.reorderBatch[0]["sort_order"] != float64(1) {
		t.Fatalf("first entry wrong: %+v", fake.reorderBatch[0])
	}
	if fake.reorderBatch[1]["id"] != "p1" || fake.reorderBatch[1]["sort_order"] != float64(2) {
		t.Fatalf("second entry wrong: %+v", fake.reorderBatch[1])
	}
	if !strings.Contains(fake.lastQuery, "on_conflict=id") {
		t.Fatalf("expected upsert conflict target, got %q", fake.lastQuery)
	}
	if !strings.Contains(fake.lastPrefer, "merge-duplicates") {
		t.Fatalf("expected merge-duplicates preference, got %q", fake.lastPrefer)
	}
}

func TestGetMissingProjectIsNotFound(t *testing.T) {
	fake := &fakeDocstore{t: t, rows: []map[string]any{}}
	store, done := newTestStore(t, fake)
	defer done()

	_, err := store.GetProject(context.Background(), "ghost")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUnreachableStoreIsStoreUnavailable(t *testing.T) {
	client, err := NewClient(Config{URL: "http://127.0.0.1:1", ServiceKey: "key", Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	store := New(client, nil)

	_, err = store.ListProjects(context.Background(), storage.Filter{})
	if !apperrors.IsStoreUnavailable(err) {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
}

func TestServerErrorIsStoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"db on fire"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, ServiceKey: "key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	store := New(client, nil)

	_, err = store.GetProject(context.Background(), "p1")
	if !apperrors.IsStoreUnavailable(err) {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
}
