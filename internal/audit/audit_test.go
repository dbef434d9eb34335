package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func seed(t *testing.T, store *Store, entries ...Entry) {
	t.Helper()
	for _, e := range entries {
		if _, err := store.Log(context.Background(), e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
}

func TestNewEntrySuccess(t *testing.T) {
	res := flow.Success(schema.Value{"isFraudulent": true})
	res.Meta = flow.Meta{Duration: 1500 * time.Millisecond, Usage: model.Usage{Model: "gemini-2.0-flash", InputTokens: 12, OutputTokens: 4}}

	e, err := NewEntry(SourceAPI, "fraud-refund-detection", map[string]any{"orderValue": 10}, res)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if e.Status != "success" || e.DurationMS != 1500 || e.Model != "gemini-2.0-flash" {
		t.Errorf("entry = %+v", e)
	}
	if string(e.Output) != `{"isFraudulent":true}` {
		t.Errorf("output = %s", e.Output)
	}
	if string(e.Input) != `{"orderValue":10}` {
		t.Errorf("input = %s", e.Input)
	}
}

func TestNewEntryFailure(t *testing.T) {
	reg := flow.NewRegistry()
	res := flow.NewRunner(reg, nil).Invoke(context.Background(), "missing", nil)

	e, err := NewEntry(SourceMCP, "missing", nil, res)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if e.Status != "failure" || e.Kind != flow.KindNotFound {
		t.Errorf("entry = %+v", e)
	}
	if e.Output != nil || e.Input != nil {
		t.Errorf("unexpected payloads: input=%s output=%s", e.Input, e.Output)
	}
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:          "inv-1",
		Timestamp:   epoch,
		Flow:        "delivery-delay-prediction",
		Source:      SourceBatch,
		Status:      "failure",
		Kind:        flow.KindModelInvocation,
		Stage:       flow.StageInvoking,
		Message:     "transient model error (rate_limited)",
		Model:       "gpt-4o",
		InputTokens: 90,
		DurationMS:  230,
		Input:       json.RawMessage(`{"trafficConditions":"heavy"}`),
	}
	if _, err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "inv-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Timestamp.Equal(epoch) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, epoch)
	}
	if got.Kind != flow.KindModelInvocation || got.Stage != flow.StageInvoking {
		t.Errorf("Kind/Stage = %q/%q", got.Kind, got.Stage)
	}
	if got.Source != SourceBatch {
		t.Errorf("Source = %q", got.Source)
	}
	if string(got.Input) != `{"trafficConditions":"heavy"}` {
		t.Errorf("Input = %s", got.Input)
	}
	if got.Output != nil {
		t.Errorf("Output = %s, want none", got.Output)
	}
	if got.InputTokens != 90 || got.DurationMS != 230 {
		t.Errorf("tokens/duration = %d/%d", got.InputTokens, got.DurationMS)
	}
}

func TestLogGeneratesIDAndTimestamp(t *testing.T) {
	store := setupStore(t)
	store.now = func() time.Time { return epoch }

	id, err := store.Log(context.Background(), Entry{Flow: "campaign-optimization", Status: "success"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected UUID, got %q", id)
	}

	got, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Timestamp.Equal(epoch) || got.Source != SourceAPI {
		t.Errorf("got %+v", got)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	seed(t, store,
		Entry{ID: "a", Timestamp: epoch, Flow: "fraud-refund-detection", Status: "success"},
		Entry{ID: "b", Timestamp: epoch.Add(time.Minute), Flow: "fraud-refund-detection", Status: "failure", Kind: flow.KindInputValidation},
		Entry{ID: "c", Timestamp: epoch.Add(2 * time.Minute), Flow: "product-recommendations", Status: "success", Source: SourceMCP},
	)

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all newest first", QueryFilter{}, []string{"c", "b", "a"}},
		{"by flow", QueryFilter{Flow: "fraud-refund-detection"}, []string{"b", "a"}},
		{"by status", QueryFilter{Status: "success"}, []string{"c", "a"}},
		{"by kind", QueryFilter{Kind: "input_validation"}, []string{"b"}},
		{"by source", QueryFilter{Source: SourceMCP}, []string{"c"}},
		{"since", QueryFilter{Since: ptr(epoch.Add(time.Minute))}, []string{"c", "b"}},
		{"until", QueryFilter{Until: ptr(epoch)}, []string{"a"}},
		{"limit offset", QueryFilter{Limit: 1, Offset: 1}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.Query(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			var ids []string
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	seed(t, store,
		Entry{ID: "old", Timestamp: epoch.Add(-48 * time.Hour), Flow: "f", Status: "success"},
		Entry{ID: "new", Timestamp: epoch, Flow: "f", Status: "success"},
	)

	n, err := store.DeleteBefore(context.Background(), epoch.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
	if _, err := store.GetByID(context.Background(), "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old entry still present: %v", err)
	}
}

func TestRetainPrunesOldEntries(t *testing.T) {
	store := setupStore(t)
	store.now = func() time.Time { return epoch }
	seed(t, store,
		Entry{ID: "old", Timestamp: epoch.Add(-3 * time.Hour), Flow: "f", Status: "success"},
		Entry{ID: "new", Timestamp: epoch.Add(-time.Minute), Flow: "f", Status: "success"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Retain(ctx, time.Hour, 10*time.Millisecond, nil)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := store.GetByID(context.Background(), "old")
		if errors.Is(err, ErrNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("old entry was not pruned: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if _, err := store.GetByID(context.Background(), "new"); err != nil {
		t.Errorf("recent entry was pruned: %v", err)
	}
}

func TestRetainDisabled(t *testing.T) {
	store := setupStore(t)
	store.now = func() time.Time { return epoch }
	seed(t, store, Entry{ID: "old", Timestamp: epoch.Add(-30 * 24 * time.Hour), Flow: "f", Status: "success"})

	// Returns immediately without a cancelable context.
	store.Retain(context.Background(), 0, time.Millisecond, nil)

	if _, err := store.GetByID(context.Background(), "old"); err != nil {
		t.Errorf("entry removed with retention disabled: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)
	seed(t, store, Entry{ID: "http-1", Timestamp: epoch, Flow: "campaign-optimization", Status: "success", Output: json.RawMessage(`{"rationale":"r"}`)})

	req := httptest.NewRequest(http.MethodGet, "/api/journal/http-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got Entry
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Flow != "campaign-optimization" || string(got.Output) != `{"rationale":"r"}` {
		t.Errorf("got %+v", got)
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/journal/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHTTPQueryWithFilter(t *testing.T) {
	r, store := setupRouter(t)
	seed(t, store,
		Entry{ID: "x", Timestamp: epoch, Flow: "fraud-refund-detection", Status: "success"},
		Entry{ID: "y", Timestamp: epoch.Add(time.Second), Flow: "product-recommendations", Status: "success"},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/journal/?flow=product-recommendations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []Entry
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "y" {
		t.Errorf("got %+v", got)
	}
}

func TestHTTPQueryEmptyIsArray(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/journal/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want []", body)
	}
}

func ptr[T any](v T) *T { return &v }
