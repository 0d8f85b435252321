package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/basaknazik/itudam/internal/domain"
	"github.com/basaknazik/itudam/internal/schedule"
)

func TestClientReadMissingDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.HTTP = srv.Client()

	doc, ok, err := c.Read(context.Background(), "user1")
	if err != nil {
		t.Fatalf("missing document must not be an error: %v", err)
	}
	if ok || doc != nil {
		t.Errorf("expected absent document, got ok=%v doc=%v", ok, doc)
	}
}

func TestClientWriteThenRead(t *testing.T) {
	var stored atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/user1" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("missing bearer token, got %q", got)
		}
		switch r.Method {
		case http.MethodPut:
			var doc Document
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			stored.Store(&doc)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			v := stored.Load()
			if v == nil {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(v)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok123")
	c.HTTP = srv.Client()

	want := &Document{
		Program: schedule.Snapshot{"10001": course("10001", domain.Monday, 9, 10.5)},
		Updated: time.Now().UTC().Truncate(time.Second),
	}
	if err := c.Write(context.Background(), "user1", want); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, ok, err := c.Read(context.Background(), "user1")
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if len(doc.Program) != 1 {
		t.Fatalf("program has %d courses, want 1", len(doc.Program))
	}
	got := doc.Program["10001"]
	if got == nil || got.Code != "TST 10001" || got.Slots[0].Day != domain.Monday {
		t.Errorf("document did not round-trip: %+v", got)
	}
	if !doc.Updated.Equal(want.Updated) {
		t.Errorf("updated = %v, want %v", doc.Updated, want.Updated)
	}
}

func TestClientWriteReportsFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.HTTP = srv.Client()

	err := c.Write(context.Background(), "user1", &Document{Program: schedule.Snapshot{}})
	if err == nil {
		t.Fatal("expected error")
	}
	// Writes are single-shot; the next debounce cycle is the retry.
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("write attempts = %d, want 1", got)
	}
}
