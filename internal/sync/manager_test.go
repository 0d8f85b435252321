package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/basaknazik/itudam/internal/domain"
	"github.com/basaknazik/itudam/internal/schedule"
)

type memLocal struct {
	mu     stdsync.Mutex
	snaps  map[string]schedule.Snapshot
	writes int
}

func newMemLocal() *memLocal {
	return &memLocal{snaps: make(map[string]schedule.Snapshot)}
}

func (l *memLocal) Read(userID string) (schedule.Snapshot, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap, ok := l.snaps[userID]
	if !ok {
		return nil, false, nil
	}
	return snap.Clone(), true, nil
}

func (l *memLocal) Write(userID string, snap schedule.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps[userID] = snap.Clone()
	l.writes++
	return nil
}

type memRemote struct {
	mu        stdsync.Mutex
	docs      map[string]*Document
	writes    int
	lastWrite *Document
	failRead  bool
	failWrite bool
}

func newMemRemote() *memRemote {
	return &memRemote{docs: make(map[string]*Document)}
}

func (r *memRemote) Read(ctx context.Context, userID string) (*Document, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, false, errors.New("remote unreachable")
	}
	doc, ok := r.docs[userID]
	return doc, ok, nil
}

func (r *memRemote) Write(ctx context.Context, userID string, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return errors.New("remote write refused")
	}
	r.docs[userID] = doc
	r.writes++
	r.lastWrite = doc
	return nil
}

func (r *memRemote) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func f(v float64) *float64 { return &v }

func course(crn string, d domain.Weekday, start, end float64) *domain.Course {
	return &domain.Course{
		CRN:   crn,
		Code:  "TST " + crn,
		Slots: []domain.TimeSlot{{Day: d, Start: f(start), End: f(end)}},
		Type:  domain.Candidate,
	}
}

type fakeCatalog map[string]*domain.Course

func (f fakeCatalog) Lookup(crn string) (*domain.Course, bool) {
	c, ok := f[crn]
	return c, ok
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"10001": course("10001", domain.Monday, 9, 10.5),
		"10002": course("10002", domain.Tuesday, 9, 10.5),
		"10003": course("10003", domain.Friday, 13, 15),
	}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLocalWriteDurability(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	remote := newMemRemote()
	// Debounce far beyond the test so only local writes happen.
	m := New(st, local, remote, nil, time.Minute)
	m.Begin(context.Background(), "user1")

	st.Select("10001")

	snap, ok, err := local.Read("user1")
	if err != nil || !ok {
		t.Fatalf("local snapshot missing after mutation: ok=%v err=%v", ok, err)
	}
	if _, found := snap["10001"]; !found {
		t.Error("local snapshot does not reflect the mutation")
	}
	if remote.writeCount() != 0 {
		t.Errorf("remote writes = %d, want 0 before debounce", remote.writeCount())
	}
}

func TestDebounceCoalescing(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	remote := newMemRemote()
	m := New(st, local, remote, nil, 40*time.Millisecond)
	m.Begin(context.Background(), "user1")

	// Rapid edits inside one debounce window.
	st.Select("10001")
	st.Select("10002")
	st.Select("10003")
	st.Deselect("10002")

	waitFor(t, "remote write", func() bool { return remote.writeCount() > 0 })
	time.Sleep(100 * time.Millisecond) // no trailing second write

	if got := remote.writeCount(); got != 1 {
		t.Errorf("remote writes = %d, want exactly 1", got)
	}

	remote.mu.Lock()
	prog := remote.lastWrite.Program
	remote.mu.Unlock()
	if len(prog) != 2 {
		t.Fatalf("remote document has %d courses, want 2", len(prog))
	}
	if _, ok := prog["10002"]; ok {
		t.Error("remote received an intermediate state, not the final one")
	}
	if remote.lastWrite.Updated.IsZero() {
		t.Error("remote document missing updated timestamp")
	}
}

func TestReconciliationRemoteWins(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	local.Write("user1", schedule.Snapshot{"10001": course("10001", domain.Monday, 9, 10.5)})
	local.writes = 0

	remote := newMemRemote()
	remote.docs["user1"] = &Document{
		Program: schedule.Snapshot{"10003": course("10003", domain.Friday, 13, 15)},
		Updated: time.Now(),
	}

	m := New(st, local, remote, nil, time.Minute)
	m.Begin(context.Background(), "user1")

	// Local snapshot applies before the remote round-trip completes.
	if m.State() != StateReady {
		t.Errorf("state = %v, want ready immediately after Begin", m.State())
	}

	waitFor(t, "remote snapshot to replace local", func() bool {
		snap := st.Snapshot()
		_, hasRemote := snap["10003"]
		return hasRemote && len(snap) == 1
	})

	// The local store is overwritten to match.
	snap, ok, _ := local.Read("user1")
	if !ok {
		t.Fatal("local snapshot vanished")
	}
	if _, hasOld := snap["10001"]; hasOld {
		t.Error("local snapshot still carries the pre-reconciliation course")
	}
	if diff := cmp.Diff(st.Snapshot(), snap); diff != "" {
		t.Errorf("local and active schedule diverge (-active +local):\n%s", diff)
	}
}

func TestReconciliationNoopWhenEqual(t *testing.T) {
	prog := schedule.Snapshot{"10001": course("10001", domain.Monday, 9, 10.5)}

	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	local.Write("user1", prog)
	local.writes = 0

	remote := newMemRemote()
	remote.docs["user1"] = &Document{Program: prog.Clone(), Updated: time.Now()}

	var mu stdsync.Mutex
	var statuses []Status
	m := New(st, local, remote, nil, time.Minute)
	m.OnStatus(func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})
	m.Begin(context.Background(), "user1")

	waitFor(t, "ready status", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range statuses {
			if s == StatusReady {
				return true
			}
		}
		return false
	})

	local.mu.Lock()
	writes := local.writes
	local.mu.Unlock()
	if writes != 0 {
		t.Errorf("equal snapshots must not trigger a local rewrite, got %d writes", writes)
	}
}

func TestRemoteReadFailureDegrades(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	local.Write("user1", schedule.Snapshot{"10001": course("10001", domain.Monday, 9, 10.5)})

	remote := newMemRemote()
	remote.failRead = true

	var mu stdsync.Mutex
	var statuses []Status
	m := New(st, local, remote, nil, time.Minute)
	m.OnStatus(func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})
	m.Begin(context.Background(), "user1")

	waitFor(t, "offline status", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range statuses {
			if s == StatusOffline {
				return true
			}
		}
		return false
	})

	// Local-only mode keeps working.
	if m.State() != StateReady {
		t.Errorf("state = %v, want ready in offline mode", m.State())
	}
	if _, ok := st.Snapshot()["10001"]; !ok {
		t.Error("local snapshot lost on remote failure")
	}
}

func TestRemoteWriteFailureKeepsLocalState(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	remote := newMemRemote()
	remote.failWrite = true

	var mu stdsync.Mutex
	var statuses []Status
	m := New(st, local, remote, nil, 20*time.Millisecond)
	m.OnStatus(func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
	})
	m.Begin(context.Background(), "user1")

	st.Select("10001")

	waitFor(t, "save-failed status", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range statuses {
			if s == StatusSaveFailed {
				return true
			}
		}
		return false
	})

	// No rollback; further mutations still work.
	if _, ok := st.Snapshot()["10001"]; !ok {
		t.Error("failed remote write must not roll back the schedule")
	}
	st.Select("10002")
	snap, _, _ := local.Read("user1")
	if len(snap) != 2 {
		t.Errorf("local snapshot has %d courses, want 2", len(snap))
	}
}

func TestFlushFiresPendingWrite(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	remote := newMemRemote()
	m := New(st, local, remote, nil, time.Minute)
	m.Begin(context.Background(), "user1")

	st.Select("10001")
	if remote.writeCount() != 0 {
		t.Fatal("write fired before flush")
	}

	m.Flush()
	if got := remote.writeCount(); got != 1 {
		t.Errorf("remote writes after flush = %d, want 1", got)
	}

	// Nothing pending: second flush is a no-op.
	m.Flush()
	if got := remote.writeCount(); got != 1 {
		t.Errorf("remote writes after second flush = %d, want 1", got)
	}
}

func TestNilRemoteRunsLocalOnly(t *testing.T) {
	st := schedule.NewStore(testCatalog())
	local := newMemLocal()
	m := New(st, local, nil, nil, 10*time.Millisecond)
	m.Begin(context.Background(), "user1")

	waitFor(t, "ready state", func() bool { return m.State() == StateReady })

	st.Select("10001")
	m.Flush()

	snap, ok, err := local.Read("user1")
	if err != nil || !ok {
		t.Fatalf("local snapshot missing: ok=%v err=%v", ok, err)
	}
	if _, found := snap["10001"]; !found {
		t.Error("local snapshot does not reflect the mutation")
	}
}

func TestCorruptLocalSnapshotTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	fs := &FileStore{Dir: dir, Namespace: "itudam"}
	if err := os.WriteFile(filepath.Join(dir, "itudam_user1.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := schedule.NewStore(testCatalog())
	m := New(st, fs, newMemRemote(), nil, time.Minute)
	m.Begin(context.Background(), "user1")

	if m.State() != StateReady {
		t.Errorf("state = %v, want ready despite corrupt snapshot", m.State())
	}
	if st.Len() != 0 {
		t.Errorf("store has %d courses, want empty fallback", st.Len())
	}
}

func TestLegacyDayTokensUpgradeOnLoad(t *testing.T) {
	dir := t.TempDir()
	fs := &FileStore{Dir: dir, Namespace: "itudam"}

	// A snapshot written before day normalization: English day tokens.
	legacy := `{
	  "10001": {
	    "crn": "10001", "code": "BLG 102E", "title": "Intro", "instructor": "",
	    "slots": [{"day": "Monday", "start": 9, "end": 10.5}],
	    "senior": false, "type": "SABIT"
	  }
	}`
	if err := os.WriteFile(filepath.Join(dir, "itudam_user1.json"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	st := schedule.NewStore(testCatalog())
	m := New(st, fs, newMemRemote(), nil, time.Minute)
	m.Begin(context.Background(), "user1")

	snap := st.Snapshot()
	c, ok := snap["10001"]
	if !ok {
		t.Fatal("legacy snapshot not loaded")
	}
	if c.Slots[0].Day != domain.Monday {
		t.Errorf("legacy day token not normalized: %v", c.Slots[0].Day)
	}
	if c.Type != domain.Fixed {
		t.Errorf("selection type lost in upgrade: %v", c.Type)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := &FileStore{Dir: t.TempDir(), Namespace: "itudam"}

	snap := schedule.Snapshot{"10001": course("10001", domain.Wednesday, 13, 15.5)}
	if err := fs.Write("user1", snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := fs.Read("user1")
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}

	// Unknown user: absent, not an error.
	if _, ok, err := fs.Read("nobody"); ok || err != nil {
		t.Errorf("expected absent snapshot, got ok=%v err=%v", ok, err)
	}
}
