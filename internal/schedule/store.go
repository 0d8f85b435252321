// Package schedule holds the student's working selection and detects time
// conflicts in it. The store owns deep copies of catalog courses; catalog
// reloads never reach into a saved selection.
package schedule

import (
	"sort"
	"sync"

	"github.com/basaknazik/itudam/internal/domain"
)

// Resolver looks courses up in the immutable catalog.
type Resolver interface {
	Lookup(crn string) (*domain.Course, bool)
}

// Snapshot is the persisted shape of the store: CRN → course copy. Every
// key equals its value's CRN.
type Snapshot map[string]*domain.Course

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for crn, c := range s {
		out[crn] = c.Clone()
	}
	return out
}

// RenderFunc receives the store contents and the fresh conflict set after
// every change. Consumers must treat the courses as read-only and go
// through the store's mutation operations instead.
type RenderFunc func(Snapshot, ConflictSet)

// Store is the mutable CRN → selected-course mapping for one session.
// Each mutation is atomic from the caller's perspective: the conflict
// recomputation, render notification and persistence hook all fire inside
// the mutating call, in that order.
type Store struct {
	mu       sync.RWMutex
	resolver Resolver
	courses  Snapshot
	render   []RenderFunc
	persist  func()
}

// NewStore creates an empty store over the given catalog.
func NewStore(resolver Resolver) *Store {
	return &Store{resolver: resolver, courses: make(Snapshot)}
}

// SetResolver swaps the catalog, used on wholesale catalog reload.
// Existing selections are untouched; they are copies.
func (st *Store) SetResolver(r Resolver) {
	st.mu.Lock()
	st.resolver = r
	st.mu.Unlock()
}

// OnRender registers a render-boundary consumer.
func (st *Store) OnRender(fn RenderFunc) {
	st.mu.Lock()
	st.render = append(st.render, fn)
	st.mu.Unlock()
}

// OnPersist registers the persistence trigger called after every user
// mutation (but not after Replace).
func (st *Store) OnPersist(fn func()) {
	st.mu.Lock()
	st.persist = fn
	st.mu.Unlock()
}

// Select clones the catalog course into the store as a Candidate. Selecting
// a CRN that is already present is a no-op, so an explicit Retype is the
// only way a Fixed selection loses that status. Returns false when the CRN
// is unknown to the catalog.
func (st *Store) Select(crn string) bool {
	st.mu.Lock()
	if _, ok := st.courses[crn]; ok {
		st.mu.Unlock()
		return true
	}
	course, ok := st.resolver.Lookup(crn)
	if !ok {
		st.mu.Unlock()
		return false
	}
	c := course.Clone()
	c.Type = domain.Candidate
	st.courses[crn] = c
	st.mu.Unlock()

	st.mutated()
	return true
}

// Deselect removes the CRN; absent CRNs are ignored but still produce a
// mutation event only when something was removed.
func (st *Store) Deselect(crn string) {
	st.mu.Lock()
	_, ok := st.courses[crn]
	delete(st.courses, crn)
	st.mu.Unlock()

	if ok {
		st.mutated()
	}
}

// Retype toggles the selection between Fixed and Candidate. No-op when the
// CRN is not selected.
func (st *Store) Retype(crn string) {
	st.mu.Lock()
	c, ok := st.courses[crn]
	if ok {
		if c.Type == domain.Fixed {
			c.Type = domain.Candidate
		} else {
			c.Type = domain.Fixed
		}
	}
	st.mu.Unlock()

	if ok {
		st.mutated()
	}
}

// Replace swaps the whole selection, deep-copying the incoming snapshot.
// This is the reconciliation path: render consumers are notified, the
// persistence trigger is not (the sync manager persists reconciled state
// itself).
func (st *Store) Replace(snap Snapshot) {
	st.mu.Lock()
	st.courses = snap.Clone()
	st.mu.Unlock()

	st.notifyRender()
}

// Snapshot returns a deep copy of the current selection.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.courses.Clone()
}

// Courses returns the selection ordered by course code, then CRN.
func (st *Store) Courses() []*domain.Course {
	st.mu.RLock()
	out := make([]*domain.Course, 0, len(st.courses))
	for _, c := range st.courses {
		out = append(out, c)
	}
	st.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].CRN < out[j].CRN
	})
	return out
}

// Conflicts recomputes the conflict set for the current selection.
func (st *Store) Conflicts() ConflictSet {
	return Conflicts(st.Courses())
}

// FixedCRNs is the export boundary: the ordered CRNs of all Fixed
// selections, for the registration form filler.
func (st *Store) FixedCRNs() []string {
	var crns []string
	for _, c := range st.Courses() {
		if c.Type == domain.Fixed {
			crns = append(crns, c.CRN)
		}
	}
	return crns
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.courses)
}

// mutated runs the downstream effects of a user mutation in contract
// order: conflicts, render, persistence.
func (st *Store) mutated() {
	st.notifyRender()

	st.mu.RLock()
	persist := st.persist
	st.mu.RUnlock()
	if persist != nil {
		persist()
	}
}

func (st *Store) notifyRender() {
	st.mu.RLock()
	fns := st.render
	st.mu.RUnlock()
	if len(fns) == 0 {
		return
	}

	snap := st.Snapshot()
	conflicts := st.Conflicts()
	for _, fn := range fns {
		fn(snap, conflicts)
	}
}
