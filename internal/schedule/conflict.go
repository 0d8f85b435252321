package schedule

import (
	"sort"

	"github.com/basaknazik/itudam/internal/domain"
)

// ConflictSet holds the CRNs of selected courses that overlap in time with
// at least one other selected course. It is derived, never persisted.
type ConflictSet map[string]bool

// Has reports whether the CRN participates in a conflict.
func (cs ConflictSet) Has(crn string) bool { return cs[crn] }

// CRNs returns the conflicting CRNs in sorted order.
func (cs ConflictSet) CRNs() []string {
	out := make([]string, 0, len(cs))
	for crn := range cs {
		out = append(out, crn)
	}
	sort.Strings(out)
	return out
}

// Conflicts runs the all-pairs scan over the selection. The relation is
// pairwise: every course with at least one overlapping partner is flagged,
// without merging into transitive components. Selection sets are tens of
// entries, so no indexing.
func Conflicts(selected []*domain.Course) ConflictSet {
	set := make(ConflictSet)
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			if selected[i].ConflictsWith(selected[j]) {
				set[selected[i].CRN] = true
				set[selected[j].CRN] = true
			}
		}
	}
	return set
}

// ConflictPairs returns each conflicting pair once, for the conflict-graph
// renderer.
func ConflictPairs(selected []*domain.Course) [][2]string {
	var pairs [][2]string
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			if selected[i].ConflictsWith(selected[j]) {
				pairs = append(pairs, [2]string{selected[i].CRN, selected[j].CRN})
			}
		}
	}
	return pairs
}

// ConflictsWithAny is the candidate filter predicate: would this course,
// not yet selected, conflict with anything currently selected?
func ConflictsWithAny(candidate *domain.Course, selected []*domain.Course) bool {
	for _, s := range selected {
		if candidate.ConflictsWith(s) {
			return true
		}
	}
	return false
}
