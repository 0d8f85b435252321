package catalog

import (
	"strings"

	"github.com/basaknazik/itudam/internal/domain"
)

const (
	searchCap = 50
	filterCap = 1000
)

// Search matches a query against course code, CRN and title,
// case-insensitively. Courses already in the selected set are skipped.
// Results are capped; selection sets are small so callers page by typing
// more, not by offset.
func (c *Catalog) Search(query string, selected map[string]bool) []*domain.Course {
	q := strings.ToUpper(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}

	var hits []*domain.Course
	for _, course := range c.courses {
		if selected[course.CRN] {
			continue
		}
		if strings.Contains(course.Code, q) ||
			strings.Contains(course.CRN, q) ||
			strings.Contains(strings.ToUpper(course.Title), q) {
			hits = append(hits, course)
			if len(hits) >= searchCap {
				break
			}
		}
	}
	return hits
}

// FilterOptions drives a catalog browse.
type FilterOptions struct {
	// Subject limits results to one subject prefix; empty means all.
	Subject string
	// ShowSenior includes senior/thesis-restricted courses.
	ShowSenior bool
	// CleanOnly drops candidates that would conflict with the current
	// selection.
	CleanOnly bool
	// Selected is the current schedule snapshot, used both to hide
	// already-picked CRNs and as the clean-results reference.
	Selected []*domain.Course
}

// Filter browses the catalog with the given options.
func (c *Catalog) Filter(opts FilterOptions) []*domain.Course {
	picked := make(map[string]bool, len(opts.Selected))
	for _, s := range opts.Selected {
		picked[s.CRN] = true
	}

	var hits []*domain.Course
	for _, course := range c.courses {
		if opts.Subject != "" && !strings.HasPrefix(course.Code, opts.Subject) {
			continue
		}
		if picked[course.CRN] {
			continue
		}
		if course.Senior && !opts.ShowSenior {
			continue
		}
		if opts.CleanOnly && conflictsWithAny(course, opts.Selected) {
			continue
		}
		hits = append(hits, course)
		if len(hits) >= filterCap {
			break
		}
	}
	return hits
}

func conflictsWithAny(candidate *domain.Course, selected []*domain.Course) bool {
	for _, s := range selected {
		if candidate.ConflictsWith(s) {
			return true
		}
	}
	return false
}
