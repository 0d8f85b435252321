// Package catalog turns heterogeneous scraped course rows into a canonical,
// deduplicated catalog keyed by CRN, and answers search/filter queries over it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/basaknazik/itudam/internal/domain"
)

// Catalog is the immutable, process-wide course database. It is rebuilt
// wholesale on reload; nothing mutates it after construction.
type Catalog struct {
	courses  []*domain.Course
	byCRN    map[string]*domain.Course
	subjects []string
}

// Courses returns all courses in first-seen order.
func (c *Catalog) Courses() []*domain.Course { return c.courses }

// Subjects returns the sorted subject-prefix list (for filter population).
func (c *Catalog) Subjects() []string { return c.subjects }

func (c *Catalog) Len() int { return len(c.courses) }

// Lookup finds a course by CRN.
func (c *Catalog) Lookup(crn string) (*domain.Course, bool) {
	course, ok := c.byCRN[crn]
	return course, ok
}

func build(courses []*domain.Course, subjects map[string]bool) *Catalog {
	byCRN := make(map[string]*domain.Course, len(courses))
	for _, course := range courses {
		byCRN[course.CRN] = course
	}
	sorted := make([]string, 0, len(subjects))
	for s := range subjects {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	return &Catalog{courses: courses, byCRN: byCRN, subjects: sorted}
}

// LoadArtifact reads a previously built catalog artifact (the JSON written
// by cmd/builddb) and reconstructs the catalog around it.
func LoadArtifact(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read artifact: %w", err)
	}

	var courses []*domain.Course
	if err := json.Unmarshal(b, &courses); err != nil {
		return nil, fmt.Errorf("catalog: parse artifact %s: %w", path, err)
	}

	subjects := make(map[string]bool)
	for _, course := range courses {
		if s := subjectPrefix(course.Code); len(s) > 1 {
			subjects[s] = true
		}
	}
	return build(courses, subjects), nil
}
