// Package export writes the build artifacts consumed by the static site
// and the registration form filler: the canonical catalog JSON (plain and
// brotli-compressed) and the plain fixed-CRN list.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/basaknazik/itudam/internal/domain"
)

// WriteCatalogJSON writes the normalized course list as a JSON array.
// This is the artifact cmd/session loads and watches.
func WriteCatalogJSON(w io.Writer, courses []*domain.Course) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(courses); err != nil {
		return fmt.Errorf("export: encode catalog: %w", err)
	}
	return nil
}

// WriteSubjectsJSON writes the sorted subject-prefix list used to populate
// the subject filter.
func WriteSubjectsJSON(w io.Writer, subjects []string) error {
	if subjects == nil {
		subjects = []string{}
	}
	if err := json.NewEncoder(w).Encode(subjects); err != nil {
		return fmt.Errorf("export: encode subjects: %w", err)
	}
	return nil
}

// WriteCatalogBrotli writes the catalog pre-compressed. The catalog is
// served as a static payload of several megabytes, so the compressed copy
// ships alongside the plain one.
func WriteCatalogBrotli(w io.Writer, courses []*domain.Course) error {
	bw := brotli.NewWriterLevel(w, brotli.BestCompression)
	if err := WriteCatalogJSON(bw, courses); err != nil {
		bw.Close()
		return err
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("export: compress catalog: %w", err)
	}
	return nil
}

// WriteCRNList writes one CRN per line: the exchange format for the
// registration form filler.
func WriteCRNList(w io.Writer, crns []string) error {
	if len(crns) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, strings.Join(crns, "\n")+"\n"); err != nil {
		return fmt.Errorf("export: write crn list: %w", err)
	}
	return nil
}
