package source

import (
	"context"

	"github.com/basaknazik/itudam/internal/catalog"
)

// RecordSource yields raw catalog rows from some backing store. The rows
// keep whatever key spelling the upstream dump used; normalization happens
// later in the catalog package.
type RecordSource interface {
	Name() string
	ListRecords(ctx context.Context) ([]catalog.RawRecord, error)
}
