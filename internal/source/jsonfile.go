package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/basaknazik/itudam/internal/catalog"
	"github.com/basaknazik/itudam/internal/concurrency"
)

// FileSource reads raw rows from a single JSON dump. The file holds either
// a top-level array of row objects or an object keyed by subject whose
// values are row arrays (the per-subject dump layout).
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) ListRecords(ctx context.Context) ([]catalog.RawRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", s.Path, err)
	}
	return decodeRecords(s.Path, data)
}

// DirSource reads every *.json file under Dir, loading the files in
// parallel. Rows are returned grouped by file, files in name order, so the
// merged output is deterministic regardless of worker scheduling.
type DirSource struct {
	Dir        string
	MaxWorkers int
}

func (s DirSource) Name() string { return "dir:" + s.Dir }

func (s DirSource) ListRecords(ctx context.Context) ([]catalog.RawRecord, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("source: read dir %s: %w", s.Dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, e.Name()))
	}
	sort.Strings(paths)

	opts := concurrency.ParallelOptions{MaxWorkers: s.MaxWorkers}
	perFile, errs := concurrency.ProcessParallel(ctx, paths, opts,
		func(ctx context.Context, _ int, path string) ([]catalog.RawRecord, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("source: read %s: %w", path, err)
			}
			return decodeRecords(path, data)
		})
	if len(errs) > 0 {
		return nil, errs[0]
	}

	var all []catalog.RawRecord
	for _, recs := range perFile {
		all = append(all, recs...)
	}
	return all, nil
}

func decodeRecords(path string, data []byte) ([]catalog.RawRecord, error) {
	var rows []catalog.RawRecord
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var grouped map[string][]catalog.RawRecord
	if err := json.Unmarshal(data, &grouped); err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", path, err)
	}

	subjects := make([]string, 0, len(grouped))
	for subj := range grouped {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)

	var rows2 []catalog.RawRecord
	for _, subj := range subjects {
		rows2 = append(rows2, grouped[subj]...)
	}
	return rows2, nil
}
