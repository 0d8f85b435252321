package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/basaknazik/itudam/internal/schedule"
)

// LocalStore is the synchronous, durable store for one user's schedule
// snapshot. Writes must be cheap: one happens on every mutation.
type LocalStore interface {
	// Read returns the stored snapshot. ok is false when no snapshot
	// exists; a non-nil error means the snapshot exists but is unreadable,
	// which callers treat as absent.
	Read(userID string) (snap schedule.Snapshot, ok bool, err error)
	Write(userID string, snap schedule.Snapshot) error
}

// FileStore keeps one JSON file per user under Dir, named
// "<namespace>_<userID>.json". Day tokens inside the file normalize
// themselves during decoding, so snapshots written by older versions load
// cleanly.
type FileStore struct {
	Dir       string
	Namespace string
}

func (fs *FileStore) path(userID string) string {
	ns := fs.Namespace
	if ns == "" {
		ns = "itudam"
	}
	return filepath.Join(fs.Dir, fmt.Sprintf("%s_%s.json", ns, userID))
}

func (fs *FileStore) Read(userID string) (schedule.Snapshot, bool, error) {
	b, err := os.ReadFile(fs.path(userID))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sync: read local snapshot: %w", err)
	}

	var snap schedule.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, false, fmt.Errorf("sync: corrupt local snapshot %s: %w", fs.path(userID), err)
	}
	return snap, true, nil
}

func (fs *FileStore) Write(userID string, snap schedule.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("sync: encode local snapshot: %w", err)
	}
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return fmt.Errorf("sync: create snapshot dir: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the snapshot.
	path := fs.path(userID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("sync: write local snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("sync: replace local snapshot: %w", err)
	}
	return nil
}
