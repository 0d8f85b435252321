package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the catalog artifact whenever it changes on disk and hands
// the freshly built catalog to onReload. The old catalog is discarded
// wholesale; nothing holds references into it except schedule copies, which
// are immune by construction.
//
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *zap.Logger, onReload func(*Catalog)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and atomic writers replace
	// the file, which would drop a file-level watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	// Writers produce several events per rewrite; a short settle window
	// collapses them into one reload.
	const settle = 250 * time.Millisecond
	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(settle, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", zap.Error(err))

		case <-reload:
			cat, err := LoadArtifact(path)
			if err != nil {
				logger.Warn("catalog reload failed, keeping current catalog",
					zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("catalog reloaded",
				zap.String("path", path), zap.Int("courses", cat.Len()))
			onReload(cat)
		}
	}
}
