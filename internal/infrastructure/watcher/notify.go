package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/altuslabsxyz/mirage/internal/output"
)

// NotifyWatcher reacts to filesystem events on the file's parent directory.
// Editors often replace files through a rename, which a watch on the file
// itself would lose, so the directory is watched instead. A fallback tick
// re-stats the file in case events are dropped.
type NotifyWatcher struct {
	interval time.Duration
	logger   output.LoggerInterface
	stat     statFunc
}

// NewNotifyWatcher creates a NotifyWatcher with the given fallback interval.
func NewNotifyWatcher(interval time.Duration, logger output.LoggerInterface) *NotifyWatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = output.DefaultLogger
	}
	return &NotifyWatcher{interval: interval, logger: logger, stat: os.Stat}
}

// Wait blocks until path is modified after baseline.
func (w *NotifyWatcher) Wait(ctx context.Context, path string, baseline time.Time) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// The file may have changed between baseline capture and Add.
	if changed(w.stat, path, baseline) {
		return nil
	}

	name := filepath.Clean(path)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if changed(w.stat, path, baseline) {
					return nil
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			w.logger.Debug("file watcher error: %v", err)
		case <-ticker.C:
			if changed(w.stat, path, baseline) {
				return nil
			}
		}
	}
}
