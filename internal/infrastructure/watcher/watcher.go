// Package watcher blocks until a watched source file changes.
package watcher

import (
	"context"
	"os"
	"time"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 2 * time.Second

// Watcher waits for a file to be modified after a baseline time.
type Watcher interface {
	// Wait blocks until the modification time of path is after baseline.
	// Only ctx cancellation ends the wait early.
	Wait(ctx context.Context, path string, baseline time.Time) error
}

type statFunc func(name string) (os.FileInfo, error)

// Baseline returns the modification time of path, or the zero time when the
// file cannot be stat'ed, so a file that appears later counts as a change.
func Baseline(path string) time.Time {
	return baselineWith(os.Stat, path)
}

func baselineWith(stat statFunc, path string) time.Time {
	info, err := stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// changed reports whether path was modified after baseline. Stat errors
// count as "not yet".
func changed(stat statFunc, path string, baseline time.Time) bool {
	info, err := stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().After(baseline)
}
