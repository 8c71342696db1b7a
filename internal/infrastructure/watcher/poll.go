package watcher

import (
	"context"
	"os"
	"time"
)

// PollWatcher sleeps for an interval, then stats the file.
type PollWatcher struct {
	interval time.Duration
	stat     statFunc
}

// NewPollWatcher creates a PollWatcher. A non-positive interval falls back to
// DefaultInterval.
func NewPollWatcher(interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &PollWatcher{interval: interval, stat: os.Stat}
}

// Interval returns the poll interval.
func (w *PollWatcher) Interval() time.Duration {
	return w.interval
}

// Wait sleeps first and checks after, so it never returns before one
// interval has passed.
func (w *PollWatcher) Wait(ctx context.Context, path string, baseline time.Time) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changed(w.stat, path, baseline) {
				return nil
			}
		}
	}
}
