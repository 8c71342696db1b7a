// Package history records reload cycles in a bbolt database.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is how a reload cycle ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeEntryFailed Outcome = "entry_failed"
	OutcomeFatal       Outcome = "fatal"
	OutcomeCanceled    Outcome = "canceled"
)

// Cycle is one build-load-run attempt sequence, from the first build to the
// reported outcome.
type Cycle struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Profile    string    `json:"profile"`
	Attempts   int       `json:"attempts"`
	Outcome    Outcome   `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	Artifact   string    `json:"artifact,omitempty"`
}

// Duration returns how long the cycle took.
func (c Cycle) Duration() time.Duration {
	if c.FinishedAt.Before(c.StartedAt) {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Store persists cycles.
type Store interface {
	// Record saves a cycle. A cycle with a nil ID is assigned a new one.
	Record(ctx context.Context, c *Cycle) error
	// List returns cycles newest first. limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]Cycle, error)
	Close() error
}
