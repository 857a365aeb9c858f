package app

import (
	"time"

	"github.com/google/uuid"
)

// Run tracks one CLI invocation. Its short ID tags every log line of the run.
type Run struct {
	ID        string
	Operation string
	StartedAt time.Time
	Status    string // "success" or "error"
}

// NewRun creates a run for the named operation, starting at now.
func NewRun(operation string, now time.Time) *Run {
	return &Run{
		ID:        uuid.NewString()[:8],
		Operation: operation,
		StartedAt: now,
		Status:    "success",
	}
}

// Record marks the run failed when err is non-nil and returns err unchanged.
func (r *Run) Record(err error) error {
	if err != nil {
		r.Status = "error"
	}
	return err
}

// Elapsed returns the time since the run started.
func (r *Run) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.StartedAt)
}
