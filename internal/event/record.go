package event

import (
	"time"

	"github.com/jobvault/jobvault/internal/status"
)

// BuildRecord constructs a status record from a validated event, stamping the
// lifecycle timestamps: running states get a start time, terminal states get
// a finish time.
//
// The returned record is ready to be passed to the store.
func BuildRecord(ev *StatusEvent) *status.JobStatus {
	rec := &status.JobStatus{
		ID:       ev.JobID,
		State:    ev.State,
		Message:  ev.Message,
		Progress: ev.Progress,
		Error:    ev.Error,
	}

	now := time.Now().UTC()
	switch ev.State {
	case status.StateRunning:
		rec.StartedAt = &now
	case status.StateCompleted, status.StateFailed:
		rec.FinishedAt = &now
	}

	return rec
}
