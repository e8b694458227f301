// Package status defines the job status record stored by the status store
// and the codec contract used to serialize records for the persistence
// mirror.
//
// The store treats records as opaque: the only thing it reads from a record
// is the identifier the record itself reports, which is always the key the
// record is cached and persisted under.
package status

import (
	"time"

	"github.com/jobvault/jobvault/internal/jobid"
)

// State is the coarse lifecycle state of a background job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// KnownState reports whether s is one of the defined states.
func KnownState(s State) bool {
	switch s {
	case StatePending, StateRunning, StateCompleted, StateFailed:
		return true
	}
	return false
}

// Record is an opaque status snapshot of a background job. A record carries
// its own identifier; the store never computes a cache key independently of
// the record when storing.
type Record interface {
	// JobID returns the identifier this record is indexed under.
	JobID() jobid.ID
}

// Codec serializes and deserializes status records for the persistence
// mirror. Decode fails with an error on malformed input; the store treats any
// such failure as non-fatal and skips the offending record during recovery.
type Codec interface {
	Encode(rec Record) ([]byte, error)
	Decode(data []byte) (Record, error)
}

// JobStatus is the concrete status record used by the jobvault binaries.
type JobStatus struct {
	// ID is the hierarchical identifier of the job.
	ID jobid.ID `json:"id"`

	// State is the current lifecycle state.
	State State `json:"state"`

	// Message is a human-readable progress or result line.
	Message string `json:"message,omitempty"`

	// Progress is the completion ratio in [0, 1].
	Progress float64 `json:"progress,omitempty"`

	// Error holds the failure description when State is "failed".
	Error string `json:"error,omitempty"`

	// StartedAt is when the job began, if known.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt is when the job reached a terminal state, if it has.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobID implements Record.
func (s *JobStatus) JobID() jobid.ID {
	return s.ID
}
