// Package event handles parsing of job status events delivered on stdin.
//
// Task runners report status changes as single JSON documents piped to the
// save-status binary; this package validates those documents and turns them
// into status records ready for the store.
package event

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jobvault/jobvault/internal/jobid"
	"github.com/jobvault/jobvault/internal/status"
)

// StatusEvent is the JSON payload a task runner emits for one status change.
//
// The job id is an array of nullable strings so hierarchical identifiers with
// absent segments survive the wire, e.g. ["install", null, "ext:foo"].
type StatusEvent struct {
	// JobID is the hierarchical job identifier. May be empty or omitted.
	JobID jobid.ID `json:"job_id"`

	// State is the reported lifecycle state. Required.
	State status.State `json:"state"`

	// Message is an optional human-readable progress line.
	Message string `json:"message"`

	// Progress is the optional completion ratio in [0, 1].
	Progress float64 `json:"progress"`

	// Error describes the failure when State is "failed".
	Error string `json:"error"`
}

// ReadStatusEvent reads and parses one status event from r.
//
// Returns (nil, nil) for a well-formed document with no state field; such
// events carry nothing to record and the caller should exit cleanly. Returns
// an error for malformed JSON, an unknown state, or a progress value outside
// [0, 1].
func ReadStatusEvent(r io.Reader) (*StatusEvent, error) {
	var ev StatusEvent

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&ev); err != nil {
		return nil, fmt.Errorf("failed to decode status event: %w", err)
	}

	if ev.State == "" {
		return nil, nil
	}
	if !status.KnownState(ev.State) {
		return nil, fmt.Errorf("unknown state: %q", ev.State)
	}
	if ev.Progress < 0 || ev.Progress > 1 {
		return nil, fmt.Errorf("progress %v out of range [0, 1]", ev.Progress)
	}

	return &ev, nil
}
