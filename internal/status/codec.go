package status

import (
	"encoding/json"
	"fmt"
)

// JSONCodec implements Codec over JobStatus using indented JSON, the same
// on-disk format the rest of jobvault uses.
type JSONCodec struct{}

// NewJSONCodec returns a ready-to-use JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode serializes rec as indented JSON with a trailing newline.
//
// Returns an error if rec is not a *JobStatus or cannot be marshaled.
func (c *JSONCodec) Encode(rec Record) ([]byte, error) {
	js, ok := rec.(*JobStatus)
	if !ok {
		return nil, fmt.Errorf("json codec: unsupported record type %T", rec)
	}

	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal status: %w", err)
	}

	return append(data, '\n'), nil
}

// Decode deserializes a JobStatus from JSON.
//
// Returns an error on malformed JSON or an unknown state value, so corrupted
// files are rejected rather than cached as half-empty records.
func (c *JSONCodec) Decode(data []byte) (Record, error) {
	var js JobStatus
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("json codec: unmarshal status: %w", err)
	}

	if js.State != "" && !KnownState(js.State) {
		return nil, fmt.Errorf("json codec: unknown state %q", js.State)
	}

	return &js, nil
}
