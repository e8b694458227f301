package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jobvault/jobvault/internal/event"
	"github.com/jobvault/jobvault/internal/jobid"
	"github.com/jobvault/jobvault/internal/status"
	"github.com/jobvault/jobvault/internal/store"
)

// Service implements the MCP tool handlers over one status store.
type Service struct {
	store *store.Store
}

// idFromRequest extracts the job identifier from the request arguments.
//
// Accepts "id" as an array of strings and nulls, or "name" as a single-token
// shorthand. A request with neither resolves to the empty identifier.
func idFromRequest(request mcp.CallToolRequest) (jobid.ID, error) {
	args := request.GetArguments()

	if raw, ok := args["id"]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return jobid.ID{}, fmt.Errorf("'id' must be an array of strings and nulls")
		}
		segs := make([]jobid.Segment, len(arr))
		for i, el := range arr {
			switch v := el.(type) {
			case nil:
				segs[i] = jobid.Absent
			case string:
				segs[i] = jobid.Seg(v)
			default:
				return jobid.ID{}, fmt.Errorf("'id' element %d has type %T, want string or null", i, el)
			}
		}
		return jobid.FromSegments(segs...), nil
	}

	if name := request.GetString("name", ""); name != "" {
		return jobid.Of(name), nil
	}

	return jobid.ID{}, nil
}

// recordJSON renders a record for a tool result.
func recordJSON(rec status.Record) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render status: %w", err)
	}
	return string(data), nil
}

// HandleGetStatus returns the cached status for an identifier.
func (s *Service) HandleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, ok := s.store.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("No status recorded for job %v.", id)), nil
	}

	out, err := recordJSON(rec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// HandleStoreStatus records a status, replacing any prior one for the same
// identifier.
func (s *Service) HandleStoreStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	progress := 0.0
	if raw, ok := args["progress"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return mcp.NewToolResultError("'progress' must be a number"), nil
		}
		progress = f
	}

	ev := &event.StatusEvent{
		JobID:    id,
		State:    status.State(request.GetString("state", "")),
		Message:  request.GetString("message", ""),
		Progress: progress,
		Error:    request.GetString("error", ""),
	}
	if !status.KnownState(ev.State) {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown state %q. Expected pending, running, completed or failed.", ev.State)), nil
	}
	if ev.Progress < 0 || ev.Progress > 1 {
		return mcp.NewToolResultError("'progress' must be between 0 and 1"), nil
	}

	s.store.Put(event.BuildRecord(ev))

	return mcp.NewToolResultText(fmt.Sprintf("Stored %s status for job %v.", ev.State, id)), nil
}

// HandleRemoveStatus removes a status and its persisted subtree.
func (s *Service) HandleRemoveStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, ok := s.store.Remove(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("No status recorded for job %v.", id)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Removed status for job %v.", id)), nil
}

// HandleListStatuses lists every cached status record.
func (s *Service) HandleListStatuses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := s.store.List()
	if len(recs) == 0 {
		return mcp.NewToolResultText("No job statuses recorded."), nil
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render statuses: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
