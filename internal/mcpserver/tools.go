package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// getStatusTool returns the tool definition for looking up one job status.
func getStatusTool() mcp.Tool {
	return mcp.NewTool("get_status",
		mcp.WithDescription("Get the latest recorded status of a background job. Lookups are served from the in-memory cache."),
		mcp.WithArray("id",
			mcp.Description("Hierarchical job identifier as an array of strings; use null for an absent segment. Omit for the empty identifier.")),
		mcp.WithString("name",
			mcp.Description("Shorthand for a single-segment identifier; ignored when 'id' is given.")),
	)
}

// storeStatusTool returns the tool definition for recording a job status.
func storeStatusTool() mcp.Tool {
	return mcp.NewTool("store_status",
		mcp.WithDescription("Record the current status of a background job, replacing any previous status for the same identifier."),
		mcp.WithArray("id",
			mcp.Description("Hierarchical job identifier as an array of strings; use null for an absent segment. Omit for the empty identifier.")),
		mcp.WithString("state",
			mcp.Required(),
			mcp.Description("Job state: pending, running, completed or failed")),
		mcp.WithString("message",
			mcp.Description("Human-readable progress or result line")),
		mcp.WithNumber("progress",
			mcp.Description("Completion ratio between 0 and 1")),
		mcp.WithString("error",
			mcp.Description("Failure description for the failed state")),
	)
}

// removeStatusTool returns the tool definition for removing a job status.
func removeStatusTool() mcp.Tool {
	return mcp.NewTool("remove_status",
		mcp.WithDescription("Remove the recorded status of a background job and its persisted subtree, including statuses of jobs whose identifiers extend it on disk."),
		mcp.WithArray("id",
			mcp.Description("Hierarchical job identifier as an array of strings; use null for an absent segment.")),
		mcp.WithString("name",
			mcp.Description("Shorthand for a single-segment identifier; ignored when 'id' is given.")),
	)
}

// listStatusesTool returns the tool definition for enumerating job statuses.
func listStatusesTool() mcp.Tool {
	return mcp.NewTool("list_statuses",
		mcp.WithDescription("List every recorded job status currently in the cache."),
	)
}
