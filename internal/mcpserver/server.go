// Package mcpserver exposes the job status store over the Model Context
// Protocol: lookup, storage, removal and enumeration of job statuses as MCP
// tools on a stdio server.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/jobvault/jobvault/internal/store"
)

// NewServer creates an MCP server with all status tools registered over st.
// The store must already be initialized.
func NewServer(st *store.Store) *server.MCPServer {
	svc := &Service{store: st}

	s := server.NewMCPServer(
		"jobvault",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(getStatusTool(), svc.HandleGetStatus)
	s.AddTool(storeStatusTool(), svc.HandleStoreStatus)
	s.AddTool(removeStatusTool(), svc.HandleRemoveStatus)
	s.AddTool(listStatusesTool(), svc.HandleListStatuses)

	return s
}
