// ABOUTME: MCP server initialization and configuration
// ABOUTME: Exposes area measurement and the saved-area store to AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/acreage/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps MCP server with an area repository scoped to one owner.
type Server struct {
	mcp   *mcp.Server
	repo  storage.AreaRepository
	owner string
}

// NewServer creates MCP server with all capabilities.
func NewServer(repo storage.AreaRepository, owner string) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "acreage",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		repo:  repo,
		owner: owner,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
