// ABOUTME: MCP resource definitions
// ABOUTME: Provides a read-only view of saved areas for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const areasURI = "acreage://areas"

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        areasURI,
		Description: "All saved areas with their boundaries and measurements",
		URI:         areasURI,
		MIMEType:    "application/json",
	}, s.handleAreasResource)
}

func (s *Server) handleAreasResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	areas, err := s.repo.ListAreas(ctx, s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}

	outputs := make([]AreaOutput, len(areas))
	for i, rec := range areas {
		outputs[i] = toAreaOutput(rec, "", "")
	}
	output := ListAreasOutput{
		Areas: outputs,
		Count: len(outputs),
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      areasURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}
