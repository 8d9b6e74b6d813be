// ABOUTME: MCP serve command
// ABOUTME: Exposes measuring and the saved-area store to AI agents over stdio

package main

import (
	"os/signal"
	"syscall"

	"github.com/harper/acreage/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: measure_polygon, save_area, get_area, list_areas, delete_area, export_area.
Resource: acreage://areas`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, owner())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Debug("serving mcp on stdio", "owner", owner())
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
