package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driving/mcp"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  tipitaka serve

  # HTTP mode (for MCP Inspector, remote access)
  tipitaka serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensureApp(); err != nil {
		return err
	}

	ctx := cmd.Context()

	// Pick up model artifacts installed while the server runs.
	go func() {
		if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Model watcher stopped: %v", err)
		}
	}()

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    queryService,
		Model:    modelService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	if servePort > 0 {
		addr := fmt.Sprintf(":%d", servePort)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
