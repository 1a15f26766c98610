package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archinspect/repoanalyst/internal/mcpserver"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve corpus building over the Model Context Protocol",
	Long: `MCP starts a stdio Model Context Protocol server exposing corpus_build
and corpus_stats tools, so AI assistants can pull repository snapshots
on demand. Builds are cached in-process; identical requests are served
from cache.

Example (Claude Desktop / MCP client config):
  repoanalyst mcp
`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	srv, err := mcpserver.NewServer(cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	return srv.Serve(context.Background())
}
