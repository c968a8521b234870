package main

import (
	"log"
	"os"

	"github.com/aretw0/workpad/pkg/adapters/mcp"
	"github.com/aretw0/workpad/pkg/observability"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts a Model Context Protocol server on Standard Input/Output.
AI agents can list and read workpads and apply edit commands through its tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, nil, observability.AuditHooks)
		if err != nil {
			return err
		}
		defer a.Close()

		// Keep stdout clean for JSON-RPC.
		log.SetOutput(os.Stderr)

		a.logger.Info("Starting workpad MCP server (stdio)", "store", a.backend.Name)
		return mcp.NewServer(a.manager, a.logger).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
