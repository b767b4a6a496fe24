package main

import (
	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [plan]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Runs the plan and exposes it to AI agents as MCP tools and resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sm := runner.NewSignalManagerFrom(cmd.Context())
		defer sm.Stop()
		return cli.ServeMCP(sm.Context(), runOptions(cmd, args), logger, transport, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addRunFlags(mcpCmd)
	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
