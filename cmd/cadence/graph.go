package main

import (
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [plan]",
	Short: "Export the plan visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the plan. With --key, the snapshot stored
in Redis under that key is overlaid on the diagram.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		return cli.Graph(cmd.Context(), runOptions(cmd, args), os.Stdout, key)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("key", "", "Overlay the stored snapshot with this key")
}
