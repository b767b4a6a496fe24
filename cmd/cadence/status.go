package main

import (
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [key]",
	Short: "Inspect stored snapshots",
	Long:  `Lists the snapshot keys stored in Redis, or prints the report of one of them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		// The positional argument is a key, not a plan
		return cli.Status(cmd.Context(), runOptions(cmd, nil), os.Stdout, key)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
