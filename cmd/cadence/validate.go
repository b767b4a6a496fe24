package main

import (
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [plan]",
	Short: "Check the plan for consistency",
	Long:  `Parses, validates and compiles the plan, reporting unknown kinds and malformed nodes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(runOptions(cmd, args), logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
