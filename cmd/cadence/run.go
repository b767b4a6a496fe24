package main

import (
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [plan]",
	Short: "Run a plan to completion",
	Long:  `Runs the plan in the foreground, printing state changes and a final report.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd, args)
		opts.Watch, _ = cmd.Flags().GetBool("watch")

		sm := runner.NewSignalManagerFrom(cmd.Context())
		defer sm.Stop()

		if opts.Watch {
			return cli.RunWatch(sm.Context(), opts, logger, os.Stdout)
		}
		return cli.RunSession(sm.Context(), opts, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Only print errors")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode, restarting on plan changes")
}
