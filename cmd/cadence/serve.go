package main

import (
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/pkg/runner"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [plan]",
	Short: "Run a plan behind the HTTP control API",
	Long: `Runs the plan and exposes its snapshot, an SSE change stream, Prometheus metrics
and the skip/freeze/end/restart controls over HTTP.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		opts := runOptions(cmd, args)
		opts.Quiet = true

		sm := runner.NewSignalManagerFrom(cmd.Context())
		defer sm.Stop()
		return cli.Serve(sm.Context(), opts, logger, os.Stdout, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addRunFlags(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
