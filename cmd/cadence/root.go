package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/cadence/internal/cli"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/runner"
	"github.com/spf13/cobra"
)

// DefaultPlan is used when no plan file is given.
const DefaultPlan = "plan.yaml"

var logger *slog.Logger

// defaults come from CADENCE_* variables and an optional .env file.
// Package variables are initialized before any init, so every command sees them.
var defaults, defaultsErr = cli.LoadEnv()

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence runs timed, hierarchical state plans",
	Long: `Cadence compiles a YAML plan of series, groups and repeats into a state machine
and drives it on a fixed tick, publishing snapshots as it goes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if defaultsErr != nil {
			return defaultsErr
		}
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := cli.NewLogger(level, format)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", defaults.LogFormat, "Log format: text or json")
	flags.String("redis", defaults.RedisAddr, "Redis address for snapshots (host:port). Snapshots stay in memory when empty")
	flags.String("redis-password", defaults.RedisPassword, "Redis password")
	flags.Int("redis-db", defaults.RedisDB, "Redis database")
	flags.Duration("redis-ttl", defaults.RedisTTL, "Expiration of stored snapshots (0 keeps them)")
	flags.String("processes", defaults.Processes, "Process allow-list for exec states (defaults to processes.yaml next to the plan)")
	flags.Bool("unsafe-inline", false, "Allow exec states to run inline commands")
}

// runOptions reads the flags shared by the commands driving a plan.
func runOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	flags := cmd.Flags()
	opts := cli.RunOptions{PlanPath: DefaultPlan}
	if len(args) > 0 {
		opts.PlanPath = args[0]
	}

	opts.RedisAddr, _ = flags.GetString("redis")
	opts.RedisPassword, _ = flags.GetString("redis-password")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.RedisTTL, _ = flags.GetDuration("redis-ttl")
	opts.ProcessesPath, _ = flags.GetString("processes")
	opts.UnsafeInline, _ = flags.GetBool("unsafe-inline")

	level, _ := flags.GetString("log-level")
	opts.Debug = level == "debug"

	// Command specific flags are optional
	if flags.Lookup("interval") != nil {
		opts.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Lookup("key") != nil {
		opts.Key, _ = flags.GetString("key")
	}
	if flags.Lookup("fresh") != nil {
		opts.Fresh, _ = flags.GetBool("fresh")
	}
	if flags.Lookup("quiet") != nil {
		opts.Quiet, _ = flags.GetBool("quiet")
	}
	opts.Interactive = !opts.Quiet && tui.IsInteractive(os.Stdout)
	return opts
}

// addRunFlags registers the flags of commands that tick a plan.
func addRunFlags(cmd *cobra.Command) {
	interval := defaults.Interval
	if interval <= 0 {
		interval = runner.DefaultInterval
	}
	cmd.Flags().Duration("interval", interval, "Tick interval")
	cmd.Flags().String("key", "", "Snapshot key (defaults to the plan name)")
	cmd.Flags().Bool("fresh", false, "Delete the stored snapshot before running")
}
