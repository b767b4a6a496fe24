package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/runner"
	"github.com/google/uuid"
)

// RunSession runs a plan to completion, or until ctx is cancelled, and prints a report.
func RunSession(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer) error {
	if opts.Interactive && !opts.Quiet {
		tui.PrintBanner(out)
	}

	machine, _, err := createMachine(opts, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := createStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	key := snapshotKey(opts, machine)
	if opts.Fresh {
		resetSnapshot(ctx, store, key, logger)
	}
	if !opts.Quiet {
		printSystemMessage(out, "Running '%s' plan (%d states).", machine.Name, machine.Definition().Count())
	}

	runErr := runMachine(ctx, opts, logger, out, machine, store, key)
	return handleExecutionError(finishSession(opts, out, machine, runErr))
}

// runMachine ticks machine until it is done or ctx is cancelled, publishing to store.
// Each call is tagged with its own run id in the logs.
func runMachine(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer, machine *cadence.Machine, store ports.SnapshotStore, key string, extra ...runner.Option) error {
	logger = logger.With("run_id", uuid.NewString())
	rOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithInterval(opts.Interval),
		runner.WithStore(store),
		runner.WithKey(key),
	}
	if !opts.Quiet {
		rOpts = append(rOpts, runner.WithOnChange(func(snap domain.Snapshot, diff *domain.SnapshotDiff) {
			printChanges(out, snap, diff)
		}))
	}
	rOpts = append(rOpts, extra...)
	return runner.NewRunner(rOpts...).Run(ctx, machine)
}

// finishSession ends an interrupted machine and prints the completion report.
func finishSession(opts RunOptions, out io.Writer, machine *cadence.Machine, runErr error) error {
	if isInterrupted(runErr) {
		machine.End()
	}
	if opts.Quiet {
		return runErr
	}

	if isInterrupted(runErr) {
		printSystemMessage(out, "Interrupted '%s' plan.", machine.Name)
	} else if runErr == nil {
		printSystemMessage(out, "Finished '%s' plan.", machine.Name)
	}

	render := tui.NewRenderer(opts.Interactive)
	report, err := render(tui.Report(machine.Snapshot()))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprint(out, report)
	return runErr
}
