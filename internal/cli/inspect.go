package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/aretw0/cadence/pkg/ports"
)

// Validate checks that the plan parses, validates and compiles against the leaf kinds
// available to the CLI.
func Validate(opts RunOptions, logger *slog.Logger, out io.Writer) error {
	machine, _, err := createMachine(opts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Plan '%s' is valid! ✅ (%d states)\n", machine.Name, machine.Definition().Count())
	return nil
}

// Graph writes the Mermaid diagram of the plan. When key is set, the stored snapshot
// is overlaid on the diagram.
func Graph(ctx context.Context, opts RunOptions, out io.Writer, key string) error {
	def, err := plan.LoadFile(opts.PlanPath)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if key != "" {
		snap, err := loadSnapshot(ctx, opts, key)
		if err != nil {
			return err
		}
		overlay = graph.OverlayFromSnapshot(snap)
	}

	fmt.Fprint(out, graph.GenerateMermaid(def, overlay))
	return nil
}

// Status prints the report of a stored snapshot, or lists the stored keys when key is empty.
func Status(ctx context.Context, opts RunOptions, out io.Writer, key string) error {
	if opts.RedisAddr == "" {
		return errors.New("status requires a redis address (--redis)")
	}

	if key == "" {
		store, closeStore, err := createStore(ctx, opts)
		if err != nil {
			return err
		}
		defer closeStore()

		keys, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(out, "No snapshots stored.")
			return nil
		}

		var statuses map[string]domain.Status
		if lister, ok := store.(ports.StatusLister); ok {
			if statuses, err = lister.Statuses(ctx); err != nil {
				return err
			}
		}
		for _, k := range keys {
			if status, ok := statuses[k]; ok {
				fmt.Fprintf(out, "%s\t%s\n", k, status)
				continue
			}
			fmt.Fprintln(out, k)
		}
		return nil
	}

	snap, err := loadSnapshot(ctx, opts, key)
	if err != nil {
		return err
	}
	report, err := tui.NewRenderer(opts.Interactive)(tui.Report(snap))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprint(out, report)
	return nil
}

func loadSnapshot(ctx context.Context, opts RunOptions, key string) (domain.Snapshot, error) {
	if opts.RedisAddr == "" {
		return domain.Snapshot{}, errors.New("reading snapshots requires a redis address (--redis)")
	}
	store, closeStore, err := createStore(ctx, opts)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer closeStore()

	snap, err := store.Load(ctx, key)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return snap, nil
}
