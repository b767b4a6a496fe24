package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
)

// NewLogger configures the application logger from the --log-level and --log-format flags.
func NewLogger(level, format string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, logging.WithFormat(f)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(e domain.LifecycleEvent) {
			logger.Debug("Enter State", "state", e.State, "kind", e.Kind)
		},
		OnEnd: func(e domain.LifecycleEvent) {
			logger.Debug("Leave State", "state", e.State, "kind", e.Kind, "elapsed", e.Elapsed)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

// printChanges echoes the states a diff started or ended.
func printChanges(w io.Writer, snap domain.Snapshot, diff *domain.SnapshotDiff) {
	for _, c := range diff.Changes {
		if c.Kind == domain.KindProxy || c.From == c.To {
			continue
		}
		switch c.To {
		case domain.StatusRunning:
			printSystemMessage(w, "Entered '%s'.", nameOf(c.Path))
		case domain.StatusEnded:
			printSystemMessage(w, "Finished '%s'.", nameOf(c.Path))
		}
	}

	if len(diff.Added) == 0 {
		return
	}
	added := make(map[string]bool, len(diff.Added))
	for _, path := range diff.Added {
		added[path] = true
	}
	snap.Walk(func(path string, node domain.Snapshot) bool {
		if added[path] && node.Kind != domain.KindProxy && node.Status == domain.StatusRunning {
			printSystemMessage(w, "Entered '%s'.", node.Name)
		}
		return true
	})
}

// nameOf extracts the state name from a snapshot path ("root/0:lobby" -> "lobby").
func nameOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.Index(path, ":"); i >= 0 {
		path = path[i+1:]
	}
	return path
}
