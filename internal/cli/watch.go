package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the plan is reloaded.
const reloadDelay = 100 * time.Millisecond

// RunWatch runs the plan in development mode, restarting it whenever the plan file
// changes. It returns when ctx is cancelled.
func RunWatch(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it
	if err := watcher.Add(filepath.Dir(opts.PlanPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.PlanPath, err)
	}

	changes := filterEvents(ctx, watcher, opts.PlanPath, logger)
	logger.Info("Starting Watcher", "path", opts.PlanPath)
	printSystemMessage(out, "Watching '%s'.", opts.PlanPath)

	for runWatchIteration(ctx, opts, logger, out, changes) {
		logger.Info("Watcher restarting")
	}
	return nil
}

// filterEvents forwards write and create events of path, coalescing bursts.
func filterEvents(ctx context.Context, watcher *fsnotify.Watcher, path string, logger *slog.Logger) <-chan struct{} {
	target := filepath.Clean(path)
	changes := make(chan struct{}, 1)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error", "err", err)
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default: // A reload is already pending
				}
			}
		}
	}()
	return changes
}

// runWatchIteration runs one version of the plan. It reports whether the watcher
// should run again.
func runWatchIteration(parent context.Context, opts RunOptions, logger *slog.Logger, out io.Writer, changes <-chan struct{}) bool {
	// 1. Initialize Machine
	machine, _, err := createMachine(opts, logger)
	if err != nil {
		logger.Error("Plan initialization failed", "err", err)
		printSystemMessage(out, "Plan is invalid, waiting for changes...")
		return waitForChange(parent, changes)
	}

	store, closeStore, err := createStore(parent, opts)
	if err != nil {
		logger.Error("Store initialization failed", "err", err)
		return false
	}
	defer closeStore()

	// 2. Run until the plan ends, a change arrives or the parent stops
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runMachine(ctx, opts, logger, out, machine, store, snapshotKey(opts, machine))
	}()

	select {
	case <-parent.Done():
		cancel()
		_ = finishSession(opts, out, machine, <-done)
		logger.Info("Stopping watcher (signal received)")
		return false
	case <-changes:
		cancel()
		<-done
		machine.End()
		printSystemMessage(out, "Change detected in '%s'.", opts.PlanPath)
		time.Sleep(reloadDelay)
		return true
	case err := <-done:
		if err != nil && !isInterrupted(err) {
			logger.Error("Runtime error", "err", err)
		}
		_ = finishSession(opts, out, machine, err)
		printSystemMessage(out, "Waiting for changes...")
		logger.Info("Plan finished, waiting for changes")
		return waitForChange(parent, changes)
	}
}

func waitForChange(ctx context.Context, changes <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return false
	case <-changes:
		time.Sleep(reloadDelay)
		return true
	}
}
