package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Target is what the runner drives. *cadence.Machine implements it.
type Target interface {
	Start()
	Update()
	Done() bool
	Snapshot() domain.Snapshot
}

// Runner ticks a Target until it is done.
type Runner struct {
	Interval time.Duration

	// Logger is used for transition and persistence logs.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store receives a snapshot on start, on every change and when the run stops.
	// If nil, snapshots are not published.
	Store ports.SnapshotStore
	Key   string

	OnChange func(snap domain.Snapshot, diff *domain.SnapshotDiff)
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Interval: DefaultInterval,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts target and updates it once per interval. It returns nil when the target
// is done and the context error when ctx is cancelled first.
func (r *Runner) Run(ctx context.Context, target Target) error {
	// 1. Setup Phase
	target.Start()
	last := target.Snapshot()
	key := r.Key
	if key == "" {
		key = last.Name
	}
	if err := r.publish(ctx, key, last); err != nil {
		return err
	}
	r.Logger.Info("run started", "key", key, "interval", r.Interval)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	// 2. Execution Loop
	for ticks := 0; !target.Done(); {
		select {
		case <-ctx.Done():
			r.Logger.Info("run interrupted", "key", key, "ticks", ticks)
			// Publish the last known state with a fresh context
			if err := r.publish(context.Background(), key, target.Snapshot()); err != nil {
				r.Logger.Error("failed to publish final snapshot", "key", key, "err", err)
			}
			return ctx.Err()
		case <-ticker.C:
		}

		target.Update()
		ticks++

		snap := target.Snapshot()
		diff := domain.Diff(&last, &snap)
		if diff == nil {
			continue
		}
		r.logDiff(diff)
		if r.OnChange != nil {
			r.OnChange(snap, diff)
		}
		if err := r.publish(ctx, key, snap); err != nil {
			return err
		}
		last = snap
	}

	r.Logger.Info("run completed", "key", key, "elapsed", last.Elapsed)
	return nil
}

func (r *Runner) publish(ctx context.Context, key string, snap domain.Snapshot) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Save(ctx, key, snap); err != nil {
		return fmt.Errorf("failed to publish snapshot %q: %w", key, err)
	}
	r.Logger.Debug("snapshot saved", "key", key, "status", snap.Status)
	return nil
}

func (r *Runner) logDiff(diff *domain.SnapshotDiff) {
	for _, c := range diff.Changes {
		if c.From != c.To {
			r.Logger.Info("state changed", "path", c.Path, "kind", c.Kind, "from", c.From, "to", c.To)
		}
		if c.Frozen != nil {
			r.Logger.Info("state frozen", "path", c.Path, "frozen", *c.Frozen)
		}
	}
	for _, path := range diff.Added {
		r.Logger.Debug("state added", "path", path)
	}
}
