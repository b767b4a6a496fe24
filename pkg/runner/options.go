package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// DefaultInterval is the tick rate used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInterval sets the tick rate.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.Interval = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithStore configures where snapshots are published.
func WithStore(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithKey sets the store key. It defaults to the name of the target's root state.
func WithKey(key string) Option {
	return func(r *Runner) {
		r.Key = key
	}
}

// WithOnChange registers a callback receiving every non-empty diff between ticks.
func WithOnChange(fn func(snap domain.Snapshot, diff *domain.SnapshotDiff)) Option {
	return func(r *Runner) {
		r.OnChange = fn
	}
}
