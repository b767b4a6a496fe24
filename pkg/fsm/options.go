package fsm

import (
	"log/slog"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Option configures a Lifecycle. Options are meant to be applied before the state is
// started; they are not synchronized with a running state.
type Option func(*Lifecycle)

// settings tracks which fields were configured explicitly, so that inheritance
// (see Proxy) never overrides a deliberate choice.
type settings uint8

const (
	setClock settings = 1 << iota
	setLogger
	setReporter
	setObserver
)

// WithName sets the human-readable name used in logs, failures and snapshots.
func WithName(name string) Option {
	return func(l *Lifecycle) {
		l.name = name
	}
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(l *Lifecycle) {
		l.clock = clock
		l.explicit |= setClock
	}
}

// WithLogger sets the structured logger used for transition debug logs and,
// when no reporter is configured, for hook failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		l.logger = logger
		l.explicit |= setLogger
	}
}

// WithReporter sets the side channel that receives hook failures.
func WithReporter(reporter ports.FailureReporter) Option {
	return func(l *Lifecycle) {
		l.reporter = reporter
		l.explicit |= setReporter
	}
}

// WithObserver registers lifecycle callbacks fired on every start and end transition.
func WithObserver(hooks domain.LifecycleHooks) Option {
	return func(l *Lifecycle) {
		l.observer = hooks
		l.explicit |= setObserver
	}
}

// WithFrozen sets the initial frozen flag.
func WithFrozen(frozen bool) Option {
	return func(l *Lifecycle) {
		l.frozen.Store(frozen)
	}
}

// inherit copies the runtime collaborators of parent into child, except for the
// ones child configured explicitly.
func inherit(parent, child *Lifecycle) {
	if child.explicit&setClock == 0 {
		child.clock = parent.clock
	}
	if child.explicit&setLogger == 0 {
		child.logger = parent.logger
	}
	if child.explicit&setReporter == 0 {
		child.reporter = parent.reporter
	}
	if child.explicit&setObserver == 0 {
		child.observer = parent.observer
	}
}
