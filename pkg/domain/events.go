package domain

import (
	"fmt"
	"time"
)

// HookFailure describes an error (or recovered panic) raised by a state hook.
// The runtime never propagates it; it is handed to a FailureReporter instead.
type HookFailure struct {
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"`
	Kind      Kind      `json:"kind"`
	Phase     Phase     `json:"phase"`
	Err       error     `json:"-"`
}

// Error makes a HookFailure usable as an error value.
func (f HookFailure) Error() string {
	return fmt.Sprintf("%s %s %s: %v", f.Kind, f.State, f.Phase, f.Err)
}

// Unwrap returns the hook error.
func (f HookFailure) Unwrap() error {
	return f.Err
}

// LifecycleEvent is emitted after a successful start or end transition.
type LifecycleEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	State     string        `json:"state"`
	Kind      Kind          `json:"kind"`
	Phase     Phase         `json:"phase"`
	Elapsed   time.Duration `json:"elapsed"` // Zero on start
}

// LifecycleHooks defines callbacks for state observability.
// Callbacks run synchronously on the goroutine that drove the transition.
type LifecycleHooks struct {
	OnStart func(LifecycleEvent)
	OnEnd   func(LifecycleEvent)
}

// IsZero reports whether no callback is set.
func (h LifecycleHooks) IsZero() bool {
	return h.OnStart == nil && h.OnEnd == nil
}

// MergeHooks combines several observers into one, calling them in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var starts, ends []func(LifecycleEvent)
	for _, h := range hooks {
		if h.OnStart != nil {
			starts = append(starts, h.OnStart)
		}
		if h.OnEnd != nil {
			ends = append(ends, h.OnEnd)
		}
	}
	return LifecycleHooks{OnStart: fanOut(starts), OnEnd: fanOut(ends)}
}

func fanOut(fns []func(LifecycleEvent)) func(LifecycleEvent) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(e LifecycleEvent) {
		for _, fn := range fns {
			fn(e)
		}
	}
}
