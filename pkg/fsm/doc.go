/*
Package fsm is a hierarchical finite-state-machine runtime built from composable states
with a strict start/update/end lifecycle.

A state starts exactly once, is updated on a cadence chosen by the host until its duration
(or a custom end condition) elapses, and ends exactly once. States compose into a Series
(one active child at a time, auto-advance), a Group (all children concurrently, join on
all ended) and a Switch (a single slot holding at most one active tree). A Proxy expands
into generated states at runtime by inserting them into its Series.

# Lifecycle

Application code implements Hooks and wraps it with New:

	lobby := fsm.New(&Lobby{}, fsm.WithName("lobby"))
	round := fsm.NewSeries(lobby, fsm.NewTimed("play", 30*time.Second))

	round.Start()
	for !round.Ended() {
		round.Update()
		time.Sleep(50 * time.Millisecond)
	}

The package starts no goroutines and owns no timers: the host decides when Update runs.

# Guarantees

  - Start and End are idempotent and serialized per state by a mutex that is never held
    while a hook runs, so hooks may call back into End or Start.
  - Overlapping Update calls are dropped, not queued.
  - Errors returned by hooks, and panics raised in them, are contained and delivered to a
    ports.FailureReporter. The lifecycle flags are committed before the hook runs.
  - The only errors returned to callers are domain.ErrNotStarted from the time accessors.

# Ticks

A Series advances at most one step per Update call. A zero-duration child therefore needs
its own Update tick to be recognized as finished and advanced past.
*/
package fsm
