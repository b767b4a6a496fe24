/*
Package domain contains the data model shared by the cadence runtime and its adapters.

It defines lifecycle phases, the failure and lifecycle events emitted by states, the
serializable Snapshot of a state tree and the sentinel errors of the module. The package
is kept pure and free of I/O so that the core (pkg/fsm), the ports and every adapter can
depend on it without cycles.

# Key Entities

  - Phase: The lifecycle step a hook ran in (start, update, end).
  - HookFailure: A contained error raised by a state hook, delivered to a FailureReporter.
  - LifecycleEvent / LifecycleHooks: Observer callbacks for successful transitions.
  - Snapshot: A recursive, JSON-friendly view of a state (and its children).
  - SnapshotDiff: The transitions that happened between two snapshots of the same tree.
*/
package domain
