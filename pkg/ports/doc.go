/*
Package ports defines the driven ports (interfaces) of the cadence runtime.

These interfaces decouple the FSM core from external implementations, allowing
hook failures and state snapshots to flow into any logging, metrics or storage backend.

# Key Interfaces

  - FailureReporter: Receives hook failures the core contained (log/metrics sink).
  - SnapshotStore: Persists the latest Snapshot of a running tree for introspection.
*/
package ports
