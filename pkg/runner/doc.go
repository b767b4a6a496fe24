/*
Package runner implements the host loop for Cadence machines.

The state tree never reads a timer on its own: something has to call Update at a
steady rate. The runner is that something. It ticks the target on an interval,
logs every status change between two ticks, publishes snapshots to a
ports.SnapshotStore, and stops when the target is done or its context is cancelled.

# Usage

	signals := runner.NewSignalManager()
	defer signals.Stop()

	r := runner.NewRunner(
		runner.WithInterval(100*time.Millisecond),
		runner.WithStore(store),
	)

	if err := r.Run(signals.Context(), machine); err != nil {
		log.Fatal(err)
	}
*/
package runner
