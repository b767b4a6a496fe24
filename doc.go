/*
Package cadence is a hierarchical state machine runtime for time-driven processes such
as game phases, rounds, countdowns and scheduled stages.

Every state has a start, a cyclic update and an end. Leaves carry the application logic;
composites arrange them in time: a Series runs its children one after another, a Group
runs them side by side, and a Proxy expands lazily into more states when it is reached.
The host owns the clock and calls Update at its own rate (see pkg/runner).

# Concept

A plan describes the tree as data (YAML, JSON, or the pkg/dsl builder). The Machine
compiles it with a registry of leaf kinds and drives it. Hook failures never stop the
tree: they are reported through a ports.FailureReporter, and the lifecycle continues.

# Usage

	package main

	import (
		"log"
		"time"

		"github.com/aretw0/cadence"
	)

	func main() {
		m, err := cadence.Load("./match.yaml")
		if err != nil {
			log.Fatal(err)
		}

		m.Start()
		for !m.Done() {
			time.Sleep(50 * time.Millisecond)
			m.Update()
		}
	}

For lower-level control, build trees directly with pkg/fsm.
*/
package cadence
