/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing Cadence plans.

It allows developers to define state trees using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for dynamic plan
generation, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"time"

		"github.com/aretw0/cadence/pkg/dsl"
	)

	func main() {
		b := dsl.Series("match")

		b.Wait("lobby", 5*time.Second).Frozen()

		b.Group("play", func(g *dsl.Builder) {
			g.Wait("clock", 30*time.Second)
			g.Log("announce", "fight!", time.Second)
		})

		b.Repeat("rounds", 3, func(r *dsl.Builder) {
			r.Wait("round", 10*time.Second)
		})

		// The resulting definition can be passed to cadence.New(...)
		def, err := b.Build()
		// ...
	}
*/
package dsl
