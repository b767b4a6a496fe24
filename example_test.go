package cadence_test

import (
	"fmt"
	"log"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/dsl"
	"github.com/aretw0/cadence/pkg/fsm"
)

// ExampleNew demonstrates how to drive a plan built with the DSL.
// The host decides when time passes; here a manual clock makes the run deterministic.
func ExampleNew() {
	// 1. Describe the plan
	b := dsl.Series("match")
	b.Wait("lobby", time.Second)
	b.Wait("play", 2*time.Second)

	def, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Compile it, printing every start
	clock := fsm.NewManualClock(time.Unix(0, 0))
	m, err := cadence.New(def,
		cadence.WithClock(clock),
		cadence.WithLogger(logging.NewNop()),
		cadence.WithLifecycleHooks(domain.LifecycleHooks{
			OnStart: func(e domain.LifecycleEvent) {
				fmt.Printf("start %s at %s\n", e.State, e.Timestamp.Sub(time.Unix(0, 0)))
			},
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Tick until done
	m.Start()
	for !m.Done() {
		clock.Advance(500 * time.Millisecond)
		m.Update()
	}
	fmt.Println("done:", m.Snapshot().Status)
	// Output:
	// start match at 0s
	// start lobby at 0s
	// start play at 1s
	// done: ended
}
