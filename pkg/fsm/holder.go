package fsm

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/aretw0/cadence/pkg/domain"
)

// Container is a State that owns an ordered list of child states.
type Container interface {
	State
	States() []State
}

// Holder is the ordered, mutable collection of child states shared by Series and Group.
// It is itself a State through the embedded Lifecycle.
//
// A child must belong to a single holder. The list may be mutated while the holder is
// iterating during an update pass: iteration is index based and re-reads the list on
// every step.
type Holder struct {
	*Lifecycle

	// mu guards states (and the cursor of a Series). It is held only for the slice
	// operation itself, never while a child runs.
	mu     sync.RWMutex
	states []State
}

var _ Container = (*Holder)(nil)

func newHolder(states []State, hooks Hooks, kind domain.Kind, name string) *Holder {
	h := &Holder{
		states: slices.Clone(states),
	}
	h.Lifecycle = newLifecycle(hooks, kind)
	h.name = name
	return h
}

// Add appends a state.
func (h *Holder) Add(state State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, state)
}

// AddAll appends every state, keeping their order.
func (h *Holder) AddAll(states []State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, states...)
}

// Remove deletes the first occurrence of state and reports whether it was present.
func (h *Holder) Remove(state State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := slices.Index(h.states, state)
	if i < 0 {
		return false
	}
	h.states = slices.Delete(h.states, i, i+1)
	return true
}

// Clear removes every state.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = nil
}

// Len returns the number of states.
func (h *Holder) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.states)
}

// IsEmpty reports whether the holder has no states.
func (h *Holder) IsEmpty() bool {
	return h.Len() == 0
}

// Contains reports whether state is held.
func (h *Holder) Contains(state State) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Contains(h.states, state)
}

// At returns the state at index i.
func (h *Holder) At(i int) (State, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.states) {
		return nil, false
	}
	return h.states[i], true
}

// States returns a copy of the held states; mutating it does not affect the holder.
func (h *Holder) States() []State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.states)
}

// All iterates over the states in insertion order. The list is re-read at every step,
// so states inserted ahead of the current position during iteration are visited.
func (h *Holder) All() iter.Seq2[int, State] {
	return func(yield func(int, State) bool) {
		for i := 0; ; i++ {
			state, ok := h.At(i)
			if !ok || !yield(i, state) {
				return
			}
		}
	}
}

// SetAllFrozen sets the frozen flag on every child and on the holder itself.
func (h *Holder) SetAllFrozen(frozen bool) {
	for _, state := range h.All() {
		state.SetFrozen(frozen)
	}
	h.SetFrozen(frozen)
}

// Snapshot captures the holder and, recursively, its children.
func (h *Holder) Snapshot() domain.Snapshot {
	snap := h.Lifecycle.Snapshot()
	for _, state := range h.All() {
		snap.Children = append(snap.Children, state.Snapshot())
	}
	return snap
}

func (h *Holder) String() string {
	return fmt.Sprintf("%s{states=%d, started=%t, ended=%t, frozen=%t}",
		h.name, h.Len(), h.Started(), h.Ended(), h.Frozen())
}
