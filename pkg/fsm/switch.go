package fsm

import (
	"sync"

	"github.com/aretw0/cadence/pkg/domain"
)

// Switch holds at most one active state. Changing the state always ends the previous
// one before the next is referenced and started. A Switch is not itself a State.
type Switch struct {
	// changing serializes whole ChangeState calls, hooks included.
	changing sync.Mutex

	mu      sync.RWMutex
	current State
}

// NewSwitch creates an empty switch.
func NewSwitch() *Switch {
	return &Switch{}
}

// ChangeState ends the current state (if any), then makes next current and starts it.
// A nil next leaves the switch empty. Concurrent calls run one after the other, so
// every state that was current is ended. Hooks must not call ChangeState on the
// switch holding them: the call would deadlock.
func (s *Switch) ChangeState(next State) {
	s.changing.Lock()
	defer s.changing.Unlock()

	s.mu.RLock()
	prev := s.current
	s.mu.RUnlock()

	if prev != nil {
		prev.End()
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	if next != nil {
		next.Start()
	}
}

// Update updates the current state, if any.
func (s *Switch) Update() {
	if current, ok := s.CurrentState(); ok {
		current.Update()
	}
}

// CurrentState returns the referenced state and whether there is one.
func (s *Switch) CurrentState() (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// HasActiveState reports whether a state is referenced.
func (s *Switch) HasActiveState() bool {
	_, ok := s.CurrentState()
	return ok
}

// Snapshot returns the snapshot of the current state.
func (s *Switch) Snapshot() (domain.Snapshot, error) {
	current, ok := s.CurrentState()
	if !ok {
		return domain.Snapshot{}, domain.ErrNoActiveState
	}
	return current.Snapshot(), nil
}
