package fsm

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// Series runs its states one after another. Only the state at the cursor is active;
// when it is ready to end (and not frozen), or when Skip was requested, the series ends
// it and starts the next one. The series ends after its last state.
type Series struct {
	*Holder

	current  int // guarded by Holder.mu; 0 <= current <= len(states)
	skipping atomic.Bool
}

var _ Container = (*Series)(nil)

// NewSeries creates a series over states, run in the given order.
func NewSeries(states ...State) *Series {
	s := &Series{}
	s.Holder = newHolder(states, seriesHooks{s}, domain.KindSeries, "Series")
	return s
}

// AddNext inserts states right after the current one, so they run next and in the
// given order. When the series is exhausted they are appended.
func (s *Series) AddNext(states ...State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := min(s.current+1, len(s.states))
	s.states = slices.Insert(s.states, pos, states...)
}

// Skip forces the next Update to end the current state and advance, regardless of the
// state's readiness or frozen flag.
func (s *Series) Skip() {
	s.skipping.Store(true)
}

// Skipping reports whether a skip is pending.
func (s *Series) Skipping() bool {
	return s.skipping.Load()
}

// CurrentIndex returns the cursor, or -1 when the series is empty.
func (s *Series) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.states) == 0 {
		return -1
	}
	return s.current
}

// CurrentState returns the state at the cursor. It reports false when the series is
// empty or exhausted.
func (s *Series) CurrentState() (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current >= len(s.states) {
		return nil, false
	}
	return s.states[s.current], true
}

// HasNext reports whether a state follows the current one.
func (s *Series) HasNext() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current+1 < len(s.states)
}

// RemainingStates returns the number of states left, the current one included.
func (s *Series) RemainingStates() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return max(0, len(s.states)-s.current)
}

// advance moves the cursor forward and returns the new current state, if any.
func (s *Series) advance() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current++
	if s.current >= len(s.states) {
		return nil, false
	}
	return s.states[s.current], true
}

// Snapshot captures the series, its cursor and its children.
func (s *Series) Snapshot() domain.Snapshot {
	snap := s.Holder.Snapshot()
	current := s.CurrentIndex()
	snap.Current = &current
	snap.Skipping = s.skipping.Load()
	return snap
}

func (s *Series) String() string {
	s.mu.RLock()
	current, size := s.current, len(s.states)
	s.mu.RUnlock()
	return fmt.Sprintf("%s{current=%d/%d, skipping=%t, started=%t, ended=%t}",
		s.name, current, size, s.skipping.Load(), s.Started(), s.Ended())
}

// seriesHooks keeps the lifecycle hooks of Series off its public API.
type seriesHooks struct {
	s *Series
}

func (h seriesHooks) OnStart() error {
	first, ok := h.s.CurrentState()
	if !ok {
		h.s.End()
		return nil
	}
	first.Start()
	return nil
}

// OnUpdate advances at most one step per call.
func (h seriesHooks) OnUpdate() error {
	s := h.s
	current, ok := s.CurrentState()
	if !ok {
		return nil
	}

	current.Update()

	if !(current.ReadyToEnd() && !current.Frozen()) && !s.skipping.Load() {
		return nil
	}

	s.skipping.Store(false)
	current.End()

	next, ok := s.advance()
	if !ok {
		s.End()
		return nil
	}
	next.Start()
	return nil
}

func (h seriesHooks) OnEnd() error {
	if current, ok := h.s.CurrentState(); ok {
		current.End()
	}
	return nil
}

// ShouldEnd reports true for an empty series, or when the last state is current and ready.
func (h seriesHooks) ShouldEnd() bool {
	s := h.s
	s.mu.RLock()
	size, current := len(s.states), s.current
	var last State
	if size > 0 && current == size-1 {
		last = s.states[current]
	}
	s.mu.RUnlock()

	if size == 0 {
		return true
	}
	return last != nil && last.ReadyToEnd()
}

// Duration is the sum of the children's durations at call time.
func (h seriesHooks) Duration() time.Duration {
	var total time.Duration
	for _, state := range h.s.All() {
		total += state.Duration()
	}
	return total
}
