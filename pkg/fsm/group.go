package fsm

import (
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// Group runs all of its states concurrently: they start together, are all updated on
// every cycle, and the group ends once every one of them has ended.
type Group struct {
	*Holder
}

var _ Container = (*Group)(nil)

// NewGroup creates a group over states. Children are started and updated in insertion order.
func NewGroup(states ...State) *Group {
	g := &Group{}
	g.Holder = newHolder(states, groupHooks{g}, domain.KindGroup, "Group")
	return g
}

type groupHooks struct {
	g *Group
}

func (h groupHooks) OnStart() error {
	for _, state := range h.g.All() {
		state.Start()
	}
	return nil
}

func (h groupHooks) OnUpdate() error {
	for _, state := range h.g.All() {
		state.Update()
	}

	for _, state := range h.g.All() {
		if !state.Ended() {
			return nil
		}
	}
	h.g.End()
	return nil
}

func (h groupHooks) OnEnd() error {
	for _, state := range h.g.All() {
		state.End()
	}
	return nil
}

// ShouldEnd reports whether every child is ready to end.
func (h groupHooks) ShouldEnd() bool {
	for _, state := range h.g.All() {
		if !state.ReadyToEnd() {
			return false
		}
	}
	return true
}

// Duration is the longest child duration, zero for an empty group.
func (h groupHooks) Duration() time.Duration {
	var longest time.Duration
	for _, state := range h.g.All() {
		longest = max(longest, state.Duration())
	}
	return longest
}
