package domain

import (
	"strconv"
	"time"
)

// Snapshot is a point-in-time view of a state and, for composites, its children.
// It is safe to serialize and to hand to other goroutines.
type Snapshot struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Status   Status `json:"status"`
	Started  bool   `json:"started"`
	Ended    bool   `json:"ended"`
	Frozen   bool   `json:"frozen"`
	Updating bool   `json:"updating"`

	Duration  time.Duration `json:"duration"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"`

	// Current is the cursor of a series (-1 when empty). Nil for other kinds.
	Current  *int `json:"current,omitempty"`
	Skipping bool `json:"skipping,omitempty"`

	Children []Snapshot `json:"children,omitempty"`
}

// Walk visits the snapshot and its descendants depth-first.
// The path of the root is its name; children are addressed as "parent/index:name".
// Returning false from fn stops the walk.
func (s Snapshot) Walk(fn func(path string, node Snapshot) bool) {
	s.walk(s.Name, fn)
}

func (s Snapshot) walk(path string, fn func(string, Snapshot) bool) bool {
	if !fn(path, s) {
		return false
	}
	for i, child := range s.Children {
		if !child.walk(path+"/"+strconv.Itoa(i)+":"+child.Name, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node (depth-first) with the given name.
func (s Snapshot) Find(name string) (Snapshot, bool) {
	var found Snapshot
	ok := false
	s.Walk(func(_ string, node Snapshot) bool {
		if node.Name == name {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}

// Active returns the running leaves of the tree, in depth-first order.
func (s Snapshot) Active() []Snapshot {
	var out []Snapshot
	s.Walk(func(_ string, node Snapshot) bool {
		if node.Status == StatusRunning && len(node.Children) == 0 {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s.Current != nil {
		current := *s.Current
		s.Current = &current
	}
	if s.Children != nil {
		children := make([]Snapshot, len(s.Children))
		for i, child := range s.Children {
			children[i] = child.Clone()
		}
		s.Children = children
	}
	return s
}
