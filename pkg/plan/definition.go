package plan

import (
	"time"
)

// Structural and built-in leaf kinds.
const (
	KindSeries = "series"
	KindGroup  = "group"
	KindRepeat = "repeat"
	KindWait   = "wait"
	KindLog    = "log"
)

// Definition is a node of a plan.
type Definition struct {
	Name     string         `json:"name" yaml:"name" mapstructure:"name"`
	Kind     string         `json:"kind" yaml:"kind" mapstructure:"kind"`
	Duration time.Duration  `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	Times    int            `json:"times,omitempty" yaml:"times,omitempty" mapstructure:"times"`
	Frozen   bool           `json:"frozen,omitempty" yaml:"frozen,omitempty" mapstructure:"frozen"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	Children []Definition   `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// IsStructural reports whether kind holds children.
func IsStructural(kind string) bool {
	switch kind {
	case KindSeries, KindGroup, KindRepeat:
		return true
	}
	return false
}

// Walk visits d and its descendants depth-first. Paths are slash separated names.
func (d Definition) Walk(fn func(path string, def Definition)) {
	d.walk(d.Name, fn)
}

func (d Definition) walk(path string, fn func(string, Definition)) {
	fn(path, d)
	for _, child := range d.Children {
		child.walk(path+"/"+child.Name, fn)
	}
}

// Count returns the number of nodes in the plan, d included.
func (d Definition) Count() int {
	n := 0
	d.Walk(func(string, Definition) { n++ })
	return n
}
