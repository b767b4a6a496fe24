package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/cadence/pkg/plan"
)

// Builder manages the construction of one composite node and its children.
type Builder struct {
	def    plan.Definition
	nodes  []*Node
	custom map[string]bool
}

// Series creates a builder whose root runs its children one after another.
func Series(name string) *Builder {
	return newBuilder(name, plan.KindSeries, nil)
}

// Group creates a builder whose root runs its children concurrently.
func Group(name string) *Builder {
	return newBuilder(name, plan.KindGroup, nil)
}

func newBuilder(name, kind string, custom map[string]bool) *Builder {
	if custom == nil {
		custom = make(map[string]bool)
	}
	return &Builder{
		def:    plan.Definition{Name: name, Kind: kind},
		custom: custom,
	}
}

// Wait adds a leaf that does nothing for d.
func (b *Builder) Wait(name string, d time.Duration) *Node {
	return b.add(plan.Definition{Name: name, Kind: plan.KindWait, Duration: d}, nil)
}

// Log adds a leaf that logs message when started and then lasts for d.
func (b *Builder) Log(name, message string, d time.Duration) *Node {
	return b.add(plan.Definition{Name: name, Kind: plan.KindLog, Message: message, Duration: d}, nil)
}

// Leaf adds a leaf of a custom kind. The kind must be registered when the plan is compiled.
func (b *Builder) Leaf(name, kind string, d time.Duration) *Node {
	if !plan.IsStructural(kind) && kind != plan.KindWait && kind != plan.KindLog {
		b.custom[kind] = true
	}
	return b.add(plan.Definition{Name: name, Kind: kind, Duration: d}, nil)
}

// Series adds a nested series populated by fn.
func (b *Builder) Series(name string, fn func(*Builder)) *Node {
	return b.nest(name, plan.KindSeries, fn)
}

// Group adds a nested group populated by fn.
func (b *Builder) Group(name string, fn func(*Builder)) *Node {
	return b.nest(name, plan.KindGroup, fn)
}

// Repeat adds a node that runs the children populated by fn times times in a row.
// Repeats are only valid inside a series.
func (b *Builder) Repeat(name string, times int, fn func(*Builder)) *Node {
	node := b.nest(name, plan.KindRepeat, fn)
	node.def.Times = times
	return node
}

func (b *Builder) nest(name, kind string, fn func(*Builder)) *Node {
	child := newBuilder(name, kind, b.custom)
	if fn != nil {
		fn(child)
	}
	return b.add(plan.Definition{Name: name, Kind: kind}, child)
}

func (b *Builder) add(def plan.Definition, nested *Builder) *Node {
	node := &Node{def: def, nested: nested}
	b.nodes = append(b.nodes, node)
	return node
}

// Definition assembles the plan without validating it.
func (b *Builder) Definition() plan.Definition {
	def := b.def
	def.Children = nil
	for _, node := range b.nodes {
		def.Children = append(def.Children, node.Build())
	}
	return def
}

// Build assembles and validates the plan. Custom leaf kinds are accepted here and
// resolved when the plan is compiled.
func (b *Builder) Build() (plan.Definition, error) {
	def := b.Definition()
	isLeaf := func(kind string) bool {
		return kind == plan.KindWait || kind == plan.KindLog || b.custom[kind]
	}
	if err := plan.Validate(def, isLeaf); err != nil {
		return plan.Definition{}, fmt.Errorf("failed to build plan %q: %w", def.Name, err)
	}
	return def, nil
}
