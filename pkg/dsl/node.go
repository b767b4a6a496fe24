package dsl

import "github.com/aretw0/cadence/pkg/plan"

// Node provides a fluent API for configuring a node after it was added.
type Node struct {
	def    plan.Definition
	nested *Builder
}

// Frozen starts the node frozen: it will only end through an explicit End or Skip.
func (n *Node) Frozen() *Node {
	n.def.Frozen = true
	return n
}

// Message sets the message of a log node.
func (n *Node) Message(message string) *Node {
	n.def.Message = message
	return n
}

// Param adds a parameter for custom kinds.
func (n *Node) Param(key string, value any) *Node {
	if n.def.Params == nil {
		n.def.Params = make(map[string]any)
	}
	n.def.Params[key] = value
	return n
}

// Build returns the underlying plan.Definition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *Node) Build() plan.Definition {
	def := n.def
	if n.nested != nil {
		def.Children = n.nested.Definition().Children
	}
	return def
}
