// Package plan describes state trees as data.
//
// A Definition is a node of the tree: structural kinds (series, group, repeat) hold
// children, every other kind is a leaf resolved by a registry. Definitions are read
// from YAML or JSON plan files and checked with Validate before being compiled into
// runnable states.
package plan
