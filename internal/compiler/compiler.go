package compiler

import (
	"fmt"

	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/aretw0/cadence/pkg/registry"
)

// Compiler turns plan definitions into runnable state trees.
type Compiler struct {
	registry *registry.Registry
	opts     []fsm.Option
}

// New creates a compiler resolving leaf kinds through reg. opts are applied to every
// compiled state, before the per-node name and frozen flag.
func New(reg *registry.Registry, opts ...fsm.Option) *Compiler {
	return &Compiler{registry: reg, opts: opts}
}

// Compile validates def and builds its state tree.
func (c *Compiler) Compile(def plan.Definition) (fsm.State, error) {
	if err := plan.Validate(def, c.registry.Has); err != nil {
		return nil, err
	}
	return c.build(def, nil)
}

// build compiles a node. parent is the enclosing series, required by repeat nodes.
func (c *Compiler) build(def plan.Definition, parent *fsm.Series) (fsm.State, error) {
	opts := c.options(def)

	switch def.Kind {
	case plan.KindSeries:
		series := fsm.NewSeries()
		series.Apply(opts...)
		for _, child := range def.Children {
			state, err := c.build(child, series)
			if err != nil {
				return nil, err
			}
			series.Add(state)
		}
		return series, nil

	case plan.KindGroup:
		group := fsm.NewGroup()
		group.Apply(opts...)
		for _, child := range def.Children {
			state, err := c.build(child, nil)
			if err != nil {
				return nil, err
			}
			group.Add(state)
		}
		return group, nil

	case plan.KindRepeat:
		if parent == nil {
			return nil, fmt.Errorf("%s: repeat outside of a series", def.Name)
		}
		return c.repeat(def, parent, 1), nil

	default:
		hooks, err := c.registry.Build(def)
		if err != nil {
			return nil, err
		}
		return fsm.New(hooks, opts...), nil
	}
}

// repeat returns the proxy of iteration n. When started it expands into fresh copies of
// the children followed by the proxy of the next iteration, until def.Times is reached.
func (c *Compiler) repeat(def plan.Definition, series *fsm.Series, n int) *fsm.Proxy {
	proxy := fsm.NewProxyFunc(series, func() ([]fsm.State, error) {
		states := make([]fsm.State, 0, len(def.Children)+1)
		for _, child := range def.Children {
			state, err := c.build(child, series)
			if err != nil {
				return nil, err
			}
			states = append(states, state)
		}
		if n < def.Times {
			states = append(states, c.repeat(def, series, n+1))
		}
		return states, nil
	})
	proxy.Apply(c.options(def)...)
	proxy.Apply(fsm.WithName(fmt.Sprintf("%s#%d", def.Name, n)))
	return proxy
}

func (c *Compiler) options(def plan.Definition) []fsm.Option {
	opts := make([]fsm.Option, 0, len(c.opts)+2)
	opts = append(opts, c.opts...)
	return append(opts, fsm.WithName(def.Name), fsm.WithFrozen(def.Frozen))
}
