package fsm

import (
	"fmt"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// StateFactory produces the states a Proxy expands into.
type StateFactory interface {
	CreateStates() ([]State, error)
}

// FactoryFunc adapts a function to a StateFactory.
type FactoryFunc func() ([]State, error)

// CreateStates calls f().
func (f FactoryFunc) CreateStates() ([]State, error) {
	return f()
}

// Proxy is a zero-duration state that, when started, asks its factory for states and
// inserts them into its series right after itself. The proxy then ends on the next tick
// and the series moves on to the generated states.
//
// Generated states inherit the proxy's clock, logger, reporter and observer unless they
// configured their own.
type Proxy struct {
	*Lifecycle

	series  *Series
	factory StateFactory
}

// NewProxy creates a proxy that expands into series. The proxy is expected to be a
// member of series; series is not owned by it.
func NewProxy(series *Series, factory StateFactory) *Proxy {
	p := &Proxy{series: series, factory: factory}
	p.Lifecycle = newLifecycle(proxyHooks{p}, domain.KindProxy)
	p.name = "Proxy"
	return p
}

// NewProxyFunc is NewProxy with a plain generator function.
func NewProxyFunc(series *Series, generate func() ([]State, error)) *Proxy {
	return NewProxy(series, FactoryFunc(generate))
}

type proxyHooks struct {
	p *Proxy
}

func (h proxyHooks) OnStart() error {
	states, err := h.p.factory.CreateStates()
	if err != nil {
		return fmt.Errorf("create states: %w", err)
	}
	for _, state := range states {
		Inherit(h.p, state)
	}
	h.p.series.AddNext(states...)
	return nil
}

func (proxyHooks) OnUpdate() error         { return nil }
func (proxyHooks) OnEnd() error            { return nil }
func (proxyHooks) Duration() time.Duration { return 0 }
