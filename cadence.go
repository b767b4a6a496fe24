package cadence

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/cadence/internal/compiler"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/registry"
)

// Machine is the high-level entry point for the Cadence library.
// It compiles a plan into a state tree and drives it through a Switch, so that a
// restart always ends the previous run before the next one starts.
type Machine struct {
	Name string

	def      plan.Definition
	registry *registry.Registry
	clock    fsm.Clock
	logger   *slog.Logger
	reporter ports.FailureReporter
	observer domain.LifecycleHooks

	sw   *fsm.Switch
	mu   sync.RWMutex
	root fsm.State
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithLogger sets a custom structured logger for the machine and its states.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithReporter sets the side channel receiving hook failures.
// If unset, failures are logged at error level.
func WithReporter(reporter ports.FailureReporter) Option {
	return func(m *Machine) {
		m.reporter = reporter
	}
}

// WithLifecycleHooks registers observability hooks fired on every state transition.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.observer = hooks
	}
}

// WithRegistry injects a registry with custom leaf kinds.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Machine) {
		m.registry = reg
	}
}

// WithClock replaces the system clock, mostly for tests.
func WithClock(clock fsm.Clock) Option {
	return func(m *Machine) {
		m.clock = clock
	}
}

// New validates and compiles def into a Machine. The machine is idle until Start.
func New(def plan.Definition, opts ...Option) (*Machine, error) {
	m := &Machine{
		Name: def.Name,
		def:  def,
		sw:   fsm.NewSwitch(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("plan", m.Name)
	if m.registry == nil {
		m.registry = registry.NewRegistry(registry.WithLogger(m.logger))
	}
	if m.clock == nil {
		m.clock = fsm.SystemClock{}
	}

	root, err := m.compile()
	if err != nil {
		return nil, err
	}
	m.root = root
	return m, nil
}

// Load reads a plan file and compiles it into a Machine.
func Load(path string, opts ...Option) (*Machine, error) {
	def, err := plan.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

func (m *Machine) compile() (fsm.State, error) {
	opts := []fsm.Option{
		fsm.WithClock(m.clock),
		fsm.WithLogger(m.logger),
		fsm.WithObserver(m.observer),
	}
	if m.reporter != nil {
		opts = append(opts, fsm.WithReporter(m.reporter))
	}

	root, err := compiler.New(m.registry, opts...).Compile(m.def)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plan %q: %w", m.Name, err)
	}
	return root, nil
}

// Start starts the plan. Calling it again has no effect.
func (m *Machine) Start() {
	root := m.Root()
	if current, ok := m.sw.CurrentState(); ok && current == root {
		return
	}
	m.logger.Info("plan started", "states", m.def.Count())
	m.sw.ChangeState(root)
}

// Restart ends the current run and starts a freshly compiled one.
func (m *Machine) Restart() error {
	root, err := m.compile()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.root = root
	m.mu.Unlock()

	m.logger.Info("plan restarted")
	m.sw.ChangeState(root)
	return nil
}

// Update advances the running plan by one tick.
func (m *Machine) Update() {
	m.sw.Update()
}

// End ends the running plan.
func (m *Machine) End() {
	m.Root().End()
}

// Done reports whether the plan has ended.
func (m *Machine) Done() bool {
	return m.Root().Ended()
}

// Root returns the state tree of the current run.
func (m *Machine) Root() fsm.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Definition returns the plan the machine was built from.
func (m *Machine) Definition() plan.Definition {
	return m.def
}

// Snapshot captures the current run. It is available before Start.
func (m *Machine) Snapshot() domain.Snapshot {
	return m.Root().Snapshot()
}

// Lookup finds a state by name; an empty name is the root.
func (m *Machine) Lookup(name string) (fsm.State, error) {
	root := m.Root()
	if name == "" {
		return root, nil
	}
	state, ok := fsm.Find(root, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, name)
	}
	return state, nil
}

// Skip requests the named series to move past its current state on the next tick.
func (m *Machine) Skip(name string) error {
	state, err := m.Lookup(name)
	if err != nil {
		return err
	}
	series, ok := state.(*fsm.Series)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", domain.ErrNotSkippable, state.Name(), state.Kind())
	}
	series.Skip()
	m.logger.Debug("skip requested", "state", series.Name())
	return nil
}

// Freeze sets the frozen flag of the named state.
func (m *Machine) Freeze(name string, frozen bool) error {
	state, err := m.Lookup(name)
	if err != nil {
		return err
	}
	state.SetFrozen(frozen)
	m.logger.Debug("freeze toggled", "state", state.Name(), "frozen", frozen)
	return nil
}

// EndState ends the named state immediately.
func (m *Machine) EndState(name string) error {
	state, err := m.Lookup(name)
	if err != nil {
		return err
	}
	state.End()
	return nil
}
