package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/plan"
)

// Factory builds the hooks of a leaf state from its plan definition.
type Factory func(def plan.Definition) (fsm.Hooks, error)

// Registry manages the available leaf kinds.
// Structural kinds (series, group, repeat) are handled by the compiler and never
// looked up here.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Factory
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the built-in "log" kind.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry with the built-in "wait" and "log" kinds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		kinds:  make(map[string]Factory),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Register(plan.KindWait, func(def plan.Definition) (fsm.Hooks, error) {
		return fsm.Funcs{Length: def.Duration}, nil
	})
	r.Register(plan.KindLog, func(def plan.Definition) (fsm.Hooks, error) {
		return &logHooks{logger: r.logger, name: def.Name, message: def.Message, length: def.Duration}, nil
	})
	return r
}

// Register adds a leaf kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = fn
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.kinds[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Build looks up the kind of def and creates its hooks.
// Returns an error wrapping domain.ErrUnknownKind if the kind is not registered.
func (r *Registry) Build(def plan.Definition) (fsm.Hooks, error) {
	r.mu.RLock()
	fn, ok := r.kinds[def.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, def.Kind)
	}

	hooks, err := fn(def)
	if err != nil {
		return nil, fmt.Errorf("build %s %q: %w", def.Kind, def.Name, err)
	}
	return hooks, nil
}

// logHooks writes its message when started and then waits for its duration.
type logHooks struct {
	logger  *slog.Logger
	name    string
	message string
	length  time.Duration
}

func (h *logHooks) OnStart() error {
	h.logger.Info(h.message, "state", h.name)
	return nil
}

func (h *logHooks) OnUpdate() error         { return nil }
func (h *logHooks) OnEnd() error            { return nil }
func (h *logHooks) Duration() time.Duration { return h.length }
