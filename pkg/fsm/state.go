package fsm

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Hooks is implemented by application states. The runtime calls them from Start, Update
// and End; an error (or a panic) is reported and never stops the lifecycle.
//
// Hooks must not embed *Lifecycle: wrap them with New instead.
type Hooks interface {
	OnStart() error
	OnUpdate() error
	OnEnd() error
	// Duration is the total intended run length.
	Duration() time.Duration
}

// EndCondition replaces the default readiness policy (ended or no time remaining)
// when implemented by Hooks.
type EndCondition interface {
	ShouldEnd() bool
}

// State is the lifecycle contract shared by leaves and composites.
// The only implementations are *Lifecycle and the composites embedding it.
type State interface {
	Start()
	Update()
	End()

	ReadyToEnd() bool
	Duration() time.Duration
	RemainingDuration() (time.Duration, error)
	ElapsedDuration() (time.Duration, error)
	StartInstant() (time.Time, error)

	Started() bool
	Ended() bool
	Frozen() bool
	SetFrozen(frozen bool)
	Updating() bool

	Name() string
	Kind() domain.Kind
	Snapshot() domain.Snapshot
	String() string

	lifecycle() *Lifecycle
}

// Lifecycle holds the shared lifecycle bookkeeping of a state and forwards to its Hooks.
type Lifecycle struct {
	hooks Hooks
	name  string
	kind  domain.Kind

	// mu serializes the start/end transitions. It is never held while a hook runs.
	mu           sync.Mutex
	startInstant time.Time

	started  atomic.Bool
	ended    atomic.Bool
	frozen   atomic.Bool
	updating atomic.Bool

	clock    Clock
	logger   *slog.Logger
	reporter ports.FailureReporter
	observer domain.LifecycleHooks
	explicit settings
}

var _ State = (*Lifecycle)(nil)

// New wraps hooks into a State. The name defaults to the hooks' type name.
func New(hooks Hooks, opts ...Option) *Lifecycle {
	l := newLifecycle(hooks, domain.KindState)
	l.Apply(opts...)
	return l
}

func newLifecycle(hooks Hooks, kind domain.Kind) *Lifecycle {
	return &Lifecycle{
		hooks:  hooks,
		name:   typeName(hooks),
		kind:   kind,
		clock:  SystemClock{},
		logger: slog.Default(),
	}
}

// Apply configures the state. It must be called before the state is started.
func (l *Lifecycle) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(l)
	}
}

func (l *Lifecycle) lifecycle() *Lifecycle {
	return l
}

// Start starts the state if it has not been started or ended already.
func (l *Lifecycle) Start() {
	l.mu.Lock()
	if l.started.Load() || l.ended.Load() {
		l.mu.Unlock()
		return
	}
	now := l.clock.Now()
	l.startInstant = now
	l.started.Store(true)
	l.mu.Unlock()

	l.notify(domain.PhaseStart, now, 0)
	if l.invoke(domain.PhaseStart, l.hooks.OnStart) {
		l.logger.Debug("state started", "state", l.name, "kind", l.kind)
	}
}

// Update runs one cycle of the state: it ends the state when it is ready (and not
// frozen), otherwise calls OnUpdate. Calls made before Start, after End or while
// another Update is running are ignored.
func (l *Lifecycle) Update() {
	l.mu.Lock()
	if !l.started.Load() || l.ended.Load() || !l.updating.CompareAndSwap(false, true) {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	defer l.updating.Store(false)

	l.invoke(domain.PhaseUpdate, func() error {
		if l.ReadyToEnd() && !l.frozen.Load() {
			l.End()
			return nil
		}
		return l.hooks.OnUpdate()
	})
}

// End ends the state if it has been started and has not ended yet.
func (l *Lifecycle) End() {
	l.mu.Lock()
	if !l.started.Load() || l.ended.Load() {
		l.mu.Unlock()
		return
	}
	now := l.clock.Now()
	l.ended.Store(true)
	elapsed := saturatingSub(now.Sub(l.startInstant), 0)
	l.mu.Unlock()

	l.notify(domain.PhaseEnd, now, elapsed)
	if l.invoke(domain.PhaseEnd, l.hooks.OnEnd) {
		l.logger.Debug("state ended", "state", l.name, "kind", l.kind, "elapsed", elapsed)
	}
}

// ReadyToEnd reports whether the state may end. By default a state is ready once it has
// ended or its remaining duration reached zero; Hooks implementing EndCondition decide
// for themselves. An unstarted state is never ready.
func (l *Lifecycle) ReadyToEnd() bool {
	if !l.started.Load() {
		return false
	}
	if cond, ok := l.hooks.(EndCondition); ok {
		return cond.ShouldEnd()
	}
	if l.ended.Load() {
		return true
	}
	remaining, err := l.RemainingDuration()
	return err == nil && remaining == 0
}

// Duration returns the total intended run length.
func (l *Lifecycle) Duration() time.Duration {
	return l.hooks.Duration()
}

// RemainingDuration returns the duration minus the elapsed time, floored at zero.
func (l *Lifecycle) RemainingDuration() (time.Duration, error) {
	elapsed, err := l.ElapsedDuration()
	if err != nil {
		return 0, fmt.Errorf("remaining duration of %s: %w", l.name, err)
	}
	return saturatingSub(l.Duration(), elapsed), nil
}

// ElapsedDuration returns the time since the state started.
func (l *Lifecycle) ElapsedDuration() (time.Duration, error) {
	start, err := l.StartInstant()
	if err != nil {
		return 0, err
	}
	return saturatingSub(l.clock.Now().Sub(start), 0), nil
}

// StartInstant returns the instant the state started.
func (l *Lifecycle) StartInstant() (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started.Load() {
		return time.Time{}, fmt.Errorf("start instant of %s: %w", l.name, domain.ErrNotStarted)
	}
	return l.startInstant, nil
}

func (l *Lifecycle) Started() bool  { return l.started.Load() }
func (l *Lifecycle) Ended() bool    { return l.ended.Load() }
func (l *Lifecycle) Frozen() bool   { return l.frozen.Load() }
func (l *Lifecycle) Updating() bool { return l.updating.Load() }

// SetFrozen toggles automatic ending. A frozen state only ends through an explicit End.
func (l *Lifecycle) SetFrozen(frozen bool) {
	l.frozen.Store(frozen)
}

// Name returns the configured name.
func (l *Lifecycle) Name() string {
	return l.name
}

// Kind returns the structural role of the state.
func (l *Lifecycle) Kind() domain.Kind {
	return l.kind
}

// Snapshot captures the lifecycle flags and timings of the state.
func (l *Lifecycle) Snapshot() domain.Snapshot {
	started, ended := l.started.Load(), l.ended.Load()
	snap := domain.Snapshot{
		Name:     l.name,
		Kind:     l.kind,
		Status:   domain.StatusOf(started, ended),
		Started:  started,
		Ended:    ended,
		Frozen:   l.frozen.Load(),
		Updating: l.updating.Load(),
		Duration: l.Duration(),
	}
	if elapsed, err := l.ElapsedDuration(); err == nil {
		snap.Elapsed = elapsed
		snap.Remaining = saturatingSub(snap.Duration, elapsed)
	}
	return snap
}

func (l *Lifecycle) String() string {
	return fmt.Sprintf("%s{started=%t, ended=%t, frozen=%t, updating=%t}",
		l.name, l.started.Load(), l.ended.Load(), l.frozen.Load(), l.updating.Load())
}

// invoke runs a hook, containing both returned errors and panics.
// It reports whether the hook completed without failure.
func (l *Lifecycle) invoke(phase domain.Phase, hook func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err, isErr := r.(error)
			if !isErr {
				err = fmt.Errorf("%v", r)
			}
			l.report(phase, fmt.Errorf("panic: %w", err))
			ok = false
		}
	}()

	if err := hook(); err != nil {
		l.report(phase, err)
		return false
	}
	return true
}

func (l *Lifecycle) report(phase domain.Phase, err error) {
	failure := domain.HookFailure{
		Timestamp: l.clock.Now(),
		State:     l.name,
		Kind:      l.kind,
		Phase:     phase,
		Err:       err,
	}
	if l.reporter != nil {
		l.reporter.ReportFailure(failure)
		return
	}
	l.logger.Error("state hook failed", "state", l.name, "kind", l.kind, "phase", phase, "err", err)
}

// notify fires the observer for phase. A failing observer is reported like a hook.
func (l *Lifecycle) notify(phase domain.Phase, at time.Time, elapsed time.Duration) {
	l.invoke(phase, func() error {
		l.observe(phase, at, elapsed)
		return nil
	})
}

func (l *Lifecycle) observe(phase domain.Phase, at time.Time, elapsed time.Duration) {
	var fn func(domain.LifecycleEvent)
	switch phase {
	case domain.PhaseStart:
		fn = l.observer.OnStart
	case domain.PhaseEnd:
		fn = l.observer.OnEnd
	}
	if fn == nil {
		return
	}
	fn(domain.LifecycleEvent{
		Timestamp: at,
		State:     l.name,
		Kind:      l.kind,
		Phase:     phase,
		Elapsed:   elapsed,
	})
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "State"
	}
	return t.Name()
}
