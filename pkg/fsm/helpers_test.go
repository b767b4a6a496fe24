package fsm_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/ports"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// journal records hook calls across several states, in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// recorder is a Hooks implementation that logs every call into a journal.
type recorder struct {
	name    string
	length  time.Duration
	journal *journal

	startErr  error
	updateErr error
	endErr    error
	onUpdate  func()

	mu                     sync.Mutex
	starts, updates, ends int
}

func (r *recorder) OnStart() error {
	r.mu.Lock()
	r.starts++
	r.mu.Unlock()
	r.journal.add(r.name + ":start")
	return r.startErr
}

func (r *recorder) OnUpdate() error {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	r.journal.add(r.name + ":update")
	if r.onUpdate != nil {
		r.onUpdate()
	}
	return r.updateErr
}

func (r *recorder) OnEnd() error {
	r.mu.Lock()
	r.ends++
	r.mu.Unlock()
	r.journal.add(r.name + ":end")
	return r.endErr
}

func (r *recorder) Duration() time.Duration {
	return r.length
}

func (r *recorder) counts() (starts, updates, ends int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.updates, r.ends
}

// failures collects reported hook failures.
type failures struct {
	mu   sync.Mutex
	list []domain.HookFailure
}

func (f *failures) reporter() ports.FailureReporter {
	return ports.ReporterFunc(func(failure domain.HookFailure) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.list = append(f.list, failure)
	})
}

func (f *failures) all() []domain.HookFailure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HookFailure(nil), f.list...)
}

// fixture bundles the collaborators shared by most tests.
type fixture struct {
	t        *testing.T
	clock    *fsm.ManualClock
	journal  *journal
	failures *failures
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:        t,
		clock:    fsm.NewManualClock(epoch),
		journal:  &journal{},
		failures: &failures{},
	}
}

func (f *fixture) options(name string) []fsm.Option {
	return []fsm.Option{
		fsm.WithName(name),
		fsm.WithClock(f.clock),
		fsm.WithLogger(logging.NewNop()),
		fsm.WithReporter(f.failures.reporter()),
	}
}

// leaf returns a recording state lasting d.
func (f *fixture) leaf(name string, d time.Duration) (*fsm.Lifecycle, *recorder) {
	rec := &recorder{name: name, length: d, journal: f.journal}
	return fsm.New(rec, f.options(name)...), rec
}

// series builds a series configured like the fixture's leaves.
func (f *fixture) series(name string, states ...fsm.State) *fsm.Series {
	s := fsm.NewSeries(states...)
	s.Apply(f.options(name)...)
	return s
}

func (f *fixture) group(name string, states ...fsm.State) *fsm.Group {
	g := fsm.NewGroup(states...)
	g.Apply(f.options(name)...)
	return g
}
