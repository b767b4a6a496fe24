package fsm_test

import (
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitch_ChangeStateEndsBeforeStart(t *testing.T) {
	f := newFixture(t)
	first, firstRec := f.leaf("first", time.Hour)
	second, secondRec := f.leaf("second", time.Hour)
	sw := fsm.NewSwitch()

	assert.False(t, sw.HasActiveState())

	sw.ChangeState(first)
	sw.ChangeState(second)

	assert.Equal(t, []string{"first:start", "first:end", "second:start"}, f.journal.all())
	_, _, firstEnds := firstRec.counts()
	secondStarts, _, _ := secondRec.counts()
	assert.Equal(t, 1, firstEnds)
	assert.Equal(t, 1, secondStarts)

	cur, ok := sw.CurrentState()
	require.True(t, ok)
	assert.Same(t, second, cur)
}

func TestSwitch_UpdateForwards(t *testing.T) {
	f := newFixture(t)
	state, rec := f.leaf("only", time.Hour)
	sw := fsm.NewSwitch()

	sw.Update() // empty switch is a no-op

	sw.ChangeState(state)
	sw.Update()
	_, updates, _ := rec.counts()
	assert.Equal(t, 1, updates)

	snap, err := sw.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "only", snap.Name)
}

func TestSwitch_ChangeToEndedStateAndClear(t *testing.T) {
	f := newFixture(t)
	first, firstRec := f.leaf("first", time.Hour)
	sw := fsm.NewSwitch()

	sw.ChangeState(first)
	first.End()
	sw.ChangeState(nil)

	_, _, ends := firstRec.counts()
	assert.Equal(t, 1, ends, "ending an already ended state is harmless")
	assert.False(t, sw.HasActiveState())

	_, err := sw.Snapshot()
	assert.ErrorIs(t, err, domain.ErrNoActiveState)
}

func TestWalk_FindAndInstrument(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("a", 0)
	b := fsm.NewTimed("b", time.Second)
	inner := fsm.NewGroup(b)
	inner.Apply(fsm.WithName("inner"))
	root := fsm.NewSeries(a, inner)
	root.Apply(fsm.WithName("root"))

	found, ok := fsm.Find(root, "b")
	require.True(t, ok)
	assert.Same(t, b, found)

	_, ok = fsm.Find(root, "missing")
	assert.False(t, ok)

	var visited []string
	fsm.Walk(root, func(s fsm.State) bool {
		visited = append(visited, s.Name())
		return true
	})
	assert.Equal(t, []string{"root", "a", "inner", "b"}, visited)

	fsm.Instrument(root, fsm.WithClock(f.clock), fsm.WithReporter(f.failures.reporter()))
	root.Start()
	root.Update() // a ends, inner and b start
	require.True(t, b.Started())
	at, err := b.StartInstant()
	require.NoError(t, err)
	assert.Equal(t, epoch, at, "instrumented descendants share the clock")
}

func TestSwitch_OverlappingChangesEndEveryReplacedState(t *testing.T) {
	f := newFixture(t)
	ending := make(chan struct{})
	release := make(chan struct{})
	first := fsm.New(fsm.Funcs{
		EndFn: func() error {
			close(ending)
			<-release
			return nil
		},
		Length: time.Hour,
	}, f.options("first")...)
	second, secondRec := f.leaf("second", time.Hour)
	third, thirdRec := f.leaf("third", time.Hour)

	sw := fsm.NewSwitch()
	sw.ChangeState(first)

	// 1. The first change blocks inside first's OnEnd
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		sw.ChangeState(second)
	}()
	<-ending

	// 2. A second change arrives while the first is still ending
	thirdDone := make(chan struct{})
	go func() {
		defer close(thirdDone)
		sw.ChangeState(third)
	}()
	time.Sleep(20 * time.Millisecond)

	// 3. Both changes complete once the hook returns
	close(release)
	for _, done := range []chan struct{}{firstDone, thirdDone} {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("ChangeState did not return")
		}
	}

	cur, ok := sw.CurrentState()
	require.True(t, ok)
	assert.Same(t, third, cur)
	assert.True(t, first.Ended())
	assert.True(t, second.Started())
	assert.True(t, second.Ended(), "a replaced state is always ended")
	assert.True(t, third.Started())
	assert.False(t, third.Ended())

	_, _, secondEnds := secondRec.counts()
	thirdStarts, _, _ := thirdRec.counts()
	assert.Equal(t, 1, secondEnds)
	assert.Equal(t, 1, thirdStarts)
}
