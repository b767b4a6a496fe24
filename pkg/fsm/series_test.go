package fsm_test

import (
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningCount(states ...fsm.State) int {
	n := 0
	for _, s := range states {
		if s.Started() && !s.Ended() {
			n++
		}
	}
	return n
}

func TestSeries_ZeroDurationChildrenRunInOrder(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("A", 0)
	b, _ := f.leaf("B", 0)
	c, _ := f.leaf("C", 0)
	series := f.series("round", a, b, c)

	series.Start()
	assert.True(t, a.Started())
	assert.False(t, b.Started(), "only the first child starts with the series")
	assert.False(t, c.Started())

	// One advance per external Update
	ticks := 0
	for !series.Ended() && ticks < 10 {
		series.Update()
		ticks++
		assert.LessOrEqual(t, runningCount(a, b, c), 1, "children must never overlap")
	}

	assert.Equal(t, 3, ticks)
	assert.Equal(t, []string{
		"A:start", "A:end",
		"B:start", "B:end",
		"C:start", "C:end",
	}, f.journal.all())
	assert.True(t, a.Ended() && b.Ended() && c.Ended())
}

func TestSeries_AdvancesOnDuration(t *testing.T) {
	f := newFixture(t)
	lobby, lobbyRec := f.leaf("lobby", 2*time.Second)
	play, _ := f.leaf("play", 3*time.Second)
	series := f.series("match", lobby, play)

	assert.Equal(t, 5*time.Second, series.Duration())

	series.Start()
	series.Update()
	_, updates, _ := lobbyRec.counts()
	assert.Equal(t, 1, updates)
	assert.Equal(t, 0, series.CurrentIndex())

	f.clock.Advance(2 * time.Second)
	series.Update()
	assert.True(t, lobby.Ended())
	assert.True(t, play.Started())
	assert.Equal(t, 1, series.CurrentIndex())

	f.clock.Advance(3 * time.Second)
	series.Update()
	assert.True(t, series.Ended())
	assert.True(t, play.Ended())
}

func TestSeries_FrozenChildHoldsTheSeries(t *testing.T) {
	f := newFixture(t)
	lobby, _ := f.leaf("lobby", time.Second)
	play, _ := f.leaf("play", time.Second)
	series := f.series("match", lobby, play)

	series.Start()
	lobby.SetFrozen(true)
	f.clock.Advance(5 * time.Second)

	series.Update()
	series.Update()
	assert.False(t, lobby.Ended())
	assert.False(t, play.Started())

	lobby.SetFrozen(false)
	series.Update()
	assert.True(t, lobby.Ended())
	assert.True(t, play.Started())
}

func TestSeries_Skip(t *testing.T) {
	f := newFixture(t)
	lobby, _ := f.leaf("lobby", time.Hour)
	play, _ := f.leaf("play", time.Hour)
	series := f.series("match", lobby, play)

	series.Start()
	lobby.SetFrozen(true)

	series.Skip()
	assert.True(t, series.Skipping())
	assert.False(t, lobby.Ended(), "skip only takes effect on the next update")

	series.Update()
	assert.True(t, lobby.Ended(), "skip ends the active child regardless of readiness and freeze")
	assert.True(t, play.Started())
	assert.False(t, series.Skipping())
	assert.False(t, series.Ended())
}

func TestSeries_SkipAtLastChildEndsSeries(t *testing.T) {
	f := newFixture(t)
	lobby, _ := f.leaf("lobby", time.Hour)
	series := f.series("match", lobby)

	series.Start()
	series.Skip()
	series.Update()

	assert.True(t, lobby.Ended())
	assert.True(t, series.Ended(), "series ends on the update that processes the skip")
	_, ok := series.CurrentState()
	assert.False(t, ok)
	assert.Equal(t, 0, series.RemainingStates())
}

func TestSeries_AddNextDuringUpdate(t *testing.T) {
	f := newFixture(t)
	var series *fsm.Series
	bonus, _ := f.leaf("bonus", time.Hour)
	extra, _ := f.leaf("extra", time.Hour)

	injected := false
	rec := &recorder{name: "lobby", length: time.Hour, journal: f.journal}
	rec.onUpdate = func() {
		if !injected {
			injected = true
			series.AddNext(bonus, extra)
		}
	}
	lobby := fsm.New(rec, f.options("lobby")...)
	finale, _ := f.leaf("finale", time.Hour)
	series = f.series("match", lobby, finale)

	series.Start()
	assert.Equal(t, 2, series.RemainingStates())

	series.Update()
	assert.Equal(t, 4, series.RemainingStates(), "inserted states are counted immediately")
	assert.Equal(t, 4*time.Hour, series.Duration(), "duration reflects the current list")

	names := make([]string, 0, series.Len())
	for _, s := range series.All() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"lobby", "bonus", "extra", "finale"}, names)

	series.Skip()
	series.Update()
	cur, ok := series.CurrentState()
	require.True(t, ok)
	assert.Equal(t, "bonus", cur.Name(), "inserted states run next")
	assert.True(t, series.HasNext())
}

func TestSeries_AddNextOnExhaustedAppends(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("A", time.Hour)
	series := f.series("s", a)

	series.Start()
	series.Skip()
	series.Update()
	require.True(t, series.Ended())

	late, _ := f.leaf("late", time.Hour)
	series.AddNext(late)
	assert.Equal(t, 2, series.Len())
	last, ok := series.At(1)
	require.True(t, ok)
	assert.Same(t, late, last)
	assert.False(t, late.Started(), "an ended series never starts new states")
}

func TestSeries_EndMidSequenceEndsOnlyCurrent(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("A", 0)
	b, _ := f.leaf("B", time.Hour)
	c, _ := f.leaf("C", time.Hour)
	series := f.series("s", a, b, c)

	series.Start()
	series.Update() // A -> B
	series.SetAllFrozen(true)
	series.Update()
	require.True(t, b.Started())

	series.End()
	assert.True(t, b.Ended())
	assert.False(t, c.Started(), "pending states are not touched")
	assert.False(t, c.Ended())
	assert.True(t, series.Frozen())
}

func TestSeries_Empty(t *testing.T) {
	f := newFixture(t)
	series := f.series("empty")

	assert.Equal(t, -1, series.CurrentIndex())
	_, ok := series.CurrentState()
	assert.False(t, ok)
	assert.True(t, series.IsEmpty())
	assert.Equal(t, time.Duration(0), series.Duration())

	series.Start()
	assert.True(t, series.Ended(), "an empty series ends as soon as it starts")
}

func TestSeries_SnapshotAndString(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("A", time.Second)
	b, _ := f.leaf("B", time.Second)
	series := f.series("round", a, b)

	assert.Equal(t, "round{current=0/2, skipping=false, started=false, ended=false}", series.String())

	series.Start()
	snap := series.Snapshot()
	assert.Equal(t, domain.KindSeries, snap.Kind)
	assert.Equal(t, 2*time.Second, snap.Duration)
	require.NotNil(t, snap.Current)
	assert.Equal(t, 0, *snap.Current)
	require.Len(t, snap.Children, 2)
	assert.Equal(t, domain.StatusRunning, snap.Children[0].Status)
	assert.Equal(t, domain.StatusPending, snap.Children[1].Status)
}

func TestHolder_Collection(t *testing.T) {
	f := newFixture(t)
	a, _ := f.leaf("A", time.Second)
	b, _ := f.leaf("B", time.Second)
	series := f.series("s")

	series.Add(a)
	series.AddAll([]fsm.State{b, a})
	assert.Equal(t, 3, series.Len(), "duplicates are permitted")
	assert.True(t, series.Contains(b))

	assert.True(t, series.Remove(a))
	assert.Equal(t, 2, series.Len())
	first, _ := series.At(0)
	assert.Same(t, b, first, "Remove deletes the first occurrence")

	view := series.States()
	view[0] = nil
	first, _ = series.At(0)
	assert.Same(t, b, first, "States returns a copy")

	series.Clear()
	assert.True(t, series.IsEmpty())
	assert.False(t, series.Remove(a))
	assert.Equal(t, "s{states=0, started=false, ended=false, frozen=false}", series.Holder.String())
}
