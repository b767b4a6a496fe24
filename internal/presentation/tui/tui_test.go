package tui

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() domain.Snapshot {
	current := 1
	return domain.Snapshot{
		Name: "match", Kind: domain.KindSeries, Status: domain.StatusRunning,
		Duration: 5 * time.Second, Elapsed: 2500 * time.Millisecond, Current: &current,
		Children: []domain.Snapshot{
			{Name: "lobby", Kind: domain.KindState, Status: domain.StatusEnded, Duration: 2 * time.Second, Elapsed: 2 * time.Second},
			{Name: "play", Kind: domain.KindState, Status: domain.StatusRunning, Frozen: true,
				Duration: 3 * time.Second, Elapsed: 500 * time.Millisecond, Remaining: 2500 * time.Millisecond},
		},
	}
}

func TestReport(t *testing.T) {
	got := Report(sampleSnapshot())

	assert.Contains(t, got, "# match\n")
	assert.Contains(t, got, "**Status:** running\n")
	assert.Contains(t, got, "## Active\n\n- play (2.5s left)\n")
	assert.Contains(t, got, "| match | series | running | 2.5s | 5s |")
	assert.Contains(t, got, "|   lobby | state | ended | 2s | 2s |")
	assert.Contains(t, got, "|   play | state | running ❄️ | 500ms | 3s |")
}

func TestReport_Finished(t *testing.T) {
	snap := domain.Snapshot{Name: "pause", Kind: domain.KindState, Status: domain.StatusEnded, Frozen: true}
	got := Report(snap)

	assert.Contains(t, got, "**Status:** ended (frozen)")
	assert.NotContains(t, got, "## Active")
}

func TestRenderer_Plain(t *testing.T) {
	render := NewRenderer(false)
	out, err := render("# title")
	require.NoError(t, err)
	assert.Equal(t, "# title", out)
}

func TestRenderer_Glamour(t *testing.T) {
	render := NewRenderer(true)
	out, err := render(Report(sampleSnapshot()))
	require.NoError(t, err)
	assert.Contains(t, out, "match")
	assert.Contains(t, out, "lobby")
}

func TestIsInteractive_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsInteractive(f))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), `\____/\__,_|`)
}
