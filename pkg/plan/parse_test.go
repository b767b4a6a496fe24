package plan_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchYAML = `
name: match
kind: series
children:
  - {name: lobby, kind: wait, duration: 5s}
  - name: play
    kind: group
    children:
      - {name: clock, kind: wait, duration: 30}
      - {name: announce, kind: log, message: "fight!", duration: 1.5}
  - name: rounds
    kind: repeat
    times: 3
    frozen: true
    children:
      - {name: round, kind: wait, duration: 1m}
`

func TestParse_YAML(t *testing.T) {
	def, err := plan.Parse([]byte(matchYAML))
	require.NoError(t, err)

	assert.Equal(t, "match", def.Name)
	assert.Equal(t, plan.KindSeries, def.Kind)
	require.Len(t, def.Children, 3)

	assert.Equal(t, 5*time.Second, def.Children[0].Duration)

	play := def.Children[1]
	require.Len(t, play.Children, 2)
	assert.Equal(t, 30*time.Second, play.Children[0].Duration, "plain numbers are seconds")
	assert.Equal(t, 1500*time.Millisecond, play.Children[1].Duration)
	assert.Equal(t, "fight!", play.Children[1].Message)

	rounds := def.Children[2]
	assert.Equal(t, 3, rounds.Times)
	assert.True(t, rounds.Frozen)
	assert.Equal(t, time.Minute, rounds.Children[0].Duration)

	assert.Equal(t, 7, def.Count())
}

func TestParse_JSON(t *testing.T) {
	def, err := plan.Parse([]byte(`{"name":"x","kind":"group","children":[{"name":"a","kind":"wait","duration":"2s","params":{"k":1}}]}`))
	require.NoError(t, err)
	require.Len(t, def.Children, 1)
	assert.Equal(t, 2*time.Second, def.Children[0].Duration)
	assert.Equal(t, 1, def.Children[0].Params["k"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not yaml", "name: [unclosed"},
		{"unknown key", "name: a\nkind: wait\ncolour: red"},
		{"bad duration", "name: a\nkind: wait\nduration: soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plan.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.yaml")
	require.NoError(t, os.WriteFile(path, []byte(matchYAML), 0o600))

	def, err := plan.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "match", def.Name)

	_, err = plan.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefinition_Walk(t *testing.T) {
	def, err := plan.Parse([]byte(matchYAML))
	require.NoError(t, err)

	var paths []string
	def.Walk(func(path string, _ plan.Definition) {
		paths = append(paths, path)
	})
	assert.Equal(t, []string{
		"match",
		"match/lobby",
		"match/play",
		"match/play/clock",
		"match/play/announce",
		"match/rounds",
		"match/rounds/round",
	}, paths)
}
