package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_Execute(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner()
	runner.Register("greet", "echo", "hello")

	t.Run("Executes Registered Command", func(t *testing.T) {
		result, err := runner.Execute(context.Background(), Call{Name: "greet"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "hello", result.Output)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := runner.Execute(context.Background(), Call{Name: "hacker_script", Command: "rm"})
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("Passes Arguments via Env Vars", func(t *testing.T) {
		runner.Register("echo_env", "sh", "-c", "echo $CADENCE_ARG_MSG")
		result, err := runner.Execute(context.Background(), Call{
			Name: "echo_env",
			Args: map[string]any{"msg": "SecretMessage"},
		})
		require.NoError(t, err)
		assert.Equal(t, "SecretMessage", result.Output)
	})

	t.Run("Parses JSON Output", func(t *testing.T) {
		runner.Register("json", "sh", "-c", `echo '{"score": 3}'`)
		result, err := runner.Execute(context.Background(), Call{Name: "json"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"score": float64(3)}, result.Output)
	})

	t.Run("Non-Zero Exit Is A Result Error", func(t *testing.T) {
		runner.Register("crashy", "sh", "-c", "echo 'Something went terribly wrong' >&2; exit 123")
		result, err := runner.Execute(context.Background(), Call{Name: "crashy"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Error, "exit status 123")
		assert.Contains(t, result.Error, "Something went terribly wrong")
	})
}

func TestRunner_Inline(t *testing.T) {
	skipOnWindows(t)

	call := Call{Name: "adhoc", Command: "echo", CommandArgs: []string{"inline"}}

	_, err := NewRunner().Execute(context.Background(), call)
	assert.ErrorIs(t, err, ErrNotRegistered, "inline execution is disabled by default")

	result, err := NewRunner(WithInlineExecution(true)).Execute(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, "inline", result.Output)
}

func TestRunner_BaseDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))

	runner := NewRunner(WithBaseDir(dir))
	runner.Register("ls", "ls")
	result, err := runner.Execute(context.Background(), Call{Name: "ls"})
	require.NoError(t, err)
	assert.Equal(t, "marker.txt", result.Output)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing File", func(t *testing.T) {
		procs, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, procs)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "processes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
processes:
  - name: siren
    command: play
    args: [siren.wav]
    env:
      VOLUME: "11"
  - command: unnamed
`), 0o644))

		procs, err := LoadConfig(path)
		require.NoError(t, err)
		require.Len(t, procs, 1, "entries without a name are ignored")
		assert.Equal(t, []string{"siren.wav"}, procs["siren"].Args)
		assert.Equal(t, "11", procs["siren"].Environment["VOLUME"])
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "processes.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"processes":[{"name":"x","command":"true"}]}`), 0o644))

		procs, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "true", procs["x"].Command)
	})

	t.Run("Broken", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
