package registry

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/aretw0/cadence/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry(WithLogger(logging.NewNop()))

	assert.Equal(t, []string{"log", "wait"}, r.Kinds())

	hooks, err := r.Build(plan.Definition{Name: "lobby", Kind: plan.KindWait, Duration: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, hooks.Duration())
}

func TestRegistry_LogKindWritesOnStart(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(WithLogger(logging.New(slog.LevelInfo, logging.WithWriter(&buf))))

	hooks, err := r.Build(plan.Definition{Name: "announce", Kind: plan.KindLog, Message: "fight!", Duration: time.Second})
	require.NoError(t, err)

	state := fsm.New(hooks, fsm.WithName("announce"))
	assert.Empty(t, buf.String())
	state.Start()
	assert.Contains(t, buf.String(), "fight!")
	assert.Contains(t, buf.String(), "state=announce")
	assert.Equal(t, time.Second, state.Duration())
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build(plan.Definition{Name: "x", Kind: "teleport"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.False(t, r.Has("teleport"))
}

func TestRegistry_CustomKind(t *testing.T) {
	r := NewRegistry()
	r.Register("beep", func(def plan.Definition) (fsm.Hooks, error) {
		if def.Params["pitch"] == nil {
			return nil, errors.New("pitch is required")
		}
		return fsm.Funcs{Length: def.Duration}, nil
	})

	assert.True(t, r.Has("beep"))

	_, err := r.Build(plan.Definition{Name: "b", Kind: "beep"})
	assert.ErrorContains(t, err, `build beep "b": pitch is required`)

	hooks, err := r.Build(plan.Definition{Name: "b", Kind: "beep", Params: map[string]any{"pitch": 440}})
	require.NoError(t, err)
	assert.NotNil(t, hooks)
}
