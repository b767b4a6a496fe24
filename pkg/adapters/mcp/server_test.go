package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/dsl"
	"github.com/aretw0/cadence/pkg/fsm"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *cadence.Machine) {
	t.Helper()
	b := dsl.Series("match")
	b.Wait("lobby", time.Hour)
	b.Wait("play", time.Hour)
	def, err := b.Build()
	require.NoError(t, err)

	m, err := cadence.New(def,
		cadence.WithClock(fsm.NewManualClock(time.Unix(0, 0))),
		cadence.WithLogger(logging.NewNop()),
	)
	require.NoError(t, err)
	m.Start()
	return NewServer(m), m
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return content.Text
}

func TestHandleSnapshot(t *testing.T) {
	s, _ := newServer(t)
	ctx := context.Background()

	res, err := s.handleSnapshot(ctx, call("get_snapshot", nil))
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.Equal(t, "match", snap.Name)
	assert.Len(t, snap.Children, 2)

	res, err = s.handleSnapshot(ctx, call("get_snapshot", map[string]any{"name": "lobby"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.Equal(t, "lobby", snap.Name)

	res, err = s.handleSnapshot(ctx, call("get_snapshot", map[string]any{"name": "nowhere"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestControlTools(t *testing.T) {
	s, m := newServer(t)
	ctx := context.Background()

	freeze := s.control(func(req mcp.CallToolRequest) error {
		return s.machine.Freeze(req.GetString("name", ""), req.GetBool("frozen", true))
	})
	res, err := freeze(ctx, call("freeze_state", map[string]any{"name": "lobby"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	lobby, err := m.Lookup("lobby")
	require.NoError(t, err)
	assert.True(t, lobby.Frozen())

	res, err = freeze(ctx, call("freeze_state", map[string]any{"name": "nowhere"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "state not found")

	skip := s.control(func(req mcp.CallToolRequest) error {
		return s.machine.Skip(req.GetString("name", ""))
	})
	res, err = skip(ctx, call("skip_state", nil))
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.True(t, snap.Skipping)

	m.Update()
	assert.True(t, lobby.Ended(), "skip overrides the frozen flag")
}

func TestServerRegistersTools(t *testing.T) {
	s, _ := newServer(t)

	resp := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"get_snapshot", "skip_state", "freeze_state", "end_state", "restart_plan"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}
