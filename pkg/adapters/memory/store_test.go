package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	cursor := 0
	snap := domain.Snapshot{
		Name:     "match",
		Current:  &cursor,
		Children: []domain.Snapshot{{Name: "lobby", Status: domain.StatusRunning}},
	}
	require.NoError(t, store.Save(ctx, "m", snap))

	// Mutating the original after Save must not leak into the store
	cursor = 5
	snap.Children[0].Status = domain.StatusEnded

	loaded, err := store.Load(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 0, *loaded.Current)
	assert.Equal(t, domain.StatusRunning, loaded.Children[0].Status)

	// Neither may mutations of a loaded copy
	loaded.Children[0].Name = "changed"
	again, err := store.Load(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "lobby", again.Children[0].Name)
}
