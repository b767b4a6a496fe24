package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	sample := func() domain.Snapshot {
		cursor := 1
		return domain.Snapshot{
			Name:     "match",
			Kind:     domain.KindSeries,
			Status:   domain.StatusRunning,
			Started:  true,
			Duration: 3 * time.Second,
			Current:  &cursor,
			Children: []domain.Snapshot{
				{Name: "lobby", Kind: domain.KindState, Status: domain.StatusEnded, Started: true, Ended: true},
				{Name: "play", Kind: domain.KindState, Status: domain.StatusRunning, Started: true},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := sample()

		err := store.Save(ctx, key, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Name, loaded.Name)
		assert.Equal(t, snap.Duration, loaded.Duration)
		require.NotNil(t, loaded.Current)
		assert.Equal(t, 1, *loaded.Current)
		require.Len(t, loaded.Children, 2)
		assert.Equal(t, domain.StatusRunning, loaded.Children[1].Status)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := sample()
		snap.Status = domain.StatusEnded
		require.NoError(t, store.Save(ctx, key, snap))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEnded, loaded.Status)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, sample()))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})

	if lister, ok := store.(StatusLister); ok {
		t.Run("Statuses", func(t *testing.T) {
			running, ended := key+"-running", key+"-ended"
			snap := sample()
			require.NoError(t, store.Save(ctx, running, snap))
			snap.Status = domain.StatusEnded
			require.NoError(t, store.Save(ctx, ended, snap))
			defer func() {
				_ = store.Delete(ctx, running)
				_ = store.Delete(ctx, ended)
			}()

			statuses, err := lister.Statuses(ctx)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusRunning, statuses[running])
			assert.Equal(t, domain.StatusEnded, statuses[ended])

			require.NoError(t, store.Delete(ctx, ended))
			statuses, err = lister.Statuses(ctx)
			require.NoError(t, err)
			assert.NotContains(t, statuses, ended, "deleted snapshots leave the index")
		})
	}
}
