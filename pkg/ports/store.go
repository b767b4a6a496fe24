package ports

import (
	"context"

	"github.com/aretw0/cadence/pkg/domain"
)

// SnapshotStore defines the interface for persisting state tree snapshots.
// This lets external tools observe a running tree without touching it.
type SnapshotStore interface {
	// Save persists the snapshot under the given key, replacing any previous value.
	Save(ctx context.Context, key string, snap domain.Snapshot) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	Load(ctx context.Context, key string) (domain.Snapshot, error)

	// Delete removes the snapshot stored under key.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}

// StatusLister is implemented by stores that index the root status of each snapshot,
// so listings do not need to load every tree.
type StatusLister interface {
	Statuses(ctx context.Context) (map[string]domain.Status, error)
}
