package domain

// Change records a transition of a single node between two snapshots.
type Change struct {
	Path   string `json:"path"`
	Kind   Kind   `json:"kind"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	Frozen *bool  `json:"frozen,omitempty"` // Set when the frozen flag toggled
}

// SnapshotDiff represents the changes between two snapshots of the same tree.
// It is designed to be logged or serialized for partial updates on a client.
type SnapshotDiff struct {
	Changes []Change `json:"changes"`
	// Added lists paths present only in the newer snapshot (e.g. proxy expansions).
	Added []string `json:"added,omitempty"`
	// Removed lists paths present only in the older snapshot.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, every node of newSnap is reported as added.
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{}

	// 1. Index the old tree by path
	before := make(map[string]Snapshot)
	if oldSnap != nil {
		oldSnap.Walk(func(path string, node Snapshot) bool {
			before[path] = node
			return true
		})
	}

	// 2. Compare against the new tree
	seen := make(map[string]bool, len(before))
	newSnap.Walk(func(path string, node Snapshot) bool {
		seen[path] = true
		prev, ok := before[path]
		if !ok {
			diff.Added = append(diff.Added, path)
			return true
		}
		if change, changed := compareNode(path, prev, node); changed {
			diff.Changes = append(diff.Changes, change)
		}
		return true
	})

	// 3. Anything not seen was removed
	if oldSnap != nil {
		oldSnap.Walk(func(path string, _ Snapshot) bool {
			if !seen[path] {
				diff.Removed = append(diff.Removed, path)
			}
			return true
		})
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func compareNode(path string, prev, next Snapshot) (Change, bool) {
	change := Change{Path: path, Kind: next.Kind, From: prev.Status, To: next.Status}
	changed := prev.Status != next.Status
	if prev.Frozen != next.Frozen {
		frozen := next.Frozen
		change.Frozen = &frozen
		changed = true
	}
	return change, changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.Changes) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}
