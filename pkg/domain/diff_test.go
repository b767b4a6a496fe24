package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func tree(rootStatus, lobbyStatus, playStatus Status) *Snapshot {
	zero := 0
	return &Snapshot{
		Name:    "match",
		Kind:    KindSeries,
		Status:  rootStatus,
		Current: &zero,
		Children: []Snapshot{
			{Name: "lobby", Kind: KindState, Status: lobbyStatus},
			{Name: "play", Kind: KindState, Status: playStatus},
		},
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name        string
		old         *Snapshot
		new         *Snapshot
		wantChanges []Change
		wantAdded   []string
		wantNil     bool
	}{
		{
			name:      "Initial Load (Old is Nil)",
			old:       nil,
			new:       tree(StatusRunning, StatusRunning, StatusPending),
			wantAdded: []string{"match", "match/0:lobby", "match/1:play"},
		},
		{
			name:    "No Changes",
			old:     tree(StatusRunning, StatusRunning, StatusPending),
			new:     tree(StatusRunning, StatusRunning, StatusPending),
			wantNil: true,
		},
		{
			name: "Advance",
			old:  tree(StatusRunning, StatusRunning, StatusPending),
			new:  tree(StatusRunning, StatusEnded, StatusRunning),
			wantChanges: []Change{
				{Path: "match/0:lobby", Kind: KindState, From: StatusRunning, To: StatusEnded},
				{Path: "match/1:play", Kind: KindState, From: StatusPending, To: StatusRunning},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)

			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want diff")
			}
			if !reflect.DeepEqual(got.Changes, tt.wantChanges) {
				t.Errorf("Diff().Changes = %+v, want %+v", got.Changes, tt.wantChanges)
			}
			if !reflect.DeepEqual(got.Added, tt.wantAdded) {
				t.Errorf("Diff().Added = %v, want %v", got.Added, tt.wantAdded)
			}
		})
	}
}

func TestDiff_FrozenAndRemoved(t *testing.T) {
	old := tree(StatusRunning, StatusRunning, StatusPending)
	updated := tree(StatusRunning, StatusRunning, StatusPending)
	updated.Frozen = true
	updated.Children = updated.Children[:1]

	diff := Diff(old, updated)
	if diff == nil {
		t.Fatal("Expected diff, got nil")
	}
	if len(diff.Changes) != 1 || diff.Changes[0].Frozen == nil || !*diff.Changes[0].Frozen {
		t.Errorf("Expected frozen toggle on root, got %+v", diff.Changes)
	}
	if !reflect.DeepEqual(diff.Removed, []string{"match/1:play"}) {
		t.Errorf("Expected play removed, got %v", diff.Removed)
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Lists Omitted", func(t *testing.T) {
		diff := Diff(
			tree(StatusRunning, StatusRunning, StatusPending),
			tree(StatusRunning, StatusEnded, StatusPending),
		)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"added"`) {
			t.Errorf("JSON should not contain 'added' when empty, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"to":"ended"`) {
			t.Errorf("JSON should contain the new status, got: %s", string(bytes))
		}
	})
}

func TestSnapshot_FindAndActive(t *testing.T) {
	snap := tree(StatusRunning, StatusEnded, StatusRunning)

	play, ok := snap.Find("play")
	if !ok || play.Status != StatusRunning {
		t.Errorf("Find(play) = %+v, %v", play, ok)
	}
	if _, ok := snap.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}

	active := snap.Active()
	if len(active) != 1 || active[0].Name != "play" {
		t.Errorf("Active() = %+v, want [play]", active)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(false, false); got != StatusPending {
		t.Errorf("StatusOf(false,false) = %s", got)
	}
	if got := StatusOf(true, false); got != StatusRunning {
		t.Errorf("StatusOf(true,false) = %s", got)
	}
	if got := StatusOf(true, true); got != StatusEnded {
		t.Errorf("StatusOf(true,true) = %s", got)
	}
}
