package repositories

import (
	"errors"
	"testing"

	"github.com/biolink-hub/biolink_api/dto"
)

// fakePositionStore tracks which rows an owner may move and records the
// positions actually written.
type fakePositionStore struct {
	owners  map[string]string
	applied map[string]int
	err     error
}

func (f *fakePositionStore) UpdatePosition(id, ownerID string, position int) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.owners[id] != ownerID {
		return 0, nil
	}
	if f.applied == nil {
		f.applied = map[string]int{}
	}
	f.applied[id] = position
	return 1, nil
}

func TestValidateReorderItems(t *testing.T) {
	cases := []struct {
		name    string
		items   []dto.ReorderItem
		wantErr bool
	}{
		{"valid", []dto.ReorderItem{{ID: "a", Order: 0}, {ID: "b", Order: 1}}, false},
		{"empty batch", nil, false},
		{"blank id", []dto.ReorderItem{{ID: "", Order: 0}}, true},
		{"negative order", []dto.ReorderItem{{ID: "a", Order: -1}}, true},
		{"one bad item rejects the batch", []dto.ReorderItem{{ID: "a", Order: 0}, {ID: "", Order: 1}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateReorderItems(tc.items)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateReorderItems() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyReorder_MixedOwnershipSkipsForeignRows(t *testing.T) {
	store := &fakePositionStore{
		owners: map[string]string{
			"a": "user-1",
			"b": "user-1",
			"c": "user-2",
		},
	}

	updated, err := applyReorder(store, "user-1", []dto.ReorderItem{
		{ID: "a", Order: 2},
		{ID: "c", Order: 1},
		{ID: "b", Order: 0},
	})
	if err != nil {
		t.Fatalf("applyReorder: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows moved, got %d", updated)
	}
	if store.applied["a"] != 2 || store.applied["b"] != 0 {
		t.Fatalf("unexpected positions: %v", store.applied)
	}
	if _, moved := store.applied["c"]; moved {
		t.Fatal("expected the foreign row to be left alone")
	}
}

func TestApplyReorder_EmptyBatch(t *testing.T) {
	store := &fakePositionStore{}

	updated, err := applyReorder(store, "user-1", nil)
	if err != nil {
		t.Fatalf("applyReorder: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected no rows moved, got %d", updated)
	}
	if len(store.applied) != 0 {
		t.Fatalf("expected no writes, got %v", store.applied)
	}
}

func TestApplyReorder_StoreErrorPropagates(t *testing.T) {
	store := &fakePositionStore{err: errors.New("deadlock")}

	_, err := applyReorder(store, "user-1", []dto.ReorderItem{{ID: "a", Order: 0}})
	if err == nil {
		t.Fatal("expected the store error to propagate")
	}
}
