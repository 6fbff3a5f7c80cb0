package layout

import (
	"reflect"
	"testing"
)

type fakeLayoutStore struct {
	stored []string
	saves  int
}

func (s *fakeLayoutStore) TileLayout() ([]string, error) {
	return s.stored, nil
}

func (s *fakeLayoutStore) SaveTileLayout(ids []string) error {
	s.stored = append([]string(nil), ids...)
	s.saves++
	return nil
}

func TestNewManagerUsesDefaultsWhenNothingStored(t *testing.T) {
	store := &fakeLayoutStore{}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if got := m.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected initial order: %v", got)
	}
	if store.saves != 0 {
		t.Fatalf("defaults-only startup should not persist, saves=%d", store.saves)
	}
}

func TestApplyMovesDraggedIntoTargetSlot(t *testing.T) {
	store := &fakeLayoutStore{}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if !m.Apply(Intent{DraggedID: "a", TargetID: "c"}) {
		t.Fatalf("expected forward move to apply")
	}
	if got := m.IDs(); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Fatalf("forward move: got %v", got)
	}

	if !m.Apply(Intent{DraggedID: "a", TargetID: "b"}) {
		t.Fatalf("expected backward move to apply")
	}
	if got := m.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("backward move: got %v", got)
	}

	if store.saves != 2 {
		t.Fatalf("expected a persist per applied intent, saves=%d", store.saves)
	}
	if !reflect.DeepEqual(store.stored, []string{"a", "b", "c"}) {
		t.Fatalf("persisted order diverged: %v", store.stored)
	}
}

func TestApplyIgnoresSelfAndUnknownIDs(t *testing.T) {
	store := &fakeLayoutStore{}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	intents := []Intent{
		{DraggedID: "a", TargetID: "a"},
		{DraggedID: "ghost", TargetID: "b"},
		{DraggedID: "b", TargetID: "ghost"},
	}
	for _, intent := range intents {
		if m.Apply(intent) {
			t.Fatalf("intent %+v should not apply", intent)
		}
	}

	if got := m.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("order changed by ignored intents: %v", got)
	}
	if store.saves != 0 {
		t.Fatalf("ignored intents should not persist, saves=%d", store.saves)
	}
}

func TestNewManagerAppendsNewDefaults(t *testing.T) {
	store := &fakeLayoutStore{stored: []string{"b", "a"}}
	m, err := NewManager(store, []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	want := []string{"b", "a", "c", "d"}
	if got := m.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("migration kept order wrong: got %v, want %v", got, want)
	}
	if store.saves != 1 || !reflect.DeepEqual(store.stored, want) {
		t.Fatalf("migrated order not written back: saves=%d stored=%v", store.saves, store.stored)
	}
}

func TestNewManagerDropsUnknownAndDuplicateIDs(t *testing.T) {
	store := &fakeLayoutStore{stored: []string{"c", "retired", "a", "a", "b"}}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	want := []string{"c", "a", "b"}
	if got := m.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if store.saves != 1 {
		t.Fatalf("cleaned order not written back, saves=%d", store.saves)
	}
}

func TestNewManagerKeepsCustomOrderUntouched(t *testing.T) {
	store := &fakeLayoutStore{stored: []string{"c", "a", "b"}}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if got := m.IDs(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("custom order rewritten: %v", got)
	}
	if store.saves != 0 {
		t.Fatalf("already-clean order should not persist, saves=%d", store.saves)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	store := &fakeLayoutStore{stored: []string{"c", "a", "b"}}
	m, err := NewManager(store, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	m.Reset()
	if got := m.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("reset left %v", got)
	}
	if !reflect.DeepEqual(store.stored, []string{"a", "b", "c"}) {
		t.Fatalf("reset not persisted: %v", store.stored)
	}
}

func TestNewManagerWithoutStore(t *testing.T) {
	m, err := NewManager(nil, []string{"a", "b"})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if !m.Apply(Intent{DraggedID: "b", TargetID: "a"}) {
		t.Fatalf("expected in-memory apply to work without a store")
	}
	if got := m.IDs(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("got %v", got)
	}
}
