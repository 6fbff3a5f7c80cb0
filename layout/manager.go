// Package layout owns the ordered tile arrangement: loading and migrating
// the persisted order, applying reorder intents, and writing changes back.
package layout

import (
	"fmt"
	"log"
)

// Store persists the ordered action id list between runs. A nil loaded list
// means nothing usable is stored.
type Store interface {
	TileLayout() ([]string, error)
	SaveTileLayout(ids []string) error
}

// Manager holds the current tile order. It is confined to the UI loop and
// performs no locking of its own.
type Manager struct {
	store    Store
	defaults []string
	ids      []string
}

// NewManager loads the persisted order and reconciles it against defaults:
// ids no longer known are dropped, newly introduced actions are appended at
// the end. A reconciled order is written back immediately.
func NewManager(store Store, defaults []string) (*Manager, error) {
	m := &Manager{
		store:    store,
		defaults: append([]string(nil), defaults...),
	}

	var stored []string
	if store != nil {
		loaded, err := store.TileLayout()
		if err != nil {
			return nil, fmt.Errorf("load tile layout: %w", err)
		}
		stored = loaded
	}
	if stored == nil {
		m.ids = append([]string(nil), m.defaults...)
		return m, nil
	}

	reconciled, changed := reconcile(stored, m.defaults)
	m.ids = reconciled
	if changed {
		m.persist()
	}
	return m, nil
}

// IDs returns the current order as a copy.
func (m *Manager) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Apply moves the dragged tile into the target tile's slot. Intents naming
// an unknown tile, or a tile dropped on itself, change nothing. Applied
// changes persist immediately.
func (m *Manager) Apply(intent Intent) bool {
	if intent.DraggedID == intent.TargetID {
		return false
	}
	from := indexOf(m.ids, intent.DraggedID)
	to := indexOf(m.ids, intent.TargetID)
	if from < 0 || to < 0 {
		return false
	}

	moved := m.ids[from]
	m.ids = append(m.ids[:from], m.ids[from+1:]...)
	m.ids = append(m.ids[:to], append([]string{moved}, m.ids[to:]...)...)

	m.persist()
	return true
}

// Reset restores the default order and persists it.
func (m *Manager) Reset() {
	m.ids = append([]string(nil), m.defaults...)
	m.persist()
}

func (m *Manager) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveTileLayout(m.ids); err != nil {
		log.Printf("layout: persist tile order: %v", err)
	}
}

// reconcile filters stored down to known ids and appends missing defaults,
// preserving the stored relative order.
func reconcile(stored, defaults []string) ([]string, bool) {
	known := make(map[string]bool, len(defaults))
	for _, id := range defaults {
		known[id] = true
	}

	out := make([]string, 0, len(defaults))
	present := make(map[string]bool, len(defaults))
	changed := false
	for _, id := range stored {
		if !known[id] || present[id] {
			changed = true
			continue
		}
		out = append(out, id)
		present[id] = true
	}
	for _, id := range defaults {
		if !present[id] {
			out = append(out, id)
			changed = true
		}
	}
	return out, changed
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
