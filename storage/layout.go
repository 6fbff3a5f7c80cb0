package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TileLayout returns the persisted tile ordering, or nil when none (or an
// unreadable one) is stored; the caller falls back to its defaults.
func (s *Store) TileLayout() ([]string, error) {
	value, err := s.GetSetting(SettingTileLayout)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

// SaveTileLayout persists the tile ordering.
func (s *Store) SaveTileLayout(ids []string) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode tile layout: %w", err)
	}
	return s.SetSetting(SettingTileLayout, string(payload))
}
