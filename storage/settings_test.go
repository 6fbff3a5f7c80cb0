package storage

import (
	"errors"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetSetting(SettingAuthToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing setting, got %v", err)
	}

	if err := store.SetSetting(SettingAuthToken, "sealed-token"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	value, err := store.GetSetting(SettingAuthToken)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "sealed-token" {
		t.Fatalf("expected %q, got %q", "sealed-token", value)
	}

	if err := store.SetSetting(SettingAuthToken, "replacement"); err != nil {
		t.Fatalf("SetSetting replace failed: %v", err)
	}
	value, err = store.GetSetting(SettingAuthToken)
	if err != nil {
		t.Fatalf("GetSetting after replace failed: %v", err)
	}
	if value != "replacement" {
		t.Fatalf("expected replaced value, got %q", value)
	}

	if err := store.DeleteSetting(SettingAuthToken); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	if _, err := store.GetSetting(SettingAuthToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error.
	if err := store.DeleteSetting(SettingAuthToken); err != nil {
		t.Fatalf("DeleteSetting on absent key failed: %v", err)
	}
}
