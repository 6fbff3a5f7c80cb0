package storage

import (
	"errors"
	"log"

	appcrypto "github.com/007king700/FOSS-Deck/crypto"
)

// TokenVault persists the pairing token sealed under the device secret.
// A token that is missing, corrupt, or sealed under a different secret is
// reported as absent, which forces a fresh interactive pairing.
type TokenVault struct {
	Store  *Store
	Secret string
}

// AuthToken returns the stored token, or "" when no usable token exists.
func (v TokenVault) AuthToken() string {
	sealed, err := v.Store.GetSetting(SettingAuthToken)
	if errors.Is(err, ErrNotFound) {
		return ""
	}
	if err != nil {
		log.Printf("storage: read auth token: %v", err)
		return ""
	}

	token, err := appcrypto.OpenToken(v.Secret, sealed)
	if err != nil {
		log.Printf("storage: discard unreadable auth token: %v", err)
		return ""
	}
	return token
}

// StoreAuthToken seals and persists a newly issued token, replacing any
// prior one.
func (v TokenVault) StoreAuthToken(token string) error {
	sealed, err := appcrypto.SealToken(v.Secret, token)
	if err != nil {
		return err
	}
	return v.Store.SetSetting(SettingAuthToken, sealed)
}

// ClearAuthToken deletes the persisted token.
func (v TokenVault) ClearAuthToken() error {
	return v.Store.DeleteSetting(SettingAuthToken)
}
