package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealInfo binds derived keys to their single purpose.
const sealInfo = "foss-deck auth token sealing v1"

var (
	// ErrSealedTokenInvalid indicates a stored token that cannot be opened.
	ErrSealedTokenInvalid = errors.New("crypto: sealed token invalid")
)

// SealToken encrypts an auth token for at-rest storage.
//
// The secret is the device's base64 token secret from config.json. The
// result is base64(nonce || ciphertext).
func SealToken(secret, token string) (string, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenToken decrypts a token sealed by SealToken.
func OpenToken(secret, sealed string) (string, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrSealedTokenInvalid
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrSealedTokenInvalid
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	token, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSealedTokenInvalid
	}

	return string(token), nil
}

func newAEAD(secret string) (cipher.AEAD, error) {
	rawSecret, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode token secret: %w", err)
	}
	if len(rawSecret) == 0 {
		return nil, errors.New("token secret is required")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	reader := hkdf.New(sha256.New, rawSecret, nil, []byte(sealInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}

	return chacha20poly1305.New(key)
}
