package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	minSecretLength = 16
	nonceSize       = 24
)

// DeriveKey expands secret into a 32-byte key bound to purpose, so one
// configured secret can feed several independent keys.
func DeriveKey(secret, purpose string) ([32]byte, error) {
	var key [32]byte
	if len(secret) < minSecretLength {
		return key, fmt.Errorf("auth: secret must be at least %d characters", minSecretLength)
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("portfolio-cms/"+purpose))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("auth: deriving %s key: %w", purpose, err)
	}
	return key, nil
}

// TokenSealer encrypts API bearer tokens before they are written to the
// session store. Output is base64url(nonce || secretbox).
type TokenSealer struct {
	key [32]byte
}

func NewTokenSealer(secret string) (*TokenSealer, error) {
	key, err := DeriveKey(secret, "bearer-token")
	if err != nil {
		return nil, err
	}
	return &TokenSealer{key: key}, nil
}

// Seal encrypts plain. The empty string seals to the empty string so an
// anonymous session stores nothing.
func (s *TokenSealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
func (s *TokenSealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("auth: decoding sealed token: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("auth: sealed token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("auth: sealed token failed authentication")
	}
	return string(plain), nil
}
