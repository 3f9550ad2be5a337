// Package secrets seals provider tokens before they reach a store.
//
// Unlike password material, provider tokens must be recoverable to call the
// provider on the owner's behalf, so this uses authenticated symmetric
// encryption (nacl/secretbox) rather than a one-way hash.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	dErrors "formbridge/pkg/domain-errors"
)

const nonceSize = 24

// Sealer encrypts and decrypts small secrets with a fixed key.
type Sealer struct {
	key [32]byte
}

// NewSealer derives a 32-byte secretbox key from the configured key
// material.
func NewSealer(keyMaterial string) (*Sealer, error) {
	if keyMaterial == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token seal key cannot be empty")
	}
	s := &Sealer{key: sha256.Sum256([]byte(keyMaterial))}
	return s, nil
}

// Seal encrypts plaintext and returns a base64 blob (nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal.
func (s *Sealer) Open(blob string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(blob)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "malformed sealed token")
	}
	if len(raw) < nonceSize {
		return "", dErrors.New(dErrors.CodeInvalidInput, "malformed sealed token")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "sealed token failed authentication")
	}
	return string(plaintext), nil
}
