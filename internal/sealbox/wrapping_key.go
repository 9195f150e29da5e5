package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

var ErrWrappingKeyUnavailable = errors.New("wrapping key unavailable")

// WrappingKey is an opaque AES-256-GCM handle scoped to one process life.
// Its only operations are Seal and Open; the raw key bytes are wiped right
// after the cipher is initialized and the handle offers no export path, so
// an envelope sealed here can never be decrypted by a different process.
type WrappingKey struct {
	aead cipher.AEAD
}

func NewWrappingKey() (*WrappingKey, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrappingKeyUnavailable, err)
	}
	block, err := aes.NewCipher(raw)
	for i := range raw {
		raw[i] = 0
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrappingKeyUnavailable, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrappingKeyUnavailable, err)
	}
	return &WrappingKey{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random IV.
func (k *WrappingKey) Seal(plaintext []byte) (ciphertext, iv []byte, err error) {
	if k == nil || k.aead == nil {
		return nil, nil, ErrWrappingKeyUnavailable
	}
	iv = make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, err
	}
	return k.aead.Seal(nil, iv, plaintext, nil), iv, nil
}

// Open decrypts an envelope produced by Seal with the same handle.
func (k *WrappingKey) Open(ciphertext, iv []byte) ([]byte, error) {
	if k == nil || k.aead == nil {
		return nil, ErrWrappingKeyUnavailable
	}
	return k.aead.Open(nil, iv, ciphertext, nil)
}
