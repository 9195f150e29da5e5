package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

var ErrDerivation = errors.New("session derivation failed")

const (
	SecretSize = 32
	saltSize   = 32

	hkdfInfoSession = "walletmail/session/secret/v1"
)

// DeriveSecret turns a deterministic mailbox secret into a fresh session
// secret. A random salt makes two derivations from the same input disjoint:
// a session secret is a capability token, not an identity, and must not be
// reproducible by anyone who only knows the deterministic path.
// The caller owns zeroing of mailboxSecret.
func DeriveSecret(mailboxSecret []byte) ([]byte, error) {
	if len(mailboxSecret) != SecretSize {
		return nil, fmt.Errorf("%w: unexpected input size %d", ErrDerivation, len(mailboxSecret))
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	secret := make([]byte, SecretSize)
	reader := hkdf.New(sha256.New, mailboxSecret, salt, []byte(hkdfInfoSession))
	if _, err := io.ReadFull(reader, secret); err != nil {
		Zero(secret)
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return secret, nil
}

// Zero overwrites every byte of b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
