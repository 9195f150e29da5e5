package identity

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

func newMessagingKeys(signingSeed, encryptionSeed []byte) (*MessagingKeys, error) {
	signingPriv := ed25519.NewKeyFromSeed(signingSeed)
	zeroBytes(signingSeed)

	encryptionPub, err := curve25519.X25519(encryptionSeed, curve25519.Basepoint)
	if err != nil {
		zeroBytes(encryptionSeed)
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}

	return &MessagingKeys{
		SigningPrivateKey: signingPriv,
		SigningPublicKey:  signingPriv.Public().(ed25519.PublicKey),
		EncryptionPrivate: encryptionSeed,
		EncryptionPublic:  encryptionPub,
	}, nil
}

// Zero wipes all private key material held by the key pair.
func (k *MessagingKeys) Zero() {
	if k == nil {
		return
	}
	zeroBytes(k.SigningPrivateKey)
	zeroBytes(k.EncryptionPrivate)
}
