package identity

import "crypto/ed25519"

// MessagingKeys is the long-term asymmetric key pair for one mailbox,
// re-derivable on any device from the same wallet and PIN.
type MessagingKeys struct {
	SigningPrivateKey ed25519.PrivateKey
	SigningPublicKey  ed25519.PublicKey
	EncryptionPrivate []byte // X25519 private scalar (32)
	EncryptionPublic  []byte // X25519 public point (32)
}
