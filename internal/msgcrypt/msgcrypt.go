package msgcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidKey      = errors.New("invalid messaging key")
	ErrInvalidEnvelope = errors.New("invalid message envelope")
)

const hkdfInfoMessage = "walletmail/msgcrypt/v1"

// Envelope is the wire form of one encrypted message between mailboxes.
type Envelope struct {
	Version    uint8     `json:"version"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	SentAt     time.Time `json:"sent_at"`
}

// Encrypt seals a message from the sender's X25519 private key to the
// recipient's public key. Message encryption uses the separately derived
// asymmetric pair; the session secret only gates whether callers get here.
func Encrypt(plaintext, recipientPublicKey, senderPrivateKey []byte) (Envelope, error) {
	key, err := sharedKey(senderPrivateKey, recipientPublicKey)
	if err != nil {
		return Envelope{}, err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Envelope{}, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:    1,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
		SentAt:     time.Now().UTC(),
	}, nil
}

// Decrypt opens an envelope sealed with Encrypt by the peer.
func Decrypt(env Envelope, senderPublicKey, recipientPrivateKey []byte) ([]byte, error) {
	if env.Version != 1 || len(env.Nonce) != chacha20poly1305.NonceSizeX || len(env.Ciphertext) == 0 {
		return nil, ErrInvalidEnvelope
	}
	key, err := sharedKey(recipientPrivateKey, senderPublicKey)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidEnvelope
	}
	return plaintext, nil
}

func sharedKey(privateKey, peerPublicKey []byte) ([]byte, error) {
	if len(privateKey) != 32 || len(peerPublicKey) != 32 {
		return nil, ErrInvalidKey
	}
	shared, err := curve25519.X25519(privateKey, peerPublicKey)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(shared)

	key := make([]byte, chacha20poly1305.KeySize)
	reader := hkdf.New(sha256.New, shared, nil, []byte(hkdfInfoMessage))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
