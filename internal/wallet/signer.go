package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"io"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrSignatureRejected = errors.New("wallet signature rejected")
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrMnemonicRequired  = errors.New("mnemonic is required")
)

const hkdfInfoWalletSigning = "walletmail/wallet/signing/v1"

// Signer produces signatures over arbitrary text messages on behalf of one
// wallet account. Implementations may block on user interaction for as long
// as the passed context allows.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// LocalSigner signs with an ed25519 key derived from a BIP-39 mnemonic.
// It never prompts; it stands in for an external wallet provider in the
// daemon embedding and in tests.
type LocalSigner struct {
	address string
	priv    ed25519.PrivateKey
}

func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func NewLocalSigner(mnemonic string) (*LocalSigner, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, ErrMnemonicRequired
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seedBytes := bip39.NewSeed(mnemonic, "")
	signingSeed := make([]byte, ed25519.SeedSize)
	reader := hkdf.New(sha256.New, seedBytes, nil, []byte(hkdfInfoWalletSigning))
	if _, err := io.ReadFull(reader, signingSeed); err != nil {
		return nil, err
	}

	priv := ed25519.NewKeyFromSeed(signingSeed)
	pub := priv.Public().(ed25519.PublicKey)
	return &LocalSigner{
		address: BuildAddress(pub),
		priv:    priv,
	}, nil
}

func (s *LocalSigner) Address() string {
	return s.address
}

func (s *LocalSigner) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ed25519.Sign(s.priv, message), nil
}

// PublicKey returns a copy of the signer's verification key.
func (s *LocalSigner) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), s.priv.Public().(ed25519.PublicKey)...)
}

// BuildAddress encodes a signing public key as a wallet address.
func BuildAddress(signingPublicKey ed25519.PublicKey) string {
	h := blake2b.Sum256(signingPublicKey)
	return "wm1" + base58.Encode(h[:20])
}
