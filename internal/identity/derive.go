package identity

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"walletmail/go-client/internal/wallet"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrPINRequired           = errors.New("pin is required")
	ErrWalletAddressRequired = errors.New("wallet address is required")
	ErrDerivation            = errors.New("key derivation failed")
)

const (
	mailboxIDPrefix = "mbx1"

	// Protocol-fixed HKDF parameters. Changing any of these re-keys every
	// mailbox in existence.
	hkdfSaltMailboxSecret = "walletmail/identity/mailbox-secret/v1"
	hkdfInfoSigningSeed   = "walletmail/identity/signing/v1"
	hkdfInfoEncryption    = "walletmail/identity/encryption/v1"

	signRequestFormat = "walletmail mailbox unlock\nmailbox: %s\nv1"
)

// BuildMailboxID computes the stable identifier for a (wallet, PIN) pair.
// The same pair always maps to the same identifier, which is what lets a
// user rediscover an existing mailbox on a new device without any directory.
func BuildMailboxID(walletAddress, pin string) (string, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return "", ErrWalletAddressRequired
	}
	if pin == "" {
		return "", ErrPINRequired
	}
	input := make([]byte, 0, len(walletAddress)+1+len(pin))
	input = append(input, []byte(walletAddress)...)
	input = append(input, 0)
	input = append(input, []byte(pin)...)
	h := blake2b.Sum256(input)
	return mailboxIDPrefix + base58.Encode(h[:]), nil
}

// SigningMessage is the fixed-format text a wallet signs during unlock.
// It binds the signature to exactly one mailbox identifier.
func SigningMessage(mailboxID string) []byte {
	return []byte(fmt.Sprintf(signRequestFormat, mailboxID))
}

// DeriveMailboxSecret reproduces the 32-byte deterministic mailbox secret
// from a wallet signature over the mailbox-bound message plus the PIN.
// The returned buffer must be zeroed by the caller before its unlock call
// returns; it is never stored or logged.
func DeriveMailboxSecret(ctx context.Context, signer wallet.Signer, mailboxID, pin string) ([]byte, error) {
	if pin == "" {
		return nil, ErrPINRequired
	}
	signature, err := signer.SignMessage(ctx, SigningMessage(mailboxID))
	if err != nil {
		return nil, fmt.Errorf("wallet signing failed: %w", err)
	}
	// signature plus PIN is the full key material; wipe both copies.
	defer zeroBytes(signature)

	ikm := make([]byte, 0, len(signature)+len(pin))
	ikm = append(ikm, signature...)
	ikm = append(ikm, []byte(pin)...)
	defer zeroBytes(ikm)

	secret := make([]byte, 32)
	reader := hkdf.New(sha256.New, ikm, []byte(hkdfSaltMailboxSecret), []byte(mailboxID))
	if _, err := io.ReadFull(reader, secret); err != nil {
		zeroBytes(secret)
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return secret, nil
}

// DeriveMessagingKeys derives the long-term asymmetric key pair for a
// mailbox from the same deterministic path as the mailbox secret. The
// intermediate secret is zeroed before returning on every path.
func DeriveMessagingKeys(ctx context.Context, signer wallet.Signer, mailboxID, pin string) (*MessagingKeys, error) {
	secret, err := DeriveMailboxSecret(ctx, signer, mailboxID, pin)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(secret)
	return messagingKeysFromSecret(secret)
}

func messagingKeysFromSecret(secret []byte) (*MessagingKeys, error) {
	signingSeed, err := hkdfExpand(secret, hkdfInfoSigningSeed, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	encryptionSeed, err := hkdfExpand(secret, hkdfInfoEncryption, 32)
	if err != nil {
		zeroBytes(signingSeed)
		return nil, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	return newMessagingKeys(signingSeed, encryptionSeed)
}

func hkdfExpand(secret []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
