package msgcrypt

import (
	"context"
	"errors"
	"testing"

	"walletmail/go-client/internal/identity"
	"walletmail/go-client/internal/wallet"
)

func testMessagingKeys(t *testing.T, pin string) *identity.MessagingKeys {
	t.Helper()
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		t.Fatalf("generate mnemonic failed: %v", err)
	}
	signer, err := wallet.NewLocalSigner(mnemonic)
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}
	mailboxID, err := identity.BuildMailboxID(signer.Address(), pin)
	if err != nil {
		t.Fatalf("build mailbox id failed: %v", err)
	}
	keys, err := identity.DeriveMessagingKeys(context.Background(), signer, mailboxID, pin)
	if err != nil {
		t.Fatalf("derive messaging keys failed: %v", err)
	}
	return keys
}

func TestEncryptDecryptBetweenMailboxes(t *testing.T) {
	alice := testMessagingKeys(t, "1111")
	bob := testMessagingKeys(t, "2222")

	env, err := Encrypt([]byte("hello bob"), bob.EncryptionPublic, alice.EncryptionPrivate)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	plain, err := Decrypt(env, alice.EncryptionPublic, bob.EncryptionPrivate)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(plain) != "hello bob" {
		t.Fatalf("unexpected plaintext: %q", string(plain))
	}
}

func TestDecryptTamperedFails(t *testing.T) {
	alice := testMessagingKeys(t, "1111")
	bob := testMessagingKeys(t, "2222")

	env, err := Encrypt([]byte("hello"), bob.EncryptionPublic, alice.EncryptionPrivate)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	env.Ciphertext[0] ^= 0xFF
	if _, err := Decrypt(env, alice.EncryptionPublic, bob.EncryptionPrivate); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expected ErrInvalidEnvelope, got %v", err)
	}
}

func TestDecryptWrongRecipientFails(t *testing.T) {
	alice := testMessagingKeys(t, "1111")
	bob := testMessagingKeys(t, "2222")
	eve := testMessagingKeys(t, "3333")

	env, err := Encrypt([]byte("hello"), bob.EncryptionPublic, alice.EncryptionPrivate)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := Decrypt(env, alice.EncryptionPublic, eve.EncryptionPrivate); err == nil {
		t.Fatal("wrong recipient key must not decrypt")
	}
}

func TestEncryptRejectsBadKeys(t *testing.T) {
	if _, err := Encrypt([]byte("x"), []byte("short"), make([]byte, 32)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
