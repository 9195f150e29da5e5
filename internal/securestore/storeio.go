package securestore

import (
	"os"
	"path/filepath"
)

// ReadDecryptedFile reads and decrypts a file written by WriteEncryptedFile.
func ReadDecryptedFile(path, passphrase string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decrypt(passphrase, raw)
}

// WriteEncryptedFile encrypts payload and replaces the file atomically, so a
// crash mid-write never leaves a truncated envelope behind.
func WriteEncryptedFile(path, passphrase string, payload []byte) error {
	encrypted, err := Encrypt(passphrase, payload)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encrypted, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
