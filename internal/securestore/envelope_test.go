package securestore

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	data, err := Encrypt("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	plain, err := Decrypt("pass", data)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(plain) != "secret" {
		t.Fatalf("unexpected plaintext: %q", string(plain))
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	data, err := Encrypt("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := Decrypt("other", data); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDecryptTamperedFails(t *testing.T) {
	data, err := Encrypt("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	data[len(data)-2] ^= 0xFF
	if _, err := Decrypt("pass", data); !errors.Is(err, ErrAuthFailed) && !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected auth or invalid error, got %v", err)
	}
}

func TestDecryptRejectsForeignKDFParams(t *testing.T) {
	data, err := Encrypt("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data[len(filePrefix):], &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	cases := []func(*Envelope){
		func(e *Envelope) { e.KDFTime = 0 },
		func(e *Envelope) { e.KDFThreads = 0 },
		func(e *Envelope) { e.KDFMemoryKB = 1 << 30 },
	}
	for i, mutate := range cases {
		mutated := env
		mutate(&mutated)
		raw, err := json.Marshal(mutated)
		if err != nil {
			t.Fatalf("case %d: marshal failed: %v", i, err)
		}
		if _, err := Decrypt("pass", append([]byte(filePrefix), raw...)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("case %d: expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestDecryptRejectsUnframedData(t *testing.T) {
	if _, err := Decrypt("pass", []byte("not an envelope")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "envelopes.bin")
	if err := WriteEncryptedFile(path, "pass", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	plain, err := ReadDecryptedFile(path, "pass")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(plain) != `{"a":1}` {
		t.Fatalf("unexpected payload: %q", string(plain))
	}
}
