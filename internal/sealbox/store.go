package sealbox

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"walletmail/go-client/internal/securestore"
)

// EnvelopeRecord is the wrapped form of one session secret. []byte fields
// serialize as base64 through encoding/json.
type EnvelopeRecord struct {
	MailboxID  string `json:"mailbox_id"`
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	CreatedAt  int64  `json:"created_at"`
}

// EnvelopeStore holds all envelopes as one serialized blob keyed by mailbox
// id. Implementations decide where the blob lives; the vault decides what
// goes into it.
type EnvelopeStore interface {
	Load() (map[string]EnvelopeRecord, error)
	Save(map[string]EnvelopeRecord) error
	Wipe() error
}

// MemoryStore keeps the blob in process memory. It models storage that is
// discarded when the hosting session ends (the browser tab analogue) and is
// the default for embeddings that never touch disk.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (map[string]EnvelopeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeBlob(s.blob)
}

func (s *MemoryStore) Save(records map[string]EnvelopeRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	return nil
}

func (s *MemoryStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

// FileStore seals the blob to disk under a passphrase envelope for daemon
// embeddings that should survive a process restart.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (s *FileStore) Load() (map[string]EnvelopeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, err := securestore.ReadDecryptedFile(s.path, s.passphrase)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]EnvelopeRecord{}, nil
		}
		return nil, err
	}
	return decodeBlob(blob)
}

func (s *FileStore) Save(records map[string]EnvelopeRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return securestore.WriteEncryptedFile(s.path, s.passphrase, blob)
}

func (s *FileStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func decodeBlob(blob []byte) (map[string]EnvelopeRecord, error) {
	records := make(map[string]EnvelopeRecord)
	if len(blob) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, err
	}
	return records, nil
}
