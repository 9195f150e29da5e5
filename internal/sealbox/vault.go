package sealbox

import (
	"log/slog"
	"sync"
	"time"
)

// Vault persists wrapped session secrets across a manager's lifetime.
// Persistence is strictly a convenience layer: every failure on the restore
// path degrades to "nothing to restore" and failures on the persist path are
// reported to the caller for logging, never escalated.
type Vault struct {
	mu      sync.Mutex
	store   EnvelopeStore
	key     *WrappingKey
	enabled bool
	now     func() time.Time
	logger  *slog.Logger
}

func NewVault(store EnvelopeStore, logger *slog.Logger) *Vault {
	return NewVaultWithKey(store, nil, logger)
}

// NewVaultWithKey shares a wrapping key owned by the embedding environment.
// The key must live exactly as long as the envelope store's scope: a new
// vault over the same store and key can still open earlier envelopes, while
// a fresh key makes them unreadable and every restore becomes a miss.
func NewVaultWithKey(store EnvelopeStore, key *WrappingKey, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{
		store:  store,
		key:    key,
		now:    time.Now,
		logger: logger,
	}
}

func (v *Vault) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

func (v *Vault) Enable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = true
}

// Disable clears the flag, erases every stored envelope and drops the
// wrapping key so no latent decryptable material remains.
func (v *Vault) Disable() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = false
	v.key = nil
	return v.store.Wipe()
}

// Persist wraps a session secret and stores its envelope, replacing any
// prior envelope for the same mailbox. No-op while persistence is disabled.
func (v *Vault) Persist(mailboxID string, sessionSecret []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.enabled {
		return nil
	}
	if v.key == nil {
		key, err := NewWrappingKey()
		if err != nil {
			return err
		}
		v.key = key
	}
	ciphertext, iv, err := v.key.Seal(sessionSecret)
	if err != nil {
		return err
	}

	records, err := v.store.Load()
	if err != nil {
		return err
	}
	records[mailboxID] = EnvelopeRecord{
		MailboxID:  mailboxID,
		Ciphertext: ciphertext,
		IV:         iv,
		CreatedAt:  v.now().UTC().UnixMilli(),
	}
	return v.store.Save(records)
}

// Restore unwraps the envelope for a mailbox. A miss (no envelope, missing
// wrapping key, undecryptable envelope) returns ok=false and is the normal
// fall-back-to-PIN path, not an error.
func (v *Vault) Restore(mailboxID string) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.enabled {
		return nil, false
	}
	records, err := v.store.Load()
	if err != nil {
		v.logger.Debug("envelope store unreadable, treating as restore miss", "error", err)
		return nil, false
	}
	record, ok := records[mailboxID]
	if !ok {
		return nil, false
	}
	if v.key == nil {
		return nil, false
	}
	secret, err := v.key.Open(record.Ciphertext, record.IV)
	if err != nil {
		v.logger.Debug("envelope undecryptable, treating as restore miss", "mailbox_id", mailboxID)
		return nil, false
	}
	return secret, true
}

// Discard erases the envelope for one mailbox. An envelope outliving its
// locked session would be a dangling credential.
func (v *Vault) Discard(mailboxID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	records, err := v.store.Load()
	if err != nil {
		return err
	}
	if _, ok := records[mailboxID]; !ok {
		return nil
	}
	delete(records, mailboxID)
	return v.store.Save(records)
}

// PurgeAll erases every envelope without touching the enabled flag.
func (v *Vault) PurgeAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.Wipe()
}
