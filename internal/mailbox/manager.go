package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walletmail/go-client/internal/identity"
	"walletmail/go-client/internal/metrics"
	"walletmail/go-client/internal/platform/ratelimiter"
	"walletmail/go-client/internal/sealbox"
	"walletmail/go-client/internal/session"
	"walletmail/go-client/internal/wallet"
	"walletmail/go-client/pkg/models"
)

var ErrTooManyAttempts = errors.New("too many unlock attempts")

// Config assembles a Manager from its collaborators. Zero-value fields get
// working defaults so tests can instantiate independent managers cheaply.
type Config struct {
	Registry *session.Registry
	Vault    *sealbox.Vault
	Limiter  *ratelimiter.MapLimiter
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// Manager coordinates the full session lifecycle for every mailbox in the
// process: unlock, switch, lock, lock-all and teardown. Mailbox state is
// global; two call sites unlocking the same identifier observe one session.
type Manager struct {
	registry *session.Registry
	vault    *sealbox.Vault
	limiter  *ratelimiter.MapLimiter
	logger   *slog.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	hookMu        sync.Mutex
	shutdownHooks []func()
	shutdownOnce  sync.Once

	// secretObserver captures the deterministic secret buffer before the
	// session derivation; tests use it to assert the zeroing invariant.
	secretObserver func([]byte)
}

func NewManager(cfg Config) *Manager {
	if cfg.Registry == nil {
		cfg.Registry = session.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Vault == nil {
		cfg.Vault = sealbox.NewVault(sealbox.NewMemoryStore(), cfg.Logger)
	}
	return &Manager{
		registry: cfg.Registry,
		vault:    cfg.Vault,
		limiter:  cfg.Limiter,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      time.Now,
	}
}

// Unlock makes the mailbox for (walletAddress, pin) available. Resolution
// order: live registry entry, persisted envelope, full wallet derivation.
// Only the last path prompts the wallet for a signature.
func (m *Manager) Unlock(ctx context.Context, signer wallet.Signer, walletAddress, pin string) (models.SessionInfo, error) {
	return m.unlock(ctx, signer, walletAddress, pin, "unlock")
}

// SwitchMailbox unlocks a (possibly different) mailbox without locking any
// currently open one; concurrent mailboxes are the point of the registry.
func (m *Manager) SwitchMailbox(ctx context.Context, signer wallet.Signer, walletAddress, pin string) (models.SessionInfo, error) {
	return m.unlock(ctx, signer, walletAddress, pin, "switch")
}

func (m *Manager) unlock(ctx context.Context, signer wallet.Signer, walletAddress, pin string, op string) (models.SessionInfo, error) {
	mailboxID, err := identity.BuildMailboxID(walletAddress, pin)
	if err != nil {
		m.metrics.RecordUnlockFailure("invalid_input")
		return models.SessionInfo{}, err
	}

	if createdAt, ok := m.registry.CreatedAt(mailboxID); ok {
		m.metrics.RecordUnlock(metrics.SourceLive)
		return models.SessionInfo{
			MailboxID:       mailboxID,
			CreatedAt:       createdAt,
			AlreadyUnlocked: true,
		}, nil
	}

	if !m.limiter.Allow(walletAddress, m.now()) {
		m.metrics.RecordUnlockFailure("rate_limited")
		return models.SessionInfo{}, ErrTooManyAttempts
	}

	if secret, ok := m.vault.Restore(mailboxID); ok {
		createdAt := m.registry.Put(mailboxID, secret)
		m.metrics.RecordUnlock(metrics.SourceRestored)
		m.metrics.SetActiveSessions(m.registry.Len())
		m.logger.Info("mailbox session restored", "op", op, "mailbox_id", mailboxID)
		return models.SessionInfo{
			MailboxID: mailboxID,
			CreatedAt: createdAt,
			Restored:  true,
		}, nil
	}

	info, err := m.deriveAndRegister(ctx, signer, mailboxID, pin)
	if err != nil {
		reason := "derivation"
		if errors.Is(err, wallet.ErrSignatureRejected) {
			reason = "signature_rejected"
		}
		m.metrics.RecordUnlockFailure(reason)
		m.logger.Warn("mailbox unlock failed", "op", op, "mailbox_id", mailboxID, "error", err)
		return models.SessionInfo{}, fmt.Errorf("unlock failed: %w", err)
	}
	m.metrics.RecordUnlock(metrics.SourceDerived)
	m.metrics.SetActiveSessions(m.registry.Len())
	m.logger.Info("mailbox unlocked", "op", op, "mailbox_id", mailboxID)
	return info, nil
}

// deriveAndRegister runs the full derive-session / zero-secret / register
// sequence. The deterministic secret is zeroed on every exit path before
// control returns to any caller; either a complete registry entry is
// created or none is.
func (m *Manager) deriveAndRegister(ctx context.Context, signer wallet.Signer, mailboxID, pin string) (models.SessionInfo, error) {
	mailboxSecret, err := identity.DeriveMailboxSecret(ctx, signer, mailboxID, pin)
	if err != nil {
		return models.SessionInfo{}, err
	}
	defer session.Zero(mailboxSecret)

	if m.secretObserver != nil {
		m.secretObserver(mailboxSecret)
	}

	sessionSecret, err := session.DeriveSecret(mailboxSecret)
	if err != nil {
		return models.SessionInfo{}, err
	}

	createdAt := m.registry.Put(mailboxID, sessionSecret)
	if m.vault.Enabled() {
		if err := m.vault.Persist(mailboxID, sessionSecret); err != nil {
			// Persistence is a convenience layer; it never blocks unlock.
			m.metrics.RecordPersistError()
			m.logger.Warn("session envelope persist failed", "mailbox_id", mailboxID, "error", err)
		}
	}
	return models.SessionInfo{MailboxID: mailboxID, CreatedAt: createdAt}, nil
}

// Lock terminates the session for (walletAddress, pin) and erases its
// persisted envelope; an envelope for a locked mailbox would be a dangling
// credential.
func (m *Manager) Lock(walletAddress, pin string) (bool, error) {
	mailboxID, err := identity.BuildMailboxID(walletAddress, pin)
	if err != nil {
		return false, err
	}
	return m.LockID(mailboxID), nil
}

// LockID is Lock for callers that already hold the mailbox identifier.
func (m *Manager) LockID(mailboxID string) bool {
	removed := m.registry.Remove(mailboxID)
	if err := m.vault.Discard(mailboxID); err != nil {
		m.logger.Warn("session envelope discard failed", "mailbox_id", mailboxID, "error", err)
	}
	if removed {
		m.metrics.RecordLock()
		m.metrics.SetActiveSessions(m.registry.Len())
		m.logger.Info("mailbox locked", "mailbox_id", mailboxID)
	}
	return removed
}

// LockAll terminates every session and erases every persisted envelope.
func (m *Manager) LockAll() {
	n := m.registry.Len()
	m.registry.RemoveAll()
	if err := m.vault.PurgeAll(); err != nil {
		m.logger.Warn("envelope purge failed", "error", err)
	}
	for i := 0; i < n; i++ {
		m.metrics.RecordLock()
	}
	m.metrics.SetActiveSessions(0)
	m.logger.Info("all mailboxes locked", "count", n)
}

func (m *Manager) IsUnlocked(mailboxID string) bool {
	return m.registry.Has(mailboxID)
}

func (m *Manager) ActiveMailboxIDs() []string {
	return m.registry.ActiveIDs()
}

// SessionSecret hands the live session secret to downstream collaborators.
// Absence means the mailbox is locked and must be re-unlocked first.
func (m *Manager) SessionSecret(mailboxID string) ([]byte, bool) {
	return m.registry.Get(mailboxID)
}

func (m *Manager) EnablePersistence() {
	m.vault.Enable()
	m.logger.Info("session persistence enabled")
}

// DisablePersistence clears the flag and bulk-erases every envelope along
// with the wrapping key reference.
func (m *Manager) DisablePersistence() error {
	err := m.vault.Disable()
	m.logger.Info("session persistence disabled")
	return err
}

func (m *Manager) IsPersistenceEnabled() bool {
	return m.vault.Enabled()
}

func (m *Manager) Status() models.KeyringStatus {
	return models.KeyringStatus{
		ActiveMailboxIDs:   m.registry.ActiveIDs(),
		PersistenceEnabled: m.vault.Enabled(),
		UpdatedAt:          m.now().UTC(),
	}
}

// OnShutdown registers a callback to run during Shutdown, after sessions
// are terminated. The embedding environment decides what produces the
// shutdown signal (process signal handler, window unload, ...).
func (m *Manager) OnShutdown(fn func()) {
	if fn == nil {
		return
	}
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.shutdownHooks = append(m.shutdownHooks, fn)
}

// Shutdown force-terminates every in-memory session exactly once. Unlike
// LockAll it leaves persisted envelopes in place: they are the only state
// allowed to outlive teardown, and only while persistence is enabled.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.registry.RemoveAll()
		m.metrics.SetActiveSessions(0)
		m.hookMu.Lock()
		hooks := append([]func(){}, m.shutdownHooks...)
		m.hookMu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		m.logger.Info("keyring shut down")
	})
}
