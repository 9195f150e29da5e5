package models

import "time"

// Mailbox is the public view of one wallet-derived encrypted identity.
type Mailbox struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionInfo describes the outcome of an unlock for one mailbox.
type SessionInfo struct {
	MailboxID string    `json:"mailbox_id"`
	CreatedAt time.Time `json:"created_at"`
	// Restored is true when the session came back from a persisted
	// envelope instead of a fresh wallet signature.
	Restored bool `json:"restored"`
	// AlreadyUnlocked is true when unlock short-circuited on a live session.
	AlreadyUnlocked bool `json:"already_unlocked"`
}

// KeyringStatus is a point-in-time snapshot of the lifecycle manager.
type KeyringStatus struct {
	ActiveMailboxIDs   []string  `json:"active_mailbox_ids"`
	PersistenceEnabled bool      `json:"persistence_enabled"`
	UpdatedAt          time.Time `json:"updated_at"`
}
