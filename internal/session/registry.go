package session

import (
	"sort"
	"sync"
	"time"
)

type entry struct {
	secret    []byte
	createdAt time.Time
}

// Registry is the in-memory table of currently unlocked mailboxes and the
// single source of truth for "is this mailbox unlocked". It never persists
// anything; entries live at most as long as the process.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry() *Registry {
	return newRegistryWithClock(time.Now)
}

func newRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		now:     now,
	}
}

// Put inserts or replaces the session secret for a mailbox, taking
// ownership of the slice. A replaced secret is zeroed before being dropped.
func (r *Registry) Put(mailboxID string, secret []byte) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[mailboxID]; ok {
		Zero(old.secret)
	}
	createdAt := r.now().UTC()
	r.entries[mailboxID] = &entry{secret: secret, createdAt: createdAt}
	return createdAt
}

// Get returns a copy of the live session secret. Absence means the mailbox
// is locked and the caller must re-unlock.
func (r *Registry) Get(mailboxID string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[mailboxID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), e.secret...), true
}

// Has reports liveness without copying key material.
func (r *Registry) Has(mailboxID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[mailboxID]
	return ok
}

// CreatedAt returns the unlock timestamp for a live session.
func (r *Registry) CreatedAt(mailboxID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[mailboxID]
	if !ok {
		return time.Time{}, false
	}
	return e.createdAt, true
}

// Remove zeroes the stored secret in place and drops the entry.
func (r *Registry) Remove(mailboxID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[mailboxID]
	if !ok {
		return false
	}
	Zero(e.secret)
	delete(r.entries, mailboxID)
	return true
}

// RemoveAll zeroes and drops every entry.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		Zero(e.secret)
		delete(r.entries, id)
	}
}

// ActiveIDs lists unlocked mailbox identifiers in stable order.
func (r *Registry) ActiveIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
