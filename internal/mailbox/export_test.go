package mailbox

// SetSecretObserver installs a hook that receives the deterministic secret
// buffer before session derivation, so tests can hold the reference and
// verify zeroing after Unlock returns.
func (m *Manager) SetSecretObserver(fn func([]byte)) {
	m.secretObserver = fn
}
