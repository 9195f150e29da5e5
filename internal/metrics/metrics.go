package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes lifecycle counters for the mailbox keyring.
type Collector struct {
	unlocks        *prometheus.CounterVec
	unlockFailures *prometheus.CounterVec
	locks          prometheus.Counter
	persistErrors  prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewCollector registers the keyring collectors. Passing nil uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletmail",
			Subsystem: "keyring",
			Name:      "unlocks_total",
			Help:      "Successful mailbox unlocks by source.",
		}, []string{"source"}),
		unlockFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletmail",
			Subsystem: "keyring",
			Name:      "unlock_failures_total",
			Help:      "Failed mailbox unlocks by reason.",
		}, []string{"reason"}),
		locks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "walletmail",
			Subsystem: "keyring",
			Name:      "locks_total",
			Help:      "Mailbox sessions terminated.",
		}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "walletmail",
			Subsystem: "keyring",
			Name:      "persist_errors_total",
			Help:      "Envelope persistence failures (non-fatal).",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletmail",
			Subsystem: "keyring",
			Name:      "active_sessions",
			Help:      "Currently unlocked mailboxes.",
		}),
	}
	reg.MustRegister(c.unlocks, c.unlockFailures, c.locks, c.persistErrors, c.activeSessions)
	return c
}

// Unlock sources.
const (
	SourceDerived  = "derived"
	SourceRestored = "restored"
	SourceLive     = "live"
)

func (c *Collector) RecordUnlock(source string) {
	if c == nil {
		return
	}
	c.unlocks.WithLabelValues(source).Inc()
}

func (c *Collector) RecordUnlockFailure(reason string) {
	if c == nil {
		return
	}
	c.unlockFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordLock() {
	if c == nil {
		return
	}
	c.locks.Inc()
}

func (c *Collector) RecordPersistError() {
	if c == nil {
		return
	}
	c.persistErrors.Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.activeSessions.Set(float64(n))
}
