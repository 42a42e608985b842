// Package health tracks whether the graph store is reachable, using a
// circuit breaker over the outcomes of recent write transactions.
package health

import (
	"sync"
	"time"
)

// Status is a snapshot of the tracked target's health.
type Status struct {
	// Available indicates if the target is currently usable.
	Available bool `json:"available"`

	// LastSuccess is the time of the last successful transaction.
	LastSuccess time.Time `json:"last_success,omitempty"`

	// LastFailure is the time of the last failed transaction.
	LastFailure time.Time `json:"last_failure,omitempty"`

	// FailureCount is the number of consecutive failures.
	FailureCount int `json:"failure_count"`

	// CircuitOpen indicates if the circuit breaker has tripped.
	CircuitOpen bool `json:"circuit_open"`

	// CircuitOpenedAt is when the circuit was opened.
	CircuitOpenedAt time.Time `json:"circuit_opened_at,omitempty"`
}

// Config configures the circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures before opening
	// the circuit.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a batch is
	// let through again.
	RecoveryTimeout time.Duration
}

// DefaultConfig returns the default circuit breaker settings.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		RecoveryTimeout:  30 * time.Second,
	}
}

// Tracker records transaction outcomes for a single sync target.
type Tracker struct {
	mu     sync.RWMutex
	config Config
	status Status
	now    func() time.Time
}

// NewTracker creates a tracker that starts out available. Zero config
// fields fall back to DefaultConfig.
func NewTracker(cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = def.RecoveryTimeout
	}
	return &Tracker{
		config: cfg,
		status: Status{Available: true},
		now:    time.Now,
	}
}

// MarkSuccess records a successful transaction and closes the circuit.
func (t *Tracker) MarkSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.LastSuccess = t.now()
	t.status.FailureCount = 0
	t.status.Available = true
	t.status.CircuitOpen = false
}

// MarkFailure records a failed transaction.
func (t *Tracker) MarkFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.status.LastFailure = now
	t.status.FailureCount++

	if t.status.FailureCount >= t.config.FailureThreshold {
		t.status.CircuitOpen = true
		t.status.CircuitOpenedAt = now
		t.status.Available = false
	}
}

// Available reports whether a batch may be sent. Once the recovery timeout
// has passed an open circuit lets batches through again (half-open) until
// the next outcome is recorded.
func (t *Tracker) Available() bool {
	t.mu.RLock()
	circuitOpen := t.status.CircuitOpen
	openedAt := t.status.CircuitOpenedAt
	timeout := t.config.RecoveryTimeout
	t.mu.RUnlock()

	if !circuitOpen {
		return true
	}
	return t.now().Sub(openedAt) > timeout
}

// Status returns a copy of the current status.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Reset clears recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{Available: true}
}
