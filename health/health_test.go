package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_InitiallyAvailable(t *testing.T) {
	tr := NewTracker(Config{})
	assert.True(t, tr.Available())

	st := tr.Status()
	assert.True(t, st.Available)
	assert.Zero(t, st.FailureCount)
	assert.True(t, st.LastSuccess.IsZero())
}

func TestTracker_CircuitOpens(t *testing.T) {
	tr := NewTracker(Config{FailureThreshold: 2, RecoveryTimeout: time.Hour})

	// First failure - still available
	tr.MarkFailure()
	assert.True(t, tr.Available())

	// Second failure - circuit opens
	tr.MarkFailure()
	assert.False(t, tr.Available())

	st := tr.Status()
	assert.True(t, st.CircuitOpen)
	assert.Equal(t, 2, st.FailureCount)
}

func TestTracker_Recovery(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(Config{FailureThreshold: 1, RecoveryTimeout: 50 * time.Millisecond})
	tr.now = func() time.Time { return now }

	tr.MarkFailure()
	assert.False(t, tr.Available())

	// Past the recovery timeout the circuit is half-open.
	now = now.Add(60 * time.Millisecond)
	assert.True(t, tr.Available())

	// Success closes the circuit.
	tr.MarkSuccess()
	st := tr.Status()
	assert.False(t, st.CircuitOpen)
	assert.Zero(t, st.FailureCount)
	assert.Equal(t, now, st.LastSuccess)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(Config{FailureThreshold: 1})
	tr.MarkFailure()
	assert.False(t, tr.Available())

	tr.Reset()
	assert.True(t, tr.Available())
	assert.Zero(t, tr.Status().FailureCount)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.RecoveryTimeout)
}
