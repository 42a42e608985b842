// Package metrics holds the Prometheus collectors for synchronization,
// import and relay activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ontosync"

// Batch outcomes.
const (
	BatchSynced  = "synced"
	BatchSkipped = "skipped"
	BatchFailed  = "failed"
)

// Relay outcomes.
const (
	OutcomeEmpty     = "empty"
	OutcomeApplied   = "applied"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
	OutcomeSent      = "sent"
	OutcomeDropped   = "dropped"
)

// Metrics is the set of ontosync collectors.
type Metrics struct {
	batches       *prometheus.CounterVec // By outcome
	statements    prometheus.Counter
	unhandled     *prometheus.CounterVec // By axiom kind
	syncDuration  prometheus.Histogram
	imported      prometheus.Counter
	relayPolls    *prometheus.CounterVec // By outcome
	relayPushes   *prometheus.CounterVec // By outcome
	relayQueueLen prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "batches_total",
			Help:      "Total number of change batches by outcome",
		}, []string{"outcome"}),

		statements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "statements_total",
			Help:      "Total number of graph statements committed",
		}),

		unhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "unhandled_axioms_total",
			Help:      "Total number of changes whose axiom kind is not synchronized",
		}, []string{"kind"}),

		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "transaction_duration_seconds",
			Help:      "Graph write transaction duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "axioms_total",
			Help:      "Total number of axioms reconstructed from the graph",
		}),

		relayPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "polls_total",
			Help:      "Total number of mailbox polls by outcome",
		}, []string{"outcome"}), // outcome: empty, applied, malformed, error

		relayPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "pushes_total",
			Help:      "Total number of outbound events by outcome",
		}, []string{"outcome"}), // outcome: sent, dropped, error

		relayQueueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "outbox_queue_length",
			Help:      "Number of outbound events waiting to be pushed",
		}),
	}

	if reg == nil {
		return m, nil
	}

	collectors := []prometheus.Collector{
		m.batches, m.statements, m.unhandled, m.syncDuration,
		m.imported, m.relayPolls, m.relayPushes, m.relayQueueLen,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// RecordBatch records the outcome of one change batch.
func (m *Metrics) RecordBatch(outcome string, statements int, duration time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	if outcome == BatchSynced {
		m.statements.Add(float64(statements))
	}
	if duration > 0 {
		m.syncDuration.Observe(duration.Seconds())
	}
}

// RecordUnhandled counts a change whose axiom kind is not synchronized.
func (m *Metrics) RecordUnhandled(kind string) {
	if m == nil {
		return
	}
	m.unhandled.WithLabelValues(kind).Inc()
}

// RecordImport counts reconstructed axioms.
func (m *Metrics) RecordImport(axioms int) {
	if m == nil {
		return
	}
	m.imported.Add(float64(axioms))
}

// RecordPoll records the outcome of one mailbox poll.
func (m *Metrics) RecordPoll(outcome string) {
	if m == nil {
		return
	}
	m.relayPolls.WithLabelValues(outcome).Inc()
}

// RecordPush records the outcome of one outbound event.
func (m *Metrics) RecordPush(outcome string) {
	if m == nil {
		return
	}
	m.relayPushes.WithLabelValues(outcome).Inc()
}

// SetQueueLength reports the outbox backlog.
func (m *Metrics) SetQueueLength(n int) {
	if m == nil {
		return
	}
	m.relayQueueLen.Set(float64(n))
}
