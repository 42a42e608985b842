// Package listener turns ontology change batches into graph write
// transactions. Each batch is translated and committed as one transaction,
// or skipped entirely while the sync target is unavailable.
package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/ontosync/graph"
	"github.com/c360studio/ontosync/health"
	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/translate"
)

// Session executes statements in one write transaction.
type Session interface {
	Write(ctx context.Context, stmts []graph.Statement) error
}

// HealthFunc reports whether the sync target is reachable.
type HealthFunc func() bool

// Notifier receives declaration notifications. Notify must not block.
type Notifier interface {
	Notify(n translate.Notification)
}

// Listener synchronizes change batches to a graph session.
type Listener struct {
	session    Session
	translator *translate.Translator
	healthy    HealthFunc
	notifier   Notifier
	tracker    *health.Tracker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Listener.
type Option func(*Listener)

// WithHealth sets the availability predicate consulted once per batch.
func WithHealth(fn HealthFunc) Option {
	return func(l *Listener) { l.healthy = fn }
}

// WithNotifier forwards declaration notifications to n.
func WithNotifier(n Notifier) Option {
	return func(l *Listener) { l.notifier = n }
}

// WithTracker records transaction outcomes in t.
func WithTracker(t *health.Tracker) Option {
	return func(l *Listener) { l.tracker = t }
}

// WithMetrics records batch outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Listener) { l.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

// New creates a listener writing to session.
func New(session Session, opts ...Option) *Listener {
	l := &Listener{session: session}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.translator = translate.New(l.logger)
	return l
}

// Sync translates changes and commits the resulting statements in one
// transaction. An unavailable target skips the batch without side effects.
func (l *Listener) Sync(ctx context.Context, changes []ontology.Change) error {
	if len(changes) == 0 {
		return nil
	}
	if l.healthy != nil && !l.healthy() {
		l.logger.Debug("Sync target unavailable, skipping batch", "changes", len(changes))
		l.metrics.RecordBatch(metrics.BatchSkipped, 0, 0)
		return nil
	}

	var stmts []graph.Statement
	for _, change := range changes {
		res, err := l.translator.Translate(change)
		if err != nil {
			if errors.Is(err, translate.ErrUnhandled) {
				l.logger.Debug("Axiom kind not synchronized", "axiom", change.Axiom.String())
				l.metrics.RecordUnhandled(change.Axiom.Kind().String())
				continue
			}
			return fmt.Errorf("translate %s: %w", change, err)
		}
		stmts = append(stmts, res.Statements...)
		if res.Notification != nil && l.notifier != nil {
			l.notifier.Notify(*res.Notification)
		}
	}

	if len(stmts) == 0 {
		return nil
	}

	start := time.Now()
	if err := l.session.Write(ctx, stmts); err != nil {
		if l.tracker != nil {
			l.tracker.MarkFailure()
		}
		l.metrics.RecordBatch(metrics.BatchFailed, len(stmts), time.Since(start))
		return fmt.Errorf("write %d statements: %w", len(stmts), err)
	}
	if l.tracker != nil {
		l.tracker.MarkSuccess()
	}
	l.metrics.RecordBatch(metrics.BatchSynced, len(stmts), time.Since(start))

	l.logger.Debug("Synced change batch",
		"changes", len(changes),
		"statements", len(stmts))
	return nil
}

// OntologiesChanged implements ontology.ChangeListener. Failures are logged
// and never propagate to the edit that caused them.
func (l *Listener) OntologiesChanged(ctx context.Context, changes []ontology.Change) {
	if err := l.Sync(ctx, changes); err != nil {
		l.logger.Error("Graph sync failed", "changes", len(changes), "error", err)
	}
}
