package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/ontology"
)

const (
	// DefaultPollInterval is the fixed delay between mailbox polls.
	DefaultPollInterval = 3 * time.Second

	defaultPollTimeout = 10 * time.Second
)

// Dispatcher hands a task to the ontology owner.
type Dispatcher interface {
	Submit(task ontology.Task) error
}

// Poller pulls inbound events on a fixed schedule and dispatches each
// well-formed event to the owner, where it is applied exactly once.
type Poller struct {
	mailbox    Mailbox
	processor  *Processor
	dispatcher Dispatcher
	interval   time.Duration
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithPollTimeout bounds a single poll.
func WithPollTimeout(d time.Duration) PollerOption {
	return func(p *Poller) { p.timeout = d }
}

// WithPollerMetrics records poll outcomes in m.
func WithPollerMetrics(m *metrics.Metrics) PollerOption {
	return func(p *Poller) { p.metrics = m }
}

// WithPollerLogger sets the logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = logger }
}

// NewPoller creates a poller.
func NewPoller(mailbox Mailbox, processor *Processor, dispatcher Dispatcher, opts ...PollerOption) *Poller {
	p := &Poller{
		mailbox:    mailbox,
		processor:  processor,
		dispatcher: dispatcher,
		interval:   DefaultPollInterval,
		timeout:    defaultPollTimeout,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run polls immediately and then once per interval until ctx is cancelled or
// Stop is called. Transport failures are retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Relay poller started", "interval", p.interval)
	defer p.logger.Info("Relay poller stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PollOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends scheduling. A poll already in flight completes.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// PollOnce pulls at most one event and returns the outcome.
func (p *Poller) PollOnce(ctx context.Context) string {
	outcome := p.poll(ctx)
	p.metrics.RecordPoll(outcome)
	return outcome
}

func (p *Poller) poll(ctx context.Context) string {
	pollCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	payload, err := p.mailbox.Pull(pollCtx)
	if err != nil {
		logMailboxFailure(p.logger, "Mailbox poll failed", err)
		return metrics.OutcomeError
	}
	if payload == nil {
		return metrics.OutcomeEmpty
	}

	ev, err := DecodeEvent(payload)
	if err != nil {
		p.logger.Warn("Discarding malformed event", "error", err, "payload", truncate(string(payload), 200))
		return metrics.OutcomeMalformed
	}

	err = p.dispatcher.Submit(func(taskCtx context.Context) {
		if _, err := p.processor.Apply(taskCtx, ev); err != nil {
			p.logger.Error("Failed to apply remote event", "type", ev.Type, "name", ev.Name(), "error", err)
		}
	})
	if err != nil {
		if errors.Is(err, ontology.ErrOwnerClosed) {
			p.logger.Debug("Owner closed, dropping event", "type", ev.Type, "name", ev.Name())
		} else {
			p.logger.Error("Failed to dispatch remote event", "error", err)
		}
		return metrics.OutcomeError
	}
	return metrics.OutcomeApplied
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
