package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/translate"
)

const (
	// DefaultQueueSize is the outbound buffer used when none is configured.
	DefaultQueueSize = 256

	defaultPushTimeout = 10 * time.Second
)

// Outbox pushes local declaration changes to the mailbox. Notify never
// blocks; a sender goroutine started by Run delivers in order. Failed pushes
// are logged and not retried.
type Outbox struct {
	mailbox Mailbox
	queue   chan []byte
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithQueueSize sets the outbound buffer size.
func WithQueueSize(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.queue = make(chan []byte, n)
		}
	}
}

// WithPushTimeout bounds a single push.
func WithPushTimeout(d time.Duration) OutboxOption {
	return func(o *Outbox) { o.timeout = d }
}

// WithOutboxMetrics records push outcomes in m.
func WithOutboxMetrics(m *metrics.Metrics) OutboxOption {
	return func(o *Outbox) { o.metrics = m }
}

// WithOutboxLogger sets the logger.
func WithOutboxLogger(logger *slog.Logger) OutboxOption {
	return func(o *Outbox) { o.logger = logger }
}

// NewOutbox creates an outbox pushing to mailbox.
func NewOutbox(mailbox Mailbox, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		mailbox: mailbox,
		queue:   make(chan []byte, DefaultQueueSize),
		timeout: defaultPushTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Notify encodes n and queues it for delivery. When the queue is full the
// event is dropped.
func (o *Outbox) Notify(n translate.Notification) {
	payload, err := EventFromNotification(n).Encode()
	if err != nil {
		o.logger.Warn("Failed to encode outbound event", "kind", n.Kind, "name", n.Name, "error", err)
		return
	}

	select {
	case o.queue <- payload:
		o.metrics.SetQueueLength(len(o.queue))
	default:
		o.logger.Warn("Outbound queue full, dropping event", "kind", n.Kind, "name", n.Name, "capacity", cap(o.queue))
		o.metrics.RecordPush(metrics.OutcomeDropped)
	}
}

// Pending returns the number of queued events.
func (o *Outbox) Pending() int { return len(o.queue) }

// Run delivers queued events until ctx is cancelled. Events still queued at
// that point are discarded.
func (o *Outbox) Run(ctx context.Context) error {
	o.logger.Info("Relay outbox started", "capacity", cap(o.queue))
	defer o.logger.Info("Relay outbox stopped", "discarded", len(o.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-o.queue:
			o.metrics.SetQueueLength(len(o.queue))
			o.push(ctx, payload)
		}
	}
}

func (o *Outbox) push(ctx context.Context, payload []byte) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	if err := o.mailbox.Push(pushCtx, payload); err != nil {
		logMailboxFailure(o.logger, "Failed to push event", err)
		o.metrics.RecordPush(metrics.OutcomeError)
		return
	}
	o.metrics.RecordPush(metrics.OutcomeSent)
}
