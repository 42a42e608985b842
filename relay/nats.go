package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// DefaultStream is the JetStream stream holding mailbox subjects.
	DefaultStream = "ONTOSYNC_MAILBOX"

	subjectPrefix   = "ontosync.mailbox."
	defaultMaxWait  = 500 * time.Millisecond
	defaultMaxAge   = 24 * time.Hour
	consumerAckWait = 30 * time.Second
)

// OutboundSubject is the subject local events are published on.
func OutboundSubject(session string) string { return subjectPrefix + session + ".out" }

// InboundSubject is the subject remote events are consumed from.
func InboundSubject(session string) string { return subjectPrefix + session + ".in" }

// NATSConfig configures a NATSMailbox.
type NATSConfig struct {
	Stream  string
	Session string
	// MaxWait bounds how long one Pull waits for a message.
	MaxWait time.Duration
}

// NATSMailbox exchanges payloads through a JetStream stream. Pushes publish
// to the session's outbound subject; pulls fetch one message at a time from
// a durable consumer on the inbound subject.
type NATSMailbox struct {
	js       jetstream.JetStream
	consumer jetstream.Consumer
	cfg      NATSConfig
	logger   *slog.Logger
}

// NewNATSMailbox creates the stream and the durable inbound consumer if they
// do not exist.
func NewNATSMailbox(ctx context.Context, conn *nats.Conn, cfg NATSConfig, logger *slog.Logger) (*NATSMailbox, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Session == "" {
		cfg.Session = NewSessionID()
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{subjectPrefix + ">"},
		Storage:  jetstream.FileStorage,
		MaxAge:   defaultMaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", cfg.Stream, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       "ontosync-" + cfg.Session,
		FilterSubject: InboundSubject(cfg.Session),
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       consumerAckWait,
		MaxDeliver:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	logger.Info("NATS mailbox ready",
		"stream", cfg.Stream,
		"inbound", InboundSubject(cfg.Session),
		"outbound", OutboundSubject(cfg.Session))

	return &NATSMailbox{js: js, consumer: consumer, cfg: cfg, logger: logger}, nil
}

// Session returns the mailbox session identifier.
func (m *NATSMailbox) Session() string { return m.cfg.Session }

// Push publishes payload on the outbound subject.
func (m *NATSMailbox) Push(ctx context.Context, payload []byte) error {
	if _, err := m.js.Publish(ctx, OutboundSubject(m.cfg.Session), payload); err != nil {
		return transientError("push", fmt.Errorf("publish: %w", err))
	}
	return nil
}

// Pull fetches at most one inbound message, waiting up to MaxWait. The
// message is acked before it is returned.
func (m *NATSMailbox) Pull(ctx context.Context) ([]byte, error) {
	msgs, err := m.consumer.Fetch(1, jetstream.FetchMaxWait(m.cfg.MaxWait))
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, transientError("pull", fmt.Errorf("fetch: %w", err))
	}

	var payload []byte
	for msg := range msgs.Messages() {
		payload = msg.Data()
		if err := msg.Ack(); err != nil {
			m.logger.Warn("Failed to ack mailbox message", "error", err)
		}
	}

	if err := msgs.Error(); err != nil && !isTimeout(err) && ctx.Err() == nil {
		return nil, transientError("pull", fmt.Errorf("fetch: %w", err))
	}
	return payload, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
