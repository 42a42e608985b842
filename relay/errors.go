package relay

import (
	"context"
	"errors"
	"log/slog"
)

// ErrMalformedEvent is returned when a payload cannot be decoded into a
// valid ElementEvent.
var ErrMalformedEvent = errors.New("malformed element event")

// MailboxError is a failed push or pull. A transient failure is expected to
// clear on a later attempt; any other failure will repeat until the relay or
// its configuration changes.
type MailboxError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *MailboxError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *MailboxError) Unwrap() error { return e.Err }

func transientError(op string, err error) error {
	return &MailboxError{Op: op, Transient: true, Err: err}
}

func fatalError(op string, err error) error {
	return &MailboxError{Op: op, Err: err}
}

// IsTransient reports whether err is a mailbox failure worth retrying.
func IsTransient(err error) bool {
	var me *MailboxError
	return errors.As(err, &me) && me.Transient
}

// IsFatal reports whether err is a mailbox failure that will not clear by
// retrying.
func IsFatal(err error) bool {
	var me *MailboxError
	return errors.As(err, &me) && !me.Transient
}

// logMailboxFailure logs transient failures as warnings and everything else
// as errors.
func logMailboxFailure(logger *slog.Logger, msg string, err error) {
	level := slog.LevelError
	if IsTransient(err) {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, msg, "error", err, "transient", IsTransient(err))
}
