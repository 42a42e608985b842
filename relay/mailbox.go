package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mailbox moves raw event payloads to and from the remote collaborator.
// Pull returns nil, nil when no message is waiting.
type Mailbox interface {
	Push(ctx context.Context, payload []byte) error
	Pull(ctx context.Context) ([]byte, error)
}

// NewSessionID returns a fresh mailbox session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

const (
	// DefaultHTTPURL is the relay server used when none is configured.
	DefaultHTTPURL = "http://localhost:8080"

	messagesPath    = "/api/messages/"
	contentType     = "text/plain; charset=UTF-8"
	maxResponseSize = 1 << 20
)

// HTTPMailbox exchanges payloads with a message relay server over HTTP.
// Pushes POST to and pulls GET from <base>/api/messages/<session>.
type HTTPMailbox struct {
	endpoint   string
	session    string
	httpClient *http.Client
	logger     *slog.Logger
}

// HTTPOption configures an HTTPMailbox.
type HTTPOption func(*HTTPMailbox)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(m *HTTPMailbox) { m.httpClient = c }
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(m *HTTPMailbox) { m.logger = logger }
}

// NewHTTPMailbox creates a mailbox for session on the relay at baseURL.
// An empty session gets a fresh identifier.
func NewHTTPMailbox(baseURL, session string, opts ...HTTPOption) *HTTPMailbox {
	if baseURL == "" {
		baseURL = DefaultHTTPURL
	}
	if session == "" {
		session = NewSessionID()
	}
	m := &HTTPMailbox{
		endpoint: strings.TrimRight(baseURL, "/") + messagesPath + session,
		session:  session,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Session returns the mailbox session identifier.
func (m *HTTPMailbox) Session() string { return m.session }

// Push posts payload to the session mailbox.
func (m *HTTPMailbox) Push(ctx context.Context, payload []byte) error {
	_, err := m.do(ctx, "push", http.MethodPost, payload)
	return err
}

// Pull fetches the next waiting payload.
func (m *HTTPMailbox) Pull(ctx context.Context) ([]byte, error) {
	body, err := m.do(ctx, "pull", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return body, nil
}

func (m *HTTPMailbox) do(ctx context.Context, op, method string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.endpoint, body)
	if err != nil {
		return nil, fatalError(op, fmt.Errorf("create HTTP request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	m.logger.Debug("Mailbox request", "method", method, "url", m.endpoint, "bytes", len(payload))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, transientError(op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, transientError(op, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyHTTPError(op, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// classifyHTTPError determines if a relay error is transient or fatal.
func classifyHTTPError(op string, statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("relay error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusRequestTimeout:
		return transientError(op, err)
	case statusCode >= 500:
		return transientError(op, err)
	default:
		return fatalError(op, err)
	}
}
