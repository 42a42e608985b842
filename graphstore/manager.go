// Package graphstore manages the connection to the Neo4j graph store and
// runs graph statements and snapshot queries against it.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/c360studio/ontosync/graph"
)

// Connection lifecycle errors. Both are programming errors and are never
// retried.
var (
	// ErrAlreadyConnected is returned by Connect when a session is open.
	ErrAlreadyConnected = errors.New("already connected, disconnect first")

	// ErrNotConnected is returned when the session is used before Connect.
	ErrNotConnected = errors.New("not connected, connect first")
)

// Config holds the connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Manager owns at most one driver and one session at a time.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	driver  neo4j.DriverWithContext
	session *Session
}

// NewManager creates a disconnected manager.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Connect creates the driver and opens the session. The driver connects
// lazily; use Ping to verify the server is reachable.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.driver != nil || m.session != nil {
		return ErrAlreadyConnected
	}

	m.logger.Info("Connecting to graph store", "uri", m.cfg.URI, "database", m.cfg.Database)
	driver, err := neo4j.NewDriverWithContext(m.cfg.URI, neo4j.BasicAuth(m.cfg.Username, m.cfg.Password, ""))
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	m.driver = driver
	m.session = newSession(driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.cfg.Database,
	}), m.logger)
	return nil
}

// Disconnect closes the session and the driver. It is a no-op when not
// connected.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.session != nil {
		errs = append(errs, m.session.close(ctx))
		m.session = nil
	}
	if m.driver != nil {
		m.logger.Info("Disconnecting from graph store")
		errs = append(errs, m.driver.Close(ctx))
		m.driver = nil
	}
	return errors.Join(errs...)
}

// Session returns the open session.
func (m *Manager) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, ErrNotConnected
	}
	return m.session, nil
}

// Connected reports whether a session is open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Ping verifies the server is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.Lock()
	driver := m.driver
	m.mu.Unlock()

	if driver == nil {
		return ErrNotConnected
	}
	return driver.VerifyConnectivity(ctx)
}

// Write runs stmts in one transaction on the open session.
func (m *Manager) Write(ctx context.Context, stmts []graph.Statement) error {
	s, err := m.Session()
	if err != nil {
		return err
	}
	return s.Write(ctx, stmts)
}
