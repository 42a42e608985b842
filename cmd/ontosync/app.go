package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/ontosync/config"
	"github.com/c360studio/ontosync/graph/memgraph"
	"github.com/c360studio/ontosync/graphstore"
	"github.com/c360studio/ontosync/health"
	"github.com/c360studio/ontosync/importer"
	"github.com/c360studio/ontosync/listener"
	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/relay"
)

// App wires the ontology, the graph store and the relay together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	tracker  *health.Tracker

	manager *ontology.Manager
	owner   *ontology.Owner

	// Graph
	store     *graphstore.Manager
	memory    *memgraph.Graph
	session   listener.Session
	snapshot  importer.Snapshot
	connected func() bool

	// Relay
	natsConn *nats.Conn
	mailbox  relay.Mailbox
	poller   *relay.Poller
	outbox   *relay.Outbox
}

// NewApp creates an application instance. Nothing is connected until Start
// or Import.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		logger.Warn("Failed to register metrics", "error", err)
	}
	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		tracker: health.NewTracker(health.Config{
			FailureThreshold: cfg.Health.FailureThreshold,
			RecoveryTimeout:  cfg.Health.RecoveryTimeout,
		}),
		manager: ontology.NewManager(logger),
		owner:   ontology.NewOwner(logger),
	}
}

func (a *App) iri() ontology.IRI { return ontology.IRI(a.cfg.Ontology.IRI) }

// healthy reports whether change batches should be written.
func (a *App) healthy() bool {
	return a.connected() && a.tracker.Available()
}

func (a *App) status() health.Status {
	st := a.tracker.Status()
	st.Available = a.healthy()
	return st
}

// connectGraph opens the configured graph backend.
func (a *App) connectGraph(ctx context.Context) error {
	switch a.cfg.Neo4j.Backend {
	case config.BackendMemory:
		a.memory = memgraph.New()
		a.session, a.snapshot = a.memory, a.memory
		a.connected = func() bool { return true }
		a.logger.Info("Using in-memory graph")
		return nil
	default:
		a.store = graphstore.NewManager(graphstore.Config{
			URI:      a.cfg.Neo4j.URI,
			Username: a.cfg.Neo4j.Username,
			Password: a.cfg.Neo4j.Password,
			Database: a.cfg.Neo4j.Database,
		}, a.logger)
		if err := a.store.Connect(ctx); err != nil {
			return fmt.Errorf("connect graph store: %w", err)
		}
		if err := a.store.Ping(ctx); err != nil {
			a.logger.Warn("Graph store not reachable", "uri", a.cfg.Neo4j.URI, "error", err)
		}
		s, err := a.store.Session()
		if err != nil {
			return err
		}
		a.session, a.snapshot = a.store, s
		a.connected = a.store.Connected
		return nil
	}
}

// connectRelay opens the configured mailbox.
func (a *App) connectRelay(ctx context.Context) error {
	rc := a.cfg.Relay
	switch rc.Transport {
	case config.TransportHTTP:
		mb := relay.NewHTTPMailbox(rc.URL, rc.Session, relay.WithHTTPLogger(a.logger))
		a.logger.Info("HTTP relay configured", "url", rc.URL, "session", mb.Session())
		a.mailbox = mb
	case config.TransportNATS:
		conn, err := nats.Connect(rc.NATS.URL, nats.Name(appName))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
		mb, err := relay.NewNATSMailbox(ctx, conn, relay.NATSConfig{
			Stream:  rc.NATS.Stream,
			Session: rc.Session,
		}, a.logger)
		if err != nil {
			return err
		}
		a.mailbox = mb
	default:
		a.logger.Info("Relay disabled")
		return nil
	}

	a.outbox = relay.NewOutbox(a.mailbox,
		relay.WithQueueSize(rc.QueueSize),
		relay.WithOutboxMetrics(a.metrics),
		relay.WithOutboxLogger(a.logger))
	a.poller = relay.NewPoller(a.mailbox,
		relay.NewProcessor(a.manager, a.iri(), a.logger),
		a.owner,
		relay.WithInterval(rc.PollInterval),
		relay.WithPollerMetrics(a.metrics),
		relay.WithPollerLogger(a.logger))
	return nil
}

// Import connects the graph and rebuilds the configured ontology from it.
func (a *App) Import(ctx context.Context) (*ontology.Ontology, error) {
	if err := a.connectGraph(ctx); err != nil {
		return nil, err
	}
	o, err := a.manager.CreateOntology(a.iri())
	if err != nil {
		return nil, err
	}
	im := importer.New(importer.WithLogger(a.logger), importer.WithMetrics(a.metrics))
	if err := im.Import(ctx, a.snapshot, a.manager, a.iri()); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return o, nil
}

// Start connects the graph, optionally imports its contents, attaches the
// sync listener and opens the relay.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Ontology.ImportOnStart {
		if _, err := a.Import(ctx); err != nil {
			return err
		}
	} else {
		if err := a.connectGraph(ctx); err != nil {
			return err
		}
		if _, err := a.manager.CreateOntology(a.iri()); err != nil {
			return err
		}
	}

	if err := a.connectRelay(ctx); err != nil {
		return err
	}

	opts := []listener.Option{
		listener.WithHealth(a.healthy),
		listener.WithTracker(a.tracker),
		listener.WithMetrics(a.metrics),
		listener.WithLogger(a.logger),
	}
	if a.outbox != nil {
		opts = append(opts, listener.WithNotifier(a.outbox))
	}
	a.manager.AddListener(listener.New(a.session, opts...))
	return nil
}

// Run executes the owner loop, the relay and the metrics server until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.owner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if a.poller != nil {
		g.Go(func() error { return a.poller.Run(gctx) })
		g.Go(func() error { return a.outbox.Run(gctx) })
	}
	if a.cfg.Metrics.Addr != "" {
		handler := metrics.Handler(a.registry, a.status)
		g.Go(func() error { return metrics.Serve(gctx, a.cfg.Metrics.Addr, handler, a.logger) })
	}

	return g.Wait()
}

// Shutdown releases the graph and relay connections.
func (a *App) Shutdown(ctx context.Context) {
	a.owner.Close()

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.logger.Debug("NATS drain failed", "error", err)
		}
		a.natsConn.Close()
	}

	if a.store != nil {
		if err := a.store.Disconnect(ctx); err != nil {
			a.logger.Warn("Graph store disconnect failed", "error", err)
		}
	}
	a.logger.Info("Ontosync shutdown complete")
}
