package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ChangeListener receives the effective changes of every applied batch, in
// order, on the goroutine that applied them.
type ChangeListener interface {
	OntologiesChanged(ctx context.Context, changes []Change)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ctx context.Context, changes []Change)

func (f ChangeListenerFunc) OntologiesChanged(ctx context.Context, changes []Change) {
	f(ctx, changes)
}

// Manager holds ontologies and applies change batches to them. Mutations are
// expected to run on the Owner's goroutine; the internal locks only make
// concurrent reads safe.
type Manager struct {
	mu         sync.RWMutex
	ontologies map[IRI]*Ontology
	listeners  []ChangeListener
	logger     *slog.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ontologies: make(map[IRI]*Ontology),
		logger:     logger,
	}
}

// CreateOntology registers a new empty ontology.
func (m *Manager) CreateOntology(iri IRI) (*Ontology, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ontologies[iri]; ok {
		return nil, fmt.Errorf("create %s: %w", iri, ErrOntologyExists)
	}
	o := newOntology(iri)
	m.ontologies[iri] = o
	return o, nil
}

// Ontology looks up an ontology by IRI.
func (m *Manager) Ontology(iri IRI) (*Ontology, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.ontologies[iri]
	return o, ok
}

// AddListener subscribes l to change notifications.
func (m *Manager) AddListener(l ChangeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RemoveListener unsubscribes l.
func (m *Manager) RemoveListener(l ChangeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// ApplyChanges applies the batch atomically: every target ontology is checked
// before anything is applied. Adding a present axiom or removing an absent
// one is a no-op. The effective changes are returned and delivered to the
// listeners before ApplyChanges returns.
func (m *Manager) ApplyChanges(ctx context.Context, changes []Change) ([]Change, error) {
	m.mu.RLock()
	targets := make([]*Ontology, len(changes))
	for i, c := range changes {
		o, ok := m.ontologies[c.Ontology]
		if !ok {
			m.mu.RUnlock()
			return nil, fmt.Errorf("apply %s: %w", c, ErrOntologyNotFound)
		}
		targets[i] = o
	}
	listeners := append([]ChangeListener(nil), m.listeners...)
	m.mu.RUnlock()

	effective := make([]Change, 0, len(changes))
	for i, c := range changes {
		if targets[i].apply(c) {
			effective = append(effective, c)
		}
	}

	m.logger.Debug("Applied ontology changes",
		"requested", len(changes),
		"effective", len(effective))

	if len(effective) == 0 {
		return effective, nil
	}
	for _, l := range listeners {
		l.OntologiesChanged(ctx, effective)
	}
	return effective, nil
}

// ApplyChange applies a single change.
func (m *Manager) ApplyChange(ctx context.Context, c Change) (bool, error) {
	effective, err := m.ApplyChanges(ctx, []Change{c})
	if err != nil {
		return false, err
	}
	return len(effective) == 1, nil
}
