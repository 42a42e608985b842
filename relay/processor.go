package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/ontosync/ontology"
)

// Processor applies inbound events to the local ontology. Apply must run on
// the ontology's owner goroutine.
type Processor struct {
	manager  *ontology.Manager
	ontology ontology.IRI
	logger   *slog.Logger
}

// NewProcessor creates a processor applying events to the ontology iri held
// by manager.
func NewProcessor(manager *ontology.Manager, iri ontology.IRI, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{manager: manager, ontology: iri, logger: logger}
}

// Change builds the declaration change described by ev.
func (p *Processor) Change(ev ElementEvent) (ontology.Change, error) {
	if err := ev.Validate(); err != nil {
		return ontology.Change{}, err
	}
	kind, _ := ev.Kind()

	o, ok := p.manager.Ontology(p.ontology)
	if !ok {
		return ontology.Change{}, fmt.Errorf("%w: %s", ontology.ErrOntologyNotFound, p.ontology)
	}

	decl := ontology.Declaration{Entity: ontology.NewEntity(kind, ontology.EntityIRI(o.IRI(), ev.Name()))}
	if ev.IsAdd {
		return ontology.AddAxiom(o.IRI(), decl), nil
	}
	return ontology.RemoveAxiom(o.IRI(), decl), nil
}

// Apply adds or removes the declaration described by ev. It reports whether
// the ontology changed.
func (p *Processor) Apply(ctx context.Context, ev ElementEvent) (bool, error) {
	change, err := p.Change(ev)
	if err != nil {
		return false, err
	}

	changed, err := p.manager.ApplyChange(ctx, change)
	if err != nil {
		return false, fmt.Errorf("apply %s: %w", change, err)
	}
	p.logger.Debug("Applied remote event", "change", change.String(), "changed", changed)
	return changed, nil
}
