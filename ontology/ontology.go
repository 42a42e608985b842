package ontology

import (
	"cmp"
	"slices"
	"sync"
)

// Ontology is a named set of axioms.
type Ontology struct {
	iri IRI

	mu     sync.RWMutex
	axioms map[string]Axiom
}

func newOntology(iri IRI) *Ontology {
	return &Ontology{iri: iri, axioms: make(map[string]Axiom)}
}

// IRI returns the ontology identifier, also used as the base for entity IRIs
// reconstructed from short forms.
func (o *Ontology) IRI() IRI { return o.iri }

// Contains reports whether an axiom with the same key is present.
func (o *Ontology) Contains(axiom Axiom) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.axioms[axiom.Key()]
	return ok
}

// Len returns the number of axioms.
func (o *Ontology) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.axioms)
}

// Axioms returns all axioms ordered by kind, then key.
func (o *Ontology) Axioms() []Axiom {
	o.mu.RLock()
	out := make([]Axiom, 0, len(o.axioms))
	for _, ax := range o.axioms {
		out = append(out, ax)
	}
	o.mu.RUnlock()

	slices.SortFunc(out, func(a, b Axiom) int {
		if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
	return out
}

// AxiomsOfKind returns the axioms of one kind, ordered by key.
func (o *Ontology) AxiomsOfKind(kind AxiomKind) []Axiom {
	var out []Axiom
	for _, ax := range o.Axioms() {
		if ax.Kind() == kind {
			out = append(out, ax)
		}
	}
	return out
}

// Entities returns the declared entities of one kind.
func (o *Ontology) Entities(kind EntityKind) []Entity {
	var out []Entity
	for _, ax := range o.AxiomsOfKind(AxiomDeclaration) {
		if d := ax.(Declaration); d.Entity.Kind == kind {
			out = append(out, d.Entity)
		}
	}
	return out
}

// apply adds or removes the axiom and reports whether the ontology changed.
func (o *Ontology) apply(c Change) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := c.Axiom.Key()
	_, present := o.axioms[key]
	switch {
	case c.Add && !present:
		o.axioms[key] = c.Axiom
		return true
	case !c.Add && present:
		delete(o.axioms, key)
		return true
	default:
		return false
	}
}

// Signature returns every declared entity, grouped by kind in EntityKinds order.
func (o *Ontology) Signature() []Entity {
	var out []Entity
	for _, kind := range EntityKinds {
		out = append(out, o.Entities(kind)...)
	}
	return out
}
