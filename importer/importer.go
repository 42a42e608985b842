// Package importer reconstructs an ontology from a full graph snapshot.
//
// The import runs in a fixed, dependency-respecting order and applies every
// synthesized axiom as one atomic batch. Per-individual steps issue one
// snapshot query per individual, which bounds the practical model size.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/ontosync/graph"
	"github.com/c360studio/ontosync/metrics"
	"github.com/c360studio/ontosync/ontology"
)

// ErrOntologyNotFound is returned when the target ontology does not exist.
var ErrOntologyNotFound = ontology.ErrOntologyNotFound

// Snapshot is the read side of a graph store.
type Snapshot interface {
	// Nodes returns every node carrying label.
	Nodes(ctx context.Context, label graph.Label) ([]graph.NodeRecord, error)
	// Edges returns the relationships of type rel between the two labels.
	Edges(ctx context.Context, from graph.Label, rel string, to graph.Label) ([]graph.EdgeRecord, error)
	// TypesOf returns the classes an individual is asserted to belong to.
	TypesOf(ctx context.Context, individual string) ([]string, error)
	// OutgoingAssertions returns the non-reserved relationships from an
	// individual to other individuals.
	OutgoingAssertions(ctx context.Context, individual string) ([]graph.EdgeRecord, error)
	// Peers returns the individuals linked to individual by rel in either
	// direction.
	Peers(ctx context.Context, individual, rel string) ([]string, error)
	// Literals returns every positive or negative data property assertion.
	Literals(ctx context.Context, negative bool) ([]graph.LiteralRecord, error)
	// Assertions returns every positive or negative object property
	// assertion between individuals.
	Assertions(ctx context.Context, negative bool) ([]graph.EdgeRecord, error)
}

// Importer rebuilds ontologies from graph snapshots.
type Importer struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// WithMetrics records imported axiom counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(im *Importer) { im.metrics = m }
}

// New creates an importer.
func New(opts ...Option) *Importer {
	im := &Importer{}
	for _, opt := range opts {
		opt(im)
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	return im
}

// run holds the state of one import.
type run struct {
	snap       Snapshot
	changes    *changeSet
	cache      *cache
	dataRanges map[string]ontology.IRI
}

// Import reads the whole snapshot and adds the reconstructed axioms to the
// ontology identified by iri. Either every axiom is applied or none is.
func (im *Importer) Import(ctx context.Context, snap Snapshot, manager *ontology.Manager, iri ontology.IRI) error {
	if _, ok := manager.Ontology(iri); !ok {
		return fmt.Errorf("import into %s: %w", iri, ErrOntologyNotFound)
	}

	changes := newChangeSet(iri)
	r := &run{
		snap:       snap,
		changes:    changes,
		cache:      newCache(iri, changes),
		dataRanges: make(map[string]ontology.IRI),
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"entities", r.entities},
		{"class relationships", r.classRelationships},
		{"property relationships", r.propertyRelationships},
		{"individuals", r.individuals},
		{"data assertions", r.dataAssertions},
		{"object assertions", r.objectAssertions},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("import %s: %w", step.name, err)
		}
	}

	effective, err := manager.ApplyChanges(ctx, changes.changes)
	if err != nil {
		return fmt.Errorf("apply imported axioms: %w", err)
	}
	im.metrics.RecordImport(len(effective))

	im.logger.Info("Imported ontology from graph",
		"ontology", iri,
		"entities", r.cache.Len(),
		"axioms", len(changes.changes),
		"applied", len(effective))
	return nil
}

// entities declares classes, object properties and data properties.
func (r *run) entities(ctx context.Context) error {
	classes, err := r.snap.Nodes(ctx, graph.LabelClass)
	if err != nil {
		return err
	}
	for _, n := range classes {
		if n.Name == ontology.ThingName {
			continue
		}
		r.cache.Ensure(ontology.KindClass, n.Name)
	}

	props, err := r.snap.Nodes(ctx, graph.LabelObjectProperty)
	if err != nil {
		return err
	}
	for _, n := range props {
		r.cache.Ensure(ontology.KindObjectProperty, n.Name)
	}

	dataProps, err := r.snap.Nodes(ctx, graph.LabelDataProperty)
	if err != nil {
		return err
	}
	for _, n := range dataProps {
		prop := r.cache.dataProperty(n.Name)
		if rng, ok := n.Attrs[graph.AttrRange]; ok && rng != "" {
			dt := ontology.DatatypeIRI(rng)
			r.dataRanges[n.Name] = dt
			r.changes.add(ontology.DataPropertyRange{Property: prop, Range: ontology.Datatype(dt)})
		}
	}
	return nil
}

// edges runs fn for every relationship of type rel between the two labels.
func (r *run) edges(ctx context.Context, from graph.Label, rel string, to graph.Label, fn func(graph.EdgeRecord)) error {
	records, err := r.snap.Edges(ctx, from, rel, to)
	if err != nil {
		return fmt.Errorf("read %s edges: %w", rel, err)
	}
	for _, rec := range records {
		fn(rec)
	}
	return nil
}

func (r *run) classRelationships(ctx context.Context) error {
	c := r.cache
	err := r.edges(ctx, graph.LabelClass, graph.RelSubClassOf, graph.LabelClass, func(e graph.EdgeRecord) {
		if e.From == ontology.ThingName {
			return
		}
		r.changes.add(ontology.SubClassOf{Sub: c.class(e.From), Super: c.class(e.To)})
	})
	if err != nil {
		return err
	}

	err = r.edges(ctx, graph.LabelClass, graph.RelEquivalentTo, graph.LabelClass, func(e graph.EdgeRecord) {
		if e.From != e.To {
			r.changes.add(ontology.EquivalentClasses{Classes: []ontology.ClassExpression{c.class(e.From), c.class(e.To)}})
		}
	})
	if err != nil {
		return err
	}

	return r.edges(ctx, graph.LabelClass, graph.RelDisjointWith, graph.LabelClass, func(e graph.EdgeRecord) {
		if e.From != e.To {
			r.changes.add(ontology.DisjointClasses{Classes: []ontology.ClassExpression{c.class(e.From), c.class(e.To)}})
		}
	})
}

func (r *run) propertyRelationships(ctx context.Context) error {
	c := r.cache
	op, dp := graph.LabelObjectProperty, graph.LabelDataProperty

	type query struct {
		from graph.Label
		rel  string
		to   graph.Label
		fn   func(graph.EdgeRecord)
	}
	queries := []query{
		{op, graph.RelDomain, graph.LabelClass, func(e graph.EdgeRecord) {
			r.changes.add(ontology.ObjectPropertyDomain{Property: c.objectProperty(e.From), Domain: c.class(e.To)})
		}},
		{op, graph.RelRange, graph.LabelClass, func(e graph.EdgeRecord) {
			r.changes.add(ontology.ObjectPropertyRange{Property: c.objectProperty(e.From), Range: c.class(e.To)})
		}},
		{op, graph.RelSubPropertyOf, op, func(e graph.EdgeRecord) {
			r.changes.add(ontology.SubObjectPropertyOf{Sub: c.objectProperty(e.From), Super: c.objectProperty(e.To)})
		}},
		{op, graph.RelInverseOf, op, func(e graph.EdgeRecord) {
			r.changes.add(ontology.InverseObjectProperties{First: c.objectProperty(e.From), Second: c.objectProperty(e.To)})
		}},
		{op, graph.RelEquivalentTo, op, func(e graph.EdgeRecord) {
			r.changes.add(ontology.EquivalentObjectProperties{Properties: []ontology.PropertyExpression{c.objectProperty(e.From), c.objectProperty(e.To)}})
		}},
		{op, graph.RelDisjointWith, op, func(e graph.EdgeRecord) {
			r.changes.add(ontology.DisjointObjectProperties{Properties: []ontology.PropertyExpression{c.objectProperty(e.From), c.objectProperty(e.To)}})
		}},
		{dp, graph.RelDomain, graph.LabelClass, func(e graph.EdgeRecord) {
			r.changes.add(ontology.DataPropertyDomain{Property: c.dataProperty(e.From), Domain: c.class(e.To)})
		}},
		{dp, graph.RelSubPropertyOf, dp, func(e graph.EdgeRecord) {
			r.changes.add(ontology.SubDataPropertyOf{Sub: c.dataProperty(e.From), Super: c.dataProperty(e.To)})
		}},
		{dp, graph.RelEquivalentTo, dp, func(e graph.EdgeRecord) {
			r.changes.add(ontology.EquivalentDataProperties{Properties: []ontology.PropertyExpression{c.dataProperty(e.From), c.dataProperty(e.To)}})
		}},
		{dp, graph.RelDisjointWith, dp, func(e graph.EdgeRecord) {
			r.changes.add(ontology.DisjointDataProperties{Properties: []ontology.PropertyExpression{c.dataProperty(e.From), c.dataProperty(e.To)}})
		}},
	}
	for _, q := range queries {
		if err := r.edges(ctx, q.from, q.rel, q.to, q.fn); err != nil {
			return err
		}
	}
	return nil
}

// individuals declares every individual, then reads its types, outgoing
// assertions and identity links one individual at a time.
func (r *run) individuals(ctx context.Context) error {
	c := r.cache
	nodes, err := r.snap.Nodes(ctx, graph.LabelIndividual)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		c.Ensure(ontology.KindIndividual, n.Name)
	}

	for _, n := range nodes {
		self := c.individual(n.Name)

		types, err := r.snap.TypesOf(ctx, n.Name)
		if err != nil {
			return fmt.Errorf("read types of %s: %w", n.Name, err)
		}
		for _, class := range types {
			r.changes.add(ontology.ClassAssertion{Class: c.class(class), Individual: self})
		}

		out, err := r.snap.OutgoingAssertions(ctx, n.Name)
		if err != nil {
			return fmt.Errorf("read assertions of %s: %w", n.Name, err)
		}
		for _, e := range out {
			r.objectAssertion(e)
		}

		same, err := r.snap.Peers(ctx, n.Name, graph.RelSameAs)
		if err != nil {
			return fmt.Errorf("read %s of %s: %w", graph.RelSameAs, n.Name, err)
		}
		for _, peer := range same {
			if peer != n.Name {
				r.changes.add(ontology.SameIndividual{Individuals: []ontology.Individual{self, c.individual(peer)}})
			}
		}

		different, err := r.snap.Peers(ctx, n.Name, graph.RelDifferentFrom)
		if err != nil {
			return fmt.Errorf("read %s of %s: %w", graph.RelDifferentFrom, n.Name, err)
		}
		for _, peer := range different {
			if peer != n.Name {
				r.changes.add(ontology.DifferentIndividuals{Individuals: []ontology.Individual{self, c.individual(peer)}})
			}
		}
	}
	return nil
}

// objectAssertion interprets a relationship between two individuals as a
// positive assertion, or a negative one when it carries the negative prefix.
func (r *run) objectAssertion(e graph.EdgeRecord) {
	if graph.IsReserved(e.Rel) {
		return
	}
	c := r.cache
	name, negative := graph.SplitNegative(e.Rel)
	prop := c.objectProperty(name)
	subject, object := c.individual(e.From), c.individual(e.To)
	if negative {
		r.changes.add(ontology.NegativeObjectPropertyAssertion{Property: prop, Subject: subject, Object: object})
		return
	}
	r.changes.add(ontology.ObjectPropertyAssertion{Property: prop, Subject: subject, Object: object})
}

func (r *run) literal(property, value string) ontology.Literal {
	if dt, ok := r.dataRanges[property]; ok {
		return ontology.Literal{Lexical: value, Datatype: dt}
	}
	return ontology.PlainLiteral(value)
}

func (r *run) dataAssertions(ctx context.Context) error {
	c := r.cache
	for _, negative := range []bool{false, true} {
		records, err := r.snap.Literals(ctx, negative)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.Property == graph.AttrName {
				continue
			}
			prop, subject, value := c.dataProperty(rec.Property), c.individual(rec.Individual), r.literal(rec.Property, rec.Value)
			if negative {
				r.changes.add(ontology.NegativeDataPropertyAssertion{Property: prop, Subject: subject, Value: value})
			} else {
				r.changes.add(ontology.DataPropertyAssertion{Property: prop, Subject: subject, Value: value})
			}
		}
	}
	return nil
}

func (r *run) objectAssertions(ctx context.Context) error {
	for _, negative := range []bool{false, true} {
		records, err := r.snap.Assertions(ctx, negative)
		if err != nil {
			return err
		}
		for _, e := range records {
			r.objectAssertion(e)
		}
	}
	return nil
}
