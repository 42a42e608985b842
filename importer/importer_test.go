package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontosync/graph"
	"github.com/c360studio/ontosync/graph/memgraph"
	"github.com/c360studio/ontosync/listener"
	"github.com/c360studio/ontosync/ontology"
)

const base ontology.IRI = "http://example.org/onto"

func iri(name string) ontology.IRI { return ontology.EntityIRI(base, name) }

func decl(kind ontology.EntityKind, name string) ontology.Declaration {
	return ontology.Declaration{Entity: ontology.NewEntity(kind, iri(name))}
}

// sync writes axioms to a fresh in-memory graph through the listener.
func sync(t *testing.T, axioms ...ontology.Axiom) *memgraph.Graph {
	t.Helper()
	g := memgraph.New()
	changes := make([]ontology.Change, len(axioms))
	for i, ax := range axioms {
		changes[i] = ontology.AddAxiom(base, ax)
	}
	require.NoError(t, listener.New(g).Sync(context.Background(), changes))
	return g
}

func importInto(t *testing.T, snap Snapshot) *ontology.Ontology {
	t.Helper()
	m := ontology.NewManager(nil)
	o, err := m.CreateOntology(base)
	require.NoError(t, err)
	require.NoError(t, New().Import(context.Background(), snap, m, base))
	return o
}

func keys(axioms []ontology.Axiom) []string {
	out := make([]string, len(axioms))
	for i, ax := range axioms {
		out[i] = ax.Key()
	}
	return out
}

func TestImport_RoundTrip(t *testing.T) {
	want := []ontology.Axiom{
		decl(ontology.KindClass, "A"),
		decl(ontology.KindClass, "B"),
		decl(ontology.KindIndividual, "i"),
		ontology.SubClassOf{Sub: ontology.Class(iri("B")), Super: ontology.Class(iri("A"))},
		ontology.ClassAssertion{Class: ontology.Class(iri("B")), Individual: ontology.NamedIndividual(iri("i"))},
	}
	g := sync(t, want...)

	o := importInto(t, g)
	assert.ElementsMatch(t, keys(want), keys(o.Axioms()))
}

func TestImport_FullModelRoundTrip(t *testing.T) {
	knows := ontology.ObjectProperty(iri("knows"))
	age := ontology.DataProperty(iri("age"))
	alice, bob := ontology.NamedIndividual(iri("alice")), ontology.NamedIndividual(iri("bob"))
	integer := ontology.XSDNamespace + "integer"

	want := []ontology.Axiom{
		decl(ontology.KindClass, "A"),
		decl(ontology.KindClass, "B"),
		decl(ontology.KindObjectProperty, "knows"),
		decl(ontology.KindObjectProperty, "knownBy"),
		decl(ontology.KindDataProperty, "age"),
		decl(ontology.KindIndividual, "alice"),
		decl(ontology.KindIndividual, "bob"),
		ontology.DisjointClasses{Classes: []ontology.ClassExpression{ontology.Class(iri("A")), ontology.Class(iri("B"))}},
		ontology.ObjectPropertyDomain{Property: knows, Domain: ontology.Class(iri("A"))},
		ontology.ObjectPropertyRange{Property: knows, Range: ontology.Class(iri("B"))},
		ontology.InverseObjectProperties{First: knows, Second: ontology.ObjectProperty(iri("knownBy"))},
		ontology.DataPropertyDomain{Property: age, Domain: ontology.Class(iri("A"))},
		ontology.DataPropertyRange{Property: age, Range: ontology.Datatype(ontology.IRI(integer))},
		ontology.ObjectPropertyAssertion{Property: knows, Subject: alice, Object: bob},
		ontology.DataPropertyAssertion{Property: age, Subject: alice, Value: ontology.Literal{Lexical: "42", Datatype: ontology.IRI(integer)}},
		ontology.NegativeDataPropertyAssertion{Property: age, Subject: bob, Value: ontology.Literal{Lexical: "7", Datatype: ontology.IRI(integer)}},
		ontology.DifferentIndividuals{Individuals: []ontology.Individual{alice, bob}},
	}
	g := sync(t, want...)

	o := importInto(t, g)
	assert.ElementsMatch(t, keys(want), keys(o.Axioms()))
}

func TestImport_NegativeObjectAssertion(t *testing.T) {
	ax := ontology.NegativeObjectPropertyAssertion{
		Property: ontology.ObjectProperty(iri("knows")),
		Subject:  ontology.NamedIndividual(iri("alice")),
		Object:   ontology.NamedIndividual(iri("bob")),
	}
	g := sync(t,
		decl(ontology.KindIndividual, "alice"),
		decl(ontology.KindIndividual, "bob"),
		ax,
	)
	require.True(t, g.HasEdge(
		graph.Node{Label: graph.LabelIndividual, Name: "alice"},
		"Not_knows",
		graph.Node{Label: graph.LabelIndividual, Name: "bob"}))

	o := importInto(t, g)
	assert.True(t, o.Contains(ax))
	assert.Empty(t, o.AxiomsOfKind(ontology.AxiomObjectPropertyAssertion), "negative edge must not become a positive assertion")
	// The property was never declared in the graph; it is created on first reference.
	assert.True(t, o.Contains(decl(ontology.KindObjectProperty, "knows")))
	assert.False(t, o.Contains(decl(ontology.KindObjectProperty, "Not_knows")))
}

func TestImport_PrefixedPropertyNamesDoNotTurnNegative(t *testing.T) {
	a, b := ontology.NamedIndividual(iri("a")), ontology.NamedIndividual(iri("b"))
	g := sync(t,
		decl(ontology.KindObjectProperty, "Not_owns"),
		decl(ontology.KindIndividual, "a"),
		decl(ontology.KindIndividual, "b"),
		ontology.ObjectPropertyAssertion{Property: ontology.ObjectProperty(iri("Not_owns")), Subject: a, Object: b},
	)

	o := importInto(t, g)
	assert.Empty(t, o.AxiomsOfKind(ontology.AxiomNegativeObjectPropertyAssertion))
	assert.False(t, o.Contains(decl(ontology.KindObjectProperty, "owns")))
	assert.True(t, o.Contains(decl(ontology.KindObjectProperty, "Not_owns")))
}

func TestImport_NegativeLiteralKeepsItsValue(t *testing.T) {
	alice := ontology.NamedIndividual(iri("alice"))
	neg := ontology.NegativeDataPropertyAssertion{
		Property: ontology.DataProperty(iri("x")), Subject: alice, Value: ontology.PlainLiteral("2"),
	}
	g := sync(t,
		decl(ontology.KindIndividual, "alice"),
		ontology.DataPropertyAssertion{
			Property: ontology.DataProperty(iri("not_x")), Subject: alice, Value: ontology.PlainLiteral("1"),
		},
		neg,
	)

	o := importInto(t, g)
	assert.True(t, o.Contains(neg))
	assert.Empty(t, o.AxiomsOfKind(ontology.AxiomDataPropertyAssertion), "the colliding positive assertion is never written")
}

func TestImport_UndeclaredDataPropertyAssertion(t *testing.T) {
	ax := ontology.DataPropertyAssertion{
		Property: ontology.DataProperty(iri("age")),
		Subject:  ontology.NamedIndividual(iri("alice")),
		Value:    ontology.PlainLiteral("42"),
	}
	g := sync(t, decl(ontology.KindIndividual, "alice"), ax)

	o := importInto(t, g)
	assert.True(t, o.Contains(ax))
	assert.True(t, o.Contains(decl(ontology.KindDataProperty, "age")))
}

func TestImport_ReservedRelationshipsAreNotProperties(t *testing.T) {
	alice, bob := ontology.NamedIndividual(iri("alice")), ontology.NamedIndividual(iri("bob"))
	g := sync(t,
		decl(ontology.KindIndividual, "alice"),
		decl(ontology.KindIndividual, "bob"),
		ontology.SameIndividual{Individuals: []ontology.Individual{alice, bob}},
	)

	o := importInto(t, g)
	assert.Empty(t, o.Entities(ontology.KindObjectProperty))
	assert.Len(t, o.AxiomsOfKind(ontology.AxiomSameIndividual), 1, "links read from both ends collapse")
}

func TestImport_ThingMapsToUniversalClass(t *testing.T) {
	thing := graph.Node{Label: graph.LabelClass, Name: ontology.ThingName}
	a := graph.Node{Label: graph.LabelClass, Name: "A"}
	g := memgraph.New()
	require.NoError(t, g.Write(context.Background(), []graph.Statement{
		graph.MergeNode(thing),
		graph.MergeNode(a),
		graph.MergeEdge(a, graph.RelSubClassOf, thing),
	}))

	o := importInto(t, g)
	assert.True(t, o.Contains(ontology.SubClassOf{Sub: ontology.Class(iri("A")), Super: ontology.Thing()}))
	assert.False(t, o.Contains(decl(ontology.KindClass, ontology.ThingName)))
	assert.Len(t, o.Entities(ontology.KindClass), 1)
}

func TestImport_PerIndividualQueryCardinality(t *testing.T) {
	g := sync(t,
		decl(ontology.KindIndividual, "a"),
		decl(ontology.KindIndividual, "b"),
		decl(ontology.KindIndividual, "c"),
	)
	importInto(t, g)

	assert.Equal(t, 3, g.Calls("TypesOf"))
	assert.Equal(t, 3, g.Calls("OutgoingAssertions"))
	assert.Equal(t, 6, g.Calls("Peers"), "SameAs and DifferentFrom per individual")
	assert.Equal(t, 2, g.Calls("Literals"))
	assert.Equal(t, 2, g.Calls("Assertions"))
}

func TestImport_MissingOntology(t *testing.T) {
	m := ontology.NewManager(nil)
	err := New().Import(context.Background(), memgraph.New(), m, base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOntologyNotFound)
	assert.ErrorIs(t, err, ontology.ErrOntologyNotFound)
}

type failingSnapshot struct {
	*memgraph.Graph
	err error
}

func (f failingSnapshot) Literals(context.Context, bool) ([]graph.LiteralRecord, error) {
	return nil, f.err
}

func TestImport_ErrorAbortsEverything(t *testing.T) {
	g := sync(t, decl(ontology.KindClass, "A"))
	boom := errors.New("connection reset")

	m := ontology.NewManager(nil)
	o, err := m.CreateOntology(base)
	require.NoError(t, err)

	err = New().Import(context.Background(), failingSnapshot{Graph: g, err: boom}, m, base)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, o.Len(), "nothing is applied when a step fails")
}

func TestCache_EnsureDeclaresOnce(t *testing.T) {
	set := newChangeSet(base)
	c := newCache(base, set)
	assert.Zero(t, c.Len())

	first := c.Ensure(ontology.KindClass, "A")
	second := c.Ensure(ontology.KindClass, "A")
	assert.Equal(t, first, second)
	assert.Len(t, set.changes, 1)
	assert.Equal(t, iri("A"), first.IRI)
	assert.Equal(t, 1, c.Len())

	// Same name, different kind, is a different entity.
	c.Ensure(ontology.KindIndividual, "A")
	assert.Len(t, set.changes, 2)
}
