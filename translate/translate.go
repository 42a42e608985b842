// Package translate maps ontology changes onto idempotent graph statements.
//
// Only named entities cross into the graph. Axioms with anonymous operands
// are skipped, N-ary symmetric axioms expand into one relationship per
// unordered pair of named operands, and declarations additionally produce a
// Notification for the remote relay.
package translate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/ontosync/graph"
	"github.com/c360studio/ontosync/ontology"
)

// ErrUnhandled is returned for axiom kinds that are not synchronized.
var ErrUnhandled = errors.New("unhandled axiom kind")

// Notification announces a declaration change to remote collaborators.
type Notification struct {
	Kind ontology.EntityKind
	Name string
	Add  bool
}

// Result is the outcome of translating one change.
type Result struct {
	Statements []graph.Statement
	// Notification is set for declarations only.
	Notification *Notification
	// Skipped explains why a handled axiom produced no statement.
	Skipped string
}

func skipped(reason string) Result { return Result{Skipped: reason} }

func statements(stmts ...graph.Statement) Result { return Result{Statements: stmts} }

// Translator converts changes into statements. It holds no state between
// calls.
type Translator struct {
	logger *slog.Logger
}

// New creates a translator.
func New(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// Translate maps one change. Unsupported axiom kinds return an error
// wrapping ErrUnhandled; skipped axioms return a Result with no statements
// and a reason.
func (t *Translator) Translate(change ontology.Change) (Result, error) {
	add := change.Add

	var res Result
	switch ax := change.Axiom.(type) {
	case ontology.Declaration:
		res = declaration(ax, add)
	case ontology.SubClassOf:
		res = subClassOf(ax, add)
	case ontology.EquivalentClasses:
		res = pairwise(classNodes(ax.Classes), graph.RelEquivalentTo, add)
	case ontology.DisjointClasses:
		res = pairwise(classNodes(ax.Classes), graph.RelDisjointWith, add)
	case ontology.ObjectPropertyDomain:
		res = domainOrRange(graph.LabelObjectProperty, ax.Property, ax.Domain, graph.RelDomain, graph.AttrDomain, add)
	case ontology.ObjectPropertyRange:
		res = domainOrRange(graph.LabelObjectProperty, ax.Property, ax.Range, graph.RelRange, graph.AttrRange, add)
	case ontology.DataPropertyDomain:
		res = domainOrRange(graph.LabelDataProperty, ax.Property, ax.Domain, graph.RelDomain, graph.AttrDomain, add)
	case ontology.DataPropertyRange:
		res = dataPropertyRange(ax, add)
	case ontology.SubObjectPropertyOf:
		res = subPropertyOf(graph.LabelObjectProperty, ax.Sub, ax.Super, add)
	case ontology.SubDataPropertyOf:
		res = subPropertyOf(graph.LabelDataProperty, ax.Sub, ax.Super, add)
	case ontology.InverseObjectProperties:
		res = inverseOf(ax, add)
	case ontology.EquivalentObjectProperties:
		res = pairwise(propertyNodes(graph.LabelObjectProperty, ax.Properties), graph.RelEquivalentTo, add)
	case ontology.DisjointObjectProperties:
		res = pairwise(propertyNodes(graph.LabelObjectProperty, ax.Properties), graph.RelDisjointWith, add)
	case ontology.EquivalentDataProperties:
		res = pairwise(propertyNodes(graph.LabelDataProperty, ax.Properties), graph.RelEquivalentTo, add)
	case ontology.DisjointDataProperties:
		res = pairwise(propertyNodes(graph.LabelDataProperty, ax.Properties), graph.RelDisjointWith, add)
	case ontology.ClassAssertion:
		res = classAssertion(ax, add)
	case ontology.ObjectPropertyAssertion:
		res = objectAssertion(ax.Property, ax.Subject, ax.Object, false, add)
	case ontology.NegativeObjectPropertyAssertion:
		res = objectAssertion(ax.Property, ax.Subject, ax.Object, true, add)
	case ontology.DataPropertyAssertion:
		res = dataAssertion(ax.Property, ax.Subject, ax.Value, false, add)
	case ontology.NegativeDataPropertyAssertion:
		res = dataAssertion(ax.Property, ax.Subject, ax.Value, true, add)
	case ontology.SameIndividual:
		res = pairwise(individualNodes(ax.Individuals), graph.RelSameAs, add)
	case ontology.DifferentIndividuals:
		res = pairwise(individualNodes(ax.Individuals), graph.RelDifferentFrom, add)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnhandled, change.Axiom.Kind())
	}

	if res.Skipped != "" {
		t.logger.Debug("Skipped axiom",
			"axiom", change.Axiom.String(),
			"reason", res.Skipped)
	}
	return res, nil
}

func node(label graph.Label, iri ontology.IRI) graph.Node {
	return graph.Node{Label: label, Name: ontology.ShortForm(iri)}
}

func classNode(c ontology.ClassExpression) (graph.Node, bool) {
	if !c.IsNamedClass() {
		return graph.Node{}, false
	}
	return node(graph.LabelClass, c.IRI()), true
}

func propertyNode(label graph.Label, p ontology.PropertyExpression) (graph.Node, bool) {
	if !p.IsNamed() {
		return graph.Node{}, false
	}
	return node(label, p.IRI()), true
}

func individualNode(i ontology.Individual) (graph.Node, bool) {
	if !i.IsNamed() {
		return graph.Node{}, false
	}
	return node(graph.LabelIndividual, i.IRI()), true
}

func classNodes(classes []ontology.ClassExpression) []graph.Node {
	var out []graph.Node
	for _, c := range classes {
		if n, ok := classNode(c); ok {
			out = append(out, n)
		}
	}
	return out
}

func propertyNodes(label graph.Label, props []ontology.PropertyExpression) []graph.Node {
	var out []graph.Node
	for _, p := range props {
		if n, ok := propertyNode(label, p); ok {
			out = append(out, n)
		}
	}
	return out
}

func individualNodes(individuals []ontology.Individual) []graph.Node {
	var out []graph.Node
	for _, i := range individuals {
		if n, ok := individualNode(i); ok {
			out = append(out, n)
		}
	}
	return out
}

func edge(from graph.Node, rel string, to graph.Node, add bool) graph.Statement {
	if add {
		return graph.MergeEdge(from, rel, to)
	}
	return graph.DeleteEdge(from, rel, to)
}
