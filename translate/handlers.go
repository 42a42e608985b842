package translate

import (
	"slices"
	"strings"

	"github.com/c360studio/ontosync/graph"
	"github.com/c360studio/ontosync/ontology"
)

func declaration(ax ontology.Declaration, add bool) Result {
	n := node(graph.LabelFor(ax.Entity.Kind), ax.Entity.IRI)
	stmt := graph.DeleteNode(n)
	if add {
		stmt = graph.MergeNode(n)
	}
	return Result{
		Statements:   []graph.Statement{stmt},
		Notification: &Notification{Kind: ax.Entity.Kind, Name: n.Name, Add: add},
	}
}

func subClassOf(ax ontology.SubClassOf, add bool) Result {
	sub, ok := classNode(ax.Sub)
	if !ok {
		return skipped("sub class is not a named class")
	}
	super, ok := classNode(ax.Super)
	if !ok {
		return skipped("super class is not a named class")
	}
	return statements(edge(sub, graph.RelSubClassOf, super, add))
}

// pairwise links every unordered pair of distinct nodes, in operand order,
// with a symmetric relationship.
func pairwise(nodes []graph.Node, rel string, add bool) Result {
	var distinct []graph.Node
	for _, n := range nodes {
		if !slices.Contains(distinct, n) {
			distinct = append(distinct, n)
		}
	}
	if len(distinct) < 2 {
		return skipped("fewer than two named operands")
	}

	stmts := make([]graph.Statement, 0, len(distinct)*(len(distinct)-1)/2)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			if add {
				stmts = append(stmts, graph.MergeSymmetric(distinct[i], rel, distinct[j]))
			} else {
				stmts = append(stmts, graph.DeleteSymmetric(distinct[i], rel, distinct[j]))
			}
		}
	}
	return statements(stmts...)
}

// domainOrRange links a property to a class. The universal class carries no
// restriction: adding it clears any stored attribute and removing it leaves
// the graph unchanged.
func domainOrRange(label graph.Label, p ontology.PropertyExpression, c ontology.ClassExpression, rel, attr string, add bool) Result {
	prop, ok := propertyNode(label, p)
	if !ok {
		return skipped("property is not named")
	}
	if c.IsThing() {
		if !add {
			return Result{}
		}
		return statements(graph.RemoveAttr(prop, attr))
	}
	class, ok := classNode(c)
	if !ok {
		return skipped("class is not a named class")
	}
	return statements(edge(prop, rel, class, add))
}

func dataPropertyRange(ax ontology.DataPropertyRange, add bool) Result {
	prop, ok := propertyNode(graph.LabelDataProperty, ax.Property)
	if !ok {
		return skipped("property is not named")
	}
	if !ax.Range.IsDatatype() {
		return skipped("range is not a named datatype")
	}
	if !add {
		return statements(graph.RemoveAttr(prop, graph.AttrRange))
	}
	return statements(graph.SetAttr(prop, graph.AttrRange, ontology.ShortForm(ax.Range.IRI())))
}

func subPropertyOf(label graph.Label, sub, super ontology.PropertyExpression, add bool) Result {
	from, ok := propertyNode(label, sub)
	if !ok {
		return skipped("sub property is not named")
	}
	to, ok := propertyNode(label, super)
	if !ok {
		return skipped("super property is not named")
	}
	return statements(edge(from, graph.RelSubPropertyOf, to, add))
}

func inverseOf(ax ontology.InverseObjectProperties, add bool) Result {
	first, ok := propertyNode(graph.LabelObjectProperty, ax.First)
	if !ok {
		return skipped("property is not named")
	}
	second, ok := propertyNode(graph.LabelObjectProperty, ax.Second)
	if !ok {
		return skipped("inverse property is not named")
	}
	if add {
		return statements(graph.MergeMirrored(first, graph.RelInverseOf, second))
	}
	return statements(graph.DeleteMirrored(first, graph.RelInverseOf, second))
}

func classAssertion(ax ontology.ClassAssertion, add bool) Result {
	ind, ok := individualNode(ax.Individual)
	if !ok {
		return skipped("individual is anonymous")
	}
	class, ok := classNode(ax.Class)
	if !ok {
		return skipped("class is not a named class")
	}
	return statements(edge(ind, graph.RelTypeOf, class, add))
}

func objectAssertion(p ontology.PropertyExpression, subject, object ontology.Individual, negative, add bool) Result {
	if !p.IsNamed() {
		return skipped("property is not named")
	}
	rel := ontology.ShortForm(p.IRI())
	if graph.IsReserved(rel) {
		return skipped("property name collides with a reserved relationship")
	}
	if strings.HasPrefix(rel, graph.NegativePrefix) {
		return skipped("property name collides with the negative assertion prefix")
	}
	if negative {
		rel = graph.NegativeRel(rel)
	}
	from, ok := individualNode(subject)
	if !ok {
		return skipped("subject is anonymous")
	}
	to, ok := individualNode(object)
	if !ok {
		return skipped("object is anonymous")
	}
	return statements(edge(from, rel, to, add))
}

func dataAssertion(p ontology.PropertyExpression, subject ontology.Individual, value ontology.Literal, negative, add bool) Result {
	prop, ok := propertyNode(graph.LabelDataProperty, p)
	if !ok {
		return skipped("property is not named")
	}
	if prop.Name == graph.AttrName {
		return skipped("property name collides with the identity attribute")
	}
	if strings.HasPrefix(prop.Name, graph.NegativeAttrPrefix) {
		return skipped("property name collides with the negative attribute prefix")
	}
	ind, ok := individualNode(subject)
	if !ok {
		return skipped("subject is anonymous")
	}

	rel, attr := graph.RelHasDataProperty, prop.Name
	if negative {
		rel, attr = graph.RelHasNegativeDataProperty, graph.NegativeAttrPrefix+prop.Name
	}
	if add {
		return statements(graph.MergeLiteral(ind, rel, prop, attr, value.Lexical))
	}
	return statements(graph.DeleteLiteral(ind, rel, prop, attr))
}
