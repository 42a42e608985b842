package memgraph

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/c360studio/ontosync/graph"
)

// Nodes returns every node carrying label, ordered by name.
func (g *Graph) Nodes(_ context.Context, label graph.Label) ([]graph.NodeRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Nodes"]++

	var out []graph.NodeRecord
	for n, attrs := range g.state.nodes {
		if n.Label == label {
			out = append(out, graph.NodeRecord{Name: n.Name, Attrs: maps.Clone(attrs)})
		}
	}
	slices.SortFunc(out, func(a, b graph.NodeRecord) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// Edges returns the stored relationships of type rel between the two labels.
func (g *Graph) Edges(_ context.Context, from graph.Label, rel string, to graph.Label) ([]graph.EdgeRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Edges"]++

	var out []graph.EdgeRecord
	for e := range g.state.edges {
		if e.Rel == rel && e.From.Label == from && e.To.Label == to {
			out = append(out, graph.EdgeRecord{From: e.From.Name, Rel: e.Rel, To: e.To.Name})
		}
	}
	sortEdges(out)
	return out, nil
}

// TypesOf returns the classes the individual is asserted to belong to.
func (g *Graph) TypesOf(_ context.Context, individual string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["TypesOf"]++

	subject := graph.Node{Label: graph.LabelIndividual, Name: individual}
	var out []string
	for e := range g.state.edges {
		if e.From == subject && e.Rel == graph.RelTypeOf && e.To.Label == graph.LabelClass {
			out = append(out, e.To.Name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// OutgoingAssertions returns the individual-to-individual relationships
// leaving individual whose type is not reserved.
func (g *Graph) OutgoingAssertions(_ context.Context, individual string) ([]graph.EdgeRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["OutgoingAssertions"]++

	subject := graph.Node{Label: graph.LabelIndividual, Name: individual}
	var out []graph.EdgeRecord
	for e := range g.state.edges {
		if e.From == subject && e.To.Label == graph.LabelIndividual && !graph.IsReserved(e.Rel) {
			out = append(out, graph.EdgeRecord{From: individual, Rel: e.Rel, To: e.To.Name})
		}
	}
	sortEdges(out)
	return out, nil
}

// Peers returns the individuals linked to individual by rel in either
// direction.
func (g *Graph) Peers(_ context.Context, individual, rel string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Peers"]++

	self := graph.Node{Label: graph.LabelIndividual, Name: individual}
	var out []string
	for e := range g.state.edges {
		if e.Rel != rel {
			continue
		}
		switch {
		case e.From == self && e.To.Label == graph.LabelIndividual:
			out = append(out, e.To.Name)
		case e.To == self && e.From.Label == graph.LabelIndividual:
			out = append(out, e.From.Name)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Literals returns every positive or negative data property assertion.
func (g *Graph) Literals(_ context.Context, negative bool) ([]graph.LiteralRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Literals"]++

	rel, prefix := graph.RelHasDataProperty, ""
	if negative {
		rel, prefix = graph.RelHasNegativeDataProperty, graph.NegativeAttrPrefix
	}

	var out []graph.LiteralRecord
	for e := range g.state.edges {
		if e.Rel != rel || e.From.Label != graph.LabelIndividual || e.To.Label != graph.LabelDataProperty {
			continue
		}
		value, ok := g.state.nodes[e.From][prefix+e.To.Name]
		if !ok {
			continue
		}
		out = append(out, graph.LiteralRecord{Individual: e.From.Name, Property: e.To.Name, Value: value})
	}
	slices.SortFunc(out, func(a, b graph.LiteralRecord) int {
		return cmp.Or(cmp.Compare(a.Individual, b.Individual), cmp.Compare(a.Property, b.Property))
	})
	return out, nil
}

// Assertions returns every positive or negative object property assertion
// edge between individuals.
func (g *Graph) Assertions(_ context.Context, negative bool) ([]graph.EdgeRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Assertions"]++

	var out []graph.EdgeRecord
	for e := range g.state.edges {
		if e.From.Label != graph.LabelIndividual || e.To.Label != graph.LabelIndividual || graph.IsReserved(e.Rel) {
			continue
		}
		if strings.HasPrefix(e.Rel, graph.NegativePrefix) != negative {
			continue
		}
		out = append(out, graph.EdgeRecord{From: e.From.Name, Rel: e.Rel, To: e.To.Name})
	}
	sortEdges(out)
	return out, nil
}
