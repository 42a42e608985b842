package graphstore

import (
	"context"
	"fmt"

	"github.com/c360studio/ontosync/graph"
)

func label(l graph.Label) string { return graph.QuoteIdentifier(string(l)) }

var individual = label(graph.LabelIndividual)

// Nodes returns every node carrying lbl with its attributes.
func (s *Session) Nodes(ctx context.Context, lbl graph.Label) ([]graph.NodeRecord, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN n.name AS name, properties(n) AS attrs ORDER BY name", label(lbl))
	records, err := s.read(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	out := make([]graph.NodeRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, graph.NodeRecord{
			Name:  getStringFromRecord(rec, "name"),
			Attrs: getAttrsFromRecord(rec, "attrs"),
		})
	}
	return out, nil
}

// Edges returns the relationships of type rel between the two labels, in
// their stored direction.
func (s *Session) Edges(ctx context.Context, from graph.Label, rel string, to graph.Label) ([]graph.EdgeRecord, error) {
	query := fmt.Sprintf("MATCH (a:%s)-[:%s]->(b:%s) RETURN a.name AS source, b.name AS target",
		label(from), graph.QuoteIdentifier(rel), label(to))
	records, err := s.read(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	out := make([]graph.EdgeRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, graph.EdgeRecord{
			From: getStringFromRecord(rec, "source"),
			Rel:  rel,
			To:   getStringFromRecord(rec, "target"),
		})
	}
	return out, nil
}

// TypesOf returns the classes the individual is asserted to belong to.
func (s *Session) TypesOf(ctx context.Context, name string) ([]string, error) {
	query := fmt.Sprintf("MATCH (i:%s {name: $name})-[:%s]->(c:%s) RETURN c.name AS class",
		individual, graph.QuoteIdentifier(graph.RelTypeOf), label(graph.LabelClass))
	return s.names(ctx, query, map[string]any{"name": name}, "class")
}

// OutgoingAssertions returns the non-reserved relationships from the
// individual to other individuals.
func (s *Session) OutgoingAssertions(ctx context.Context, name string) ([]graph.EdgeRecord, error) {
	query := fmt.Sprintf("MATCH (i:%s {name: $name})-[r]->(t:%s) WHERE NOT type(r) IN $reserved "+
		"RETURN i.name AS source, type(r) AS rel, t.name AS target", individual, individual)
	return s.assertions(ctx, query, map[string]any{"name": name, "reserved": graph.ReservedRelationships})
}

// Peers returns the individuals linked to the individual by rel in either
// direction.
func (s *Session) Peers(ctx context.Context, name, rel string) ([]string, error) {
	query := fmt.Sprintf("MATCH (i:%s {name: $name})-[:%s]-(o:%s) RETURN DISTINCT o.name AS other",
		individual, graph.QuoteIdentifier(rel), individual)
	return s.names(ctx, query, map[string]any{"name": name}, "other")
}

// Literals returns every positive or negative data property assertion with
// the value stored on the individual.
func (s *Session) Literals(ctx context.Context, negative bool) ([]graph.LiteralRecord, error) {
	rel, attr := graph.RelHasDataProperty, "dp.name"
	if negative {
		rel, attr = graph.RelHasNegativeDataProperty, "$prefix + dp.name"
	}
	query := fmt.Sprintf("MATCH (i:%s)-[:%s]->(dp:%s) WHERE i[%s] IS NOT NULL "+
		"RETURN i.name AS individual, dp.name AS property, i[%s] AS value",
		individual, graph.QuoteIdentifier(rel), label(graph.LabelDataProperty), attr, attr)

	records, err := s.read(ctx, query, map[string]any{"prefix": graph.NegativeAttrPrefix})
	if err != nil {
		return nil, err
	}
	out := make([]graph.LiteralRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, graph.LiteralRecord{
			Individual: getStringFromRecord(rec, "individual"),
			Property:   getStringFromRecord(rec, "property"),
			Value:      getStringFromRecord(rec, "value"),
		})
	}
	return out, nil
}

// Assertions returns every positive or negative object property assertion
// between individuals. Reserved relationship types are excluded.
func (s *Session) Assertions(ctx context.Context, negative bool) ([]graph.EdgeRecord, error) {
	cond := "NOT type(r) STARTS WITH $prefix"
	if negative {
		cond = "type(r) STARTS WITH $prefix"
	}
	query := fmt.Sprintf("MATCH (a:%s)-[r]->(b:%s) WHERE NOT type(r) IN $reserved AND %s "+
		"RETURN a.name AS source, type(r) AS rel, b.name AS target", individual, individual, cond)
	return s.assertions(ctx, query, map[string]any{
		"reserved": graph.ReservedRelationships,
		"prefix":   graph.NegativePrefix,
	})
}

func (s *Session) names(ctx context.Context, query string, params map[string]any, key string) ([]string, error) {
	records, err := s.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, getStringFromRecord(rec, key))
	}
	return out, nil
}

func (s *Session) assertions(ctx context.Context, query string, params map[string]any) ([]graph.EdgeRecord, error) {
	records, err := s.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]graph.EdgeRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, graph.EdgeRecord{
			From: getStringFromRecord(rec, "source"),
			Rel:  getStringFromRecord(rec, "rel"),
			To:   getStringFromRecord(rec, "target"),
		})
	}
	return out, nil
}
