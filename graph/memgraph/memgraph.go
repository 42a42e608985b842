// Package memgraph is an in-memory labeled property graph. It executes the
// same statements as the Neo4j session and answers the same snapshot
// queries, which makes it the backend for tests and for offline runs.
package memgraph

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/c360studio/ontosync/graph"
)

type edge struct {
	From graph.Node
	Rel  string
	To   graph.Node
}

type state struct {
	nodes map[graph.Node]map[string]string
	edges map[edge]struct{}
}

func newState() state {
	return state{
		nodes: make(map[graph.Node]map[string]string),
		edges: make(map[edge]struct{}),
	}
}

func (s state) clone() state {
	c := state{
		nodes: make(map[graph.Node]map[string]string, len(s.nodes)),
		edges: maps.Clone(s.edges),
	}
	for n, attrs := range s.nodes {
		c.nodes[n] = maps.Clone(attrs)
	}
	return c
}

// Graph is a concurrency-safe in-memory graph.
type Graph struct {
	mu    sync.RWMutex
	state state
	calls map[string]int

	// FailOn, when set, is consulted before each statement of a write. A
	// non-nil error aborts the write and leaves the graph untouched.
	FailOn func(graph.Statement) error
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{state: newState(), calls: make(map[string]int)}
}

// Write executes stmts as one transaction: either every statement takes
// effect or none does.
func (g *Graph) Write(ctx context.Context, stmts []graph.Statement) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Write"]++

	next := g.state.clone()
	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.FailOn != nil {
			if err := g.FailOn(stmt); err != nil {
				return fmt.Errorf("statement %d %s: %w", i, stmt.Op, err)
			}
		}
		next.apply(stmt)
	}
	g.state = next
	return nil
}

func (s state) has(n graph.Node) bool {
	_, ok := s.nodes[n]
	return ok
}

func (s state) hasEdge(from graph.Node, rel string, to graph.Node) bool {
	_, ok := s.edges[edge{From: from, Rel: rel, To: to}]
	return ok
}

func (s state) apply(stmt graph.Statement) {
	from, to, rel := stmt.From, stmt.To, stmt.Rel

	switch stmt.Op {
	case graph.OpMergeNode:
		if !s.has(from) {
			s.nodes[from] = map[string]string{}
		}

	case graph.OpDeleteNode:
		delete(s.nodes, from)
		for e := range s.edges {
			if e.From == from || e.To == from {
				delete(s.edges, e)
			}
		}

	case graph.OpMergeEdge:
		if !s.has(from) || !s.has(to) {
			return
		}
		switch {
		case stmt.Mirrored:
			s.edges[edge{from, rel, to}] = struct{}{}
			s.edges[edge{to, rel, from}] = struct{}{}
		case stmt.Undirected:
			if !s.hasEdge(from, rel, to) && !s.hasEdge(to, rel, from) {
				s.edges[edge{from, rel, to}] = struct{}{}
			}
		default:
			s.edges[edge{from, rel, to}] = struct{}{}
		}

	case graph.OpDeleteEdge:
		delete(s.edges, edge{from, rel, to})
		if stmt.Mirrored || stmt.Undirected {
			delete(s.edges, edge{to, rel, from})
		}

	case graph.OpSetAttr:
		if attrs, ok := s.nodes[from]; ok {
			attrs[stmt.Attr] = stmt.Value
		}

	case graph.OpRemoveAttr:
		if attrs, ok := s.nodes[from]; ok {
			delete(attrs, stmt.Attr)
		}

	case graph.OpMergeLiteral:
		if !s.has(from) {
			return
		}
		if !s.has(to) {
			s.nodes[to] = map[string]string{}
		}
		s.edges[edge{from, rel, to}] = struct{}{}
		s.nodes[from][stmt.Attr] = stmt.Value

	case graph.OpDeleteLiteral:
		if !s.hasEdge(from, rel, to) {
			return
		}
		delete(s.edges, edge{from, rel, to})
		delete(s.nodes[from], stmt.Attr)
	}
}

// Calls returns how many times the named method has been invoked.
func (g *Graph) Calls(method string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.calls[method]
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(n graph.Node) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.has(n)
}

// HasEdge reports whether the directed relationship exists.
func (g *Graph) HasEdge(from graph.Node, rel string, to graph.Node) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.hasEdge(from, rel, to)
}

// Attr returns a node attribute.
func (g *Graph) Attr(n graph.Node, key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.state.nodes[n][key]
	return v, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.state.nodes)
}

// EdgeCount returns the number of stored relationships.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.state.edges)
}

// Dump returns a deterministic textual form of the whole graph, used to
// compare graph states.
func (g *Graph) Dump() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for n, attrs := range g.state.nodes {
		out = append(out, n.String())
		for k, v := range attrs {
			out = append(out, fmt.Sprintf("%s.%s=%q", n, k, v))
		}
	}
	for e := range g.state.edges {
		out = append(out, fmt.Sprintf("%s-[:%s]->%s", e.From, e.Rel, e.To))
	}
	slices.Sort(out)
	return out
}

func sortEdges(edges []graph.EdgeRecord) {
	slices.SortFunc(edges, func(a, b graph.EdgeRecord) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.Rel, b.Rel), cmp.Compare(a.To, b.To))
	})
}
