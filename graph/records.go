package graph

// NodeRecord is a node read back from the graph.
type NodeRecord struct {
	Name  string
	Attrs map[string]string
}

// EdgeRecord is a relationship read back from the graph, by endpoint names.
type EdgeRecord struct {
	From string
	Rel  string
	To   string
}

// LiteralRecord is a data property assertion read back from the graph.
type LiteralRecord struct {
	Individual string
	Property   string
	Value      string
}
