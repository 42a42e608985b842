package graph

import (
	"fmt"
	"strings"
)

// QuoteIdentifier renders s as a backtick-quoted Cypher identifier. Relationship
// types and attribute keys cannot be passed as parameters, so every dynamic
// identifier goes through here.
func QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func nodePattern(variable string, label Label, param string) string {
	return fmt.Sprintf("(%s:%s {name: $%s})", variable, QuoteIdentifier(string(label)), param)
}

// Cypher renders the statement as parameterized Cypher. Entity names and
// literal values are always parameters.
func (s Statement) Cypher() (string, map[string]any) {
	switch s.Op {
	case OpMergeNode:
		return "MERGE " + nodePattern("n", s.From.Label, "name"),
			map[string]any{"name": s.From.Name}

	case OpDeleteNode:
		return "MATCH " + nodePattern("n", s.From.Label, "name") + " DETACH DELETE n",
			map[string]any{"name": s.From.Name}

	case OpMergeEdge:
		rel := QuoteIdentifier(s.Rel)
		var b strings.Builder
		fmt.Fprintf(&b, "MATCH %s, %s ", nodePattern("a", s.From.Label, "from"), nodePattern("b", s.To.Label, "to"))
		switch {
		case s.Mirrored:
			fmt.Fprintf(&b, "MERGE (a)-[:%s]->(b) MERGE (b)-[:%s]->(a)", rel, rel)
		case s.Undirected:
			fmt.Fprintf(&b, "MERGE (a)-[:%s]-(b)", rel)
		default:
			fmt.Fprintf(&b, "MERGE (a)-[:%s]->(b)", rel)
		}
		return b.String(), map[string]any{"from": s.From.Name, "to": s.To.Name}

	case OpDeleteEdge:
		rel := QuoteIdentifier(s.Rel)
		var text string
		switch {
		case s.Mirrored:
			text = fmt.Sprintf("MATCH %s, %s OPTIONAL MATCH (a)-[r1:%s]->(b) OPTIONAL MATCH (b)-[r2:%s]->(a) DELETE r1, r2",
				nodePattern("a", s.From.Label, "from"), nodePattern("b", s.To.Label, "to"), rel, rel)
		case s.Undirected:
			text = fmt.Sprintf("MATCH %s-[r:%s]-%s DELETE r",
				nodePattern("a", s.From.Label, "from"), rel, nodePattern("b", s.To.Label, "to"))
		default:
			text = fmt.Sprintf("MATCH %s-[r:%s]->%s DELETE r",
				nodePattern("a", s.From.Label, "from"), rel, nodePattern("b", s.To.Label, "to"))
		}
		return text, map[string]any{"from": s.From.Name, "to": s.To.Name}

	case OpSetAttr:
		return fmt.Sprintf("MATCH %s SET n.%s = $value", nodePattern("n", s.From.Label, "name"), QuoteIdentifier(s.Attr)),
			map[string]any{"name": s.From.Name, "value": s.Value}

	case OpRemoveAttr:
		return fmt.Sprintf("MATCH %s REMOVE n.%s", nodePattern("n", s.From.Label, "name"), QuoteIdentifier(s.Attr)),
			map[string]any{"name": s.From.Name}

	case OpMergeLiteral:
		return fmt.Sprintf("MATCH %s MERGE %s MERGE (i)-[:%s]->(p) SET i.%s = $value",
				nodePattern("i", s.From.Label, "from"), nodePattern("p", s.To.Label, "to"),
				QuoteIdentifier(s.Rel), QuoteIdentifier(s.Attr)),
			map[string]any{"from": s.From.Name, "to": s.To.Name, "value": s.Value}

	case OpDeleteLiteral:
		return fmt.Sprintf("MATCH %s-[r:%s]->%s DELETE r REMOVE i.%s",
				nodePattern("i", s.From.Label, "from"), QuoteIdentifier(s.Rel),
				nodePattern("p", s.To.Label, "to"), QuoteIdentifier(s.Attr)),
			map[string]any{"from": s.From.Name, "to": s.To.Name}
	}
	return "", nil
}
