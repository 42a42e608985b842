// Package graph describes the labeled property graph that mirrors an
// ontology: node labels, relationship types, and the idempotent statements
// that mutate it.
package graph

import (
	"fmt"
	"strings"

	"github.com/c360studio/ontosync/ontology"
)

// Label is a node label. There is one node per distinct (label, name).
type Label string

const (
	LabelClass          Label = "Class"
	LabelObjectProperty Label = "ObjectProperty"
	LabelDataProperty   Label = "DataProperty"
	LabelIndividual     Label = "Individual"
)

// LabelFor returns the node label used for an entity kind.
func LabelFor(kind ontology.EntityKind) Label { return Label(kind) }

// Relationship types with fixed meaning. Object property assertions use the
// property name itself, negative ones the NegativePrefix variant.
const (
	RelSubClassOf              = "SubClassOf"
	RelEquivalentTo            = "EquivalentTo"
	RelDisjointWith            = "DisjointWith"
	RelDomain                  = "Domain"
	RelRange                   = "Range"
	RelSubPropertyOf           = "SubPropertyOf"
	RelInverseOf               = "InverseOf"
	RelTypeOf                  = "TypeOf"
	RelSameAs                  = "SameAs"
	RelDifferentFrom           = "DifferentFrom"
	RelHasDataProperty         = "HasDataProperty"
	RelHasNegativeDataProperty = "HasNegativeDataProperty"
)

// Attribute names.
const (
	AttrName   = "name"
	AttrDomain = "domain"
	AttrRange  = "range"
)

// NegativePrefix marks negative object property assertion relationships;
// NegativeAttrPrefix marks negative data property assertion attributes.
const (
	NegativePrefix     = "Not_"
	NegativeAttrPrefix = "not_"
)

// ReservedRelationships are never interpreted as object property names.
var ReservedRelationships = []string{
	RelSubClassOf, RelEquivalentTo, RelDisjointWith, RelDomain, RelRange,
	RelSubPropertyOf, RelInverseOf, RelTypeOf, RelSameAs, RelDifferentFrom,
	RelHasDataProperty, RelHasNegativeDataProperty,
}

// IsReserved reports whether rel is one of the fixed relationship types.
func IsReserved(rel string) bool {
	for _, r := range ReservedRelationships {
		if r == rel {
			return true
		}
	}
	return false
}

// NegativeRel returns the relationship type for a negative assertion of property.
func NegativeRel(property string) string { return NegativePrefix + property }

// SplitNegative strips NegativePrefix from rel and reports whether it was present.
func SplitNegative(rel string) (string, bool) {
	if strings.HasPrefix(rel, NegativePrefix) && len(rel) > len(NegativePrefix) {
		return rel[len(NegativePrefix):], true
	}
	return rel, false
}

// Node identifies a graph node.
type Node struct {
	Label Label
	Name  string
}

func (n Node) String() string { return fmt.Sprintf("(:%s {name: %q})", n.Label, n.Name) }

// Op is the kind of mutation a Statement performs.
type Op int

const (
	// OpMergeNode creates the node if absent.
	OpMergeNode Op = iota
	// OpDeleteNode removes the node and every relationship touching it.
	OpDeleteNode
	// OpMergeEdge creates the relationship between two existing nodes if absent.
	OpMergeEdge
	// OpDeleteEdge removes the relationship if present.
	OpDeleteEdge
	// OpSetAttr sets an attribute on an existing node.
	OpSetAttr
	// OpRemoveAttr removes an attribute from an existing node.
	OpRemoveAttr
	// OpMergeLiteral links an individual to a data property node, creating
	// the property node if needed, and stores the literal as an attribute on
	// the individual.
	OpMergeLiteral
	// OpDeleteLiteral undoes OpMergeLiteral.
	OpDeleteLiteral
)

var opNames = [...]string{"MergeNode", "DeleteNode", "MergeEdge", "DeleteEdge", "SetAttr", "RemoveAttr", "MergeLiteral", "DeleteLiteral"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Statement is one idempotent graph mutation. Adds are merges and removes are
// match-then-delete, so re-applying a statement never duplicates or fails.
type Statement struct {
	Op   Op
	From Node
	To   Node
	Rel  string
	// Undirected edges match and merge regardless of direction.
	Undirected bool
	// Mirrored edges are written and deleted in both directions.
	Mirrored bool
	Attr     string
	Value    string
}

// MergeNode creates n if absent.
func MergeNode(n Node) Statement { return Statement{Op: OpMergeNode, From: n} }

// DeleteNode detaches and deletes n.
func DeleteNode(n Node) Statement { return Statement{Op: OpDeleteNode, From: n} }

// MergeEdge links from to to with a directed relationship.
func MergeEdge(from Node, rel string, to Node) Statement {
	return Statement{Op: OpMergeEdge, From: from, Rel: rel, To: to}
}

// DeleteEdge removes the directed relationship.
func DeleteEdge(from Node, rel string, to Node) Statement {
	return Statement{Op: OpDeleteEdge, From: from, Rel: rel, To: to}
}

// MergeSymmetric links from and to with a relationship that has no meaningful
// direction.
func MergeSymmetric(from Node, rel string, to Node) Statement {
	s := MergeEdge(from, rel, to)
	s.Undirected = true
	return s
}

// DeleteSymmetric removes a symmetric relationship in whichever direction it
// was stored.
func DeleteSymmetric(from Node, rel string, to Node) Statement {
	s := DeleteEdge(from, rel, to)
	s.Undirected = true
	return s
}

// MergeMirrored writes the relationship in both directions.
func MergeMirrored(from Node, rel string, to Node) Statement {
	s := MergeEdge(from, rel, to)
	s.Mirrored = true
	return s
}

// DeleteMirrored removes both directions of a mirrored relationship.
func DeleteMirrored(from Node, rel string, to Node) Statement {
	s := DeleteEdge(from, rel, to)
	s.Mirrored = true
	return s
}

// SetAttr sets n.attr = value.
func SetAttr(n Node, attr, value string) Statement {
	return Statement{Op: OpSetAttr, From: n, Attr: attr, Value: value}
}

// RemoveAttr removes n.attr.
func RemoveAttr(n Node, attr string) Statement {
	return Statement{Op: OpRemoveAttr, From: n, Attr: attr}
}

// MergeLiteral links individual to property through rel and sets
// individual.attr = value.
func MergeLiteral(individual Node, rel string, property Node, attr, value string) Statement {
	return Statement{Op: OpMergeLiteral, From: individual, Rel: rel, To: property, Attr: attr, Value: value}
}

// DeleteLiteral removes the link and the attribute written by MergeLiteral.
func DeleteLiteral(individual Node, rel string, property Node, attr string) Statement {
	return Statement{Op: OpDeleteLiteral, From: individual, Rel: rel, To: property, Attr: attr}
}

func (s Statement) String() string {
	text, _ := s.Cypher()
	return text
}
