// Package ontology provides the in-memory logical model that ontosync keeps
// synchronized with the graph store: entities, class and property
// expressions, axioms, changes, and the single-writer Manager that applies
// them.
package ontology

import "strings"

// IRI is a global entity identifier.
type IRI string

// Well-known namespaces.
const (
	OWLNamespace = "http://www.w3.org/2002/07/owl#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
)

// Built-in classes.
const (
	OWLThing   IRI = OWLNamespace + "Thing"
	OWLNothing IRI = OWLNamespace + "Nothing"
)

// ThingName is the short form reserved for the universal class.
const ThingName = "Thing"

func (i IRI) String() string { return string(i) }

// ShortForm derives the graph-local name of an IRI: the suffix after the
// last '#', or after the last '/' when there is no '#'. An IRI with neither
// is returned unchanged.
func ShortForm(iri IRI) string {
	s := string(iri)
	idx := strings.LastIndexByte(s, '#')
	if idx == -1 {
		idx = strings.LastIndexByte(s, '/')
	}
	if idx == -1 {
		return s
	}
	return s[idx+1:]
}

// EntityIRI rebuilds the full identifier of an entity named name inside the
// ontology identified by base.
func EntityIRI(base IRI, name string) IRI {
	return IRI(strings.TrimSuffix(string(base), "#") + "#" + name)
}

// DatatypeIRI maps a stored datatype short name back to its IRI. OWL defines
// real and rational; every other name is taken from XML Schema.
func DatatypeIRI(name string) IRI {
	if name == "real" || name == "rational" {
		return IRI(OWLNamespace + name)
	}
	return IRI(XSDNamespace + name)
}
