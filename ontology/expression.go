package ontology

import "fmt"

// ClassExpression is either a named class or an anonymous class expression.
// Anonymous expressions carry only a description; they are never synchronized.
type ClassExpression struct {
	iri  IRI
	anon string
}

// Class returns the named class expression for iri.
func Class(iri IRI) ClassExpression { return ClassExpression{iri: iri} }

// Thing returns the universal class.
func Thing() ClassExpression { return Class(OWLThing) }

// Nothing returns the empty class.
func Nothing() ClassExpression { return Class(OWLNothing) }

// AnonymousClass returns an unnamed class expression such as
// "ObjectSomeValuesFrom(<p> <C>)".
func AnonymousClass(description string) ClassExpression {
	return ClassExpression{anon: description}
}

func (c ClassExpression) IsNamed() bool   { return c.iri != "" }
func (c ClassExpression) IsThing() bool   { return c.iri == OWLThing }
func (c ClassExpression) IsNothing() bool { return c.iri == OWLNothing }

// IsNamedClass reports whether c names a class other than the built-in
// owl:Thing and owl:Nothing.
func (c ClassExpression) IsNamedClass() bool {
	return c.IsNamed() && !c.IsThing() && !c.IsNothing()
}

// IRI returns the class IRI, or "" for anonymous expressions.
func (c ClassExpression) IRI() IRI { return c.iri }

func (c ClassExpression) String() string {
	if c.IsNamed() {
		return "<" + string(c.iri) + ">"
	}
	return c.anon
}

// PropertyExpression is a named object or data property, or an anonymous
// property expression (for example an inverse).
type PropertyExpression struct {
	iri  IRI
	anon string
}

// ObjectProperty returns the named object property expression for iri.
func ObjectProperty(iri IRI) PropertyExpression { return PropertyExpression{iri: iri} }

// DataProperty returns the named data property expression for iri.
func DataProperty(iri IRI) PropertyExpression { return PropertyExpression{iri: iri} }

// InverseProperty returns the anonymous ObjectInverseOf expression of iri.
func InverseProperty(iri IRI) PropertyExpression {
	return PropertyExpression{anon: fmt.Sprintf("ObjectInverseOf(<%s>)", iri)}
}

func (p PropertyExpression) IsNamed() bool { return p.iri != "" }
func (p PropertyExpression) IRI() IRI      { return p.iri }

func (p PropertyExpression) String() string {
	if p.IsNamed() {
		return "<" + string(p.iri) + ">"
	}
	return p.anon
}

// Individual is a named individual or an anonymous (blank node) individual.
type Individual struct {
	iri    IRI
	nodeID string
}

// NamedIndividual returns the named individual for iri.
func NamedIndividual(iri IRI) Individual { return Individual{iri: iri} }

// AnonymousIndividual returns a blank-node individual.
func AnonymousIndividual(nodeID string) Individual { return Individual{nodeID: nodeID} }

func (i Individual) IsNamed() bool { return i.iri != "" }
func (i Individual) IRI() IRI      { return i.iri }

func (i Individual) String() string {
	if i.IsNamed() {
		return "<" + string(i.iri) + ">"
	}
	return "_:" + i.nodeID
}

// DataRange is a named datatype or an anonymous data range.
type DataRange struct {
	iri  IRI
	anon string
}

// Datatype returns the named datatype for iri.
func Datatype(iri IRI) DataRange { return DataRange{iri: iri} }

// AnonymousDataRange returns a data range such as "DataOneOf(...)".
func AnonymousDataRange(description string) DataRange { return DataRange{anon: description} }

func (d DataRange) IsDatatype() bool { return d.iri != "" }
func (d DataRange) IRI() IRI         { return d.iri }

func (d DataRange) String() string {
	if d.IsDatatype() {
		return "<" + string(d.iri) + ">"
	}
	return d.anon
}

// Literal is a data value with its datatype.
type Literal struct {
	Lexical  string
	Datatype IRI
}

// PlainLiteral returns an xsd:string literal.
func PlainLiteral(lexical string) Literal {
	return Literal{Lexical: lexical, Datatype: XSDNamespace + "string"}
}

func (l Literal) String() string {
	dt := l.Datatype
	if dt == "" {
		dt = XSDNamespace + "string"
	}
	return fmt.Sprintf("%q^^<%s>", l.Lexical, dt)
}
