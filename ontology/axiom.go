package ontology

import (
	"slices"
	"strings"
)

// AxiomKind identifies the logical form of an axiom.
type AxiomKind int

const (
	AxiomDeclaration AxiomKind = iota
	AxiomSubClassOf
	AxiomEquivalentClasses
	AxiomDisjointClasses
	AxiomObjectPropertyDomain
	AxiomObjectPropertyRange
	AxiomDataPropertyDomain
	AxiomDataPropertyRange
	AxiomSubObjectPropertyOf
	AxiomSubDataPropertyOf
	AxiomInverseObjectProperties
	AxiomEquivalentObjectProperties
	AxiomDisjointObjectProperties
	AxiomEquivalentDataProperties
	AxiomDisjointDataProperties
	AxiomClassAssertion
	AxiomObjectPropertyAssertion
	AxiomDataPropertyAssertion
	AxiomNegativeObjectPropertyAssertion
	AxiomNegativeDataPropertyAssertion
	AxiomSameIndividual
	AxiomDifferentIndividuals

	// Kinds below exist in the model but are not synchronized.
	AxiomAnnotationAssertion
	AxiomFunctionalObjectProperty
	AxiomTransitiveObjectProperty
)

var axiomKindNames = map[AxiomKind]string{
	AxiomDeclaration:                     "Declaration",
	AxiomSubClassOf:                      "SubClassOf",
	AxiomEquivalentClasses:               "EquivalentClasses",
	AxiomDisjointClasses:                 "DisjointClasses",
	AxiomObjectPropertyDomain:            "ObjectPropertyDomain",
	AxiomObjectPropertyRange:             "ObjectPropertyRange",
	AxiomDataPropertyDomain:              "DataPropertyDomain",
	AxiomDataPropertyRange:               "DataPropertyRange",
	AxiomSubObjectPropertyOf:             "SubObjectPropertyOf",
	AxiomSubDataPropertyOf:               "SubDataPropertyOf",
	AxiomInverseObjectProperties:         "InverseObjectProperties",
	AxiomEquivalentObjectProperties:      "EquivalentObjectProperties",
	AxiomDisjointObjectProperties:        "DisjointObjectProperties",
	AxiomEquivalentDataProperties:        "EquivalentDataProperties",
	AxiomDisjointDataProperties:          "DisjointDataProperties",
	AxiomClassAssertion:                  "ClassAssertion",
	AxiomObjectPropertyAssertion:         "ObjectPropertyAssertion",
	AxiomDataPropertyAssertion:           "DataPropertyAssertion",
	AxiomNegativeObjectPropertyAssertion: "NegativeObjectPropertyAssertion",
	AxiomNegativeDataPropertyAssertion:   "NegativeDataPropertyAssertion",
	AxiomSameIndividual:                  "SameIndividual",
	AxiomDifferentIndividuals:            "DifferentIndividuals",
	AxiomAnnotationAssertion:             "AnnotationAssertion",
	AxiomFunctionalObjectProperty:        "FunctionalObjectProperty",
	AxiomTransitiveObjectProperty:        "TransitiveObjectProperty",
}

func (k AxiomKind) String() string {
	if name, ok := axiomKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Axiom is a single logical statement. Key identifies the axiom structurally:
// two axioms with the same key are the same axiom, regardless of the order of
// operands in symmetric forms.
type Axiom interface {
	Kind() AxiomKind
	Key() string
	String() string
}

// render prints an axiom in functional-style syntax.
func render(kind AxiomKind, args ...string) string {
	return kind.String() + "(" + strings.Join(args, " ") + ")"
}

// renderSet prints an axiom with order-insensitive operands.
func renderSet(kind AxiomKind, args []string) string {
	sorted := slices.Clone(args)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return render(kind, sorted...)
}

func stringsOf[T interface{ String() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}

// Declaration asserts that a named entity exists.
type Declaration struct {
	Entity Entity
}

func (a Declaration) Kind() AxiomKind { return AxiomDeclaration }
func (a Declaration) Key() string     { return a.String() }
func (a Declaration) String() string  { return render(AxiomDeclaration, a.Entity.String()) }

// SubClassOf states that Sub is a subclass of Super.
type SubClassOf struct {
	Sub   ClassExpression
	Super ClassExpression
}

func (a SubClassOf) Kind() AxiomKind { return AxiomSubClassOf }
func (a SubClassOf) Key() string     { return a.String() }
func (a SubClassOf) String() string {
	return render(AxiomSubClassOf, a.Sub.String(), a.Super.String())
}

// EquivalentClasses states that all operands denote the same class.
type EquivalentClasses struct {
	Classes []ClassExpression
}

func (a EquivalentClasses) Kind() AxiomKind { return AxiomEquivalentClasses }
func (a EquivalentClasses) Key() string {
	return renderSet(AxiomEquivalentClasses, stringsOf(a.Classes))
}
func (a EquivalentClasses) String() string {
	return render(AxiomEquivalentClasses, stringsOf(a.Classes)...)
}

// DisjointClasses states that the operands are pairwise disjoint.
type DisjointClasses struct {
	Classes []ClassExpression
}

func (a DisjointClasses) Kind() AxiomKind { return AxiomDisjointClasses }
func (a DisjointClasses) Key() string {
	return renderSet(AxiomDisjointClasses, stringsOf(a.Classes))
}
func (a DisjointClasses) String() string {
	return render(AxiomDisjointClasses, stringsOf(a.Classes)...)
}

// ObjectPropertyDomain restricts the subjects of an object property.
type ObjectPropertyDomain struct {
	Property PropertyExpression
	Domain   ClassExpression
}

func (a ObjectPropertyDomain) Kind() AxiomKind { return AxiomObjectPropertyDomain }
func (a ObjectPropertyDomain) Key() string     { return a.String() }
func (a ObjectPropertyDomain) String() string {
	return render(AxiomObjectPropertyDomain, a.Property.String(), a.Domain.String())
}

// ObjectPropertyRange restricts the objects of an object property.
type ObjectPropertyRange struct {
	Property PropertyExpression
	Range    ClassExpression
}

func (a ObjectPropertyRange) Kind() AxiomKind { return AxiomObjectPropertyRange }
func (a ObjectPropertyRange) Key() string     { return a.String() }
func (a ObjectPropertyRange) String() string {
	return render(AxiomObjectPropertyRange, a.Property.String(), a.Range.String())
}

// DataPropertyDomain restricts the subjects of a data property.
type DataPropertyDomain struct {
	Property PropertyExpression
	Domain   ClassExpression
}

func (a DataPropertyDomain) Kind() AxiomKind { return AxiomDataPropertyDomain }
func (a DataPropertyDomain) Key() string     { return a.String() }
func (a DataPropertyDomain) String() string {
	return render(AxiomDataPropertyDomain, a.Property.String(), a.Domain.String())
}

// DataPropertyRange restricts the values of a data property.
type DataPropertyRange struct {
	Property PropertyExpression
	Range    DataRange
}

func (a DataPropertyRange) Kind() AxiomKind { return AxiomDataPropertyRange }
func (a DataPropertyRange) Key() string     { return a.String() }
func (a DataPropertyRange) String() string {
	return render(AxiomDataPropertyRange, a.Property.String(), a.Range.String())
}

// SubObjectPropertyOf states that Sub implies Super.
type SubObjectPropertyOf struct {
	Sub   PropertyExpression
	Super PropertyExpression
}

func (a SubObjectPropertyOf) Kind() AxiomKind { return AxiomSubObjectPropertyOf }
func (a SubObjectPropertyOf) Key() string     { return a.String() }
func (a SubObjectPropertyOf) String() string {
	return render(AxiomSubObjectPropertyOf, a.Sub.String(), a.Super.String())
}

// SubDataPropertyOf states that Sub implies Super.
type SubDataPropertyOf struct {
	Sub   PropertyExpression
	Super PropertyExpression
}

func (a SubDataPropertyOf) Kind() AxiomKind { return AxiomSubDataPropertyOf }
func (a SubDataPropertyOf) Key() string     { return a.String() }
func (a SubDataPropertyOf) String() string {
	return render(AxiomSubDataPropertyOf, a.Sub.String(), a.Super.String())
}

// InverseObjectProperties states that First and Second are inverses.
type InverseObjectProperties struct {
	First  PropertyExpression
	Second PropertyExpression
}

func (a InverseObjectProperties) Kind() AxiomKind { return AxiomInverseObjectProperties }
func (a InverseObjectProperties) Key() string {
	return renderSet(AxiomInverseObjectProperties, []string{a.First.String(), a.Second.String()})
}
func (a InverseObjectProperties) String() string {
	return render(AxiomInverseObjectProperties, a.First.String(), a.Second.String())
}

// EquivalentObjectProperties states that the operands are equivalent.
type EquivalentObjectProperties struct {
	Properties []PropertyExpression
}

func (a EquivalentObjectProperties) Kind() AxiomKind { return AxiomEquivalentObjectProperties }
func (a EquivalentObjectProperties) Key() string {
	return renderSet(AxiomEquivalentObjectProperties, stringsOf(a.Properties))
}
func (a EquivalentObjectProperties) String() string {
	return render(AxiomEquivalentObjectProperties, stringsOf(a.Properties)...)
}

// DisjointObjectProperties states that the operands are pairwise disjoint.
type DisjointObjectProperties struct {
	Properties []PropertyExpression
}

func (a DisjointObjectProperties) Kind() AxiomKind { return AxiomDisjointObjectProperties }
func (a DisjointObjectProperties) Key() string {
	return renderSet(AxiomDisjointObjectProperties, stringsOf(a.Properties))
}
func (a DisjointObjectProperties) String() string {
	return render(AxiomDisjointObjectProperties, stringsOf(a.Properties)...)
}

// EquivalentDataProperties states that the operands are equivalent.
type EquivalentDataProperties struct {
	Properties []PropertyExpression
}

func (a EquivalentDataProperties) Kind() AxiomKind { return AxiomEquivalentDataProperties }
func (a EquivalentDataProperties) Key() string {
	return renderSet(AxiomEquivalentDataProperties, stringsOf(a.Properties))
}
func (a EquivalentDataProperties) String() string {
	return render(AxiomEquivalentDataProperties, stringsOf(a.Properties)...)
}

// DisjointDataProperties states that the operands are pairwise disjoint.
type DisjointDataProperties struct {
	Properties []PropertyExpression
}

func (a DisjointDataProperties) Kind() AxiomKind { return AxiomDisjointDataProperties }
func (a DisjointDataProperties) Key() string {
	return renderSet(AxiomDisjointDataProperties, stringsOf(a.Properties))
}
func (a DisjointDataProperties) String() string {
	return render(AxiomDisjointDataProperties, stringsOf(a.Properties)...)
}

// ClassAssertion states that Individual is an instance of Class.
type ClassAssertion struct {
	Class      ClassExpression
	Individual Individual
}

func (a ClassAssertion) Kind() AxiomKind { return AxiomClassAssertion }
func (a ClassAssertion) Key() string     { return a.String() }
func (a ClassAssertion) String() string {
	return render(AxiomClassAssertion, a.Class.String(), a.Individual.String())
}

// ObjectPropertyAssertion relates Subject to Object through Property.
type ObjectPropertyAssertion struct {
	Property PropertyExpression
	Subject  Individual
	Object   Individual
}

func (a ObjectPropertyAssertion) Kind() AxiomKind { return AxiomObjectPropertyAssertion }
func (a ObjectPropertyAssertion) Key() string     { return a.String() }
func (a ObjectPropertyAssertion) String() string {
	return render(AxiomObjectPropertyAssertion, a.Property.String(), a.Subject.String(), a.Object.String())
}

// NegativeObjectPropertyAssertion states that Subject is not related to
// Object through Property.
type NegativeObjectPropertyAssertion struct {
	Property PropertyExpression
	Subject  Individual
	Object   Individual
}

func (a NegativeObjectPropertyAssertion) Kind() AxiomKind {
	return AxiomNegativeObjectPropertyAssertion
}
func (a NegativeObjectPropertyAssertion) Key() string { return a.String() }
func (a NegativeObjectPropertyAssertion) String() string {
	return render(AxiomNegativeObjectPropertyAssertion, a.Property.String(), a.Subject.String(), a.Object.String())
}

// DataPropertyAssertion gives Subject the literal Value for Property.
type DataPropertyAssertion struct {
	Property PropertyExpression
	Subject  Individual
	Value    Literal
}

func (a DataPropertyAssertion) Kind() AxiomKind { return AxiomDataPropertyAssertion }
func (a DataPropertyAssertion) Key() string     { return a.String() }
func (a DataPropertyAssertion) String() string {
	return render(AxiomDataPropertyAssertion, a.Property.String(), a.Subject.String(), a.Value.String())
}

// NegativeDataPropertyAssertion states that Subject does not have Value for
// Property.
type NegativeDataPropertyAssertion struct {
	Property PropertyExpression
	Subject  Individual
	Value    Literal
}

func (a NegativeDataPropertyAssertion) Kind() AxiomKind {
	return AxiomNegativeDataPropertyAssertion
}
func (a NegativeDataPropertyAssertion) Key() string { return a.String() }
func (a NegativeDataPropertyAssertion) String() string {
	return render(AxiomNegativeDataPropertyAssertion, a.Property.String(), a.Subject.String(), a.Value.String())
}

// SameIndividual states that all operands denote the same individual.
type SameIndividual struct {
	Individuals []Individual
}

func (a SameIndividual) Kind() AxiomKind { return AxiomSameIndividual }
func (a SameIndividual) Key() string {
	return renderSet(AxiomSameIndividual, stringsOf(a.Individuals))
}
func (a SameIndividual) String() string {
	return render(AxiomSameIndividual, stringsOf(a.Individuals)...)
}

// DifferentIndividuals states that the operands are pairwise distinct.
type DifferentIndividuals struct {
	Individuals []Individual
}

func (a DifferentIndividuals) Kind() AxiomKind { return AxiomDifferentIndividuals }
func (a DifferentIndividuals) Key() string {
	return renderSet(AxiomDifferentIndividuals, stringsOf(a.Individuals))
}
func (a DifferentIndividuals) String() string {
	return render(AxiomDifferentIndividuals, stringsOf(a.Individuals)...)
}

// AnnotationAssertion attaches an annotation value to a subject IRI.
type AnnotationAssertion struct {
	Property IRI
	Subject  IRI
	Value    Literal
}

func (a AnnotationAssertion) Kind() AxiomKind { return AxiomAnnotationAssertion }
func (a AnnotationAssertion) Key() string     { return a.String() }
func (a AnnotationAssertion) String() string {
	return render(AxiomAnnotationAssertion, "<"+string(a.Property)+">", "<"+string(a.Subject)+">", a.Value.String())
}

// FunctionalObjectProperty marks an object property as functional.
type FunctionalObjectProperty struct {
	Property PropertyExpression
}

func (a FunctionalObjectProperty) Kind() AxiomKind { return AxiomFunctionalObjectProperty }
func (a FunctionalObjectProperty) Key() string     { return a.String() }
func (a FunctionalObjectProperty) String() string {
	return render(AxiomFunctionalObjectProperty, a.Property.String())
}

// TransitiveObjectProperty marks an object property as transitive.
type TransitiveObjectProperty struct {
	Property PropertyExpression
}

func (a TransitiveObjectProperty) Kind() AxiomKind { return AxiomTransitiveObjectProperty }
func (a TransitiveObjectProperty) Key() string     { return a.String() }
func (a TransitiveObjectProperty) String() string {
	return render(AxiomTransitiveObjectProperty, a.Property.String())
}
