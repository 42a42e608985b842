package ontology

import "fmt"

// EntityKind is the kind of a named entity. The string values double as
// graph node labels and relay event types.
type EntityKind string

const (
	KindClass          EntityKind = "Class"
	KindObjectProperty EntityKind = "ObjectProperty"
	KindDataProperty   EntityKind = "DataProperty"
	KindIndividual     EntityKind = "Individual"
)

// EntityKinds lists every synchronized entity kind in declaration order.
var EntityKinds = []EntityKind{KindClass, KindObjectProperty, KindDataProperty, KindIndividual}

// ParseEntityKind validates s as an entity kind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(s); k {
	case KindClass, KindObjectProperty, KindDataProperty, KindIndividual:
		return k, nil
	default:
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
}

// Entity is a named entity of a given kind.
type Entity struct {
	Kind EntityKind
	IRI  IRI
}

// NewEntity builds an entity reference.
func NewEntity(kind EntityKind, iri IRI) Entity {
	return Entity{Kind: kind, IRI: iri}
}

// Name returns the entity's short form.
func (e Entity) Name() string { return ShortForm(e.IRI) }

func (e Entity) String() string {
	kind := string(e.Kind)
	if e.Kind == KindIndividual {
		kind = "NamedIndividual"
	}
	return fmt.Sprintf("%s(<%s>)", kind, e.IRI)
}
