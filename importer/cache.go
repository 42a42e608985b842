package importer

import (
	"github.com/c360studio/ontosync/ontology"
)

type entityKey struct {
	kind ontology.EntityKind
	name string
}

// changeSet collects add changes, dropping structurally equal axioms.
type changeSet struct {
	ontology ontology.IRI
	seen     map[string]struct{}
	changes  []ontology.Change
}

func newChangeSet(iri ontology.IRI) *changeSet {
	return &changeSet{ontology: iri, seen: make(map[string]struct{})}
}

func (s *changeSet) add(axiom ontology.Axiom) {
	key := axiom.Key()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.changes = append(s.changes, ontology.AddAxiom(s.ontology, axiom))
}

// cache maps graph names to entities. Ensure creates missing entities and
// records their declaration in the change set, so an entity referenced
// before its own declaration step is still declared exactly once.
type cache struct {
	base     ontology.IRI
	entities map[entityKey]ontology.Entity
	changes  *changeSet
}

func newCache(base ontology.IRI, changes *changeSet) *cache {
	return &cache{
		base:     base,
		entities: make(map[entityKey]ontology.Entity),
		changes:  changes,
	}
}

// Ensure returns the entity, creating and declaring it if absent.
func (c *cache) Ensure(kind ontology.EntityKind, name string) ontology.Entity {
	key := entityKey{kind, name}
	if e, ok := c.entities[key]; ok {
		return e
	}
	e := ontology.NewEntity(kind, ontology.EntityIRI(c.base, name))
	c.entities[key] = e
	c.changes.add(ontology.Declaration{Entity: e})
	return e
}

// Len returns the number of cached entities.
func (c *cache) Len() int { return len(c.entities) }

// class maps a class name to an expression. The reserved name Thing is the
// built-in universal class and is never declared.
func (c *cache) class(name string) ontology.ClassExpression {
	if name == ontology.ThingName {
		return ontology.Thing()
	}
	return ontology.Class(c.Ensure(ontology.KindClass, name).IRI)
}

func (c *cache) objectProperty(name string) ontology.PropertyExpression {
	return ontology.ObjectProperty(c.Ensure(ontology.KindObjectProperty, name).IRI)
}

func (c *cache) dataProperty(name string) ontology.PropertyExpression {
	return ontology.DataProperty(c.Ensure(ontology.KindDataProperty, name).IRI)
}

func (c *cache) individual(name string) ontology.Individual {
	return ontology.NamedIndividual(c.Ensure(ontology.KindIndividual, name).IRI)
}
