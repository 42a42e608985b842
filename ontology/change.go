package ontology

// Change adds or removes one axiom in one ontology.
type Change struct {
	Ontology IRI
	Axiom    Axiom
	Add      bool
}

// AddAxiom returns a change that adds axiom to the ontology.
func AddAxiom(ontology IRI, axiom Axiom) Change {
	return Change{Ontology: ontology, Axiom: axiom, Add: true}
}

// RemoveAxiom returns a change that removes axiom from the ontology.
func RemoveAxiom(ontology IRI, axiom Axiom) Change {
	return Change{Ontology: ontology, Axiom: axiom}
}

func (c Change) String() string {
	if c.Add {
		return "AddAxiom(" + c.Axiom.String() + ")"
	}
	return "RemoveAxiom(" + c.Axiom.String() + ")"
}
