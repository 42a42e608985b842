package ontology

import "errors"

var (
	// ErrOntologyNotFound is returned when a change or lookup names an
	// ontology the manager does not hold.
	ErrOntologyNotFound = errors.New("ontology not found")

	// ErrOntologyExists is returned when creating an ontology twice.
	ErrOntologyExists = errors.New("ontology already exists")

	// ErrOwnerClosed is returned when submitting work to a closed owner.
	ErrOwnerClosed = errors.New("owner closed")

	errTaskPanicked = errors.New("owner task panicked")
)
