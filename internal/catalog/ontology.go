package catalog

import (
	"context"
	"slices"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/configuration"
)

type conceptDef struct {
	IRI     string   `config:"iri"`
	Intents []string `config:"intents"`
}

func (d *conceptDef) ConfigValidators() []binding.Validator {
	return []binding.Validator{
		binding.Check("hasIRI", "concept iri must be set", func() bool { return d.IRI != "" }),
	}
}

type propertyDef struct {
	Title   string   `config:"title"`
	Intents []string `config:"intents"`
}

func (d *propertyDef) ConfigValidators() []binding.Validator {
	return []binding.Validator{
		binding.Check("hasTitle", "property title must be set", func() bool { return d.Title != "" }),
	}
}

type relationshipDef struct {
	IRI     string   `config:"iri"`
	Intents []string `config:"intents"`
}

func (d *relationshipDef) ConfigValidators() []binding.Validator {
	return []binding.Validator{
		binding.Check("hasIRI", "relationship iri must be set", func() bool { return d.IRI != "" }),
	}
}

// Ontology is shared by every workspace.
type Ontology struct {
	concepts      []configuration.Concept
	properties    []configuration.Property
	relationships []configuration.Relationship
}

// LoadOntology binds the ontology.* groups of cfg.
func LoadOntology(cfg *configuration.Configuration) (*Ontology, error) {
	concepts, err := configuration.BindAll[conceptDef](cfg, ConceptPrefix)
	if err != nil {
		return nil, err
	}
	props, err := configuration.BindAll[propertyDef](cfg, PropertyPrefix)
	if err != nil {
		return nil, err
	}
	relationships, err := configuration.BindAll[relationshipDef](cfg, RelationshipPrefix)
	if err != nil {
		return nil, err
	}

	o := &Ontology{}
	for _, d := range concepts.All() {
		o.concepts = append(o.concepts, configuration.Concept{IRI: d.IRI, Intents: d.Intents})
	}
	for _, d := range props.All() {
		o.properties = append(o.properties, configuration.Property{Title: d.Title, Intents: d.Intents})
	}
	for _, d := range relationships.All() {
		o.relationships = append(o.relationships, configuration.Relationship{IRI: d.IRI, Intents: d.Intents})
	}
	return o, nil
}

// Concepts returns every concept.
func (o *Ontology) Concepts(_ context.Context, _ string) ([]configuration.Concept, error) {
	return slices.Clone(o.concepts), nil
}

// Properties returns every property.
func (o *Ontology) Properties(_ context.Context, _ string) ([]configuration.Property, error) {
	return slices.Clone(o.properties), nil
}

// Relationships returns every relationship.
func (o *Ontology) Relationships(_ context.Context, _ string) ([]configuration.Relationship, error) {
	return slices.Clone(o.relationships), nil
}
