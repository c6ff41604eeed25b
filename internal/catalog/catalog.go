// Package catalog provides in-memory ontology, privilege and message bundle
// repositories whose content is itself bound from configuration.
//
//	ontology.concept.person.iri=http://example.org#person
//	ontology.concept.person.intents=person,entity
//	ontology.property.title.title=http://example.org#title
//	ontology.relationship.knows.iri=http://example.org#knows
//	privileges.names=READ,EDIT
//	messages.en.search.title=Search
//
// The ontology implementation is chosen by repository.ontology ("config" by
// default, or "none" for an empty ontology).
package catalog

import (
	"fmt"

	"github.com/eugenenazirov/propbind/internal/configuration"
	"github.com/eugenenazirov/propbind/internal/factory"
)

// Prefixes read by the catalog.
const (
	ConceptPrefix      = "ontology.concept"
	PropertyPrefix     = "ontology.property"
	RelationshipPrefix = "ontology.relationship"
	PrivilegePrefix    = "privileges"
	MessagesPrefix     = "messages"

	OntologyRepositoryKey = "repository.ontology"
)

// Ontology implementation names.
const (
	OntologyFromConfig = "config"
	OntologyNone       = "none"
)

// Catalog groups the snapshot collaborators.
type Catalog struct {
	Ontology   configuration.OntologyRepository
	Privileges *Privileges
	Bundles    *Bundles
}

// New builds every repository from cfg.
func New(cfg *configuration.Configuration) (*Catalog, error) {
	ontology, err := factory.FromConfig(OntologyRegistry(cfg), cfg, OntologyRepositoryKey, OntologyFromConfig)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	privileges, err := LoadPrivileges(cfg)
	if err != nil {
		return nil, fmt.Errorf("load privileges: %w", err)
	}
	bundles, err := LoadBundles(cfg)
	if err != nil {
		return nil, fmt.Errorf("load message bundles: %w", err)
	}
	return &Catalog{
		Ontology:   ontology,
		Privileges: privileges,
		Bundles:    bundles,
	}, nil
}

// Install registers the catalog as cfg's snapshot collaborators.
func (c *Catalog) Install(cfg *configuration.Configuration) {
	cfg.SetCollaborators(c.Ontology, c.Privileges, c.Bundles)
}

// OntologyRegistry lists the ontology implementations selectable through
// repository.ontology.
func OntologyRegistry(cfg *configuration.Configuration) *factory.Registry[configuration.OntologyRepository] {
	reg := factory.NewRegistry[configuration.OntologyRepository](cfg.Logger())
	reg.Register(OntologyFromConfig, func() (configuration.OntologyRepository, error) {
		return LoadOntology(cfg)
	})
	reg.Register(OntologyNone, func() (configuration.OntologyRepository, error) {
		return &Ontology{}, nil
	})
	return reg
}
