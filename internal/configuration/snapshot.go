package configuration

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Intent key prefixes of the client snapshot.
const (
	IntentConceptPrefix      = "ontology.intent.concept."
	IntentPropertyPrefix     = "ontology.intent.property."
	IntentRelationshipPrefix = "ontology.intent.relationship."
)

// Concept is an ontology concept as seen by the snapshot.
type Concept struct {
	IRI     string
	Intents []string
}

// Property is an ontology property as seen by the snapshot.
type Property struct {
	Title   string
	Intents []string
}

// Relationship is an ontology relationship as seen by the snapshot.
type Relationship struct {
	IRI     string
	Intents []string
}

// OntologyRepository lists the ontology elements visible in a workspace.
type OntologyRepository interface {
	Concepts(ctx context.Context, workspaceID string) ([]Concept, error)
	Properties(ctx context.Context, workspaceID string) ([]Property, error)
	Relationships(ctx context.Context, workspaceID string) ([]Relationship, error)
}

// PrivilegeRepository lists every known privilege name.
type PrivilegeRepository interface {
	AllPrivileges(ctx context.Context) ([]string, error)
}

// BundleProvider returns the messages for the best match of tag.
type BundleProvider interface {
	Bundle(tag language.Tag) map[string]string
}

// Snapshot is the configuration payload delivered to clients.
type Snapshot struct {
	Properties map[string]any    `json:"properties" yaml:"properties"`
	Messages   map[string]string `json:"messages" yaml:"messages"`
}

// WithOntology sets the ontology collaborator of ClientSnapshot.
func WithOntology(repo OntologyRepository) Option {
	return func(c *Configuration) { c.ontology = repo }
}

// WithPrivileges sets the privilege collaborator of ClientSnapshot.
func WithPrivileges(repo PrivilegeRepository) Option {
	return func(c *Configuration) { c.privileges = repo }
}

// WithBundles sets the message bundle collaborator of ClientSnapshot.
func WithBundles(provider BundleProvider) Option {
	return func(c *Configuration) { c.bundles = provider }
}

// SetCollaborators installs the snapshot collaborators after construction,
// for collaborators that are themselves built from this configuration.
func (c *Configuration) SetCollaborators(ontology OntologyRepository, privileges PrivilegeRepository, bundles BundleProvider) {
	c.ontology = ontology
	c.privileges = privileges
	c.bundles = bundles
}

// Locale returns the configured default locale, falling back to English.
func (c *Configuration) Locale() language.Tag {
	raw := c.Get(DefaultLocale, "")
	if raw == "" {
		return language.English
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.English
	}
	return tag
}

// ClientSnapshot assembles the properties and messages a client needs:
// ontology intents, web.ui.* settings with the prefix removed, ontology.intent*
// overrides, the privilege list and the message bundle for tag. A zero tag
// selects the configured default locale.
func (c *Configuration) ClientSnapshot(ctx context.Context, tag language.Tag, workspaceID string) (*Snapshot, error) {
	if tag.IsRoot() {
		tag = c.Locale()
	}

	props := make(map[string]any)

	if c.ontology != nil {
		if err := c.addIntents(ctx, props, workspaceID); err != nil {
			return nil, err
		}
	}

	for _, key := range c.Keys() {
		switch {
		case strings.HasPrefix(key, WebConfigPrefix):
			props[strings.TrimPrefix(key, WebConfigPrefix)] = c.Get(key, "")
		case strings.HasPrefix(key, OntologyIntentKeys):
			props[key] = c.Get(key, "")
		}
	}

	if c.privileges != nil {
		names, err := c.privileges.AllPrivileges(ctx)
		if err != nil {
			return nil, fmt.Errorf("list privileges: %w", err)
		}
		names = slices.Clone(names)
		slices.Sort(names)
		props["privileges"] = slices.Compact(names)
	}

	messages := map[string]string{}
	if c.bundles != nil {
		for k, v := range c.bundles.Bundle(tag) {
			messages[k] = v
		}
	}

	return &Snapshot{Properties: props, Messages: messages}, nil
}

func (c *Configuration) addIntents(ctx context.Context, props map[string]any, workspaceID string) error {
	concepts, err := c.ontology.Concepts(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list concepts: %w", err)
	}
	for _, concept := range concepts {
		for _, intent := range concept.Intents {
			props[IntentConceptPrefix+intent] = concept.IRI
		}
	}

	ontologyProps, err := c.ontology.Properties(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}
	for _, p := range ontologyProps {
		for _, intent := range p.Intents {
			props[IntentPropertyPrefix+intent] = p.Title
		}
	}

	relationships, err := c.ontology.Relationships(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list relationships: %w", err)
	}
	for _, r := range relationships {
		for _, intent := range r.Intents {
			props[IntentRelationshipPrefix+intent] = r.IRI
		}
	}
	return nil
}
