package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/configuration"
	"github.com/eugenenazirov/propbind/internal/factory"
	"github.com/eugenenazirov/propbind/internal/properties"
)

func newConfiguration(t *testing.T, entries map[string]string) *configuration.Configuration {
	t.Helper()

	cfg, err := configuration.New(context.Background(), nil, zaptest.NewLogger(t),
		configuration.WithOverlay(properties.StringMapSource("test", entries)),
	)
	require.NoError(t, err)
	return cfg
}

func TestLoadOntology(t *testing.T) {
	t.Parallel()

	cfg := newConfiguration(t, map[string]string{
		"ontology.concept.person.iri":         "http://example.org#person",
		"ontology.concept.person.intents":     "person, entity",
		"ontology.concept.location.iri":       "http://example.org#location",
		"ontology.property.title.title":       "http://example.org#title",
		"ontology.property.title.intents":     "entityTitle",
		"ontology.relationship.knows.iri":     "http://example.org#knows",
		"ontology.relationship.knows.intents": "personKnows",
	})

	ontology, err := LoadOntology(cfg)
	require.NoError(t, err)

	concepts, err := ontology.Concepts(context.Background(), "ws1")
	require.NoError(t, err)
	assert.Equal(t, []configuration.Concept{
		{IRI: "http://example.org#location", Intents: nil},
		{IRI: "http://example.org#person", Intents: []string{"person", "entity"}},
	}, concepts)

	props, err := ontology.Properties(context.Background(), "ws1")
	require.NoError(t, err)
	assert.Equal(t, []configuration.Property{{Title: "http://example.org#title", Intents: []string{"entityTitle"}}}, props)

	rels, err := ontology.Relationships(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "http://example.org#knows", rels[0].IRI)
}

func TestLoadOntologyRejectsConceptWithoutIRI(t *testing.T) {
	t.Parallel()

	cfg := newConfiguration(t, map[string]string{
		"ontology.concept.person.intents": "person",
	})

	_, err := LoadOntology(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, binding.ErrValidatorFailed)
	assert.Contains(t, err.Error(), "concept iri must be set")
}

func TestLoadPrivileges(t *testing.T) {
	t.Parallel()

	p, err := LoadPrivileges(newConfiguration(t, nil))
	require.NoError(t, err)
	names, err := p.AllPrivileges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"READ", "COMMENT", "EDIT", "PUBLISH", "ADMIN"}, names)

	p, err = LoadPrivileges(newConfiguration(t, map[string]string{"privileges.names": "READ,ONTOLOGY_ADD"}))
	require.NoError(t, err)
	names, _ = p.AllPrivileges(context.Background())
	assert.Equal(t, []string{"READ", "ONTOLOGY_ADD"}, names)

	_, err = LoadPrivileges(newConfiguration(t, map[string]string{"privileges.names": "READ,,EDIT"}))
	assert.ErrorIs(t, err, binding.ErrValidatorFailed)
}

func TestBundles(t *testing.T) {
	t.Parallel()

	cfg := newConfiguration(t, map[string]string{
		"default.locale":           "en",
		"messages.en.search.title": "Search",
		"messages.en.search.hint":  "Type to search",
		"messages.de.search.title": "Suche",
		"messages.pt_BR.greeting":  "Olá",
	})

	bundles, err := LoadBundles(cfg)
	require.NoError(t, err)
	require.Len(t, bundles.Locales(), 3)
	assert.Equal(t, "en", bundles.Locales()[0].String())

	de := bundles.Bundle(language.MustParse("de-CH"))
	assert.Equal(t, "Suche", de["search.title"])
	assert.Equal(t, "Type to search", de["search.hint"], "default bundle is the parent")

	en := bundles.Bundle(language.English)
	assert.Equal(t, "Search", en["search.title"])

	unknown := bundles.Bundle(language.Japanese)
	assert.Equal(t, "Search", unknown["search.title"])
	assert.NotContains(t, unknown, "greeting")

	pt := bundles.Bundle(language.MustParse("pt-BR"))
	assert.Equal(t, "Olá", pt["greeting"])
}

func TestBundlesInvalidLocale(t *testing.T) {
	t.Parallel()

	_, err := LoadBundles(newConfiguration(t, map[string]string{"messages.not a locale.x": "y"}))
	assert.Error(t, err)
}

func TestEmptyBundles(t *testing.T) {
	t.Parallel()

	bundles, err := LoadBundles(newConfiguration(t, nil))
	require.NoError(t, err)
	assert.Empty(t, bundles.Bundle(language.English))
}

func TestCatalogInstall(t *testing.T) {
	t.Parallel()

	cfg := newConfiguration(t, map[string]string{
		"ontology.concept.person.iri":     "http://example.org#person",
		"ontology.concept.person.intents": "person",
		"messages.en.app.name":            "propbind",
		"privileges.names":                "READ",
	})

	cat, err := New(cfg)
	require.NoError(t, err)
	cat.Install(cfg)

	snap, err := cfg.ClientSnapshot(context.Background(), language.Und, "ws")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org#person", snap.Properties["ontology.intent.concept.person"])
	assert.Equal(t, []string{"READ"}, snap.Properties["privileges"])
	assert.Equal(t, "propbind", snap.Messages["app.name"])
}

func TestCatalogSelectsOntologyImplementation(t *testing.T) {
	t.Parallel()

	entries := map[string]string{
		"ontology.concept.person.iri":     "http://example.org#person",
		"ontology.concept.person.intents": "person",
	}

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		withNone := map[string]string{OntologyRepositoryKey: " none "}
		for k, v := range entries {
			withNone[k] = v
		}
		cat, err := New(newConfiguration(t, withNone))
		require.NoError(t, err)

		concepts, err := cat.Ontology.Concepts(context.Background(), "ws")
		require.NoError(t, err)
		assert.Empty(t, concepts)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := New(newConfiguration(t, map[string]string{OntologyRepositoryKey: "sparql"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, factory.ErrClassResolution)
		assert.Contains(t, err.Error(), OntologyRepositoryKey)
	})

	t.Run("invalid definitions surface through the registry", func(t *testing.T) {
		t.Parallel()

		_, err := New(newConfiguration(t, map[string]string{"ontology.concept.person.intents": "person"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, binding.ErrValidatorFailed)
	})
}
