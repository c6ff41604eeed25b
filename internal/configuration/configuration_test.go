package configuration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/properties"
)

type staticLoader struct {
	values map[string]any
	err    error
}

func (l staticLoader) Load(context.Context) (map[string]any, error) {
	return l.values, l.err
}

func (l staticLoader) Info() map[string]any {
	return map[string]any{"loader": "static"}
}

func newTestConfiguration(t *testing.T, values map[string]any, opts ...Option) *Configuration {
	t.Helper()
	cfg, err := New(context.Background(), staticLoader{values: values}, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return cfg
}

func TestNewAppliesOverlaysBeforeResolving(t *testing.T) {
	t.Parallel()

	cfg := newTestConfiguration(t, map[string]any{
		"host":     "localhost",
		"base.url": "http://${host}:${port}",
		"port":     8080,
		"skipped":  nil,
	},
		WithOverlay(properties.ScopedSource("system", properties.SystemPrefix, map[string]any{
			"propbind.host": "example.org",
			"other.host":    "ignored",
		})),
		WithOverlay(properties.StringMapSource("flags", map[string]string{"port": "9090"})),
	)

	assert.Equal(t, "http://example.org:9090", cfg.Get(BaseURL, ""))
	_, ok := cfg.Lookup("skipped")
	assert.False(t, ok)
	_, ok = cfg.Lookup("other.host")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"loader": "static"}, cfg.ConfigurationInfo())
}

func TestNewEnvironmentOverlay(t *testing.T) {
	t.Setenv("propbind.db.host", "db.internal")

	cfg := newTestConfiguration(t, map[string]any{"db.host": "localhost"}, WithEnvironment())
	assert.Equal(t, "db.internal", cfg.Get("db.host", ""))
}

func TestNewLoaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := New(context.Background(), staticLoader{err: boom}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestNewWithoutLoader(t *testing.T) {
	t.Parallel()

	cfg, err := New(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.Len())
	assert.Empty(t, cfg.ConfigurationInfo())
}

type httpSettings struct {
	Port    int           `config:"port,required"`
	Timeout time.Duration `config:"timeout" default:"2s"`
}

type owlItem struct {
	IRI string `config:"iri"`
	Dir string `config:"dir"`
}

func TestBindWithPrefix(t *testing.T) {
	t.Parallel()

	cfg := newTestConfiguration(t, map[string]any{
		"http.port":                        "8080",
		"repository.ontology.owl.dev.iri":  "http://dev",
		"repository.ontology.owl.dev.dir":  "dev/",
		"repository.ontology.owl.csv.iri":  "http://csv",
		"repository.ontology.owl.prod.iri": "http://prod",
	})

	var s httpSettings
	require.NoError(t, cfg.Bind(&s, "http"))
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, 2*time.Second, s.Timeout)

	items, err := BindAll[owlItem](cfg, "repository.ontology.owl")
	require.NoError(t, err)
	assert.Equal(t, []string{"csv", "dev", "prod"}, items.Keys())

	var fromMap httpSettings
	require.NoError(t, cfg.BindMap(&fromMap, map[string]string{"port": "1"}))
	assert.Equal(t, 1, fromMap.Port)
}

func TestBindUsesCustomBinder(t *testing.T) {
	t.Parallel()

	cfg := newTestConfiguration(t, nil, WithBinder(binding.New(binding.WithStrictFields())))

	var s httpSettings
	err := cfg.Bind(&s, "http")
	assert.ErrorIs(t, err, binding.ErrMissingRequired)
	assert.NotNil(t, cfg.Binder())
}

type fakeOntology struct {
	err error
}

func (f fakeOntology) Concepts(context.Context, string) ([]Concept, error) {
	return []Concept{{IRI: "http://x#person", Intents: []string{"person", "entity"}}}, f.err
}

func (f fakeOntology) Properties(context.Context, string) ([]Property, error) {
	return []Property{{Title: "http://x#title", Intents: []string{"entityTitle"}}}, nil
}

func (f fakeOntology) Relationships(context.Context, string) ([]Relationship, error) {
	return []Relationship{{IRI: "http://x#knows", Intents: []string{"knows"}}}, nil
}

type fakePrivileges []string

func (f fakePrivileges) AllPrivileges(context.Context) ([]string, error) {
	return f, nil
}

type fakeBundles map[string]map[string]string

func (f fakeBundles) Bundle(tag language.Tag) map[string]string {
	base, _ := tag.Base()
	return f[base.String()]
}

func TestClientSnapshot(t *testing.T) {
	t.Parallel()

	cfg := newTestConfiguration(t, map[string]any{
		"web.ui.geocoder.enabled":        "true",
		"web.ui.db.password":             "visible",
		"ontology.intent.concept.entity": "http://override#entity",
		"ontology.intentional":           "kept",
		"server.port":                    "8080",
		"default.locale":                 "de",
	},
		WithOntology(fakeOntology{}),
		WithPrivileges(fakePrivileges{"READ", "ADMIN", "READ"}),
		WithBundles(fakeBundles{
			"en": {"title": "Search"},
			"de": {"title": "Suche"},
		}),
	)

	snap, err := cfg.ClientSnapshot(context.Background(), language.English, "ws")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"ontology.intent.concept.person":       "http://x#person",
		"ontology.intent.concept.entity":       "http://override#entity",
		"ontology.intent.property.entityTitle": "http://x#title",
		"ontology.intent.relationship.knows":   "http://x#knows",
		"ontology.intentional":                 "kept",
		"geocoder.enabled":                     "true",
		"db.password":                          "visible",
		"privileges":                           []string{"ADMIN", "READ"},
	}, snap.Properties)
	assert.Equal(t, map[string]string{"title": "Search"}, snap.Messages)

	snap, err = cfg.ClientSnapshot(context.Background(), language.Und, "ws")
	require.NoError(t, err)
	assert.Equal(t, "Suche", snap.Messages["title"], "root tag selects the default locale")
}

func TestClientSnapshotErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("ontology offline")
	cfg := newTestConfiguration(t, nil, WithOntology(fakeOntology{err: boom}))

	_, err := cfg.ClientSnapshot(context.Background(), language.English, "")
	assert.ErrorIs(t, err, boom)
}

func TestClientSnapshotWithoutCollaborators(t *testing.T) {
	t.Parallel()

	cfg := newTestConfiguration(t, map[string]any{"web.ui.x": "1"})
	snap, err := cfg.ClientSnapshot(context.Background(), language.English, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "1"}, snap.Properties)
	assert.Empty(t, snap.Messages)
}

func TestLocale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, language.English, newTestConfiguration(t, nil).Locale())
	assert.Equal(t, language.English, newTestConfiguration(t, map[string]any{DefaultLocale: "!!"}).Locale())
	assert.Equal(t, "fr", newTestConfiguration(t, map[string]any{DefaultLocale: "fr"}).Locale().String())
}
