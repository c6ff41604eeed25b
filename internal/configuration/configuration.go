package configuration

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/properties"
)

// Well-known keys.
const (
	BaseURL            = "base.url"
	DevMode            = "devMode"
	DefaultLocale      = "default.locale"
	WebConfigPrefix    = "web.ui."
	OntologyIntentKeys = "ontology.intent"
)

// Loader supplies the base key/value map and a description of where it came from.
type Loader interface {
	Load(ctx context.Context) (map[string]any, error)
	Info() map[string]any
}

// Configuration owns the resolved property store.
type Configuration struct {
	*properties.Store

	loader   Loader
	binder   *binding.Binder
	logger   *zap.Logger
	overlays []properties.Source

	ontology   OntologyRepository
	privileges PrivilegeRepository
	bundles    BundleProvider
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithOverlay appends sources applied after the loader's map, in order.
func WithOverlay(sources ...properties.Source) Option {
	return func(c *Configuration) {
		c.overlays = append(c.overlays, sources...)
	}
}

// WithEnvironment overlays process environment variables prefixed with
// properties.SystemPrefix, the prefix stripped.
func WithEnvironment() Option {
	return WithOverlay(properties.EnvironSource(properties.SystemPrefix, os.Environ()))
}

// WithBinder replaces the default binder.
func WithBinder(b *binding.Binder) Option {
	return func(c *Configuration) {
		if b != nil {
			c.binder = b
		}
	}
}

// New loads the base map, applies the overlays and resolves references once.
func New(ctx context.Context, loader Loader, logger *zap.Logger, opts ...Option) (*Configuration, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Configuration{
		loader: loader,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.binder == nil {
		c.binder = binding.New(binding.WithLogger(logger))
	}

	base := map[string]any{}
	if loader != nil {
		loaded, err := loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		base = loaded
	}

	sources := append([]properties.Source{properties.MapSource("base", base)}, c.overlays...)
	c.Store = properties.New(logger, sources...)

	logger.Debug("configuration ready", zap.Int("keys", c.Len()))
	return c, nil
}

// Bind binds target against the subset under prefix.
func (c *Configuration) Bind(target any, prefix string) error {
	return c.binder.Bind(target, c.Subset(prefix))
}

// BindMap binds target against an arbitrary map.
func (c *Configuration) BindMap(target any, source map[string]string) error {
	return c.binder.Bind(target, source)
}

// Binder returns the binder used by Bind.
func (c *Configuration) Binder() *binding.Binder {
	return c.binder
}

// Logger returns the logger the configuration was built with.
func (c *Configuration) Logger() *zap.Logger {
	return c.logger
}

// ConfigurationInfo describes the sources the loader read.
func (c *Configuration) ConfigurationInfo() map[string]any {
	if c.loader == nil {
		return map[string]any{}
	}
	return c.loader.Info()
}

// BindAll creates one T per group under prefix.
func BindAll[T any](c *Configuration, prefix string) (*binding.Instances[T], error) {
	return binding.BindMultiple[T](c.binder, prefix, c.ToMap())
}
