// Package factory resolves configured implementation names to constructors.
package factory

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrMissingName is returned when no implementation name is configured and there is no default.
	ErrMissingName = errors.New("implementation name not configured")
	// ErrClassResolution is returned when a name is not registered or its constructor fails.
	ErrClassResolution = errors.New("could not resolve implementation")
)

// Lookup is the read side of a configuration store.
type Lookup interface {
	Get(key, def string) string
}

// ResolutionError names the configuration key and implementation that failed.
type ResolutionError struct {
	Kind error
	Key  string
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Kind == ErrMissingName {
		return fmt.Sprintf("could not find required property %s", e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("could not load %s for property %s: %v", e.Name, e.Key, e.Err)
	}
	return fmt.Sprintf("could not load %s for property %s", e.Name, e.Key)
}

// Unwrap exposes the kind sentinel and the constructor error.
func (e *ResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Constructor builds a new implementation.
type Constructor[T any] func() (T, error)

// Registry maps implementation names to constructors.
type Registry[T any] struct {
	mu           sync.RWMutex
	constructors map[string]Constructor[T]
	logger       *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry[T any](logger *zap.Logger) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry[T]{
		constructors: make(map[string]Constructor[T]),
		logger:       logger,
	}
}

// Register adds or replaces the constructor for name.
func (r *Registry[T]) Register(name string, ctor Constructor[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = ctor
}

// Names returns the registered names in ascending order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the implementation registered under name.
func (r *Registry[T]) New(name string) (T, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("%w: %q is not registered", ErrClassResolution, name)
	}
	v, err := ctor()
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrClassResolution, name, err)
	}
	return v, nil
}

// FromConfig builds the implementation named by key, falling back to defaultName.
func FromConfig[T any](r *Registry[T], cfg Lookup, key, defaultName string) (T, error) {
	var zero T

	name := strings.TrimSpace(cfg.Get(key, defaultName))
	if name == "" {
		return zero, &ResolutionError{Kind: ErrMissingName, Key: key}
	}
	r.logger.Debug("found implementation for configuration",
		zap.String("name", name),
		zap.String("key", key),
	)

	v, err := r.New(name)
	if err != nil {
		return zero, &ResolutionError{Kind: ErrClassResolution, Key: key, Name: name, Err: err}
	}
	return v, nil
}
