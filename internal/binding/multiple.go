package binding

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/eugenenazirov/propbind/internal/properties"
)

// Instances holds bound values keyed by group name, iterated in ascending key order.
type Instances[T any] struct {
	keys   []string
	values map[string]T
}

// Keys returns the group names in ascending order.
func (in *Instances[T]) Keys() []string {
	return slices.Clone(in.keys)
}

// Get returns the instance bound for key.
func (in *Instances[T]) Get(key string) (T, bool) {
	v, ok := in.values[key]
	return v, ok
}

// Len reports the number of instances.
func (in *Instances[T]) Len() int {
	return len(in.keys)
}

// All iterates the instances in ascending key order.
func (in *Instances[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, k := range in.keys {
			if !yield(k, in.values[k]) {
				return
			}
		}
	}
}

// Map returns the instances as a plain map.
func (in *Instances[T]) Map() map[string]T {
	out := make(map[string]T, len(in.values))
	for k, v := range in.values {
		out[k] = v
	}
	return out
}

// BindMultiple creates one T per group under prefix and binds it against that
// group's entries. T must be a struct or a pointer to a struct. Instances are
// created in ascending group order.
//
// Given
//
//	repository.ontology.owl.dev.iri=http://example.org/dev
//	repository.ontology.owl.dev.dir=ontology/dev/
//	repository.ontology.owl.csv.iri=http://example.org/csv
//
// and
//
//	type OwlItem struct {
//	    IRI string `config:"iri"`
//	    Dir string `config:"dir"`
//	}
//
// BindMultiple[OwlItem](b, "repository.ontology.owl", entries) yields csv and dev.
func BindMultiple[T any](b *Binder, prefix string, source map[string]string) (*Instances[T], error) {
	t := reflect.TypeFor[T]()
	if !isStructLike(t) {
		return nil, &Error{Kind: ErrAccess, Type: t.String(), Err: fmt.Errorf("could not create configurable: %w: %s", errUnsupportedType, t)}
	}

	groups := properties.Group(source, prefix)
	out := &Instances[T]{
		keys:   make([]string, 0, len(groups)),
		values: make(map[string]T, len(groups)),
	}
	for name, values := range groups.All() {
		inst, err := b.bindInstance(t, values)
		if err != nil {
			return nil, fmt.Errorf("bind %s.%s: %w", prefix, name, err)
		}
		out.keys = append(out.keys, name)
		out.values[name] = inst.Interface().(T)
	}
	return out, nil
}
