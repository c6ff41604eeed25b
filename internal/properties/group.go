package properties

import (
	"iter"
	"slices"
	"strings"
)

// Groups is one level of a dotted key hierarchy: group key -> sub-key -> value.
type Groups map[string]map[string]string

// Group partitions the entries under prefix by the first key segment after it.
//
// Given
//
//	repository.ontology.owl.dev.iri=http://example.org/dev
//	repository.ontology.owl.dev.dir=ontology/dev/
//	repository.ontology.owl.csv.iri=http://example.org/csv
//
// Group(entries, "repository.ontology.owl") returns
//
//	csv: {iri: http://example.org/csv}
//	dev: {iri: http://example.org/dev, dir: ontology/dev/}
//
// A key with nothing after the group segment is stored under the empty sub-key.
func Group(entries map[string]string, prefix string) Groups {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}

	groups := make(Groups)
	for key, value := range entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]

		name, sub := rest, ""
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			name, sub = rest[:dot], rest[dot+1:]
		}

		values, ok := groups[name]
		if !ok {
			values = make(map[string]string)
			groups[name] = values
		}
		values[sub] = value
	}
	return groups
}

// Names returns the group keys in ascending order.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All iterates the groups in ascending key order.
func (g Groups) All() iter.Seq2[string, map[string]string] {
	return func(yield func(string, map[string]string) bool) {
		for _, name := range g.Names() {
			if !yield(name, g[name]) {
				return
			}
		}
	}
}
