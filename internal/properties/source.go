package properties

import (
	"strings"
)

// SystemPrefix marks keys of scoped sources such as the process environment.
const SystemPrefix = "propbind."

// Source is one named layer of raw settings. Sources are merged in the order
// they are given, so a later source overrides an earlier one on key collision.
type Source struct {
	Name    string
	Entries map[string]any
	// StripPrefix, when set, restricts the source to keys carrying the prefix
	// and removes it before merging.
	StripPrefix string
}

// MapSource wraps a plain map as an unscoped source.
func MapSource(name string, entries map[string]any) Source {
	return Source{Name: name, Entries: entries}
}

// StringMapSource is MapSource for string-valued maps.
func StringMapSource(name string, entries map[string]string) Source {
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return Source{Name: name, Entries: out}
}

// ScopedSource builds a source whose keys must carry prefix.
func ScopedSource(name, prefix string, entries map[string]any) Source {
	return Source{Name: name, Entries: entries, StripPrefix: prefix}
}

// EnvironSource turns KEY=VALUE pairs (as returned by os.Environ) into a scoped
// source. Only variables whose name starts with prefix are kept.
func EnvironSource(prefix string, environ []string) Source {
	entries := make(map[string]any, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		entries[name] = value
	}
	return ScopedSource("environment", prefix, entries)
}

// entries yields the source's effective key/value pairs with the scope prefix removed.
func (s Source) entries() map[string]any {
	if s.StripPrefix == "" {
		return s.Entries
	}
	out := make(map[string]any, len(s.Entries))
	for key, value := range s.Entries {
		if !strings.HasPrefix(key, s.StripPrefix) {
			continue
		}
		out[strings.TrimPrefix(key, s.StripPrefix)] = value
	}
	return out
}
