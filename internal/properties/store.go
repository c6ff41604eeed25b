package properties

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MaskedValue replaces the value of sensitive keys in masked output.
const MaskedValue = "********"

// Store is the flat key/value namespace. Reads are safe for concurrent use;
// writes after construction are visible immediately but are never interpolated.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewEmpty returns a store with no entries.
func NewEmpty() *Store {
	return &Store{values: make(map[string]string)}
}

// New merges sources in order and runs the single reference resolution pass.
func New(logger *zap.Logger, sources ...Source) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := NewEmpty()
	for _, src := range sources {
		entries := src.entries()
		for key, value := range entries {
			if isNil(value) {
				continue
			}
			s.set(key, value)
		}
		logger.Debug("configuration source merged",
			zap.String("source", src.Name),
			zap.Int("entries", len(entries)),
		)
	}

	resolved := resolveReferences(s.values)
	logger.Debug("configuration references resolved",
		zap.Int("keys", len(s.values)),
		zap.Int("resolved", resolved),
	)
	return s
}

// Set stores the trimmed string form of value. A nil value removes the key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isNil(value) {
		delete(s.values, key)
		return
	}
	s.set(key, value)
}

func (s *Store) set(key string, value any) {
	s.values[key] = strings.TrimSpace(fmt.Sprint(value))
}

// Lookup returns the stored value and whether the key exists.
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// Get returns the stored value or def when the key is absent.
func (s *Store) Get(key, def string) string {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return def
}

// GetBool parses the stored value as a boolean. Besides the strconv forms it
// accepts yes/no and on/off.
func (s *Store) GetBool(key string, def bool) (bool, error) {
	raw, ok := s.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := ParseBool(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Type: "bool", Err: err}
	}
	return v, nil
}

// GetInt parses the stored value as a base-10 int.
func (s *Store) GetInt(key string, def int) (int, error) {
	raw, ok := s.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Type: "int", Err: err}
	}
	return v, nil
}

// GetInt64 parses the stored value as a base-10 int64.
func (s *Store) GetInt64(key string, def int64) (int64, error) {
	raw, ok := s.Lookup(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def, &ConversionError{Key: key, Value: raw, Type: "int64", Err: err}
	}
	return v, nil
}

// Subset returns the entries equal to prefix or below "prefix.", with the
// prefix and its dot removed from the returned keys.
func (s *Store) Subset(prefix string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subset(s.values, prefix)
}

// Subset is Store.Subset over an arbitrary entry map.
func Subset(entries map[string]string, prefix string) map[string]string {
	subset := make(map[string]string)
	if prefix == "" {
		maps.Copy(subset, entries)
		return subset
	}
	for key, value := range entries {
		if key != prefix && !strings.HasPrefix(key, prefix+".") {
			continue
		}
		subset[strings.TrimPrefix(key[len(prefix):], ".")] = value
	}
	return subset
}

// Keys returns every key in ascending order.
func (s *Store) Keys() []string {
	return s.KeysWithPrefix("")
}

// KeysWithPrefix returns, in ascending order, the raw keys that start with
// prefix. Unlike Subset there is no dot boundary and nothing is stripped.
func (s *Store) KeysWithPrefix(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// ToMap returns a copy of all entries.
func (s *Store) ToMap() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Masked is ToMap with password values replaced.
func (s *Store) Masked() map[string]string {
	out := s.ToMap()
	for k := range out {
		if IsSensitive(k) {
			out[k] = MaskedValue
		}
	}
	return out
}

// Group is Group over a snapshot of the store.
func (s *Store) Group(prefix string) Groups {
	return Group(s.ToMap(), prefix)
}

// Len reports the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// String renders sorted "key: value" lines with password values masked.
func (s *Store) String() string {
	masked := s.Masked()
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(masked[key])
	}
	return sb.String()
}

// IsSensitive reports whether the value stored under key must never be shown.
func IsSensitive(key string) bool {
	return strings.Contains(strings.ToLower(key), "password")
}

// ParseBool accepts the strconv.ParseBool forms plus yes/no and on/off.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
