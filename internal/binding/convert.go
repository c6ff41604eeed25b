package binding

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/propbind/internal/properties"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

	errUnsupportedType = errors.New("unsupported type")
)

type converter func(raw string) (reflect.Value, error)

// EnumConverter returns a case-insensitive converter over a fixed set of names.
func EnumConverter[T any](values map[string]T) func(string) (T, error) {
	lookup := make(map[string]T, len(values))
	names := make([]string, 0, len(values))
	for name, v := range values {
		lookup[strings.ToLower(name)] = v
		names = append(names, name)
	}
	slices.Sort(names)

	return func(raw string) (T, error) {
		if v, ok := lookup[strings.ToLower(strings.TrimSpace(raw))]; ok {
			return v, nil
		}
		var zero T
		return zero, fmt.Errorf("unknown value %q, expected one of %s", raw, strings.Join(names, ", "))
	}
}

// convert coerces raw into a value of type t.
func (b *Binder) convert(raw string, t reflect.Type) (reflect.Value, error) {
	if fn, ok := b.converters[t]; ok {
		return fn(raw)
	}
	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Pointer:
		elem, err := b.convert(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil

	case reflect.String:
		out.SetString(raw)

	case reflect.Bool:
		v, err := properties.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(v)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(v)

	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(v)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(raw))
			break
		}
		return b.convertList(raw, t)

	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, fmt.Errorf("%w: %s", errUnsupportedType, t)
		}
		out.Set(reflect.ValueOf(raw))

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", errUnsupportedType, t)
	}
	return out, nil
}

// convertList splits a comma separated value and converts every element.
func (b *Binder) convertList(raw string, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeSlice(t, 0, strings.Count(raw, ",")+1)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for i, part := range strings.Split(raw, ",") {
		elem, err := b.convert(strings.TrimSpace(part), t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out = reflect.Append(out, elem)
	}
	return out, nil
}
