package binding

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/eugenenazirov/propbind/internal/properties"
)

// Binder copies string settings onto tagged struct fields and declared setters.
// A Binder is immutable after New and safe for concurrent use.
type Binder struct {
	logger       *zap.Logger
	converters   map[reflect.Type]converter
	strictFields bool
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStrictFields makes required fields without a value or default fail, as required setters do.
func WithStrictFields() Option {
	return func(b *Binder) {
		b.strictFields = true
	}
}

// WithConverter registers the conversion used for members of type T.
func WithConverter[T any](fn func(string) (T, error)) Option {
	return func(b *Binder) {
		b.converters[reflect.TypeFor[T]()] = func(raw string) (reflect.Value, error) {
			v, err := fn(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		}
	}
}

// New creates a Binder.
func New(opts ...Option) *Binder {
	b := &Binder{
		logger:     zap.NewNop(),
		converters: make(map[reflect.Type]converter),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind applies source onto target, which must be a non-nil pointer to a struct.
// Setter members are bound first, then tagged fields of the struct and of its
// embedded structs, then every validator runs. A failure may leave target
// partially updated.
func (b *Binder) Bind(target any, source map[string]string) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &Error{
			Kind: ErrAccess,
			Type: fmt.Sprintf("%T", target),
			Err:  errors.New("target must be a non-nil pointer to a struct"),
		}
	}
	owner := rv.Elem().Type().String()

	var members []Member
	if c, ok := target.(Configurable); ok {
		members = append(members, c.ConfigMembers()...)
	}
	fields, err := collectFields(rv.Elem(), owner)
	if err != nil {
		return err
	}
	members = append(members, fields...)

	for _, m := range members {
		if err := b.bindMember(owner, m, source); err != nil {
			return err
		}
	}

	return runValidators(owner, target)
}

func (b *Binder) bindMember(owner string, m Member, source map[string]string) error {
	if m.set == nil || m.typ == nil {
		return &Error{Kind: ErrAccess, Type: owner, Member: m.name, Err: errors.New("member has no setter")}
	}

	if m.typ.Kind() == reflect.Map {
		value, err := b.mapValue(owner, m, source)
		if err != nil {
			return err
		}
		return b.assign(owner, m, value)
	}

	raw, ok := source[m.name]
	if !ok {
		if m.def == nil {
			if m.failOnMissing(b.strictFields) {
				return &Error{Kind: ErrMissingRequired, Type: owner, Member: m.name}
			}
			b.logger.Debug("configuration member skipped",
				zap.String("type", owner),
				zap.String("member", m.name),
			)
			return nil
		}
		raw = *m.def
	}

	value, err := b.convert(raw, m.typ)
	if err != nil {
		kind := ErrTypeConversion
		if errors.Is(err, errUnsupportedType) {
			kind = ErrAccess
		}
		return &Error{Kind: kind, Type: owner, Member: m.name, Value: raw, Err: err}
	}
	return b.assign(owner, m, value)
}

func (b *Binder) assign(owner string, m Member, value reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrAccess, Type: owner, Member: m.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := m.set(value); err != nil {
		return &Error{Kind: ErrAccess, Type: owner, Member: m.name, Err: err}
	}
	return nil
}

// mapValue builds the value of a map-typed member from the groups under its name.
func (b *Binder) mapValue(owner string, m Member, source map[string]string) (reflect.Value, error) {
	t := m.typ
	if t.Key().Kind() != reflect.String {
		return reflect.Value{}, &Error{Kind: ErrAccess, Type: owner, Member: m.name, Err: fmt.Errorf("%w: %s", errUnsupportedType, t)}
	}
	elem := t.Elem()

	switch {
	case elem.Kind() == reflect.String:
		subset := properties.Subset(source, m.name)
		out := reflect.MakeMapWithSize(t, len(subset))
		for k, v := range subset {
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), reflect.ValueOf(v).Convert(elem))
		}
		return out, nil

	case elem.Kind() == reflect.Map && elem.Key().Kind() == reflect.String && elem.Elem().Kind() == reflect.String:
		groups := properties.Group(source, m.name)
		out := reflect.MakeMapWithSize(t, len(groups))
		for name, values := range groups.All() {
			inner := reflect.MakeMapWithSize(elem, len(values))
			for k, v := range values {
				inner.SetMapIndex(reflect.ValueOf(k).Convert(elem.Key()), reflect.ValueOf(v).Convert(elem.Elem()))
			}
			out.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), inner)
		}
		return out, nil

	case isStructLike(elem):
		groups := properties.Group(source, m.name)
		out := reflect.MakeMapWithSize(t, len(groups))
		for name, values := range groups.All() {
			inst, err := b.bindInstance(elem, values)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("bind %s.%s[%q]: %w", owner, m.name, name, err)
			}
			out.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), inst)
		}
		return out, nil
	}

	return reflect.Value{}, &Error{Kind: ErrAccess, Type: owner, Member: m.name, Err: fmt.Errorf("%w: %s", errUnsupportedType, t)}
}

// bindInstance creates a zero value of t (a struct or pointer to struct) and binds it.
func (b *Binder) bindInstance(t reflect.Type, source map[string]string) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		ptr := reflect.New(t.Elem())
		if err := b.Bind(ptr.Interface(), source); err != nil {
			return reflect.Value{}, err
		}
		return ptr, nil
	}
	ptr := reflect.New(t)
	if err := b.Bind(ptr.Interface(), source); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// collectFields returns the tagged fields of v followed by those of its
// embedded structs. An embedded struct tagged config:"-" is not walked, and a
// type already on the embedding path is skipped.
func collectFields(v reflect.Value, owner string) ([]Member, error) {
	return collectFieldsOnPath(v, owner, map[reflect.Type]bool{})
}

func collectFieldsOnPath(v reflect.Value, owner string, path map[reflect.Type]bool) ([]Member, error) {
	t := v.Type()
	path[t] = true
	defer delete(path, t)

	var (
		members  []Member
		embedded []int
	)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(tagName)
		if tag == "-" {
			continue
		}
		if !tagged {
			if sf.Anonymous && isStructLike(sf.Type) {
				embedded = append(embedded, i)
			}
			continue
		}
		m, err := fieldMember(v.Field(i), sf, tag)
		if err != nil {
			return nil, &Error{Kind: ErrAccess, Type: owner, Member: sf.Name, Err: err}
		}
		members = append(members, m)
	}

	for _, i := range embedded {
		fv := v.Field(i)
		if path[structType(fv.Type())] {
			continue
		}
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				if !hasTaggedFields(fv.Type().Elem(), path) {
					continue
				}
				if !fv.CanSet() {
					return nil, &Error{
						Kind:   ErrAccess,
						Type:   owner,
						Member: t.Field(i).Name,
						Err:    errors.New("nil embedded pointer cannot be allocated"),
					}
				}
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		}
		inner, err := collectFieldsOnPath(fv, owner, path)
		if err != nil {
			return nil, err
		}
		members = append(members, inner...)
	}
	return members, nil
}

// hasTaggedFields reports whether t or a struct it embeds declares a bindable
// field. Types in path are not entered again.
func hasTaggedFields(t reflect.Type, path map[reflect.Type]bool) bool {
	if path[t] {
		return false
	}
	path[t] = true
	defer delete(path, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(tagName)
		if tag == "-" {
			continue
		}
		if ok {
			return true
		}
		if sf.Anonymous && isStructLike(sf.Type) && hasTaggedFields(structType(sf.Type), path) {
			return true
		}
	}
	return false
}

func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
