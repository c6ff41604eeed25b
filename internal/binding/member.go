package binding

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	tagName        = "config"
	defaultTagName = "default"
)

// MissingPolicy decides what happens to a scalar member without a source value or default.
type MissingPolicy int

const (
	// MissingByKind skips fields and fails required setters.
	MissingByKind MissingPolicy = iota
	// MissingSkip leaves the member untouched.
	MissingSkip
	// MissingFail fails the binding with ErrMissingRequired.
	MissingFail
)

func parseMissingPolicy(s string) (MissingPolicy, error) {
	switch s {
	case "skip":
		return MissingSkip, nil
	case "fail":
		return MissingFail, nil
	}
	return MissingByKind, fmt.Errorf("unknown onmissing policy %q", s)
}

// Configurable is implemented by types that expose setter-style members.
type Configurable interface {
	ConfigMembers() []Member
}

// Member describes one bindable setter.
type Member struct {
	name      string
	typ       reflect.Type
	required  bool
	def       *string
	onMissing MissingPolicy
	setter    bool
	set       func(reflect.Value) error
}

// MemberOption tunes a setter member.
type MemberOption func(*Member)

// Required marks the member as required.
func Required() MemberOption {
	return func(m *Member) { m.required = true }
}

// Default declares the value used when the source has none.
func Default(value string) MemberOption {
	return func(m *Member) { m.def = &value }
}

// OnMissing overrides the missing-value policy.
func OnMissing(policy MissingPolicy) MemberOption {
	return func(m *Member) { m.onMissing = policy }
}

// Setter declares a member that is bound by calling set with the coerced value.
// An error returned by set aborts the binding.
func Setter[T any](name string, set func(T) error, opts ...MemberOption) Member {
	m := Member{
		name:   name,
		typ:    reflect.TypeFor[T](),
		setter: true,
		set: func(v reflect.Value) error {
			return set(v.Interface().(T))
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Name returns the source key of the member.
func (m Member) Name() string {
	return m.name
}

func (m Member) failOnMissing(strictFields bool) bool {
	switch m.onMissing {
	case MissingFail:
		return true
	case MissingSkip:
		return false
	}
	return m.required && (m.setter || strictFields)
}

// fieldMember builds the descriptor of a tagged struct field.
func fieldMember(v reflect.Value, sf reflect.StructField, tag string) (Member, error) {
	parts := strings.Split(tag, ",")
	m := Member{
		name: strings.TrimSpace(parts[0]),
		typ:  sf.Type,
	}
	if m.name == "" {
		m.name = lowerFirst(sf.Name)
	}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "required":
			m.required = true
		case strings.HasPrefix(opt, "onmissing="):
			policy, err := parseMissingPolicy(strings.TrimPrefix(opt, "onmissing="))
			if err != nil {
				return Member{}, err
			}
			m.onMissing = policy
		default:
			return Member{}, fmt.Errorf("unknown tag option %q on field %s", opt, sf.Name)
		}
	}

	if def, ok := sf.Tag.Lookup(defaultTagName); ok {
		m.def = &def
	}

	if !sf.IsExported() || !v.CanSet() {
		return Member{}, fmt.Errorf("field %s cannot be set", sf.Name)
	}
	m.set = func(value reflect.Value) error {
		v.Set(value)
		return nil
	}
	return m, nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
