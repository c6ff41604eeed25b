package binding

import (
	"errors"
	"fmt"

	"github.com/eugenenazirov/propbind/internal/properties"
)

var (
	// ErrMissingRequired is returned when a required member has no source value and no default.
	ErrMissingRequired = errors.New("missing required property")
	// ErrTypeConversion is returned when a string cannot be coerced to a member's type.
	ErrTypeConversion = properties.ErrTypeConversion
	// ErrValidatorFailed is returned when a post-binding validator returns false or panics.
	ErrValidatorFailed = errors.New("validator failed")
	// ErrAccess is returned when a member cannot be read or written, or is declared incorrectly.
	ErrAccess = errors.New("member not accessible")
)

// Error carries the context of a failed binding.
type Error struct {
	Kind        error
	Type        string
	Member      string
	Value       string
	Validator   string
	Description string
	Err         error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMissingRequired:
		return fmt.Sprintf("%s: could not find property %q and no default value was specified", e.Type, e.Member)
	case ErrTypeConversion:
		return fmt.Sprintf("%s.%s: cannot convert %q: %v", e.Type, e.Member, e.Value, e.Err)
	case ErrValidatorFailed:
		desc := "()"
		if e.Description != "" {
			desc = "(" + e.Description + ")"
		}
		if e.Err != nil {
			return fmt.Sprintf("%s.%s%s failed: %v", e.Type, e.Validator, desc, e.Err)
		}
		return fmt.Sprintf("%s.%s%s returned false", e.Type, e.Validator, desc)
	}

	name := e.Type
	if e.Member != "" {
		name += "." + e.Member
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", name, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", name, e.Kind)
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
