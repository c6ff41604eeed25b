package properties

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeConversion is returned when a stored string cannot be parsed into the requested type.
	ErrTypeConversion = errors.New("type conversion failed")
)

// ConversionError describes a value that could not be parsed by a typed accessor.
type ConversionError struct {
	Key   string
	Value string
	Type  string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("property %q: cannot convert %q to %s: %v", e.Key, e.Value, e.Type, e.Err)
}

// Unwrap exposes both the kind sentinel and the parser error.
func (e *ConversionError) Unwrap() []error {
	return []error{ErrTypeConversion, e.Err}
}
