package binding

import (
	"errors"
	"fmt"
)

// Validatable is implemented by types that check themselves after binding.
type Validatable interface {
	ConfigValidators() []Validator
}

// Validator is a named post-binding check.
type Validator struct {
	Name        string
	Description string
	Check       func() bool
}

// Check declares a validator.
func Check(name, description string, fn func() bool) Validator {
	return Validator{Name: name, Description: description, Check: fn}
}

func runValidators(owner string, target any) error {
	v, ok := target.(Validatable)
	if !ok {
		return nil
	}
	for _, validator := range v.ConfigValidators() {
		if err := invoke(owner, validator); err != nil {
			return err
		}
	}
	return nil
}

func invoke(owner string, v Validator) (err error) {
	fail := &Error{
		Kind:        ErrValidatorFailed,
		Type:        owner,
		Validator:   v.Name,
		Description: v.Description,
	}
	if v.Check == nil {
		fail.Err = errors.New("validator has no check function")
		return fail
	}

	defer func() {
		if r := recover(); r != nil {
			fail.Err = fmt.Errorf("panic: %v", r)
			err = fail
		}
	}()

	if !v.Check() {
		return fail
	}
	return nil
}
