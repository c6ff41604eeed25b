// Package binding copies flat string settings onto arbitrary Go values.
//
// Bindable struct fields are declared with a config tag and an optional default tag:
//
//	type Server struct {
//	    Port    int           `config:"port,required" default:"8080"`
//	    Timeout time.Duration `config:"timeout"`
//	    Owl     map[string]map[string]string `config:"owl"`
//	}
//
// Types that prefer setters list them through Configurable using the typed
// Setter builder, and post-binding checks through Validatable.
//
// A field with no source value and no default keeps its current value even
// when it is marked required; a required setter fails instead. Either member
// kind can override this with onmissing=skip|fail (OnMissing for setters), and
// WithStrictFields makes required fields behave like required setters.
package binding
