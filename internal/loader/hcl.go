package loader

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// loadHCL reads a native-syntax HCL file. Attributes become keys, and each
// block contributes its type and labels as key segments:
//
//	server {
//	  port = 8080
//	}
//	messages "en" {
//	  greeting = "Hello"
//	}
//
// yields server.port=8080 and messages.en.greeting=Hello. Expressions are
// evaluated without variables, so an engine reference must be written with
// HCL's escape as "$${app.name}".
func loadHCL(path string) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL: %s", diags.Error())
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parse HCL: unexpected body %T", file.Body)
	}

	out := make(map[string]any)
	if err := flattenBody(out, "", body); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenBody(out map[string]any, prefix string, body *hclsyntax.Body) error {
	for name, attr := range body.Attributes {
		key := joinKey(prefix, name)
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("evaluate %s: %s", key, diags.Error())
		}
		v, err := ctyToAny(val)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", key, err)
		}
		flatten(out, key, v)
	}

	for _, block := range body.Blocks {
		key := joinKey(prefix, block.Type)
		for _, label := range block.Labels {
			key = joinKey(key, label)
		}
		if err := flattenBody(out, key, block.Body); err != nil {
			return err
		}
	}
	return nil
}

// ctyToAny converts an evaluated HCL value into the shapes flatten understands.
// Numbers keep their exact decimal text.
func ctyToAny(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	t := val.Type()
	switch {
	case t.Equals(cty.String):
		return val.AsString(), nil
	case t.Equals(cty.Number):
		return val.AsBigFloat().Text('f', -1), nil
	case t.Equals(cty.Bool):
		return val.True(), nil
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			inner, err := ctyToAny(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = inner
		}
		return out, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			inner, err := ctyToAny(v)
			if err != nil {
				return nil, err
			}
			out = append(out, inner)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported HCL type %s", t.FriendlyName())
}
