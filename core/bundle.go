package core

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/specialistvlad/bundlefn/internal/refpath"
	"github.com/specialistvlad/bundlefn/internal/transform"
	"github.com/zclconf/go-cty/cty"
)

// Bundle is the read-only context visible to user functions: the selected
// target, the resolved variables and a snapshot of the resource state.
//
// A Bundle is an immutable value. It is passed by value and every accessor
// returns either an immutable cty value or a copy, so no function can observe
// changes made by another.
type Bundle struct {
	target        string
	variables     map[string]cty.Value
	resourceState cty.Value
}

// NewBundle creates a Bundle. The variables map is copied.
func NewBundle(target string, variables map[string]cty.Value) Bundle {
	return Bundle{
		target:        target,
		variables:     maps.Clone(variables),
		resourceState: cty.EmptyObjectVal,
	}
}

// WithResourceState returns a copy of b with the given resource snapshot.
func (b Bundle) WithResourceState(state cty.Value) Bundle {
	if state.IsNull() {
		state = cty.EmptyObjectVal
	}
	b.resourceState = state
	return b
}

// Target returns the selected deployment target.
func (b Bundle) Target() string {
	return b.target
}

// Variables returns a copy of the variable values.
func (b Bundle) Variables() map[string]cty.Value {
	return maps.Clone(b.variables)
}

// Variable returns the value of a single variable.
func (b Bundle) Variable(name string) (cty.Value, bool) {
	v, ok := b.variables[name]
	return v, ok
}

// ResourceState returns the read-only resource snapshot, keyed by plural
// resource type and then by resource name.
func (b Bundle) ResourceState() cty.Value {
	if b.resourceState.IsNull() {
		return cty.EmptyObjectVal
	}
	return b.resourceState
}

// Lookup returns the raw value a variable path points at. Supported roots are
// `var.<name>` followed by any attribute or index steps, and `bundle.target`.
func (b Bundle) Lookup(v Variable) (cty.Value, error) {
	path, err := refpath.Parse(v.Path)
	if err != nil {
		return cty.NilVal, err
	}

	switch {
	case len(path) == 2 && path[0].Name == "bundle" && path[1].Name == "target":
		return cty.StringVal(b.target), nil
	case len(path) >= 2 && path[0].Name == "var" && !path[1].IsIndex():
		value, ok := b.variables[path[1].Name]
		if !ok {
			return cty.NilVal, fmt.Errorf("can't find variable '%s'", path[1].Name)
		}
		if value.Type() == cty.String && !value.IsNull() {
			if _, nested := refpath.Match(value.AsString()); nested {
				return cty.NilVal, fmt.Errorf("variable '%s' refers to another variable (%s); nested references are not supported", path[1].Name, value.AsString())
			}
		}
		if len(path) == 2 {
			return value, nil
		}
		result, diags := path[2:].Traversal().TraverseRel(value)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("can't resolve '%s': %w", v.Path, diags)
		}
		return result, nil
	}

	return cty.NilVal, fmt.Errorf("unsupported variable '%s': only 'var.*' and 'bundle.target' can be resolved", v.String())
}

// ResolveVariable resolves v and transforms the raw value into v.Type.
func (b Bundle) ResolveVariable(v Variable) (any, error) {
	raw, err := b.Lookup(v)
	if err != nil {
		return nil, err
	}
	target := v.Type
	if target == nil {
		target = reflect.TypeFor[cty.Value]()
	}
	rv, err := transform.Transform(target, raw)
	if err != nil {
		return nil, fmt.Errorf("can't resolve '%s': %w", v.Path, err)
	}
	return rv.Interface(), nil
}

// Resolve returns the concrete value held by v, resolving a reference through
// the bundle's variables when necessary. An unset v resolves to the zero value.
func Resolve[T any](b Bundle, v VariableOr[T]) (T, error) {
	var zero T
	if val, ok := v.Value(); ok {
		return val, nil
	}
	ref, ok := v.Variable()
	if !ok {
		return zero, nil
	}
	raw, err := b.Lookup(ref)
	if err != nil {
		return zero, err
	}
	val, err := transform.As[T](raw)
	if err != nil {
		return zero, fmt.Errorf("can't resolve '%s': %w", ref.Path, err)
	}
	return val, nil
}
