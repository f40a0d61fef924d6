package core

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/bundlefn/internal/refpath"
)

// Variable is a deferred reference to a named value that is resolved later,
// written in configuration as `${path}`. Identity is by path only; Type
// records what the value should be transformed into on resolution.
type Variable struct {
	Path string
	Type reflect.Type
}

// NewVariable creates a Variable for path after validating its syntax.
func NewVariable[T any](path string) (Variable, error) {
	if _, err := refpath.Parse(path); err != nil {
		return Variable{}, err
	}
	return Variable{Path: path, Type: reflect.TypeFor[T]()}, nil
}

// String renders the variable in its `${path}` form.
func (v Variable) String() string {
	return "${" + v.Path + "}"
}

// Equal compares variables by path.
func (v Variable) Equal(other Variable) bool {
	return v.Path == other.Path
}

// ParseVariable returns the Variable written as s, if s is exactly one
// `${...}` reference.
func ParseVariable[T any](s string) (Variable, bool) {
	path, ok := refpath.Match(s)
	if !ok {
		return Variable{}, false
	}
	return Variable{Path: path, Type: reflect.TypeFor[T]()}, true
}

type state uint8

const (
	stateUnset state = iota
	stateValue
	stateReference
)

// VariableOr holds either a concrete value of type T or a Variable that will
// resolve to one. The zero value is unset.
type VariableOr[T any] struct {
	value T
	ref   string
	state state
}

// ValueOf wraps a concrete value.
func ValueOf[T any](v T) VariableOr[T] {
	return VariableOr[T]{value: v, state: stateValue}
}

// Ref wraps a reference to path. It panics if path is not a valid reference
// path, which is a programming error.
func Ref[T any](path string) VariableOr[T] {
	if _, err := refpath.Parse(path); err != nil {
		panic(fmt.Sprintf("core.Ref: %v", err))
	}
	return VariableOr[T]{ref: path, state: stateReference}
}

// IsSet reports whether a value or a reference is held.
func (v VariableOr[T]) IsSet() bool {
	return v.state != stateUnset
}

// IsVariable reports whether a reference is held.
func (v VariableOr[T]) IsVariable() bool {
	return v.state == stateReference
}

// Value returns the concrete value, if one is held.
func (v VariableOr[T]) Value() (T, bool) {
	return v.value, v.state == stateValue
}

// OrElse returns the concrete value, or def when none is held.
func (v VariableOr[T]) OrElse(def T) T {
	if v.state == stateValue {
		return v.value
	}
	return def
}

// Variable returns the held reference, if any.
func (v VariableOr[T]) Variable() (Variable, bool) {
	if v.state != stateReference {
		return Variable{}, false
	}
	return Variable{Path: v.ref, Type: reflect.TypeFor[T]()}, true
}

// Equal compares two wrappers by state, value and reference path.
func (v VariableOr[T]) Equal(other VariableOr[T]) bool {
	if v.state != other.state {
		return false
	}
	switch v.state {
	case stateValue:
		return reflect.DeepEqual(v.value, other.value)
	case stateReference:
		return v.ref == other.ref
	}
	return true
}

func (v VariableOr[T]) String() string {
	switch v.state {
	case stateValue:
		return fmt.Sprint(v.value)
	case stateReference:
		return "${" + v.ref + "}"
	}
	return "<unset>"
}

// WrappedType is part of the transform.Wrapper contract.
func (v *VariableOr[T]) WrappedType() reflect.Type {
	return reflect.TypeFor[T]()
}

// SetValue is part of the transform.Wrapper contract.
func (v *VariableOr[T]) SetValue(rv reflect.Value) {
	val, _ := rv.Interface().(T)
	*v = ValueOf(val)
}

// SetReference is part of the transform.Wrapper contract.
func (v *VariableOr[T]) SetReference(path string) {
	*v = VariableOr[T]{ref: path, state: stateReference}
}

// Unwrap is part of the transform.Wrapper contract.
func (v VariableOr[T]) Unwrap() (reflect.Value, string, bool) {
	switch v.state {
	case stateValue:
		return reflect.ValueOf(&v.value).Elem(), "", true
	case stateReference:
		return reflect.Value{}, v.ref, true
	}
	return reflect.Value{}, "", false
}
