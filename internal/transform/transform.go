package transform

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/bundlefn/internal/refpath"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Transform converts v into a value of the target Go type using the default
// table.
func Transform(target reflect.Type, v any) (reflect.Value, error) {
	return defaultTable.Transform(target, v)
}

// As is the generic form of Transform.
func As[T any](v any) (T, error) {
	var zero T
	rv, err := defaultTable.Transform(reflect.TypeFor[T](), v)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// Transform converts v into a value of the target Go type. A value that
// already has the target type is returned unchanged.
func (t *Table) Transform(target reflect.Type, v any) (reflect.Value, error) {
	id, err := t.Intern(target)
	if err != nil {
		return reflect.Value{}, err
	}

	if rv, ok := passthrough(target, v); ok {
		return rv, nil
	}

	val, err := t.fromNative(v)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot read %T as a configuration value: %w", v, err)
	}
	return t.decode(id, val, nil)
}

// passthrough handles input that is already typed: the target type itself, or
// the target behind (or without) one level of pointer.
func passthrough(target reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type() == target:
		return rv, true
	case target.Kind() == reflect.Pointer && rv.Type() == target.Elem():
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(rv)
		return ptr, true
	case rv.Kind() == reflect.Pointer && rv.Type().Elem() == target && !rv.IsNil():
		return rv.Elem(), true
	}
	return reflect.Value{}, false
}

func (t *Table) decode(id TypeID, v cty.Value, path []string) (reflect.Value, error) {
	d := t.Descriptor(id)
	out := reflect.New(d.GoType).Elem()

	if v.IsNull() {
		return t.decodeNull(d, out, v, path)
	}
	if !v.IsWhollyKnown() {
		return out, newError(d, v, path, "value is not known")
	}

	switch d.Kind {
	case KindDynamic:
		if d.GoType == ctyValue {
			out.Set(reflect.ValueOf(v))
			return out, nil
		}
		native, err := ToNative(v)
		if err != nil {
			return out, newError(d, v, path, "%s", err)
		}
		if native != nil {
			out.Set(reflect.ValueOf(native))
		}
		return out, nil

	case KindOptional:
		elem, err := t.decode(d.Elem, v, path)
		if err != nil {
			return out, err
		}
		ptr := reflect.New(d.GoType.Elem())
		ptr.Elem().Set(elem)
		out.Set(ptr)
		return out, nil

	case KindUnion:
		return t.decodeUnion(d, out, v, path)

	case KindRecord:
		return t.decodeRecord(d, out, v, path)

	case KindSequence:
		return t.decodeSequence(d, out, v, path)

	case KindMapping:
		return t.decodeMapping(d, out, v, path)

	case KindEnum:
		if v.Type() != cty.String {
			return out, newError(d, v, path, "expected one of %v", d.Enum)
		}
		s := v.AsString()
		for _, member := range d.Enum {
			if member == s {
				out.SetString(s)
				return out, nil
			}
		}
		return out, newError(d, v, path, "'%s' is not a valid value, expected one of %v", s, d.Enum)

	case KindString, KindBool, KindInt, KindFloat:
		return decodePrimitive(d, out, v, path)

	default:
		return out, newError(d, v, path, "%s types cannot be decoded directly", d.Kind)
	}
}

// decodeNull implements the null rules: optionals stay empty and bare
// collections are normalised to empty collections.
func (t *Table) decodeNull(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	switch d.Kind {
	case KindDynamic:
		if d.GoType == ctyValue {
			out.Set(reflect.ValueOf(v))
		}
		return out, nil
	case KindOptional:
		return out, nil
	case KindSequence:
		out.Set(reflect.MakeSlice(d.GoType, 0, 0))
		return out, nil
	case KindMapping:
		out.Set(reflect.MakeMap(d.GoType))
		return out, nil
	default:
		return out, newError(d, v, path, "null is not allowed")
	}
}

func (t *Table) decodeUnion(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	w := out.Addr().Interface().(Wrapper)

	if v.Type() == cty.String {
		if ref, ok := refpath.Match(v.AsString()); ok {
			w.SetReference(ref)
			return out, nil
		}
	}

	concrete, err := t.decode(d.Arms[0], v, path)
	if err != nil {
		return out, err
	}
	w.SetValue(concrete)
	return out, nil
}

func (t *Table) decodeRecord(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return out, newError(d, v, path, "expected a mapping, got %s", ty.FriendlyName())
	}

	attrs := v.AsValueMap()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := d.Field(k); !ok {
			return out, newError(d, v, path, "unexpected field '%s' for type %s", k, d.Name())
		}
	}

	for _, f := range d.Fields {
		fieldPath := appendPath(path, f.Name)
		raw, present := attrs[f.Name]

		var val reflect.Value
		var err error
		switch {
		case present && raw.IsNull() && !f.Required:
			continue
		case present:
			val, err = t.decode(f.Type, raw, fieldPath)
		case f.Default != nil:
			val, err = t.decode(f.Type, cty.StringVal(*f.Default), fieldPath)
		case f.Required:
			// A missing collection reads as an empty one, like an explicit null.
			val, err = t.decode(f.Type, cty.NullVal(cty.DynamicPseudoType), fieldPath)
			if err != nil {
				return out, newError(d, v, path, "missing required field '%s'", f.Name)
			}
		default:
			continue
		}
		if err != nil {
			return out, err
		}
		out.Field(f.Index).Set(val)
	}
	return out, nil
}

func (t *Table) decodeSequence(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return out, newError(d, v, path, "expected a sequence, got %s", ty.FriendlyName())
	}

	slice := reflect.MakeSlice(d.GoType, v.LengthInt(), v.LengthInt())
	it := v.ElementIterator()
	for i := 0; it.Next(); i++ {
		_, elem := it.Element()
		val, err := t.decode(d.Elem, elem, appendPath(path, fmt.Sprintf("[%d]", i)))
		if err != nil {
			return out, err
		}
		slice.Index(i).Set(val)
	}
	out.Set(slice)
	return out, nil
}

func (t *Table) decodeMapping(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return out, newError(d, v, path, "expected a mapping, got %s", ty.FriendlyName())
	}

	m := reflect.MakeMapWithSize(d.GoType, v.LengthInt())
	it := v.ElementIterator()
	for it.Next() {
		key, elem := it.Element()
		keyStr := key.AsString()
		val, err := t.decode(d.Elem, elem, appendPath(path, keyStr))
		if err != nil {
			return out, err
		}
		m.SetMapIndex(reflect.ValueOf(keyStr).Convert(d.GoType.Key()), val)
	}
	out.Set(m)
	return out, nil
}

func decodePrimitive(d *Descriptor, out reflect.Value, v cty.Value, path []string) (reflect.Value, error) {
	ty := v.Type()

	switch d.Kind {
	case KindString:
		switch {
		case ty == cty.String:
			out.SetString(v.AsString())
		case ty == cty.Number:
			out.SetString(v.AsBigFloat().Text('f', -1))
		case ty == cty.Bool:
			out.SetString(strconv.FormatBool(v.True()))
		default:
			buf, err := ctyjson.Marshal(v, ty)
			if err != nil {
				return out, newError(d, v, path, "%s", err)
			}
			out.SetString(string(buf))
		}
		return out, nil

	case KindBool:
		switch {
		case ty == cty.Bool:
			out.SetBool(v.True())
		case ty == cty.String && (v.AsString() == "true" || v.AsString() == "false"):
			out.SetBool(v.AsString() == "true")
		default:
			return out, newError(d, v, path, "expected a boolean or the string \"true\" or \"false\"")
		}
		return out, nil

	case KindInt:
		var i int64
		switch ty {
		case cty.Number:
			bf := v.AsBigFloat()
			if !bf.IsInt() {
				return out, newError(d, v, path, "not a whole number")
			}
			n, acc := bf.Int64()
			if acc != big.Exact {
				return out, newError(d, v, path, "number is out of range")
			}
			i = n
		case cty.String:
			n, err := strconv.ParseInt(strings.TrimSpace(v.AsString()), 10, 64)
			if err != nil {
				return out, newError(d, v, path, "not an integer")
			}
			i = n
		default:
			return out, newError(d, v, path, "expected an integer, got %s", ty.FriendlyName())
		}
		if out.OverflowInt(i) {
			return out, newError(d, v, path, "number is out of range")
		}
		out.SetInt(i)
		return out, nil

	case KindFloat:
		var f float64
		switch ty {
		case cty.Number:
			if err := gocty.FromCtyValue(v, &f); err != nil {
				return out, newError(d, v, path, "%s", err)
			}
		case cty.String:
			n, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
			if err != nil {
				return out, newError(d, v, path, "not a number")
			}
			f = n
		default:
			return out, newError(d, v, path, "expected a number, got %s", ty.FriendlyName())
		}
		out.SetFloat(f)
		return out, nil
	}

	return out, newError(d, v, path, "unsupported primitive")
}
