package transform

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Encode converts a typed value back into a cty value using the default
// table.
func Encode(v any) (cty.Value, error) {
	return defaultTable.Encode(v)
}

// Encode converts a typed value back into a cty value. Nil pointers, unset
// VariableOr fields and empty collections are left out of records. Scalars are
// always written, and deferred references are rendered in their `${...}`
// form.
func (t *Table) Encode(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	rv := reflect.ValueOf(v)
	id, err := t.Intern(rv.Type())
	if err != nil {
		return cty.NilVal, err
	}
	val, _, err := t.encode(id, rv)
	return val, err
}

// encode returns the encoded value and whether it is empty, so that record
// fields can be omitted.
func (t *Table) encode(id TypeID, rv reflect.Value) (cty.Value, bool, error) {
	d := t.Descriptor(id)

	switch d.Kind {
	case KindDynamic:
		if d.GoType == ctyValue {
			val := rv.Interface().(cty.Value)
			if val.IsNull() {
				return cty.NullVal(cty.DynamicPseudoType), true, nil
			}
			return val, false, nil
		}
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), true, nil
		}
		val, err := t.fromNative(rv.Interface())
		return val, false, err

	case KindOptional:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), true, nil
		}
		val, _, err := t.encode(d.Elem, rv.Elem())
		return val, false, err

	case KindUnion:
		addressable := reflect.New(d.GoType)
		addressable.Elem().Set(rv)
		value, ref, set := addressable.Interface().(Wrapper).Unwrap()
		switch {
		case !set:
			return cty.NullVal(cty.DynamicPseudoType), true, nil
		case ref != "":
			return cty.StringVal("${" + ref + "}"), false, nil
		default:
			val, _, err := t.encode(d.Arms[0], value)
			return val, false, err
		}

	case KindRecord:
		attrs := make(map[string]cty.Value, len(d.Fields))
		for _, f := range d.Fields {
			val, empty, err := t.encode(f.Type, rv.Field(f.Index))
			if err != nil {
				return cty.NilVal, false, fmt.Errorf("in field '%s' of %s: %w", f.Name, d.Name(), err)
			}
			if empty && !f.Required {
				continue
			}
			attrs[f.Name] = val
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, true, nil
		}
		return cty.ObjectVal(attrs), false, nil

	case KindSequence:
		if rv.Len() == 0 {
			return cty.EmptyTupleVal, true, nil
		}
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			val, _, err := t.encode(d.Elem, rv.Index(i))
			if err != nil {
				return cty.NilVal, false, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = val
		}
		return cty.TupleVal(elems), false, nil

	case KindMapping:
		if rv.Len() == 0 {
			return cty.EmptyObjectVal, true, nil
		}
		attrs := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			val, _, err := t.encode(d.Elem, iter.Value())
			if err != nil {
				return cty.NilVal, false, fmt.Errorf("in key '%s': %w", key, err)
			}
			attrs[key] = val
		}
		return cty.ObjectVal(attrs), false, nil

	// Scalars are never empty: an explicit false, 0 or "" is kept. Fields
	// that may be left unset are pointers or VariableOr.
	case KindEnum, KindString:
		return cty.StringVal(rv.String()), false, nil

	case KindBool:
		return cty.BoolVal(rv.Bool()), false, nil

	case KindInt:
		return cty.NumberIntVal(rv.Int()), false, nil

	case KindFloat:
		return cty.NumberFloatVal(rv.Float()), false, nil

	default:
		return cty.NilVal, false, fmt.Errorf("cannot encode %s values", d.Kind)
	}
}
