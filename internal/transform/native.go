// This file converts between cty values and their Go-native dynamic
// counterparts (map[string]any, []any and scalars).

package transform

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToNative recursively converts a cty.Value to its most natural Go
// counterpart. Whole numbers become int64, other numbers float64.
func ToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			keyStr := key.AsString()
			native, err := ToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = native
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for native conversion: %s", ty.FriendlyName())
	}
}

// FromNative converts a Go-native dynamic value into a cty.Value. Values of
// schema types are encoded with the default table, so a mapping may mix raw
// and typed members.
func FromNative(v any) (cty.Value, error) {
	return defaultTable.fromNative(v)
}

func (t *Table) fromNative(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case json.Number:
		n, err := cty.ParseNumberVal(x.String())
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return n, nil
	case map[string]any:
		return t.nativeObject(x)
	case []any:
		return t.nativeTuple(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String && rv.Type().Elem().Kind() == reflect.Interface {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return t.nativeObject(m)
		}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Interface {
			s := make([]any, rv.Len())
			for i := range s {
				s[i] = rv.Index(i).Interface()
			}
			return t.nativeTuple(s)
		}
	}

	return t.Encode(v)
}

func (t *Table) nativeObject(m map[string]any) (cty.Value, error) {
	if len(m) == 0 {
		return cty.EmptyObjectVal, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make(map[string]cty.Value, len(m))
	for _, k := range keys {
		val, err := t.fromNative(m[k])
		if err != nil {
			return cty.NilVal, fmt.Errorf("in attribute '%s': %w", k, err)
		}
		attrs[k] = val
	}
	return cty.ObjectVal(attrs), nil
}

func (t *Table) nativeTuple(s []any) (cty.Value, error) {
	if len(s) == 0 {
		return cty.EmptyTupleVal, nil
	}
	elems := make([]cty.Value, len(s))
	for i, e := range s {
		val, err := t.fromNative(e)
		if err != nil {
			return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
		}
		elems[i] = val
	}
	return cty.TupleVal(elems), nil
}
