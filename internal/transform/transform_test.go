package transform_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/bundlefn/core"
	"github.com/specialistvlad/bundlefn/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type color string

func (color) EnumValues() []string { return []string{"RED", "GREEN"} }

type widget struct {
	Name     string                  `json:"name"`
	Color    core.VariableOr[color]  `json:"color,omitempty"`
	Size     core.VariableOr[int]    `json:"size,omitempty"`
	Labels   map[string]string       `json:"labels,omitempty"`
	Parts    []part                  `json:"parts"`
	Owner    *string                 `json:"owner,omitempty"`
	Region   string                  `json:"region,omitempty" default:"eu-west-1"`
	Children core.VariableOr[[]part] `json:"children,omitempty"`
}

type part struct {
	ID   int      `json:"id"`
	Cost *float64 `json:"cost,omitempty"`
}

// node is self-referential through an optional pointer and a union, like a
// task nested in a for-each wrapper.
type node struct {
	Key  string `json:"key"`
	Loop *loop  `json:"loop,omitempty"`
}

type loop struct {
	Inputs string                `json:"inputs"`
	Body   core.VariableOr[node] `json:"body"`
}

func ptr[T any](v T) *T {
	return &v
}

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestTransform_Record(t *testing.T) {
	// --- Arrange ---
	table := transform.NewTable()
	raw := decodeJSON(t, `{
		"name": "w",
		"color": "RED",
		"size": "${var.size}",
		"labels": {"team": "data"},
		"parts": [{"id": 1, "cost": 2.5}, {"id": "2"}],
		"children": "${var.children}"
	}`)

	// --- Act ---
	rv, err := table.Transform(reflect.TypeFor[widget](), raw)

	// --- Assert ---
	require.NoError(t, err)
	got := rv.Interface().(widget)

	want := widget{
		Name:     "w",
		Color:    core.ValueOf(color("RED")),
		Size:     core.Ref[int]("var.size"),
		Labels:   map[string]string{"team": "data"},
		Parts:    []part{{ID: 1, Cost: ptr(2.5)}, {ID: 2}},
		Region:   "eu-west-1",
		Children: core.Ref[[]part]("var.children"),
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(core.VariableOr[int]{}, core.VariableOr[[]part]{})); diff != "" {
		t.Errorf("transform mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_RecordErrors(t *testing.T) {
	table := transform.NewTable()

	testCases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "unknown field names key and type",
			raw:     `{"name": "w", "parts": [], "colour": "RED"}`,
			wantErr: "unexpected field 'colour' for type transform_test.widget",
		},
		{
			name:    "missing required field",
			raw:     `{"parts": []}`,
			wantErr: "missing required field 'name'",
		},
		{
			name:    "not a mapping",
			raw:     `["w"]`,
			wantErr: "expected a mapping",
		},
		{
			name:    "nested error carries the path",
			raw:     `{"name": "w", "parts": [{"id": 1}, {"id": 1.5}]}`,
			wantErr: "at 'parts[1].id': not a whole number",
		},
		{
			name:    "enum member",
			raw:     `{"name": "w", "parts": [], "color": "BLUE"}`,
			wantErr: "'BLUE' is not a valid value",
		},
		{
			name:    "unknown field in nested record",
			raw:     `{"name": "w", "parts": [{"id": 1, "extra": true}]}`,
			wantErr: "unexpected field 'extra' for type transform_test.part",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, tc.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			var terr *transform.Error
			require.True(t, errors.As(err, &terr))
			assert.NotEmpty(t, terr.Type)
			assert.NotEmpty(t, terr.Value)
		})
	}
}

func TestTransform_ErrorTruncatesLongValues(t *testing.T) {
	// --- Arrange ---
	long := strings.Repeat("€", 60)

	// --- Act ---
	_, err := transform.As[int](long)

	// --- Assert ---
	var terr *transform.Error
	require.True(t, errors.As(err, &terr))
	assert.True(t, strings.HasSuffix(terr.Value, "..."))
	assert.Less(t, len(terr.Value), len(long))
	assert.True(t, utf8.ValidString(terr.Value), "truncation must not split a character: %q", terr.Value)
	assert.True(t, utf8.ValidString(err.Error()))
}

func TestTransform_Nulls(t *testing.T) {
	table := transform.NewTable()

	t.Run("missing bare collection becomes empty", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, `{"name": "w"}`))
		require.NoError(t, err)
		got := rv.Interface().(widget)
		assert.NotNil(t, got.Parts)
		assert.Empty(t, got.Parts)
	})

	t.Run("explicit null for a bare collection", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, `{"name": "w", "parts": null}`))
		require.NoError(t, err)
		assert.Empty(t, rv.Interface().(widget).Parts)
	})

	t.Run("null optional stays unset", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, `{"name": "w", "parts": [], "owner": null, "size": null}`))
		require.NoError(t, err)
		got := rv.Interface().(widget)
		assert.Nil(t, got.Owner)
		assert.False(t, got.Size.IsSet())
	})

	t.Run("null for a required scalar", func(t *testing.T) {
		_, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, `{"name": null, "parts": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "null is not allowed")
	})

	t.Run("top-level null into a pointer", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[*part](), nil)
		require.NoError(t, err)
		assert.True(t, rv.IsNil())
	})
}

func TestTransform_DeferredReference(t *testing.T) {
	table := transform.NewTable()

	testCases := []struct {
		name    string
		input   string
		wantRef string
		wantVal int
		wantErr bool
	}{
		{name: "exact reference", input: "${var.size}", wantRef: "var.size"},
		{name: "indexed reference", input: "${var.sizes[2].value}", wantRef: "var.sizes[2].value"},
		{name: "numeric string is a literal", input: "12", wantVal: 12},
		{name: "surrounding text is a literal", input: "x-${var.size}", wantErr: true},
		{name: "malformed reference is a literal", input: "${var..size}", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rv, err := table.Transform(reflect.TypeFor[core.VariableOr[int]](), tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := rv.Interface().(core.VariableOr[int])
			if tc.wantRef != "" {
				ref, ok := got.Variable()
				require.True(t, ok)
				assert.Equal(t, tc.wantRef, ref.Path)
				assert.Equal(t, tc.input, ref.String(), "the rendered reference must round-trip")
				return
			}
			val, ok := got.Value()
			require.True(t, ok)
			assert.Equal(t, tc.wantVal, val)
		})
	}

	t.Run("plain string target keeps the reference text", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[string](), "${var.size}")
		require.NoError(t, err)
		assert.Equal(t, "${var.size}", rv.String())
	})

	t.Run("literal string with surrounding text", func(t *testing.T) {
		rv, err := table.Transform(reflect.TypeFor[core.VariableOr[string]](), "prefix ${var.size}")
		require.NoError(t, err)
		val, ok := rv.Interface().(core.VariableOr[string]).Value()
		require.True(t, ok)
		assert.Equal(t, "prefix ${var.size}", val)
	})
}

func TestTransform_Primitives(t *testing.T) {
	table := transform.NewTable()

	testCases := []struct {
		name    string
		target  reflect.Type
		input   any
		want    any
		wantErr bool
	}{
		{name: "str from string", target: reflect.TypeFor[string](), input: "a", want: "a"},
		{name: "str from int", target: reflect.TypeFor[string](), input: 42, want: "42"},
		{name: "str from float", target: reflect.TypeFor[string](), input: 1.5, want: "1.5"},
		{name: "str from bool", target: reflect.TypeFor[string](), input: true, want: "true"},
		{name: "str from list", target: reflect.TypeFor[string](), input: []any{"a", 1}, want: `["a",1]`},
		{name: "bool from bool", target: reflect.TypeFor[bool](), input: false, want: false},
		{name: "bool from literal", target: reflect.TypeFor[bool](), input: "true", want: true},
		{name: "bool rejects other strings", target: reflect.TypeFor[bool](), input: "yes", wantErr: true},
		{name: "bool rejects numbers", target: reflect.TypeFor[bool](), input: 1, wantErr: true},
		{name: "int from number", target: reflect.TypeFor[int](), input: 7, want: 7},
		{name: "int from json number", target: reflect.TypeFor[int](), input: json.Number("9"), want: 9},
		{name: "int from string", target: reflect.TypeFor[int](), input: "8", want: 8},
		{name: "int rejects fractions", target: reflect.TypeFor[int](), input: 7.5, wantErr: true},
		{name: "int rejects booleans", target: reflect.TypeFor[int](), input: true, wantErr: true},
		{name: "int8 overflow", target: reflect.TypeFor[int8](), input: 300, wantErr: true},
		{name: "float from int", target: reflect.TypeFor[float64](), input: 3, want: 3.0},
		{name: "float from string", target: reflect.TypeFor[float64](), input: "0.25", want: 0.25},
		{name: "float rejects junk", target: reflect.TypeFor[float64](), input: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rv, err := table.Transform(tc.target, tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, rv.Interface())
		})
	}
}

func TestTransform_Enum(t *testing.T) {
	table := transform.NewTable()

	rv, err := table.Transform(reflect.TypeFor[color](), "GREEN")
	require.NoError(t, err)
	assert.Equal(t, color("GREEN"), rv.Interface())

	member := color("RED")
	rv, err = table.Transform(reflect.TypeFor[color](), member)
	require.NoError(t, err)
	assert.Equal(t, member, rv.Interface())

	_, err = table.Transform(reflect.TypeFor[color](), 1)
	require.Error(t, err)
}

func TestTransform_Idempotent(t *testing.T) {
	// --- Arrange ---
	table := transform.NewTable()
	rv, err := table.Transform(reflect.TypeFor[widget](), decodeJSON(t, `{"name": "w", "parts": [{"id": 1}], "size": 3}`))
	require.NoError(t, err)
	first := rv.Interface().(widget)

	// --- Act ---
	again, err := table.Transform(reflect.TypeFor[widget](), first)
	require.NoError(t, err)
	viaPointer, err := table.Transform(reflect.TypeFor[*widget](), first)
	require.NoError(t, err)

	// --- Assert ---
	assert.True(t, reflect.DeepEqual(first, again.Interface()))
	assert.True(t, reflect.DeepEqual(first, *viaPointer.Interface().(*widget)))
}

func TestTransform_SelfReferential(t *testing.T) {
	// --- Arrange ---
	table := transform.NewTable()
	raw := decodeJSON(t, `{
		"key": "outer",
		"loop": {
			"inputs": "[1,2]",
			"body": {"key": "inner", "loop": {"inputs": "[]", "body": "${var.leaf}"}}
		}
	}`)

	// --- Act ---
	rv, err := table.Transform(reflect.TypeFor[node](), raw)

	// --- Assert ---
	require.NoError(t, err)
	outer := rv.Interface().(node)
	require.NotNil(t, outer.Loop)
	inner, ok := outer.Loop.Body.Value()
	require.True(t, ok)
	assert.Equal(t, "inner", inner.Key)
	require.NotNil(t, inner.Loop)
	assert.True(t, inner.Loop.Body.IsVariable())

	// The cycle is interned once: interning again adds nothing.
	before := table.Len()
	_, err = table.Intern(reflect.TypeFor[loop]())
	require.NoError(t, err)
	assert.Equal(t, before, table.Len())
}

type ambiguousPointer struct {
	Value core.VariableOr[*int] `json:"value"`
}

type ambiguousNested struct {
	Value core.VariableOr[core.VariableOr[int]] `json:"value"`
}

type duplicateField struct {
	A string `json:"a"`
	B string `json:"a"`
}

func TestTable_RejectsModellingErrors(t *testing.T) {
	testCases := []struct {
		name    string
		target  reflect.Type
		wantErr string
	}{
		{name: "optional concrete arm", target: reflect.TypeFor[ambiguousPointer](), wantErr: "ambiguous union"},
		{name: "nested variable arms", target: reflect.TypeFor[ambiguousNested](), wantErr: "nested variable arms"},
		{name: "duplicate field", target: reflect.TypeFor[duplicateField](), wantErr: "duplicate field name 'a'"},
		{name: "non-string map key", target: reflect.TypeFor[map[int]string](), wantErr: "keys must be strings"},
		{name: "channel", target: reflect.TypeFor[chan int](), wantErr: "unsupported Go type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table := transform.NewTable()

			_, err := table.Intern(tc.target)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Zero(t, table.Len(), "a failed intern must leave the table unchanged")
		})
	}
}

func TestTable_Descriptor(t *testing.T) {
	table := transform.NewTable()
	id := table.MustIntern(reflect.TypeFor[widget]())

	d := table.Descriptor(id)
	assert.Equal(t, transform.KindRecord, d.Kind)

	name, ok := d.Field("name")
	require.True(t, ok)
	assert.True(t, name.Required)

	region, ok := d.Field("region")
	require.True(t, ok)
	assert.False(t, region.Required)
	require.NotNil(t, region.Default)
	assert.Equal(t, "eu-west-1", *region.Default)

	size, ok := d.Field("size")
	require.True(t, ok)
	union := table.Descriptor(size.Type)
	require.Equal(t, transform.KindUnion, union.Kind)
	require.Len(t, union.Arms, 2)
	assert.Equal(t, transform.KindInt, table.Descriptor(union.Arms[0]).Kind)
	variable := table.Descriptor(union.Arms[1])
	assert.Equal(t, transform.KindVariable, variable.Kind)
	assert.Equal(t, "Variable[int]", variable.Name())
}

func TestEncode(t *testing.T) {
	// --- Arrange ---
	table := transform.NewTable()
	w := widget{
		Name:   "w",
		Size:   core.Ref[int]("var.size"),
		Parts:  []part{{ID: 1}},
		Region: "eu-west-1",
	}

	// --- Act ---
	got, err := table.Encode(w)

	// --- Assert ---
	require.NoError(t, err)
	want := cty.ObjectVal(map[string]cty.Value{
		"name":   cty.StringVal("w"),
		"size":   cty.StringVal("${var.size}"),
		"parts":  cty.TupleVal([]cty.Value{cty.ObjectVal(map[string]cty.Value{"id": cty.NumberIntVal(1)})}),
		"region": cty.StringVal("eu-west-1"),
	})
	assert.True(t, want.RawEquals(got), "got %#v", got)
}

func TestEncode_RoundTrip(t *testing.T) {
	table := transform.NewTable()
	raw := decodeJSON(t, `{"name": "w", "color": "GREEN", "size": 0, "parts": [{"id": 2, "cost": 0.5}], "region": "us-east-1"}`)

	rv, err := table.Transform(reflect.TypeFor[widget](), raw)
	require.NoError(t, err)
	encoded, err := table.Encode(rv.Interface())
	require.NoError(t, err)
	again, err := table.Transform(reflect.TypeFor[widget](), encoded)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(rv.Interface(), again.Interface()))
	assert.True(t, cty.NumberIntVal(0).RawEquals(encoded.GetAttr("size")), "a set zero value is kept")
}

func TestNativeConversion(t *testing.T) {
	native := map[string]any{
		"s": "x",
		"n": int64(3),
		"f": 1.5,
		"b": true,
		"l": []any{"a", nil},
		"m": map[string]any{},
	}

	val, err := transform.FromNative(native)
	require.NoError(t, err)
	back, err := transform.ToNative(val)
	require.NoError(t, err)

	if diff := cmp.Diff(native, back); diff != "" {
		t.Errorf("native round trip mismatch (-want +got):\n%s", diff)
	}
}
