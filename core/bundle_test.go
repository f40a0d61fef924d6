package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func testBundle() Bundle {
	return NewBundle("dev", map[string]cty.Value{
		"retries": cty.NumberIntVal(3),
		"owner":   cty.StringVal("data-team"),
		"cluster": cty.ObjectVal(map[string]cty.Value{
			"nodes": cty.TupleVal([]cty.Value{cty.StringVal("n1"), cty.StringVal("n2")}),
		}),
		"indirect": cty.StringVal("${var.owner}"),
	})
}

func TestBundle_IsIsolated(t *testing.T) {
	// --- Arrange ---
	vars := map[string]cty.Value{"a": cty.StringVal("1")}
	b := NewBundle("dev", vars)

	// --- Act ---
	vars["a"] = cty.StringVal("changed")
	copied := b.Variables()
	copied["b"] = cty.StringVal("added")

	// --- Assert ---
	got, ok := b.Variable("a")
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("1"), got)
	_, ok = b.Variable("b")
	assert.False(t, ok)
}

func TestBundle_ResourceState(t *testing.T) {
	b := NewBundle("dev", nil)
	assert.True(t, b.ResourceState().RawEquals(cty.EmptyObjectVal))

	state := cty.ObjectVal(map[string]cty.Value{
		"jobs": cty.ObjectVal(map[string]cty.Value{"a": cty.EmptyObjectVal}),
	})
	withState := b.WithResourceState(state)
	assert.True(t, withState.ResourceState().RawEquals(state))
	assert.True(t, b.ResourceState().RawEquals(cty.EmptyObjectVal), "the original bundle must not change")
}

func TestBundle_Lookup(t *testing.T) {
	b := testBundle()

	testCases := []struct {
		name      string
		path      string
		want      cty.Value
		expectErr string
	}{
		{name: "target", path: "bundle.target", want: cty.StringVal("dev")},
		{name: "plain variable", path: "var.owner", want: cty.StringVal("data-team")},
		{name: "nested index", path: "var.cluster.nodes[1]", want: cty.StringVal("n2")},
		{name: "unknown variable", path: "var.missing", expectErr: "can't find variable 'missing'"},
		{name: "index out of range", path: "var.cluster.nodes[5]", expectErr: "can't resolve"},
		{name: "nested reference", path: "var.indirect", expectErr: "nested references are not supported"},
		{name: "unsupported root", path: "resources.jobs.a", expectErr: "unsupported variable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := b.Lookup(Variable{Path: tc.path})
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.RawEquals(got), "got %#v", got)
		})
	}
}

func TestResolve(t *testing.T) {
	b := testBundle()

	t.Run("concrete value", func(t *testing.T) {
		got, err := Resolve(b, ValueOf(5))
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	})

	t.Run("reference is transformed to the wrapped type", func(t *testing.T) {
		got, err := Resolve(b, Ref[int]("var.retries"))
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("sequence reference", func(t *testing.T) {
		got, err := Resolve(b, Ref[[]string]("var.cluster.nodes"))
		require.NoError(t, err)
		assert.Equal(t, []string{"n1", "n2"}, got)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Resolve(b, Ref[int]("var.owner"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't resolve 'var.owner'")
	})

	t.Run("unset", func(t *testing.T) {
		got, err := Resolve(b, VariableOr[string]{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBundle_ResolveVariable(t *testing.T) {
	b := testBundle()

	v, err := NewVariable[string]("var.retries")
	require.NoError(t, err)

	got, err := b.ResolveVariable(v)
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}
