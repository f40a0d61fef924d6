package core

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariable(t *testing.T) {
	t.Run("valid path", func(t *testing.T) {
		v, err := NewVariable[int]("var.retries")
		require.NoError(t, err)
		assert.Equal(t, "${var.retries}", v.String())
		assert.Equal(t, reflect.TypeFor[int](), v.Type)
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := NewVariable[int]("var..retries")
		require.Error(t, err)
	})

	t.Run("identity is the path", func(t *testing.T) {
		a, _ := NewVariable[int]("var.x")
		b, _ := NewVariable[string]("var.x")
		assert.True(t, a.Equal(b))
	})
}

func TestParseVariable(t *testing.T) {
	v, ok := ParseVariable[string]("${var.name[0].first}")
	require.True(t, ok)
	assert.Equal(t, "var.name[0].first", v.Path)

	_, ok = ParseVariable[string]("hello ${var.name}")
	assert.False(t, ok)
}

func TestVariableOr(t *testing.T) {
	t.Run("zero value is unset", func(t *testing.T) {
		var v VariableOr[int]
		assert.False(t, v.IsSet())
		assert.False(t, v.IsVariable())
		assert.Equal(t, 7, v.OrElse(7))
		assert.Equal(t, "<unset>", v.String())
	})

	t.Run("concrete value", func(t *testing.T) {
		v := ValueOf(3)
		got, ok := v.Value()
		require.True(t, ok)
		assert.Equal(t, 3, got)
		assert.True(t, v.IsSet())
		assert.False(t, v.IsVariable())
		_, isRef := v.Variable()
		assert.False(t, isRef)
	})

	t.Run("reference", func(t *testing.T) {
		v := Ref[int]("var.retries")
		assert.True(t, v.IsVariable())
		ref, ok := v.Variable()
		require.True(t, ok)
		assert.Equal(t, "var.retries", ref.Path)
		assert.Equal(t, reflect.TypeFor[int](), ref.Type)
		assert.Equal(t, "${var.retries}", v.String())
		assert.Equal(t, 1, v.OrElse(1))
	})

	t.Run("ref panics on a malformed path", func(t *testing.T) {
		assert.Panics(t, func() { Ref[int]("var.") })
	})

	t.Run("equality", func(t *testing.T) {
		assert.True(t, ValueOf([]string{"a"}).Equal(ValueOf([]string{"a"})))
		assert.False(t, ValueOf(1).Equal(ValueOf(2)))
		assert.True(t, Ref[int]("var.a").Equal(Ref[int]("var.a")))
		assert.False(t, Ref[int]("var.a").Equal(ValueOf(0)))
		assert.True(t, VariableOr[int]{}.Equal(VariableOr[int]{}))
	})

	t.Run("wrapper contract", func(t *testing.T) {
		var v VariableOr[string]
		assert.Equal(t, reflect.TypeFor[string](), v.WrappedType())

		v.SetValue(reflect.ValueOf("x"))
		got, ok := v.Value()
		require.True(t, ok)
		assert.Equal(t, "x", got)

		value, ref, set := v.Unwrap()
		assert.True(t, set)
		assert.Empty(t, ref)
		assert.Equal(t, "x", value.String())

		v.SetReference("var.y")
		_, ref, set = v.Unwrap()
		assert.True(t, set)
		assert.Equal(t, "var.y", ref)
	})
}
