package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/lox/lang/interp"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	env := interp.NewEnvironment()
	env.Define("a", interp.Number(1))

	v, err := env.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.Number(1), v)
}

func TestEnvironmentGetUndefinedFails(t *testing.T) {
	env := interp.NewEnvironment()
	_, err := env.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestEnvironmentGetRecursesToEnclosing(t *testing.T) {
	outer := interp.NewEnvironment()
	outer.Define("a", interp.Number(1))
	inner := interp.NewChildEnvironment(outer)

	v, err := inner.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.Number(1), v)
}

func TestEnvironmentAssignFailsIfNeverDefined(t *testing.T) {
	env := interp.NewEnvironment()
	err := env.Assign("a", interp.Number(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'a'.")
}

func TestEnvironmentAssignWalksToDefiningScope(t *testing.T) {
	outer := interp.NewEnvironment()
	outer.Define("a", interp.Number(1))
	inner := interp.NewChildEnvironment(outer)

	require.NoError(t, inner.Assign("a", interp.Number(2)))

	v, err := outer.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.Number(2), v)
}

func TestEnvironmentGetAtAndAssignAt(t *testing.T) {
	global := interp.NewEnvironment()
	global.Define("a", interp.Number(1))
	block := interp.NewChildEnvironment(global)
	inner := interp.NewChildEnvironment(block)

	assert.Equal(t, interp.Number(1), inner.GetAt(2, "a"))

	inner.AssignAt(2, "a", interp.Number(5))
	v, err := global.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.Number(5), v)
}

func TestEnvironmentShadowingDoesNotLeakOutward(t *testing.T) {
	outer := interp.NewEnvironment()
	outer.Define("a", interp.String("outer"))
	inner := interp.NewChildEnvironment(outer)
	inner.Define("a", interp.String("inner"))

	v, err := inner.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.String("inner"), v)

	v, err = outer.Get("a")
	require.NoError(t, err)
	assert.Equal(t, interp.String("outer"), v)
}
