package typevar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/types"
)

func TestConstrainTypesNarrowsReceiver(t *testing.T) {
	env := NewEnv()
	a := env.MustNewFree("a", "", FreeOptions{Ints: interval.Range(16, 32), SIMD: interval.All})
	b := env.MustNewFree("b", "", FreeOptions{Ints: interval.All, SIMD: interval.Range(4, 16)})

	require.NoError(t, a.ConstrainTypes(b))

	assert.Equal(t, "TypeSet(lanes=(4, 16), ints=(16, 32))", mustTypeSet(t, a).String())
	assert.Equal(t, "TypeSet(lanes=(4, 16), ints=(8, 64))", mustTypeSet(t, b).String(), "other is not modified")
}

func TestConstrainTypesSelfIsNoOp(t *testing.T) {
	env := NewEnv()
	a := env.MustNewFree("a", "", FreeOptions{Ints: interval.All})
	before := mustTypeSet(t, a)

	require.NoError(t, a.ConstrainTypes(a))
	require.NoError(t, a.ConstrainTypes(a.SameAs()))
	assert.Equal(t, before, mustTypeSet(t, a))
}

func TestConstrainTypesThroughSameAs(t *testing.T) {
	env := NewEnv()
	x := env.MustNewFree("x", "", FreeOptions{Ints: interval.All, Floats: interval.All})
	y := env.MustNewFree("y", "", FreeOptions{Floats: interval.All})

	alias := x.SameAs().SameAs()
	require.NoError(t, alias.ConstrainTypes(y))

	ts := mustTypeSet(t, x)
	assert.True(t, ts.Ints().IsEmpty())
	assert.Equal(t, interval.New(32, 64), ts.Floats())
}

func TestConstrainTypesAdoptsSingleton(t *testing.T) {
	env := NewEnv()
	x := env.MustNewFree("x", "", FreeOptions{Ints: interval.All})
	i32 := env.Singleton(types.I32)

	require.NoError(t, x.ConstrainTypes(i32))

	vt, ok := x.SingletonType()
	require.True(t, ok)
	assert.Equal(t, types.I32, vt)
	assert.Equal(t, "TypeSet(lanes=(1, 1), ints=(32, 32))", mustTypeSet(t, x).String())

	// A pinned receiver keeps its own type.
	i16 := env.MustNewFree("i16ish", "", FreeOptions{Ints: interval.Range(16, 32)})
	require.NoError(t, i32.ConstrainTypes(i16))
	vt, ok = i32.SingletonType()
	require.True(t, ok)
	assert.Equal(t, types.I32, vt)
}

func TestConstrainTypesDerivedIsUnsupported(t *testing.T) {
	env := NewEnv()
	x := env.MustNewFree("x", "", FreeOptions{Ints: interval.All, SIMD: interval.All})
	y := env.MustNewFree("y", "", FreeOptions{Ints: interval.Range(8, 16)})
	lane := x.LaneOf()

	err := lane.ConstrainTypes(y)
	require.Error(t, err)
	assert.True(t, IsPropagationUnsupported(err))

	err = y.ConstrainTypes(lane)
	assert.True(t, IsPropagationUnsupported(err))

	assert.Equal(t, interval.New(8, 64), mustTypeSet(t, x).Ints(), "the base is untouched")
	assert.Equal(t, interval.New(8, 16), mustTypeSet(t, y).Ints())
}

func TestConstrainTypesEmptyIntersection(t *testing.T) {
	env := NewEnv()
	x := env.MustNewFree("x", "", FreeOptions{Ints: interval.All})
	y := env.MustNewFree("y", "", FreeOptions{Floats: interval.All})
	before := mustTypeSet(t, x)

	err := x.ConstrainTypes(y)
	require.Error(t, err)
	assert.True(t, IsEmptyTypeSet(err))
	assert.Contains(t, err.Error(), "var=x, other=y")
	assert.Equal(t, before, mustTypeSet(t, x), "the slot is left unchanged")

	v := env.MustNewFree("v", "", FreeOptions{Ints: interval.All, SIMD: interval.All, NoScalars: true})
	s := env.MustNewFree("s", "", FreeOptions{Ints: interval.All})
	err = v.ConstrainTypes(s)
	assert.True(t, IsEmptyTypeSet(err), "disjoint lane ranges")
}

func TestConstrainTypesForeignEnv(t *testing.T) {
	a := NewEnv().MustNewFree("a", "", FreeOptions{Ints: interval.All})
	b := NewEnv().MustNewFree("b", "", FreeOptions{Ints: interval.All})

	err := a.ConstrainTypes(b)
	assert.True(t, HasCode(err, ErrCodeForeignEnv))
}

func TestConstrainThenRebind(t *testing.T) {
	// A typical inference step: narrow a control variable, then tie a second
	// variable to it.
	env := NewEnv()
	ctrl := env.MustNewFree("Ctrl", "", FreeOptions{Ints: interval.All, SIMD: interval.All})
	narrow := env.MustNewFree("Narrow", "", FreeOptions{Ints: interval.Range(16, 64), SIMD: interval.Range(1, 8)})
	result := env.MustNewFree("Result", "", FreeOptions{Ints: interval.All, SIMD: interval.All})

	require.NoError(t, ctrl.ConstrainTypes(narrow))
	half, err := ctrl.HalfWidth()
	require.NoError(t, err)
	require.NoError(t, result.ChangeToDerived(ctrl, HalfWidth))

	assert.Equal(t, mustTypeSet(t, half), mustTypeSet(t, result))
	assert.Equal(t, "TypeSet(lanes=(1, 8), ints=(8, 32))", mustTypeSet(t, result).String())
	assert.Equal(t, "Ctrl.half_width()", result.Expr())
}
