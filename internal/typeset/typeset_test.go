package typeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/types"
)

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, interval.New(8, 64), MustNew(Options{Ints: interval.All}).Ints())
	assert.Equal(t, interval.New(32, 64), MustNew(Options{Floats: interval.All}).Floats())
	assert.Equal(t, interval.New(1, 64), MustNew(Options{Bools: interval.All}).Bools())

	ts := MustNew(Options{Ints: interval.All})
	assert.Equal(t, interval.New(1, 1), ts.Lanes(), "lanes default to scalar only")
	assert.True(t, ts.Floats().IsEmpty(), "unspecified axis is observably empty")
	assert.True(t, ts.Bools().IsEmpty())

	assert.Equal(t, interval.New(1, 256), MustNew(Options{Lanes: interval.All}).Lanes())
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"ints below eight", Options{Ints: interval.Range(4, 16)}},
		{"ints not power of two", Options{Ints: interval.Range(8, 48)}},
		{"float too narrow", Options{Floats: interval.Range(16, 32)}},
		{"bools too wide", Options{Bools: interval.Range(1, 128)}},
		{"too many lanes", Options{Lanes: interval.Range(1, 512)}},
		{"inverted lanes", Options{Lanes: interval.Range(8, 4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, interval.ErrInvalid)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "TypeSet(lanes=(1, 1), ints=(8, 32))",
		MustNew(Options{Ints: interval.Range(8, 32)}).String())
	assert.Equal(t, "TypeSet(lanes=(1, 256), ints=(8, 64))",
		MustNew(Options{Lanes: interval.All, Ints: interval.All}).String())
	assert.Equal(t, "TypeSet(lanes=(1, 1), floats=(32, 64), bools=(1, 64))",
		MustNew(Options{Floats: interval.All, Bools: interval.All}).String())
}

func TestIntersect(t *testing.T) {
	a := MustNew(Options{Lanes: interval.All, Ints: interval.Range(16, 32)})
	b := MustNew(Options{Lanes: interval.Range(4, 16), Ints: interval.All})

	got := a.Intersect(b)
	assert.Equal(t, interval.New(4, 16), got.Lanes())
	assert.Equal(t, interval.New(16, 32), got.Ints())
	assert.True(t, got.Floats().IsEmpty())
	assert.True(t, got.Bools().IsEmpty())

	assert.Equal(t, "TypeSet(lanes=(1, 256), ints=(16, 32))", a.String(), "inputs are not modified")
}

func TestIntersectDisjointAxisIsSilentlyEmpty(t *testing.T) {
	a := MustNew(Options{Lanes: interval.All, Bools: interval.Range(1, 8)})
	b := MustNew(Options{Lanes: interval.All, Bools: interval.Range(16, 32)})

	got := a.Intersect(b)
	assert.Equal(t, interval.New(1, 256), got.Lanes())
	assert.True(t, got.Bools().IsEmpty())
	assert.Equal(t, "TypeSet(lanes=(1, 256))", got.String())
	assert.True(t, got.IsEmpty())
}

func TestIntersectDisjointLanes(t *testing.T) {
	a := MustNew(Options{Lanes: interval.Range(1, 2), Ints: interval.All})
	b := MustNew(Options{Lanes: interval.Range(4, 8), Ints: interval.All})

	got := a.Intersect(b)
	assert.True(t, got.Lanes().IsEmpty(), "lanes never become an inverted pair")
	assert.True(t, got.IsEmpty())
}

func TestIsSubset(t *testing.T) {
	all := MustNew(Options{Lanes: interval.All, Ints: interval.All, Floats: interval.All, Bools: interval.All})
	i32 := Of(types.I32)
	f32x4 := Of(types.Vector{Base: types.F32, Count: 4})

	assert.True(t, i32.IsSubset(all))
	assert.True(t, f32x4.IsSubset(all))
	assert.False(t, all.IsSubset(i32))
	assert.False(t, i32.IsSubset(f32x4))
	assert.True(t, all.IsSubset(all))
}

func TestOf(t *testing.T) {
	ts := Of(types.Vector{Base: types.I16, Count: 8})
	assert.Equal(t, interval.New(8, 8), ts.Lanes())
	assert.Equal(t, interval.New(16, 16), ts.Ints())
	assert.True(t, ts.Floats().IsEmpty())

	assert.Equal(t, "TypeSet(lanes=(1, 1), bools=(1, 1))", Of(types.B1).String())
}

func TestLaneOf(t *testing.T) {
	ts := MustNew(Options{Lanes: interval.Range(4, 16), Ints: interval.Range(8, 16), Floats: interval.All})
	got := ts.LaneOf()
	assert.Equal(t, interval.New(1, 1), got.Lanes())
	assert.Equal(t, ts.Ints(), got.Ints())
	assert.Equal(t, ts.Floats(), got.Floats())
	assert.Equal(t, ts.Bools(), got.Bools())
}

func TestAsBool(t *testing.T) {
	ts := MustNew(Options{Lanes: interval.Range(4, 16), Ints: interval.All, Floats: interval.All})
	got := ts.AsBool()
	assert.Equal(t, interval.New(4, 16), got.Lanes())
	assert.True(t, got.Ints().IsEmpty())
	assert.True(t, got.Floats().IsEmpty())
	assert.Equal(t, interval.New(1, 1), got.Bools())

	scalar := MustNew(Options{Ints: interval.All}).AsBool()
	assert.Equal(t, "TypeSet(lanes=(1, 1), bools=(1, 1))", scalar.String())
}

func TestHalfWidth(t *testing.T) {
	ts := MustNew(Options{Ints: interval.Range(16, 64), Floats: interval.Range(64, 64), Bools: interval.Range(16, 64)})
	got, err := ts.HalfWidth()
	require.NoError(t, err)
	assert.Equal(t, interval.New(8, 32), got.Ints())
	assert.Equal(t, interval.New(32, 32), got.Floats())
	assert.Equal(t, interval.New(8, 32), got.Bools())
	assert.Equal(t, ts.Lanes(), got.Lanes())
}

func TestHalfWidthBelowFloor(t *testing.T) {
	_, err := MustNew(Options{Ints: interval.Range(8, 32)}).HalfWidth()
	assert.ErrorIs(t, err, interval.ErrInvalid, "i4 is not a type")

	_, err = MustNew(Options{Floats: interval.All}).HalfWidth()
	assert.ErrorIs(t, err, interval.ErrInvalid, "f16 is not a type")

	_, err = MustNew(Options{Bools: interval.Range(1, 8)}).HalfWidth()
	assert.ErrorIs(t, err, interval.ErrInvalid, "b1 cannot be halved")
}

func TestDoubleWidth(t *testing.T) {
	ts := MustNew(Options{Lanes: interval.All, Ints: interval.Range(8, 32)})
	got, err := ts.DoubleWidth()
	require.NoError(t, err)
	assert.Equal(t, interval.New(16, 64), got.Ints())
	assert.Equal(t, interval.New(1, 256), got.Lanes())

	_, err = MustNew(Options{Ints: interval.Range(16, 64)}).DoubleWidth()
	assert.ErrorIs(t, err, interval.ErrInvalid, "64 is the ceiling")
}

func TestVectorTransforms(t *testing.T) {
	ts := MustNew(Options{Lanes: interval.Range(2, 16), Floats: interval.All})

	half, err := ts.HalfVector()
	require.NoError(t, err)
	assert.Equal(t, interval.New(1, 8), half.Lanes())
	assert.Equal(t, ts.Floats(), half.Floats())

	double, err := ts.DoubleVector()
	require.NoError(t, err)
	assert.Equal(t, interval.New(4, 32), double.Lanes())

	_, err = half.HalfVector()
	assert.ErrorIs(t, err, interval.ErrInvalid, "cannot halve a scalar")

	_, err = MustNew(Options{Lanes: interval.All, Ints: interval.All}).DoubleVector()
	assert.ErrorIs(t, err, interval.ErrInvalid, "cannot double 256 lanes")
}

func TestFields(t *testing.T) {
	ts := MustNew(Options{Lanes: interval.All, Ints: interval.Range(8, 32)})
	assert.Equal(t, []Field{
		{"min_lanes", 0}, {"max_lanes", 9},
		{"min_int", 3}, {"max_int", 6},
		{"min_float", 0}, {"max_float", 0},
		{"min_bool", 0}, {"max_bool", 0},
	}, ts.Fields())

	b1 := Of(types.B1).Fields()
	assert.Equal(t, Field{"min_bool", 0}, b1[6])
	assert.Equal(t, Field{"max_bool", 1}, b1[7], "b1 is distinguishable from an empty bool axis")
}

func TestFromFieldsInvertsFields(t *testing.T) {
	sets := []TypeSet{
		MustNew(Options{Lanes: interval.All, Ints: interval.Range(8, 32)}),
		MustNew(Options{Floats: interval.All, Bools: interval.All}),
		Of(types.B1),
		Of(types.Vector{Base: types.F32, Count: 4}),
		MustNew(Options{Lanes: interval.Exactly(interval.Empty), Ints: interval.All}),
	}
	for _, ts := range sets {
		got, err := FromFields(ts.Fields())
		require.NoError(t, err, ts.String())
		assert.Equal(t, ts, got)
	}
}

func TestFromFieldsRejects(t *testing.T) {
	_, err := FromFields(nil)
	assert.Error(t, err)

	fields := Of(types.I32).Fields()
	fields[0], fields[1] = fields[1], fields[0]
	_, err = FromFields(fields)
	assert.Error(t, err, "fields out of order")

	fields = Of(types.I32).Fields()
	fields[3].Value = fields[2].Value
	_, err = FromFields(fields)
	assert.Error(t, err, "max must exceed min")

	fields = Of(types.I32).Fields()
	fields[4], fields[5] = Field{"min_float", 1}, Field{"max_float", 2}
	_, err = FromFields(fields)
	assert.ErrorIs(t, err, interval.ErrInvalid, "f2 is outside the float range")
}

func TestEqualityAndHash(t *testing.T) {
	a := MustNew(Options{Lanes: interval.All, Ints: interval.Range(16, 32)})
	b := MustNew(Options{Lanes: interval.Range(1, 256), Ints: interval.Range(16, 32)})
	c := MustNew(Options{Lanes: interval.All, Ints: interval.Range(16, 64)})

	assert.True(t, a == b)
	assert.False(t, a == c)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Len(t, a.Hash(), 64)

	seen := map[TypeSet]int{a: 1}
	seen[b]++
	assert.Equal(t, 2, seen[a], "structurally equal sets share a map key")
	assert.Len(t, seen, 1)
}
