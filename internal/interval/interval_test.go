package interval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samples = []Interval{
	Empty,
	New(1, 1),
	New(1, 8),
	New(8, 64),
	New(16, 32),
	New(32, 64),
	New(64, 64),
	New(2, 4),
}

func TestZeroValueIsEmpty(t *testing.T) {
	var iv Interval
	assert.True(t, iv.IsEmpty())
	assert.Equal(t, Empty, iv)
	assert.NotEqual(t, New(0, 0), iv)
	assert.Equal(t, "()", iv.String())
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want Interval
	}{
		{"overlap", New(8, 32), New(16, 64), New(16, 32)},
		{"contained", New(1, 256), New(4, 16), New(4, 16)},
		{"disjoint", New(1, 8), New(16, 32), Empty},
		{"touching", New(1, 8), New(8, 32), New(8, 8)},
		{"left empty", Empty, New(8, 32), Empty},
		{"right empty", New(8, 32), Empty, Empty},
		{"both empty", Empty, Empty, Empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersect(tt.a, tt.b))
		})
	}
}

func TestIntersectLaws(t *testing.T) {
	for _, a := range samples {
		assert.Equal(t, a, Intersect(a, a), "idempotent on %s", a)
		assert.Equal(t, Empty, Intersect(a, Empty), "absorbs empty on %s", a)
		for _, b := range samples {
			assert.Equal(t, Intersect(a, b), Intersect(b, a), "commutative on %s, %s", a, b)
			for _, c := range samples {
				assert.Equal(t,
					Intersect(Intersect(a, b), c),
					Intersect(a, Intersect(b, c)),
					"associative on %s, %s, %s", a, b, c)
			}
		}
	}
}

func TestIsSubinterval(t *testing.T) {
	for _, x := range samples {
		assert.True(t, IsSubinterval(Empty, x), "empty is inside %s", x)
		if !x.IsEmpty() {
			assert.False(t, IsSubinterval(x, Empty), "%s is not inside empty", x)
		}
	}

	assert.True(t, IsSubinterval(New(16, 32), New(8, 64)))
	assert.True(t, IsSubinterval(New(8, 64), New(8, 64)))
	assert.False(t, IsSubinterval(New(8, 64), New(16, 32)))
	assert.False(t, IsSubinterval(New(1, 8), New(2, 16)))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Empty, IntRange))
	assert.True(t, ValidSpec(None, IntRange))
	assert.True(t, ValidSpec(All, IntRange))

	assert.True(t, Valid(New(8, 64), IntRange))
	assert.True(t, Valid(New(1, 1), LanesRange))

	assert.False(t, Valid(New(3, 8), IntRange), "non power of two lower bound")
	assert.False(t, Valid(New(8, 24), IntRange), "non power of two upper bound")
	assert.False(t, Valid(New(0, 8), IntRange), "zero is not a power of two")
	assert.False(t, Valid(New(32, 8), IntRange), "inverted")
	assert.False(t, Valid(New(16, 128), IntRange), "above maximum")
	assert.False(t, Valid(New(16, 64), FloatRange), "below minimum")
	assert.False(t, Valid(New(1, 512), LanesRange), "too many lanes")
	assert.False(t, ValidSpec(Range(3, 8), IntRange))
}

func TestMap(t *testing.T) {
	got, err := Map(New(16, 64), Half, IntRange)
	require.NoError(t, err)
	assert.Equal(t, New(8, 32), got)

	got, err = Map(New(4, 16), Double, LanesRange)
	require.NoError(t, err)
	assert.Equal(t, New(8, 32), got)

	got, err = Map(Empty, Double, IntRange)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMapRejectsInvalidResult(t *testing.T) {
	_, err := Map(New(16, 64), Double, IntRange)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var ierr *Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, New(32, 128), ierr.Interval)
	assert.Equal(t, IntRange, ierr.Range)

	_, err = Map(New(1, 4), Half, LanesRange)
	assert.ErrorIs(t, err, ErrInvalid, "halving a single lane")
}

func TestMapRejectsInvalidInput(t *testing.T) {
	_, err := Map(New(3, 8), Double, IntRange)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEncode(t *testing.T) {
	got, err := Encode(New(8, 32), IntRange)
	require.NoError(t, err)
	assert.Equal(t, New(8, 32), got)

	got, err = Encode(Empty, FloatRange)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	_, err = Encode(New(8, 32), FloatRange)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecode(t *testing.T) {
	got, err := Decode(All, AllInts, Empty)
	require.NoError(t, err)
	assert.Equal(t, New(8, 64), got)

	got, err = Decode(None, LanesRange, New(1, 1))
	require.NoError(t, err)
	assert.Equal(t, New(1, 1), got)

	got, err = Decode(None, BoolRange, Empty)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	got, err = Decode(Range(16, 32), AllInts, Empty)
	require.NoError(t, err)
	assert.Equal(t, New(16, 32), got)

	got, err = Decode(Exactly(Empty), LanesRange, New(1, 1))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "an explicit empty interval is not replaced by the default")

	_, err = Decode(Range(4, 16), AllInts, Empty)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBoolSpec(t *testing.T) {
	assert.Equal(t, All, Bool(true))
	assert.Equal(t, None, Bool(false))
	assert.True(t, Bool(false).IsNone())
	assert.Equal(t, "(8, 16)", Range(8, 16).String())
}
