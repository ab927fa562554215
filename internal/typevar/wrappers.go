package typevar

import (
	"github.com/roach88/polytype/internal/interval"
)

// SameAs returns a variable constrained to have the same type as tv.
func (tv TypeVar) SameAs() TypeVar {
	return Derived(tv, SameAs)
}

// LaneOf returns a variable that is the scalar lane type of tv. When tv
// assumes a scalar type, the derived type is that same scalar.
func (tv TypeVar) LaneOf() TypeVar {
	return Derived(tv, LaneOf)
}

// AsBool returns a variable with the same vector geometry as tv and boolean
// lanes. Scalar types map to b1.
func (tv TypeVar) AsBool() TypeVar {
	return Derived(tv, AsBool)
}

// HalfWidth returns a variable with the same lane count as tv and lanes of
// half the width. Fails if tv is free and some type in its set cannot be
// halved.
func (tv TypeVar) HalfWidth() (TypeVar, error) {
	if n := tv.node(); !n.derived {
		ts := n.set
		if lo := ts.Ints().Min(); !ts.Ints().IsEmpty() && lo <= 8 {
			return TypeVar{}, newTransformError(tv, HalfWidth, "can't halve all integer types")
		}
		if lo := ts.Floats().Min(); !ts.Floats().IsEmpty() && lo <= 32 {
			return TypeVar{}, newTransformError(tv, HalfWidth, "can't halve all float types")
		}
		if lo := ts.Bools().Min(); !ts.Bools().IsEmpty() && lo <= 8 {
			return TypeVar{}, newTransformError(tv, HalfWidth, "can't halve all boolean types")
		}
	}
	return Derived(tv, HalfWidth), nil
}

// DoubleWidth returns a variable with the same lane count as tv and lanes of
// double the width. Fails if tv is free and some type in its set cannot be
// doubled.
func (tv TypeVar) DoubleWidth() (TypeVar, error) {
	if n := tv.node(); !n.derived {
		ts := n.set
		if hi := ts.Ints().Max(); !ts.Ints().IsEmpty() && hi >= interval.MaxBits {
			return TypeVar{}, newTransformError(tv, DoubleWidth, "can't double all integer types")
		}
		if hi := ts.Floats().Max(); !ts.Floats().IsEmpty() && hi >= interval.MaxBits {
			return TypeVar{}, newTransformError(tv, DoubleWidth, "can't double all float types")
		}
		if hi := ts.Bools().Max(); !ts.Bools().IsEmpty() && hi >= interval.MaxBits {
			return TypeVar{}, newTransformError(tv, DoubleWidth, "can't double all boolean types")
		}
	}
	return Derived(tv, DoubleWidth), nil
}

// HalfVector returns a variable with half as many lanes as tv and the same
// lane type. Fails if tv is free and admits scalar types.
func (tv TypeVar) HalfVector() (TypeVar, error) {
	if n := tv.node(); !n.derived {
		if lanes := n.set.Lanes(); !lanes.IsEmpty() && lanes.Min() <= 1 {
			return TypeVar{}, newTransformError(tv, HalfVector, "can't halve a scalar type")
		}
	}
	return Derived(tv, HalfVector), nil
}

// DoubleVector returns a variable with twice as many lanes as tv and the same
// lane type. Fails if tv is free and admits the maximum lane count.
func (tv TypeVar) DoubleVector() (TypeVar, error) {
	if n := tv.node(); !n.derived {
		if lanes := n.set.Lanes(); !lanes.IsEmpty() && lanes.Max() >= interval.MaxLanes {
			return TypeVar{}, newTransformError(tv, DoubleVector, "can't double 256 lanes")
		}
	}
	return Derived(tv, DoubleVector), nil
}
