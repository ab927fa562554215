package typevar

import (
	"fmt"

	"github.com/roach88/polytype/internal/typeset"
)

// DerivedFunc is a function from one type variable's type set to another's.
// The set of functions is closed; generated code mirrors it as the
// OperandConstraint enum, built from AllDerivedFuncs.
type DerivedFunc uint8

const (
	// SameAs is the identity. It records that two operands must have equal
	// types and can always be stripped.
	SameAs DerivedFunc = iota
	// LaneOf is the scalar type of one lane.
	LaneOf
	// AsBool keeps the lane count and makes the lanes b1.
	AsBool
	// HalfWidth keeps the lane count and halves the lane width.
	HalfWidth
	// DoubleWidth keeps the lane count and doubles the lane width.
	DoubleWidth
	// HalfVector halves the lane count.
	HalfVector
	// DoubleVector doubles the lane count.
	DoubleVector
)

// AllDerivedFuncs lists every DerivedFunc in declaration order.
var AllDerivedFuncs = []DerivedFunc{
	SameAs, LaneOf, AsBool, HalfWidth, DoubleWidth, HalfVector, DoubleVector,
}

// The method name must match the method on the generated Type; the variant
// name must match the OperandConstraint enum.
var derivedFuncNames = [...]struct {
	method  string
	variant string
}{
	SameAs:       {"same_as", "SameAs"},
	LaneOf:       {"lane_of", "LaneOf"},
	AsBool:       {"as_bool", "AsBool"},
	HalfWidth:    {"half_width", "HalfWidth"},
	DoubleWidth:  {"double_width", "DoubleWidth"},
	HalfVector:   {"half_vector", "HalfVector"},
	DoubleVector: {"double_vector", "DoubleVector"},
}

// String returns the method name, e.g. "half_width".
func (f DerivedFunc) String() string {
	if int(f) < len(derivedFuncNames) {
		return derivedFuncNames[f].method
	}
	return fmt.Sprintf("DerivedFunc(%d)", uint8(f))
}

// Variant returns the enum variant name, e.g. "HalfWidth".
func (f DerivedFunc) Variant() string {
	if int(f) < len(derivedFuncNames) {
		return derivedFuncNames[f].variant
	}
	return fmt.Sprintf("DerivedFunc%d", uint8(f))
}

// ParseDerivedFunc resolves a method name such as "lane_of".
func ParseDerivedFunc(name string) (DerivedFunc, error) {
	for _, f := range AllDerivedFuncs {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown derived function %q", name)
}

// Apply computes the image of ts under f.
func (f DerivedFunc) Apply(ts typeset.TypeSet) (typeset.TypeSet, error) {
	switch f {
	case SameAs:
		return ts, nil
	case LaneOf:
		return ts.LaneOf(), nil
	case AsBool:
		return ts.AsBool(), nil
	case HalfWidth:
		return ts.HalfWidth()
	case DoubleWidth:
		return ts.DoubleWidth()
	case HalfVector:
		return ts.HalfVector()
	case DoubleVector:
		return ts.DoubleVector()
	default:
		panic("unreachable")
	}
}
