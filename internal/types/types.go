// Package types is the registry of concrete value types that type variables
// range over: scalar integers, floats and booleans of a given bit width, and
// vectors of those scalars with a power-of-two lane count.
//
// This package imports nothing internal. The interval and typeset packages
// depend on it for IsPowerOfTwo and for the width/lane facts of singleton
// types.
package types

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxLanes is the largest lane count a vector type may have.
const MaxLanes = 256

// Kind is the kind of a scalar type.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// prefix returns the one-letter name prefix used in type names.
func (k Kind) prefix() string {
	switch k {
	case KindInt:
		return "i"
	case KindFloat:
		return "f"
	default:
		return "b"
	}
}

// ValueType is a concrete type a value can have.
type ValueType interface {
	// Name returns the short name, e.g. "i32" or "f32x4".
	Name() string
	// RustName returns the path of the constant naming this type in
	// generated code.
	RustName() string
	// LaneType returns the scalar type of one lane.
	LaneType() Scalar
	// Lanes returns the number of lanes; 1 for scalars.
	Lanes() int
	// Bits returns the total width in bits.
	Bits() int
	isValueType()
}

// Scalar is a scalar integer, float or boolean type.
type Scalar struct {
	Kind  Kind
	Width int
}

func (s Scalar) Name() string { return s.Kind.prefix() + strconv.Itoa(s.Width) }
func (s Scalar) RustName() string { return "ir::types::" + strings.ToUpper(s.Name()) }
func (s Scalar) LaneType() Scalar { return s }
func (s Scalar) Lanes() int { return 1 }
func (s Scalar) Bits() int { return s.Width }
func (s Scalar) String() string { return s.Name() }
func (Scalar) isValueType() {}

// Vector is a SIMD vector of Count lanes of a scalar Base type.
type Vector struct {
	Base  Scalar
	Count int
}

func (v Vector) Name() string { return fmt.Sprintf("%sx%d", v.Base.Name(), v.Count) }
func (v Vector) RustName() string { return "ir::types::" + strings.ToUpper(v.Name()) }
func (v Vector) LaneType() Scalar { return v.Base }
func (v Vector) Lanes() int { return v.Count }
func (v Vector) Bits() int { return v.Base.Width * v.Count }
func (v Vector) String() string { return v.Name() }
func (Vector) isValueType() {}

// Predefined scalar types.
var (
	I8  = Scalar{KindInt, 8}
	I16 = Scalar{KindInt, 16}
	I32 = Scalar{KindInt, 32}
	I64 = Scalar{KindInt, 64}

	F32 = Scalar{KindFloat, 32}
	F64 = Scalar{KindFloat, 64}

	B1  = Scalar{KindBool, 1}
	B8  = Scalar{KindBool, 8}
	B16 = Scalar{KindBool, 16}
	B32 = Scalar{KindBool, 32}
	B64 = Scalar{KindBool, 64}
)

// Scalars lists every predefined scalar type in declaration order.
var Scalars = []Scalar{I8, I16, I32, I64, F32, F64, B1, B8, B16, B32, B64}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// Log2 returns floor(log2(n)) for n > 0.
func Log2(n int) int {
	return bits.Len(uint(n)) - 1
}

// VectorOf builds a vector type, checking that the lane count is a power of
// two in [2, MaxLanes].
func VectorOf(base Scalar, lanes int) (Vector, error) {
	if !IsPowerOfTwo(lanes) || lanes < 2 || lanes > MaxLanes {
		return Vector{}, fmt.Errorf("invalid lane count %d for %s", lanes, base.Name())
	}
	return Vector{Base: base, Count: lanes}, nil
}

// Parse resolves a type name such as "i32", "b1" or "f32x4".
func Parse(name string) (ValueType, error) {
	scalarName, lanesStr, isVector := strings.Cut(name, "x")

	var base Scalar
	found := false
	for _, s := range Scalars {
		if s.Name() == scalarName {
			base = s
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown value type %q", name)
	}
	if !isVector {
		return base, nil
	}

	lanes, err := strconv.Atoi(lanesStr)
	if err != nil {
		return nil, fmt.Errorf("unknown value type %q", name)
	}
	return VectorOf(base, lanes)
}
