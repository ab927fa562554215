// Package typeset provides TypeSet, a parametrized set of value types.
//
// Arbitrary subsets of types are not representable. A TypeSet is four
// independent intervals:
//
//   - the permitted range of vector lanes, where 1 means a scalar type
//   - the permitted range of integer widths
//   - the permitted range of floating point widths
//   - the permitted range of boolean widths
//
// Ranges are inclusive, from smallest to largest power of two. A TypeSet is a
// comparable value: == is structural equality and a TypeSet can be used as a
// map key directly. Nothing in this package mutates a TypeSet after New
// returns it; narrowing produces a new value.
package typeset

import (
	"fmt"
	"strings"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/types"
)

// TypeSet is a set of value types described by four axis intervals.
type TypeSet struct {
	lanes  interval.Interval
	ints   interval.Interval
	floats interval.Interval
	bools  interval.Interval
}

// Options declares a TypeSet axis by axis. Lanes defaults to scalars only,
// (1, 1); the other axes default to empty.
type Options struct {
	Lanes  interval.Spec
	Ints   interval.Spec
	Floats interval.Spec
	Bools  interval.Spec
}

var scalarLanes = interval.New(1, 1)

// New decodes and validates opts.
//
//	New(Options{Ints: interval.Range(8, 32)})              // lanes=(1, 1), ints=(8, 32)
//	New(Options{Lanes: interval.All, Ints: interval.All}) // lanes=(1, 256), ints=(8, 64)
func New(opts Options) (TypeSet, error) {
	var ts TypeSet
	var err error
	if ts.lanes, err = interval.Decode(opts.Lanes, interval.LanesRange, scalarLanes); err != nil {
		return TypeSet{}, fmt.Errorf("lanes: %w", err)
	}
	if ts.ints, err = interval.Decode(opts.Ints, interval.AllInts, interval.Empty); err != nil {
		return TypeSet{}, fmt.Errorf("ints: %w", err)
	}
	if ts.floats, err = interval.Decode(opts.Floats, interval.FloatRange, interval.Empty); err != nil {
		return TypeSet{}, fmt.Errorf("floats: %w", err)
	}
	if ts.bools, err = interval.Decode(opts.Bools, interval.BoolRange, interval.Empty); err != nil {
		return TypeSet{}, fmt.Errorf("bools: %w", err)
	}
	return ts, nil
}

// MustNew is like New but panics on error.
// Use only for fixed, known-valid declarations.
func MustNew(opts Options) TypeSet {
	ts, err := New(opts)
	if err != nil {
		panic(err)
	}
	return ts
}

// Of returns the TypeSet containing exactly one concrete type.
func Of(vt types.ValueType) TypeSet {
	lane := vt.LaneType()
	width := interval.Exactly(interval.New(lane.Width, lane.Width))
	opts := Options{Lanes: interval.Range(vt.Lanes(), vt.Lanes())}
	switch lane.Kind {
	case types.KindInt:
		opts.Ints = width
	case types.KindFloat:
		opts.Floats = width
	case types.KindBool:
		opts.Bools = width
	}
	return MustNew(opts)
}

func (ts TypeSet) Lanes() interval.Interval  { return ts.lanes }
func (ts TypeSet) Ints() interval.Interval   { return ts.ints }
func (ts TypeSet) Floats() interval.Interval { return ts.floats }
func (ts TypeSet) Bools() interval.Interval  { return ts.bools }

// options returns the axes as explicit specs, for transforms that rebuild a
// set from an existing one.
func (ts TypeSet) options() Options {
	return Options{
		Lanes:  interval.Exactly(ts.lanes),
		Ints:   interval.Exactly(ts.ints),
		Floats: interval.Exactly(ts.floats),
		Bools:  interval.Exactly(ts.bools),
	}
}

// Intersect returns the axis-wise intersection of ts and other. Disjoint
// axes become empty; no error is raised for an empty result.
//
//	a := lanes=(1, 256), ints=(16, 32)
//	b := lanes=(4, 16), ints=(8, 64)
//	a.Intersect(b) == lanes=(4, 16), ints=(16, 32)
func (ts TypeSet) Intersect(other TypeSet) TypeSet {
	return TypeSet{
		lanes:  interval.Intersect(ts.lanes, other.lanes),
		ints:   interval.Intersect(ts.ints, other.ints),
		floats: interval.Intersect(ts.floats, other.floats),
		bools:  interval.Intersect(ts.bools, other.bools),
	}
}

// IsSubset reports whether every axis of ts lies within the same axis of other.
func (ts TypeSet) IsSubset(other TypeSet) bool {
	return interval.IsSubinterval(ts.lanes, other.lanes) &&
		interval.IsSubinterval(ts.ints, other.ints) &&
		interval.IsSubinterval(ts.floats, other.floats) &&
		interval.IsSubinterval(ts.bools, other.bools)
}

// IsEmpty reports whether ts admits no concrete type: no lane count, or no
// lane type.
func (ts TypeSet) IsEmpty() bool {
	return ts.lanes.IsEmpty() ||
		(ts.ints.IsEmpty() && ts.floats.IsEmpty() && ts.bools.IsEmpty())
}

func (ts TypeSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TypeSet(lanes=%s", ts.lanes)
	if !ts.ints.IsEmpty() {
		fmt.Fprintf(&b, ", ints=%s", ts.ints)
	}
	if !ts.floats.IsEmpty() {
		fmt.Fprintf(&b, ", floats=%s", ts.floats)
	}
	if !ts.bools.IsEmpty() {
		fmt.Fprintf(&b, ", bools=%s", ts.bools)
	}
	b.WriteString(")")
	return b.String()
}

// Field is one emitted initializer of a ValueTypeSet literal.
type Field struct {
	Name  string
	Value int
}

// Fields returns the eight log2-encoded bounds consumed by generated code, in
// the order min_lanes, max_lanes, min_int, max_int, min_float, max_float,
// min_bool, max_bool. An empty axis is 0, 0; otherwise the minimum is
// floor(log2(min)) and the maximum is floor(log2(max))+1, a half-open bound.
func (ts TypeSet) Fields() []Field {
	axes := []struct {
		name string
		iv   interval.Interval
	}{
		{"lanes", ts.lanes},
		{"int", ts.ints},
		{"float", ts.floats},
		{"bool", ts.bools},
	}

	fields := make([]Field, 0, 2*len(axes))
	for _, axis := range axes {
		lo, hi, ok := axis.iv.Bounds()
		if !ok {
			fields = append(fields,
				Field{Name: "min_" + axis.name},
				Field{Name: "max_" + axis.name})
			continue
		}
		fields = append(fields,
			Field{Name: "min_" + axis.name, Value: types.Log2(lo)},
			Field{Name: "max_" + axis.name, Value: types.Log2(hi) + 1})
	}
	return fields
}

var fieldAxes = [...]string{"lanes", "int", "float", "bool"}

// FromFields rebuilds a TypeSet from the log2-encoded bounds produced by
// Fields. It is the inverse of Fields for every valid TypeSet.
func FromFields(fields []Field) (TypeSet, error) {
	if len(fields) != 2*len(fieldAxes) {
		return TypeSet{}, fmt.Errorf("expected %d fields, got %d", 2*len(fieldAxes), len(fields))
	}

	var axes [len(fieldAxes)]interval.Interval
	for i, axis := range fieldAxes {
		lo, hi := fields[2*i], fields[2*i+1]
		if lo.Name != "min_"+axis || hi.Name != "max_"+axis {
			return TypeSet{}, fmt.Errorf("field %d: expected min_%s and max_%s, got %s and %s", 2*i, axis, axis, lo.Name, hi.Name)
		}
		if lo.Value == 0 && hi.Value == 0 {
			continue
		}
		if lo.Value < 0 || hi.Value <= lo.Value {
			return TypeSet{}, fmt.Errorf("%s: invalid encoded bounds %d, %d", axis, lo.Value, hi.Value)
		}
		axes[i] = interval.New(1<<lo.Value, 1<<(hi.Value-1))
	}

	return New(Options{
		Lanes:  interval.Exactly(axes[0]),
		Ints:   interval.Exactly(axes[1]),
		Floats: interval.Exactly(axes[2]),
		Bools:  interval.Exactly(axes[3]),
	})
}
