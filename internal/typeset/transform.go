package typeset

import (
	"fmt"

	"github.com/roach88/polytype/internal/interval"
)

// Each transform holds three axes fixed and remaps one. Width and lane
// remaps go through interval.Map, so a transform that would leave an axis's
// valid range fails there.

// LaneOf returns the set of scalar lane types of ts.
func (ts TypeSet) LaneOf() TypeSet {
	opts := ts.options()
	opts.Lanes = interval.Range(1, 1)
	return MustNew(opts)
}

// AsBool returns the set with the same lane counts as ts and b1 lanes.
func (ts TypeSet) AsBool() TypeSet {
	return MustNew(Options{
		Lanes: interval.Exactly(ts.lanes),
		Bools: interval.Range(1, 1),
	})
}

// HalfWidth halves the lane width on the int, float and bool axes.
func (ts TypeSet) HalfWidth() (TypeSet, error) {
	return ts.mapWidths("half_width", interval.Half)
}

// DoubleWidth doubles the lane width on the int, float and bool axes.
func (ts TypeSet) DoubleWidth() (TypeSet, error) {
	return ts.mapWidths("double_width", interval.Double)
}

// HalfVector halves the lane count.
func (ts TypeSet) HalfVector() (TypeSet, error) {
	return ts.mapLanes("half_vector", interval.Half)
}

// DoubleVector doubles the lane count.
func (ts TypeSet) DoubleVector() (TypeSet, error) {
	return ts.mapLanes("double_vector", interval.Double)
}

func (ts TypeSet) mapWidths(op string, f func(int) int) (TypeSet, error) {
	ints, err := interval.Map(ts.ints, f, interval.IntRange)
	if err != nil {
		return TypeSet{}, fmt.Errorf("%s of %s: ints: %w", op, ts, err)
	}
	floats, err := interval.Map(ts.floats, f, interval.FloatRange)
	if err != nil {
		return TypeSet{}, fmt.Errorf("%s of %s: floats: %w", op, ts, err)
	}
	bools, err := interval.Map(ts.bools, f, interval.BoolRange)
	if err != nil {
		return TypeSet{}, fmt.Errorf("%s of %s: bools: %w", op, ts, err)
	}

	out, err := New(Options{
		Lanes:  interval.Exactly(ts.lanes),
		Ints:   interval.Exactly(ints),
		Floats: interval.Exactly(floats),
		Bools:  interval.Exactly(bools),
	})
	if err != nil {
		return TypeSet{}, fmt.Errorf("%s of %s: %w", op, ts, err)
	}
	return out, nil
}

func (ts TypeSet) mapLanes(op string, f func(int) int) (TypeSet, error) {
	lanes, err := interval.Map(ts.lanes, f, interval.LanesRange)
	if err != nil {
		return TypeSet{}, fmt.Errorf("%s of %s: lanes: %w", op, ts, err)
	}
	opts := ts.options()
	opts.Lanes = interval.Exactly(lanes)
	return New(opts)
}
