// Package interval implements the algebra of inclusive (min, max) ranges of
// power-of-two widths or lane counts that every TypeSet axis is built from.
//
// An Interval is either a concrete (lo, hi) pair or the empty set. The zero
// Interval is empty; there is no (0, 0) pair encoding of "nothing".
//
// Spec is the surface form used when declaring type sets: All selects the
// whole axis range, None leaves the axis at its default, and Range/Exactly
// give an explicit interval that is validated against the axis range.
package interval

import (
	"errors"
	"fmt"

	"github.com/roach88/polytype/internal/types"
)

// Absolute axis bounds.
const (
	MaxLanes = types.MaxLanes
	MaxBits  = 64
)

// Full ranges of each TypeSet axis. AllInts is what "every integer type"
// decodes to; IntRange is the wider range intervals are validated against.
var (
	LanesRange = New(1, MaxLanes)
	IntRange   = New(1, MaxBits)
	AllInts    = New(8, MaxBits)
	FloatRange = New(32, 64)
	BoolRange  = New(1, MaxBits)
)

// ErrInvalid is wrapped by every *Error.
var ErrInvalid = errors.New("invalid interval")

// Error reports an interval that violates the validity rule for its axis.
// These are definition-time defects in whatever declared the interval.
type Error struct {
	Interval Interval
	Range    Interval
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid interval %s for range %s: %s", e.Interval, e.Range, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// Interval is an inclusive (lo, hi) range, or empty.
type Interval struct {
	lo, hi int
	ok     bool
}

// Empty is the empty interval.
var Empty Interval

// New returns the pair (lo, hi). It performs no validation; see Valid.
func New(lo, hi int) Interval {
	return Interval{lo: lo, hi: hi, ok: true}
}

// IsEmpty reports whether iv is the empty interval.
func (iv Interval) IsEmpty() bool {
	return !iv.ok
}

// Bounds returns the endpoints. ok is false for the empty interval.
func (iv Interval) Bounds() (lo, hi int, ok bool) {
	return iv.lo, iv.hi, iv.ok
}

// Min returns the lower endpoint, or 0 when empty.
func (iv Interval) Min() int {
	return iv.lo
}

// Max returns the upper endpoint, or 0 when empty.
func (iv Interval) Max() int {
	return iv.hi
}

func (iv Interval) String() string {
	if !iv.ok {
		return "()"
	}
	return fmt.Sprintf("(%d, %d)", iv.lo, iv.hi)
}

// Intersect returns the overlap of a and b. The result is empty if either
// input is empty or the ranges are disjoint.
func Intersect(a, b Interval) Interval {
	if !a.ok || !b.ok {
		return Empty
	}
	lo := max(a.lo, b.lo)
	hi := min(a.hi, b.hi)
	if lo > hi {
		return Empty
	}
	return New(lo, hi)
}

// IsSubinterval reports whether a is contained in b. The empty interval is
// contained in everything and contains nothing but itself.
func IsSubinterval(a, b Interval) bool {
	if !a.ok {
		return true
	}
	if !b.ok {
		return false
	}
	return a.lo >= b.lo && a.hi <= b.hi
}

// Valid reports whether iv is empty, or has power-of-two endpoints with
// lo <= hi, both inside full.
func Valid(iv, full Interval) bool {
	return check(iv, full) == ""
}

// check returns why iv is invalid for full, or "" when it is valid.
func check(iv, full Interval) string {
	if !iv.ok {
		return ""
	}
	switch {
	case !types.IsPowerOfTwo(iv.lo):
		return fmt.Sprintf("lower bound %d is not a power of two", iv.lo)
	case !types.IsPowerOfTwo(iv.hi):
		return fmt.Sprintf("upper bound %d is not a power of two", iv.hi)
	case iv.lo > iv.hi:
		return "lower bound exceeds upper bound"
	case iv.lo < full.lo:
		return fmt.Sprintf("lower bound %d is below %d", iv.lo, full.lo)
	case iv.hi > full.hi:
		return fmt.Sprintf("upper bound %d is above %d", iv.hi, full.hi)
	}
	return ""
}

func validate(iv, full Interval) error {
	if reason := check(iv, full); reason != "" {
		return &Error{Interval: iv, Range: full, Reason: reason}
	}
	return nil
}

// Map applies f to both endpoints of iv. Empty maps to empty. Both iv and the
// mapped interval must be valid for full.
func Map(iv Interval, f func(int) int, full Interval) (Interval, error) {
	if err := validate(iv, full); err != nil {
		return Empty, err
	}
	if !iv.ok {
		return iv, nil
	}
	mapped := New(f(iv.lo), f(iv.hi))
	if err := validate(mapped, full); err != nil {
		return Empty, err
	}
	return mapped, nil
}

// Encode checks iv against full and returns it unchanged.
func Encode(iv, full Interval) (Interval, error) {
	return Map(iv, func(x int) int { return x }, full)
}

// Half and Double are the endpoint maps used for width and lane transforms.
func Half(x int) int   { return x / 2 }
func Double(x int) int { return x * 2 }
