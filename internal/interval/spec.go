package interval

type specKind uint8

const (
	specNone specKind = iota
	specAll
	specExact
)

// Spec is the declaration-time form of an interval.
type Spec struct {
	kind specKind
	iv   Interval
}

// None leaves an axis at its default. It is the zero Spec.
var None Spec

// All selects the whole range of an axis.
var All = Spec{kind: specAll}

// Range is an explicit (lo, hi) specification.
func Range(lo, hi int) Spec {
	return Exactly(New(lo, hi))
}

// Exactly passes a canonical interval through unchanged, including the empty
// interval. Transforms use it to carry an axis over from an existing set.
func Exactly(iv Interval) Spec {
	return Spec{kind: specExact, iv: iv}
}

// Bool maps true to All and false to None.
func Bool(b bool) Spec {
	if b {
		return All
	}
	return None
}

// IsNone reports whether s is the absent specification.
func (s Spec) IsNone() bool {
	return s.kind == specNone
}

func (s Spec) String() string {
	switch s.kind {
	case specAll:
		return "all"
	case specExact:
		return s.iv.String()
	default:
		return "none"
	}
}

// ValidSpec reports whether s can be decoded against full. None and All are
// always valid.
func ValidSpec(s Spec, full Interval) bool {
	if s.kind != specExact {
		return true
	}
	return Valid(s.iv, full)
}

// Decode turns a specification into a canonical interval: All yields full,
// None yields def, and an explicit interval is validated against full.
func Decode(s Spec, full, def Interval) (Interval, error) {
	switch s.kind {
	case specAll:
		return full, nil
	case specExact:
		if err := validate(s.iv, full); err != nil {
			return Empty, err
		}
		return s.iv, nil
	default:
		return def, nil
	}
}
