package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/types"
	"github.com/roach88/polytype/internal/typevar"
)

// Validation error codes (E100-E199)
const (
	ErrDocEmpty            = "E101" // free variable needs documentation
	ErrUnknownBase         = "E102" // derived base is not declared
	ErrUnsatisfiable       = "E103" // declared type set admits no type
	ErrUnknownFunc         = "E104" // unknown derived function
	ErrInvalidRange        = "E105" // range violates the axis validity rule
	ErrDerivationCycle     = "E106" // variable derives from itself
	ErrUnknownSingleton    = "E107" // singleton names no value type
	ErrDuplicateName       = "E108" // two declarations share a name
	ErrUnknownConstrainVar = "E109" // constrain names an undeclared variable
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks parsed definitions and returns every error found; it does
// not stop at the first one. A File that validates cleanly builds without
// error, except for width and lane transforms whose preconditions depend on
// the resolved base set.
func Validate(f *File) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(f.Decls))
	for _, d := range f.Decls {
		if declared[d.Name] {
			errs = append(errs, newValidationError(d, "name", ErrDuplicateName,
				fmt.Sprintf("duplicate type variable name %q", d.Name)))
		}
		declared[d.Name] = true
	}

	for _, d := range f.Decls {
		switch d.Kind {
		case DeclFree:
			errs = append(errs, validateFree(d)...)
		case DeclSingleton:
			if _, err := types.Parse(d.Singleton); err != nil {
				errs = append(errs, newValidationError(d, "singleton", ErrUnknownSingleton, err.Error()))
			}
		case DeclDerived:
			if !declared[d.Base] {
				errs = append(errs, newValidationError(d, "derived.base", ErrUnknownBase,
					fmt.Sprintf("base %q is not declared", d.Base)))
			}
			if _, err := typevar.ParseDerivedFunc(d.Func); err != nil {
				errs = append(errs, newValidationError(d, "derived.fn", ErrUnknownFunc, err.Error()))
			}
		}
	}

	for _, c := range FindCycles(f.Decls) {
		errs = append(errs, ValidationError{
			Field:   "typevar." + c.Path[0] + ".derived",
			Message: c.Message,
			Code:    ErrDerivationCycle,
		})
	}

	for i, c := range f.Constraints {
		for _, name := range []string{c.A, c.B} {
			if !declared[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("constrain[%d]", i),
					Message: fmt.Sprintf("type variable %q is not declared", name),
					Code:    ErrUnknownConstrainVar,
					Line:    c.Pos.Line(),
				})
			}
		}
	}

	return errs
}

func validateFree(d Decl) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(d.Doc) == "" {
		errs = append(errs, newValidationError(d, "doc", ErrDocEmpty,
			"doc is required and must be non-empty"))
	}

	minLanes := 1
	if !d.Scalars {
		minLanes = 2
	}
	ranges := []struct {
		field string
		spec  interval.Spec
		full  interval.Interval
	}{
		{"ints", d.Ints, interval.AllInts},
		{"floats", d.Floats, interval.FloatRange},
		{"bools", d.Bools, interval.BoolRange},
		{"simd", d.SIMD, interval.New(minLanes, interval.MaxLanes)},
	}
	rangesValid := true
	for _, r := range ranges {
		if !interval.ValidSpec(r.spec, r.full) {
			rangesValid = false
			errs = append(errs, newValidationError(d, r.field, ErrInvalidRange,
				fmt.Sprintf("%s is not a valid range within %s", r.spec, r.full)))
		}
	}

	if d.Ints.IsNone() && d.Floats.IsNone() && d.Bools.IsNone() {
		errs = append(errs, newValidationError(d, "types", ErrUnsatisfiable,
			"no lane type: at least one of ints, floats or bools must be set"))
	} else if !d.Scalars && d.SIMD.IsNone() && rangesValid {
		errs = append(errs, newValidationError(d, "simd", ErrUnsatisfiable,
			"scalars are disabled but simd is not set"))
	}

	return errs
}

func newValidationError(d Decl, field, code, message string) ValidationError {
	return ValidationError{
		Field:   "typevar." + d.Name + "." + field,
		Message: message,
		Code:    code,
		Line:    d.Pos.Line(),
	}
}
