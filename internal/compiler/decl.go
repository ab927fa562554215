// Package compiler turns CUE type variable definitions into a populated
// typevar.Env.
//
// A definition source has two top-level fields:
//
//	typevar: {
//		Tx: {
//			doc:  "A SIMD integer type"
//			ints: true
//			simd: [1, 128]
//		}
//		Narrow: derived: {base: "Tx", fn: "half_width"}
//		I32:    singleton: "i32"
//	}
//	constrain: [["Tx", "I32"]]
//
// Compilation happens in three steps: Parse reads the CUE value into
// declarations, Validate checks them and reports every problem it finds, and
// Build creates the variables. Compile runs all three.
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/polytype/internal/interval"
)

// DeclKind is the form of a type variable declaration.
type DeclKind uint8

const (
	DeclFree DeclKind = iota
	DeclSingleton
	DeclDerived
)

func (k DeclKind) String() string {
	switch k {
	case DeclFree:
		return "free"
	case DeclSingleton:
		return "singleton"
	case DeclDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// Decl is one parsed entry of the typevar struct.
type Decl struct {
	Name string
	Kind DeclKind
	Doc  string

	// Free variables.
	Ints    interval.Spec
	Floats  interval.Spec
	Bools   interval.Spec
	SIMD    interval.Spec
	Scalars bool

	// Singleton variables.
	Singleton string

	// Derived variables.
	Base string
	Func string

	Pos token.Pos
}

// ConstraintDecl is one [a, b] pair of the constrain list: a is narrowed to
// the types b can assume.
type ConstraintDecl struct {
	A, B string
	Pos  token.Pos
}

// File is the parsed, unvalidated content of a definition source.
type File struct {
	Decls       []Decl
	Constraints []ConstraintDecl
}

// Parse reads the typevar and constrain fields of v. Declarations keep CUE
// field order.
func Parse(v cue.Value) (*File, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	f := &File{}

	varsVal := v.LookupPath(cue.ParsePath("typevar"))
	if varsVal.Exists() {
		iter, err := varsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			decl, err := CompileDecl(iter.Value())
			if err != nil {
				return nil, err
			}
			f.Decls = append(f.Decls, *decl)
		}
	}

	consVal := v.LookupPath(cue.ParsePath("constrain"))
	if consVal.Exists() {
		cons, err := parseConstraints(consVal)
		if err != nil {
			return nil, err
		}
		f.Constraints = cons
	}

	return f, nil
}

// CompileDecl parses a single type variable entry. The variable name is the
// entry's label.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`typevar: Tx: {doc: "...", ints: true}`)
//	decl, err := CompileDecl(v.LookupPath(cue.ParsePath("typevar.Tx")))
func CompileDecl(v cue.Value) (*Decl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &Decl{Scalars: true, Pos: v.Pos()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = normalizeName(strings.Trim(labels[len(labels)-1].String(), `"`))
	}

	var err error
	if decl.Doc, err = optionalString(v, "doc"); err != nil {
		return nil, err
	}

	singletonVal := v.LookupPath(cue.ParsePath("singleton"))
	derivedVal := v.LookupPath(cue.ParsePath("derived"))

	switch {
	case singletonVal.Exists() && derivedVal.Exists():
		return nil, &CompileError{
			Field:   "typevar." + decl.Name,
			Message: "singleton and derived are mutually exclusive",
			Pos:     v.Pos(),
		}

	case singletonVal.Exists():
		decl.Kind = DeclSingleton
		if decl.Singleton, err = singletonVal.String(); err != nil {
			return nil, formatCUEError(err)
		}
		return decl, nil

	case derivedVal.Exists():
		decl.Kind = DeclDerived
		base, err := requiredString(derivedVal, "base")
		if err != nil {
			return nil, err
		}
		decl.Base = normalizeName(base)
		if decl.Func, err = requiredString(derivedVal, "fn"); err != nil {
			return nil, err
		}
		return decl, nil
	}

	decl.Kind = DeclFree
	for _, axis := range []struct {
		field string
		spec  *interval.Spec
	}{
		{"ints", &decl.Ints},
		{"floats", &decl.Floats},
		{"bools", &decl.Bools},
		{"simd", &decl.SIMD},
	} {
		fv := v.LookupPath(cue.ParsePath(axis.field))
		if !fv.Exists() {
			continue
		}
		if *axis.spec, err = parseRange(fv, axis.field); err != nil {
			return nil, err
		}
	}

	scalarsVal := v.LookupPath(cue.ParsePath("scalars"))
	if scalarsVal.Exists() {
		if decl.Scalars, err = scalarsVal.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	return decl, nil
}

// parseRange accepts true (the whole axis), false (none) or a [min, max]
// pair. The pair is not validated here.
func parseRange(v cue.Value, field string) (interval.Spec, error) {
	switch v.IncompleteKind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return interval.None, formatCUEError(err)
		}
		return interval.Bool(b), nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return interval.None, formatCUEError(err)
		}
		var bounds []int64
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return interval.None, formatCUEError(err)
			}
			bounds = append(bounds, n)
		}
		if len(bounds) != 2 {
			return interval.None, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("range must have exactly two bounds, got %d", len(bounds)),
				Pos:     v.Pos(),
			}
		}
		return interval.Range(int(bounds[0]), int(bounds[1])), nil

	default:
		return interval.None, &CompileError{
			Field:   field,
			Message: "must be a bool or a [min, max] pair",
			Pos:     v.Pos(),
		}
	}
}

func parseConstraints(v cue.Value) ([]ConstraintDecl, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cons []ConstraintDecl
	for iter.Next() {
		pair := iter.Value()
		pairIter, err := pair.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var names []string
		for pairIter.Next() {
			s, err := pairIter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			names = append(names, normalizeName(s))
		}
		if len(names) != 2 {
			return nil, &CompileError{
				Field:   "constrain",
				Message: fmt.Sprintf("constraint must name exactly two variables, got %d", len(names)),
				Pos:     pair.Pos(),
			}
		}
		cons = append(cons, ConstraintDecl{A: names[0], B: names[1], Pos: pair.Pos()})
	}
	return cons, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// normalizeName returns the NFC form of a variable name, so that names
// spelled with different Unicode compositions refer to the same variable.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
