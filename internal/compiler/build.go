package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"cuelang.org/go/cue"

	"github.com/roach88/polytype/internal/types"
	"github.com/roach88/polytype/internal/typevar"
)

// Definitions is a compiled definition source.
type Definitions struct {
	Env *typevar.Env

	// Vars maps each declared name to its variable.
	Vars map[string]typevar.TypeVar

	// Order lists declared names in source order.
	Order []string

	Constraints []ConstraintDecl
}

// Lookup returns the variable declared as name.
func (d *Definitions) Lookup(name string) (typevar.TypeVar, bool) {
	tv, ok := d.Vars[normalizeName(name)]
	return tv, ok
}

// Ordered returns the declared variables in source order.
func (d *Definitions) Ordered() []typevar.TypeVar {
	vars := make([]typevar.TypeVar, 0, len(d.Order))
	for _, name := range d.Order {
		vars = append(vars, d.Vars[name])
	}
	return vars
}

// ValidationErrors is returned by Compile when validation fails.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", errs[0].Error(), len(errs)-1)
}

// Compile parses, validates and builds the definitions in v. Constraints are
// recorded but not applied; see Solve.
func Compile(v cue.Value, logger *slog.Logger) (*Definitions, error) {
	f, err := Parse(v)
	if err != nil {
		return nil, err
	}
	if errs := Validate(f); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return Build(f, logger)
}

// Build creates a variable for every declaration of a validated File. Free
// and singleton variables are created first, then derived variables in
// dependency order through the checked typevar wrappers, so a width or lane
// transform that cannot apply to a free base fails here.
func Build(f *File, logger *slog.Logger) (*Definitions, error) {
	var opts []typevar.Option
	if logger != nil {
		opts = append(opts, typevar.WithLogger(logger))
	}

	defs := &Definitions{
		Env:         typevar.NewEnv(opts...),
		Vars:        make(map[string]typevar.TypeVar, len(f.Decls)),
		Constraints: f.Constraints,
	}

	pending := make(map[string]Decl)
	for _, d := range f.Decls {
		defs.Order = append(defs.Order, d.Name)

		switch d.Kind {
		case DeclFree:
			tv, err := defs.Env.NewFree(d.Name, d.Doc, typevar.FreeOptions{
				Ints:      d.Ints,
				Floats:    d.Floats,
				Bools:     d.Bools,
				NoScalars: !d.Scalars,
				SIMD:      d.SIMD,
			})
			if err != nil {
				return nil, &CompileError{Field: "typevar." + d.Name, Message: err.Error(), Pos: d.Pos}
			}
			defs.Vars[d.Name] = tv

		case DeclSingleton:
			vt, err := types.Parse(d.Singleton)
			if err != nil {
				return nil, &CompileError{Field: "typevar." + d.Name + ".singleton", Message: err.Error(), Pos: d.Pos}
			}
			defs.Vars[d.Name] = defs.Env.Singleton(vt)

		case DeclDerived:
			pending[d.Name] = d
		}
	}

	var resolve func(name string, depth int) (typevar.TypeVar, error)
	resolve = func(name string, depth int) (typevar.TypeVar, error) {
		if tv, ok := defs.Vars[name]; ok {
			return tv, nil
		}
		d, ok := pending[name]
		if !ok {
			return typevar.TypeVar{}, &CompileError{Field: "typevar", Message: fmt.Sprintf("type variable %q is not declared", name)}
		}
		if depth > len(pending) {
			return typevar.TypeVar{}, &CompileError{Field: "typevar." + name + ".derived", Message: "derivation cycle", Pos: d.Pos}
		}

		base, err := resolve(d.Base, depth+1)
		if err != nil {
			return typevar.TypeVar{}, err
		}
		fn, err := typevar.ParseDerivedFunc(d.Func)
		if err != nil {
			return typevar.TypeVar{}, &CompileError{Field: "typevar." + name + ".derived.fn", Message: err.Error(), Pos: d.Pos}
		}
		tv, err := derive(base, fn)
		if err != nil {
			return typevar.TypeVar{}, &CompileError{Field: "typevar." + name + ".derived", Message: err.Error(), Pos: d.Pos}
		}
		defs.Vars[name] = tv
		return tv, nil
	}

	for _, d := range f.Decls {
		if d.Kind != DeclDerived {
			continue
		}
		if _, err := resolve(d.Name, 0); err != nil {
			return nil, err
		}
	}

	return defs, nil
}

// derive applies fn to base through the matching wrapper.
func derive(base typevar.TypeVar, fn typevar.DerivedFunc) (typevar.TypeVar, error) {
	switch fn {
	case typevar.SameAs:
		return base.SameAs(), nil
	case typevar.LaneOf:
		return base.LaneOf(), nil
	case typevar.AsBool:
		return base.AsBool(), nil
	case typevar.HalfWidth:
		return base.HalfWidth()
	case typevar.DoubleWidth:
		return base.DoubleWidth()
	case typevar.HalfVector:
		return base.HalfVector()
	case typevar.DoubleVector:
		return base.DoubleVector()
	default:
		panic("unreachable")
	}
}

// ConstraintError reports a constraint that Solve could not apply.
type ConstraintError struct {
	Constraint ConstraintDecl
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constrain [%s, %s]: %v", e.Constraint.A, e.Constraint.B, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Solve applies the recorded constraints in source order. A constraint that
// fails leaves its variables unchanged and does not stop the remaining ones;
// every failure is returned.
func (d *Definitions) Solve() []error {
	var errs []error
	for _, c := range d.Constraints {
		a, okA := d.Vars[c.A]
		b, okB := d.Vars[c.B]
		if !okA || !okB {
			errs = append(errs, &ConstraintError{Constraint: c, Err: errors.New("undeclared type variable")})
			continue
		}
		if err := a.ConstrainTypes(b); err != nil {
			errs = append(errs, &ConstraintError{Constraint: c, Err: err})
		}
	}
	return errs
}
