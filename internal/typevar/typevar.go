// Package typevar provides type variables for parametric polymorphism in
// instruction definitions.
//
// A type variable is either free, owning a TypeSet it ranges over, or derived,
// computing its TypeSet from a base variable through a DerivedFunc. Free
// variables can be pinned to a single concrete type.
//
// Variables live in an Env, an arena of slots. A TypeVar is a small
// comparable handle naming a slot, so handles can be copied, compared with ==
// and used as map keys. Narrowing replaces the TypeSet held in a slot and
// rebinding replaces the whole slot; TypeSet values themselves are never
// modified, so a TypeSet already used as a map key stays valid.
//
// An Env is not safe for concurrent use.
package typevar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/types"
	"github.com/roach88/polytype/internal/typeset"
)

// ID identifies a slot in an Env. The zero ID is never assigned.
type ID uint32

// NoID is the invalid slot ID.
const NoID ID = 0

// IsValid returns true if the ID is valid (non-zero).
func (id ID) IsValid() bool { return id != NoID }

// node is the current variant held in a slot.
type node struct {
	name string
	doc  string

	derived bool

	// Free variables.
	set       typeset.TypeSet
	singleton types.ValueType

	// Derived variables.
	base ID
	fn   DerivedFunc
}

// Env owns a set of type variables.
type Env struct {
	nodes  []node
	logger *slog.Logger
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger used for narrowing and rebinding events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Env) {
		e.logger = logger
	}
}

// NewEnv creates an empty environment. Events are discarded unless a logger
// is supplied.
func NewEnv(opts ...Option) *Env {
	e := &Env{
		nodes:  make([]node, 1), // slot 0 is NoID
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) add(n node) TypeVar {
	e.nodes = append(e.nodes, n)
	return TypeVar{env: e, id: ID(len(e.nodes) - 1)}
}

// Len returns the number of variables created in e.
func (e *Env) Len() int {
	return len(e.nodes) - 1
}

// All returns every variable in e in creation order.
func (e *Env) All() []TypeVar {
	vars := make([]TypeVar, 0, e.Len())
	for id := 1; id < len(e.nodes); id++ {
		vars = append(vars, TypeVar{env: e, id: ID(id)})
	}
	return vars
}

// FreeOptions declares the types a free variable may assume.
type FreeOptions struct {
	// Ints, Floats and Bools select all base types of a kind, or a (min, max)
	// bit-width range.
	Ints   interval.Spec
	Floats interval.Spec
	Bools  interval.Spec

	// NoScalars forbids scalar types; the lane floor becomes 2.
	NoScalars bool

	// SIMD allows vector types: All for every lane count, or a (min, max)
	// lane count range. The default is scalars only.
	SIMD interval.Spec
}

// NewFree creates a free type variable.
func (e *Env) NewFree(name, doc string, opts FreeOptions) (TypeVar, error) {
	minLanes := 1
	if opts.NoScalars {
		minLanes = 2
	}
	lanes, err := interval.Decode(opts.SIMD, interval.New(minLanes, interval.MaxLanes), interval.New(1, 1))
	if err != nil {
		return TypeVar{}, fmt.Errorf("type variable %s: simd: %w", name, err)
	}

	ts, err := typeset.New(typeset.Options{
		Lanes:  interval.Exactly(lanes),
		Ints:   opts.Ints,
		Floats: opts.Floats,
		Bools:  opts.Bools,
	})
	if err != nil {
		return TypeVar{}, fmt.Errorf("type variable %s: %w", name, err)
	}

	return e.add(node{name: name, doc: doc, set: ts}), nil
}

// MustNewFree is like NewFree but panics on error.
// Use only for fixed, known-valid declarations.
func (e *Env) MustNewFree(name, doc string, opts FreeOptions) TypeVar {
	tv, err := e.NewFree(name, doc, opts)
	if err != nil {
		panic(err)
	}
	return tv
}

// Singleton creates a free variable that can only assume vt.
func (e *Env) Singleton(vt types.ValueType) TypeVar {
	return e.add(node{
		name:      vt.Name(),
		doc:       fmt.Sprintf("The %s type.", vt.Name()),
		set:       typeset.Of(vt),
		singleton: vt,
	})
}

// Derived creates a variable whose type is f applied to base's type. No
// checks are made; see the TypeVar wrapper methods for checked versions.
func Derived(base TypeVar, f DerivedFunc) TypeVar {
	return base.env.add(node{
		name:    fmt.Sprintf("%s(%s)", f, base.Name()),
		derived: true,
		base:    base.id,
		fn:      f,
	})
}

// TypeVar is a handle to a type variable in an Env. The zero TypeVar is
// invalid.
type TypeVar struct {
	env *Env
	id  ID
}

func (tv TypeVar) node() node {
	return tv.env.nodes[tv.id]
}

func (tv TypeVar) with(id ID) TypeVar {
	return TypeVar{env: tv.env, id: id}
}

// IsValid reports whether tv refers to a variable.
func (tv TypeVar) IsValid() bool { return tv.env != nil && tv.id.IsValid() }

// ID returns the slot ID of tv within its Env.
func (tv TypeVar) ID() ID { return tv.id }

// Env returns the environment owning tv.
func (tv TypeVar) Env() *Env { return tv.env }

// Name returns the short name used in instruction descriptions.
func (tv TypeVar) Name() string { return tv.node().name }

// Doc returns the documentation string.
func (tv TypeVar) Doc() string { return tv.node().doc }

// IsDerived reports whether tv is currently a derived variable.
func (tv TypeVar) IsDerived() bool { return tv.node().derived }

// Base returns the base of a derived variable.
func (tv TypeVar) Base() (TypeVar, bool) {
	n := tv.node()
	if !n.derived {
		return TypeVar{}, false
	}
	return tv.with(n.base), true
}

// Func returns the function of a derived variable.
func (tv TypeVar) Func() (DerivedFunc, bool) {
	n := tv.node()
	return n.fn, n.derived
}

// SingletonType returns the concrete type a free variable is pinned to.
func (tv TypeVar) SingletonType() (types.ValueType, bool) {
	n := tv.node()
	if n.derived || n.singleton == nil {
		return nil, false
	}
	return n.singleton, true
}

func (tv TypeVar) String() string {
	return "`" + tv.Name() + "`"
}

// Equal reports whether tv and other denote the same variable. Derived
// variables are equal when they apply the same function to equal bases;
// any other pair is equal only if it is the same slot.
func (tv TypeVar) Equal(other TypeVar) bool {
	if tv == other {
		return true
	}
	if tv.env != other.env || !tv.IsValid() || !other.IsValid() {
		return false
	}
	a, b := tv.node(), other.node()
	if a.derived && b.derived {
		return a.fn == b.fn && tv.with(a.base).Equal(other.with(b.base))
	}
	return false
}

// NonDerivedBase follows base references to the free variable at the end of
// the chain.
func (tv TypeVar) NonDerivedBase() TypeVar {
	for tv.IsDerived() {
		tv = tv.with(tv.node().base)
	}
	return tv
}

// StripSameAs removes SameAs functions from tv and from every derivation
// nested under it. Intermediate variables are rewritten to point past any
// SameAs links, so the chain stays compressed afterwards.
func (tv TypeVar) StripSameAs() TypeVar {
	n := tv.node()
	if !n.derived {
		return tv
	}
	base := tv.with(n.base).StripSameAs()
	if base.id != n.base {
		n.base = base.id
		tv.env.nodes[tv.id] = n
	}
	if n.fn == SameAs {
		return base
	}
	return tv
}

// FreeTypeVar returns the variable controlling tv: the base of a derived
// variable, or tv itself if it is free. A singleton is not a proper free
// variable, so ok is false for it.
func (tv TypeVar) FreeTypeVar() (free TypeVar, ok bool) {
	n := tv.node()
	if n.derived {
		return tv.with(n.base), true
	}
	if n.singleton != nil {
		return TypeVar{}, false
	}
	return tv, true
}

// ChangeToDerived turns the free variable tv into f applied to base,
// discarding its TypeSet. Variables already holding tv keep seeing the same
// slot, now derived. A variable can be rebound once; derived and singleton
// variables cannot be rebound.
func (tv TypeVar) ChangeToDerived(base TypeVar, f DerivedFunc) error {
	n := tv.node()
	switch {
	case tv.env != base.env:
		return &Error{Code: ErrCodeForeignEnv, Message: "base belongs to another environment", Var: n.name}
	case n.derived:
		return &Error{Code: ErrCodeAlreadyDerived, Message: "variable is already derived", Var: n.name, Other: base.Name()}
	case n.singleton != nil:
		return &Error{Code: ErrCodePinned, Message: "singleton variable cannot be rebound", Var: n.name, Other: base.Name()}
	case base.NonDerivedBase() == tv:
		return &Error{Code: ErrCodeCyclicDerivation, Message: "variable would derive from itself", Var: n.name, Other: base.Name()}
	}

	tv.env.nodes[tv.id] = node{
		name:    n.name,
		doc:     n.doc,
		derived: true,
		base:    base.id,
		fn:      f,
	}
	tv.env.logger.Debug("type variable rebound",
		"var", n.name,
		"base", base.Name(),
		"func", f.String())
	return nil
}

// TypeSet returns the types tv ranges over. For a derived variable it is
// computed from the base every time, so it reflects any narrowing of the
// base since tv was created.
func (tv TypeVar) TypeSet() (typeset.TypeSet, error) {
	n := tv.node()
	if !n.derived {
		return n.set, nil
	}
	ts, err := tv.with(n.base).TypeSet()
	if err != nil {
		return typeset.TypeSet{}, err
	}
	out, err := n.fn.Apply(ts)
	if err != nil {
		return typeset.TypeSet{}, fmt.Errorf("type variable %s: %w", n.name, err)
	}
	return out, nil
}

// Expr returns an expression computing the concrete type of tv in generated
// code: base.func() for derived variables, the type constant for
// singletons, and the variable name otherwise.
func (tv TypeVar) Expr() string {
	n := tv.node()
	switch {
	case n.derived:
		return fmt.Sprintf("%s.%s()", tv.with(n.base).Expr(), n.fn)
	case n.singleton != nil:
		return n.singleton.RustName()
	default:
		return n.name
	}
}
