package gen

import (
	"fmt"

	"github.com/roach88/polytype/internal/typeset"
	"github.com/roach88/polytype/internal/typevar"
)

// Table is an ordered list of unique type sets. Equal sets share one entry,
// so operands with the same constraints share one generated initializer.
type Table struct {
	sets  []typeset.TypeSet
	index map[typeset.TypeSet]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[typeset.TypeSet]int)}
}

// Add returns the index of ts, appending it if it is not already present.
func (t *Table) Add(ts typeset.TypeSet) int {
	if i, ok := t.index[ts]; ok {
		return i
	}
	t.sets = append(t.sets, ts)
	t.index[ts] = len(t.sets) - 1
	return len(t.sets) - 1
}

// Index returns the position of ts in the table.
func (t *Table) Index(ts typeset.TypeSet) (int, bool) {
	i, ok := t.index[ts]
	return i, ok
}

// Len returns the number of unique sets.
func (t *Table) Len() int { return len(t.sets) }

// Sets returns the sets in insertion order.
func (t *Table) Sets() []typeset.TypeSet {
	return append([]typeset.TypeSet(nil), t.sets...)
}

// EmitTypeSet writes ts as a ValueTypeSet initializer.
func EmitTypeSet(f *Formatter, ts typeset.TypeSet) {
	f.Indented("ValueTypeSet {", "},", func() {
		f.Comment(ts.String())
		for _, field := range ts.Fields() {
			f.Linef("%s: %d,", field.Name, field.Value)
		}
	})
}

// EmitTypeSetTable writes the TYPE_SETS constant holding every set in t.
func EmitTypeSetTable(f *Formatter, t *Table) {
	f.Linef("pub const TYPE_SETS: [ir::instructions::ValueTypeSet; %d] = [", t.Len())
	f.Indented("", "", func() {
		for _, ts := range t.sets {
			EmitTypeSet(f, ts)
		}
	})
	f.Line("];")
}

// EmitConstraintEnum writes the OperandConstraint enum. The derived variants
// come from typevar.AllDerivedFuncs.
func EmitConstraintEnum(f *Formatter) {
	f.Doc("Constraint on the type of an operand, relative to the controlling type variable.")
	f.Line("#[derive(Clone, Copy, Debug, PartialEq, Eq)]")
	f.Indented("pub enum OperandConstraint {", "}", func() {
		f.Doc("The operand has a fixed type.")
		f.Line("Concrete(ir::Type),")
		f.Line("")
		f.Doc("The operand ranges over the type set at this index of TYPE_SETS.")
		f.Line("Free(u8),")
		for _, fn := range typevar.AllDerivedFuncs {
			f.Line("")
			f.Doc(fmt.Sprintf("`ctrl_type.%s()`", fn))
			f.Linef("%s,", fn.Variant())
		}
	})
}

// Module is the result of Generate.
type Module struct {
	// Text is the generated source.
	Text string
	// Table holds the unique type sets in the order they were emitted.
	Table *Table
}

// Named is a type variable listed under a chosen name, usually the name it
// was declared with.
type Named struct {
	Name string
	Var  typevar.TypeVar
}

// Generate emits the module for vars, listing each under its own name.
func Generate(vars []typevar.TypeVar) (*Module, error) {
	named := make([]Named, len(vars))
	for i, tv := range vars {
		named[i] = Named{Name: tv.Name(), Var: tv}
	}
	return GenerateNamed(named)
}

// GenerateNamed emits the type set table, the constraint enum, and one
// summary line per variable with its table index and runtime-type
// expression. Every variable's type set is resolved, so a derived variable
// whose function cannot apply to its base fails here.
func GenerateNamed(vars []Named) (*Module, error) {
	table := NewTable()
	indexes := make([]int, len(vars))
	for i, v := range vars {
		ts, err := v.Var.TypeSet()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		indexes[i] = table.Add(ts)
	}

	f := NewFormatter()
	f.Comment("Generated by polytype. Do not edit.")
	f.Line("")
	EmitTypeSetTable(f, table)
	f.Line("")
	EmitConstraintEnum(f)

	if len(vars) > 0 {
		f.Line("")
		f.Comment("Type variables:")
		for i, v := range vars {
			f.Comment(fmt.Sprintf("  %s: TYPE_SETS[%d], %s", v.Name, indexes[i], v.Var.Expr()))
		}
	}

	return &Module{Text: f.String(), Table: table}, nil
}
