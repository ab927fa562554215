package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/polytype/internal/typevar"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Var      string
	Expected string
	Actual   string
	Trace    []TraceEvent // steps leading up to the failure
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Var)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Op, strings.Join(event.Vars, ", "), event.Outcome)
		}
	}

	return buf.String()
}

func (h *Harness) fail(a Assertion, expected, actual string, trace []TraceEvent) error {
	return &AssertionError{Type: a.Type, Var: a.Var, Expected: expected, Actual: actual, Trace: trace}
}

// assertTypeSet checks the String form of a variable's TypeSet.
func (h *Harness) assertTypeSet(tv typevar.TypeVar, a Assertion, trace []TraceEvent) error {
	ts, err := tv.TypeSet()
	if err != nil {
		return h.fail(a, a.Expect, "error: "+err.Error(), trace)
	}
	if ts.String() != a.Expect {
		return h.fail(a, a.Expect, ts.String(), trace)
	}
	return nil
}

// assertExpr checks the generated-code expression of a variable.
func (h *Harness) assertExpr(tv typevar.TypeVar, a Assertion, trace []TraceEvent) error {
	if got := tv.Expr(); got != a.Expect {
		return h.fail(a, a.Expect, got, trace)
	}
	return nil
}

// assertSubset checks that every type of Var is also a type of Of.
func (h *Harness) assertSubset(tv, of typevar.TypeVar, a Assertion, trace []TraceEvent) error {
	sub, err := tv.TypeSet()
	if err != nil {
		return h.fail(a, "subset of "+a.Of, "error: "+err.Error(), trace)
	}
	super, err := of.TypeSet()
	if err != nil {
		return h.fail(a, "subset of "+a.Of, a.Of+" error: "+err.Error(), trace)
	}
	if !sub.IsSubset(super) {
		return h.fail(a, fmt.Sprintf("%s within %s", sub, super), "not a subset", trace)
	}
	return nil
}

// assertError checks that computing a variable's TypeSet fails with the
// given code.
func (h *Harness) assertError(tv typevar.TypeVar, a Assertion, trace []TraceEvent) error {
	ts, err := tv.TypeSet()
	if err == nil {
		return h.fail(a, a.Expect, ts.String(), trace)
	}
	if code := errorCode(err); code != a.Expect {
		return h.fail(a, a.Expect, code+": "+err.Error(), trace)
	}
	return nil
}

// assertFreeRoot checks the variable FreeTypeVar reports. An empty Expect
// means the variable has no free root.
func (h *Harness) assertFreeRoot(tv typevar.TypeVar, a Assertion, trace []TraceEvent) error {
	free, ok := tv.FreeTypeVar()
	got := ""
	if ok {
		got = free.Name()
	}
	if got != a.Expect {
		return h.fail(a, describeRoot(a.Expect), describeRoot(got), trace)
	}
	return nil
}

func describeRoot(name string) string {
	if name == "" {
		return "no free root"
	}
	return name
}

// evaluate checks every assertion and records failures in result. It
// returns an error only for assertions naming undeclared variables.
func (h *Harness) evaluate(assertions []Assertion, result *Result) error {
	for i, a := range assertions {
		tv, err := h.lookup(a.Var)
		if err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}

		switch a.Type {
		case AssertTypeSet:
			err = h.assertTypeSet(tv, a, result.Trace)
		case AssertExpr:
			err = h.assertExpr(tv, a, result.Trace)
		case AssertSubset:
			of, lookupErr := h.lookup(a.Of)
			if lookupErr != nil {
				return fmt.Errorf("assertions[%d]: %w", i, lookupErr)
			}
			err = h.assertSubset(tv, of, a, result.Trace)
		case AssertError:
			err = h.assertError(tv, a, result.Trace)
		case AssertFreeRoot:
			err = h.assertFreeRoot(tv, a, result.Trace)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			result.AddError(err.Error())
		}
	}
	return nil
}
