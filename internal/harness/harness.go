package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/polytype/internal/compiler"
	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/typevar"
)

// Harness executes the steps of one scenario against compiled definitions.
type Harness struct {
	defs   *compiler.Definitions
	seq    int64
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario compiles its specs into a fresh environment. An error is
// returned only when the scenario itself is broken: specs that fail to
// compile, or steps naming undeclared variables or functions. Steps and
// assertions that do not hold are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the environment and step logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	v, err := loadSpecs(scenario.Specs)
	if err != nil {
		return nil, err
	}

	defs, err := compiler.Compile(v, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}

	h := &Harness{defs: defs, logger: logger}
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.execute(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.evaluate(scenario.Assertions, result); err != nil {
		return nil, err
	}

	for _, name := range defs.Order {
		tv := defs.Vars[name]
		ts, err := tv.TypeSet()
		if err != nil {
			result.Final[name] = errorCode(err)
			continue
		}
		result.Final[name] = ts.String()
	}

	return result, nil
}

// loadSpecs compiles each file and unifies them into one value.
func loadSpecs(paths []string) (cue.Value, error) {
	ctx := cuecontext.New()
	var v cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, fmt.Errorf("failed to read spec: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("failed to compile spec %s: %w", path, err)
		}
		if i == 0 {
			v = file
			continue
		}
		v = v.Unify(file)
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to unify specs: %w", err)
	}
	return v, nil
}

func (h *Harness) lookup(name string) (typevar.TypeVar, error) {
	tv, ok := h.defs.Lookup(name)
	if !ok {
		return typevar.TypeVar{}, fmt.Errorf("type variable %q is not declared", name)
	}
	return tv, nil
}

// execute runs one step, records it and checks its expectation.
func (h *Harness) execute(index int, step Step, result *Result) error {
	h.seq++
	event := TraceEvent{Seq: h.seq, Op: step.Op(), Outcome: OutcomeOK}

	var subject typevar.TypeVar
	var stepErr error

	switch event.Op {
	case OpConstrain:
		a, err := h.lookup(step.Constrain[0])
		if err != nil {
			return err
		}
		b, err := h.lookup(step.Constrain[1])
		if err != nil {
			return err
		}
		event.Vars = []string{step.Constrain[0], step.Constrain[1]}
		subject = a
		stepErr = a.ConstrainTypes(b)

	case OpChangeToDerived:
		d := step.ChangeToDerived
		tv, err := h.lookup(d.Var)
		if err != nil {
			return err
		}
		base, err := h.lookup(d.Base)
		if err != nil {
			return err
		}
		fn, err := typevar.ParseDerivedFunc(d.Fn)
		if err != nil {
			return err
		}
		event.Vars = []string{d.Var, d.Base}
		subject = tv
		stepErr = tv.ChangeToDerived(base, fn)

	case OpStripSameAs:
		tv, err := h.lookup(step.StripSameAs)
		if err != nil {
			return err
		}
		stripped := tv.StripSameAs()
		event.Vars = []string{step.StripSameAs, stripped.Name()}
		subject = stripped

	case OpSolve:
		event.Vars = []string{}
		errs := h.defs.Solve()
		if len(errs) > 0 {
			event.Outcome = joinCodes(errs)
		}
		h.check(index, step, event, errs, result)
		result.AddTrace(event)
		return nil
	}

	if stepErr != nil {
		event.Outcome = errorCode(stepErr)
		event.Result = stepErr.Error()
	} else if ts, err := subject.TypeSet(); err != nil {
		event.Result = err.Error()
	} else {
		event.Result = ts.String()
	}

	var errs []error
	if stepErr != nil {
		errs = []error{stepErr}
	}
	h.check(index, step, event, errs, result)
	result.AddTrace(event)
	return nil
}

// check compares the errors a step produced with its expectation.
func (h *Harness) check(index int, step Step, event TraceEvent, errs []error, result *Result) {
	h.logger.Info("scenario step",
		"seq", event.Seq,
		"op", event.Op,
		"vars", event.Vars,
		"outcome", event.Outcome)

	if step.Expect == "" {
		for _, err := range errs {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, event.Op, err))
		}
		return
	}
	if len(errs) == 0 {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got success", index, event.Op, step.Expect))
		return
	}
	for _, err := range errs {
		if code := errorCode(err); code != step.Expect {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s: %v", index, event.Op, step.Expect, code, err))
		}
	}
}

// Error codes for failures that do not come from the typevar package.
const (
	CodeInvalidInterval = "INVALID_INTERVAL"
	CodeUndeclared      = "UNDECLARED"
	CodeOther           = "ERROR"
)

// errorCode classifies err for traces and expectations.
func errorCode(err error) string {
	var tvErr *typevar.Error
	switch {
	case errors.As(err, &tvErr):
		return string(tvErr.Code)
	case errors.Is(err, interval.ErrInvalid):
		return CodeInvalidInterval
	}
	var consErr *compiler.ConstraintError
	if errors.As(err, &consErr) {
		return CodeUndeclared
	}
	return CodeOther
}

// joinCodes renders the codes of errs as "A,B", in order.
func joinCodes(errs []error) string {
	codes := make([]string, len(errs))
	for i, err := range errs {
		codes[i] = errorCode(err)
	}
	return strings.Join(codes, ",")
}
