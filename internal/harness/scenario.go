package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of operations on compiled type variables,
// followed by assertions on the resulting TypeSets.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Specs lists the CUE definition files to compile.
	// Relative paths are resolved against the base path given to
	// LoadScenarioWithBasePath.
	Specs []string `yaml:"specs"`

	// Steps run in order after compilation.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions are checked after every step has run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation. Exactly one of the operation fields is set.
type Step struct {
	// Constrain narrows the first variable to its intersection with the
	// second: [A, B].
	Constrain []string `yaml:"constrain,omitempty"`

	// ChangeToDerived rebinds a free variable as a derived view.
	ChangeToDerived *DeriveStep `yaml:"change_to_derived,omitempty"`

	// StripSameAs names a variable whose same_as chain is compressed.
	StripSameAs string `yaml:"strip_sameas,omitempty"`

	// Solve applies every constraint declared in the specs.
	Solve bool `yaml:"solve,omitempty"`

	// Expect is the error code the step must fail with. Empty means the
	// step must succeed. For solve, every reported error must carry it.
	Expect string `yaml:"expect,omitempty"`
}

// DeriveStep is the argument of a change_to_derived step.
type DeriveStep struct {
	Var  string `yaml:"var"`
	Base string `yaml:"base"`
	Fn   string `yaml:"fn"`
}

// Op returns the name of the operation s performs.
func (s Step) Op() string {
	switch {
	case s.Constrain != nil:
		return OpConstrain
	case s.ChangeToDerived != nil:
		return OpChangeToDerived
	case s.StripSameAs != "":
		return OpStripSameAs
	case s.Solve:
		return OpSolve
	}
	return ""
}

// Step operations.
const (
	OpConstrain       = "constrain"
	OpChangeToDerived = "change_to_derived"
	OpStripSameAs     = "strip_sameas"
	OpSolve           = "solve"
)

// Assertion checks one variable after the steps have run.
type Assertion struct {
	// Type is one of typeset, expr, subset, error, free_root.
	Type string `yaml:"type"`

	// Var is the variable under test.
	Var string `yaml:"var"`

	// Expect is the expected value: a TypeSet string for typeset, an
	// expression for expr, an error code for error, a variable name for
	// free_root ("" when the variable has no free root).
	Expect string `yaml:"expect,omitempty"`

	// Of is the superset variable (used by subset).
	Of string `yaml:"of,omitempty"`
}

// Assertion type constants.
const (
	AssertTypeSet  = "typeset"
	AssertExpr     = "expr"
	AssertSubset   = "subset"
	AssertError    = "error"
	AssertFreeRoot = "free_root"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative spec paths against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve before validation so existence checks see real paths.
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	set := 0
	if s.Constrain != nil {
		set++
		if len(s.Constrain) != 2 {
			return fmt.Errorf("steps[%d]: constrain needs exactly two variables, got %d", index, len(s.Constrain))
		}
	}
	if s.ChangeToDerived != nil {
		set++
		d := s.ChangeToDerived
		if d.Var == "" || d.Base == "" || d.Fn == "" {
			return fmt.Errorf("steps[%d]: change_to_derived requires var, base and fn", index)
		}
	}
	if s.StripSameAs != "" {
		set++
	}
	if s.Solve {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one operation is required, got %d", index, set)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Var == "" {
		return fmt.Errorf("assertions[%d]: var is required", index)
	}

	switch a.Type {
	case AssertTypeSet, AssertExpr, AssertError:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertSubset:
		if a.Of == "" {
			return fmt.Errorf("assertions[%d]: of is required for subset", index)
		}
	case AssertFreeRoot:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
