package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/polytype/internal/compiler"
	"github.com/roach88/polytype/internal/gen"
	"github.com/roach88/polytype/internal/store"
	"github.com/roach88/polytype/internal/typevar"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Output string // output file path
	DB     string // run database path
}

// GenResult summarizes a generator run.
type GenResult struct {
	Vars     int      `json:"vars"`
	TypeSets int      `json:"typesets"`
	Output   string   `json:"output,omitempty"`
	Text     string   `json:"text,omitempty"`
	RunID    string   `json:"run_id,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen <defs-dir>",
		Short: "Generate the type set table from definitions",
		Long: `Compile the type variable definitions in a CUE package, apply their
constraints, and emit the TYPE_SETS table, the constraint enum and a summary
of every variable.

A constraint on a derived variable is reported as a warning and skipped.
Any other unsatisfiable constraint fails the run.

Examples:
  polytype gen ./defs
  polytype gen ./defs -o type_sets.rs
  polytype gen ./defs --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this SQLite database")

	return cmd
}

func runGen(opts *GenOptions, defsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	defs, err := compileDefs(defsDir, logger)
	if err != nil {
		return outputDefsError(formatter, err)
	}

	result := GenResult{Vars: len(defs.Order)}
	var failed []string
	for _, err := range defs.Solve() {
		if typevar.IsPropagationUnsupported(err) {
			logger.Warn("constraint skipped", "err", err)
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		failed = append(failed, err.Error())
	}
	if len(failed) > 0 {
		_ = formatter.Error(ErrCodeSolveFailed, failed[0], failed)
		return NewExitError(ExitFailure, fmt.Sprintf("%d constraint(s) could not be satisfied", len(failed)))
	}

	named := make([]gen.Named, len(defs.Order))
	for i, name := range defs.Order {
		named[i] = gen.Named{Name: name, Var: defs.Vars[name]}
	}
	mod, err := gen.GenerateNamed(named)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitFailure, "generation failed", err)
	}
	result.TypeSets = mod.Table.Len()

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(mod.Text), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		result.Output = opts.Output
	} else {
		result.Text = mod.Text
	}

	if opts.DB != "" {
		run, err := recordRun(cmd, opts.DB, defsDir, len(named), mod)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording run", err)
		}
		logger.Info("run recorded", "id", run.ID, "seq", run.Seq)
		result.RunID = run.ID
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Output == "" {
		fmt.Fprint(w, mod.Text)
		return nil
	}
	fmt.Fprintf(w, "✓ Generated %d type set(s) for %d variable(s)\n", result.TypeSets, result.Vars)
	fmt.Fprintf(w, "Wrote %s\n", opts.Output)
	if result.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
	}
	return nil
}

func recordRun(cmd *cobra.Command, dbPath, source string, varCount int, mod *gen.Module) (store.Run, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()
	return st.RecordRun(cmd.Context(), source, varCount, mod.Table.Sets())
}

// outputDefsError reports a definitions directory that failed to load or
// compile. Invalid definitions exit with ExitFailure; anything that stopped
// the command from reading them exits with ExitCommandError.
func outputDefsError(formatter *OutputFormatter, err error) error {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		return outputValidationErrors(formatter, verrs)
	}
	code, message := loadErrorCode(err)
	_ = formatter.Error(code, message, nil)
	if code == ErrCodeInvalid {
		return WrapExitError(ExitFailure, "definitions do not compile", err)
	}
	return WrapExitError(ExitCommandError, "loading definitions", err)
}
