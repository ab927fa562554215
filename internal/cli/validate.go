package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/polytype/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Vars   int                        `json:"vars"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate definitions without generating",
		Long: `Check type variable definitions for errors without building them.

Reports every problem found: missing docs, invalid ranges, unknown
singletons, bases or functions, derivation cycles, duplicate names and
constraints on undeclared variables.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	loaded, err := LoadDefs(defsDir)
	if err != nil {
		code, message := loadErrorCode(err)
		_ = formatter.Error(code, message, nil)
		return WrapExitError(ExitCommandError, "loading definitions", err)
	}
	logger.Debug("loaded definitions", "dir", defsDir, "files", loaded.FileCount)

	f, err := compiler.Parse(loaded.Value)
	if err != nil {
		var compileErr *compiler.CompileError
		if !errors.As(err, &compileErr) {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "parsing definitions", err)
		}
		verr := compiler.ValidationError{Field: compileErr.Field, Message: compileErr.Message, Code: ErrCodeInvalid}
		if compileErr.Pos.IsValid() {
			verr.Line = compileErr.Pos.Line()
		}
		return outputValidationErrors(formatter, []compiler.ValidationError{verr})
	}

	if errs := compiler.Validate(f); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Vars: len(f.Decls)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d type variable(s) valid\n", len(f.Decls))
	return nil
}

// outputValidationErrors reports definition errors and fails with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
