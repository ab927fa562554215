package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/polytype/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB string
}

// RunTypeSet is one TYPE_SETS entry of a recorded run.
type RunTypeSet struct {
	Index    int      `json:"index"`
	TypeSet  string   `json:"typeset"`
	Hash     string   `json:"hash"`
	SharedBy []string `json:"shared_by"`
}

// RunDetail is a recorded run with its table.
type RunDetail struct {
	RunID    string       `json:"run_id"`
	TypeSets []RunTypeSet `json:"typesets"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --db <path> [run-id]",
		Short: "List recorded generator runs",
		Long: `List the runs recorded by "polytype gen --db", oldest first.

With a run id, print that run's TYPE_SETS table and the other runs that
emitted each type set.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "run database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	if len(args) == 0 {
		runs, err := st.Runs(cmd.Context())
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "listing runs", err)
		}
		if formatter.JSON() {
			return formatter.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(formatter.Writer, "No runs recorded.")
			return nil
		}
		tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tID\tVARS\tTYPESETS\tSOURCE")
		for _, r := range runs {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", r.Seq, r.ID, r.VarCount, r.TypeSets, r.Source)
		}
		return tw.Flush()
	}

	runID := args[0]
	sets, err := st.RunTypeSets(cmd.Context(), runID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	detail := RunDetail{RunID: runID, TypeSets: make([]RunTypeSet, len(sets))}
	for i, ts := range sets {
		ids, err := st.RunsWithTypeSet(cmd.Context(), ts)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading run", err)
		}
		shared := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != runID {
				shared = append(shared, id)
			}
		}
		detail.TypeSets[i] = RunTypeSet{Index: i, TypeSet: ts.String(), Hash: ts.Hash(), SharedBy: shared}
	}

	if formatter.JSON() {
		return formatter.Success(detail)
	}
	fmt.Fprintf(formatter.Writer, "Run %s\n\n", runID)
	for _, e := range detail.TypeSets {
		fmt.Fprintf(formatter.Writer, "  [%d] %s", e.Index, e.TypeSet)
		if len(e.SharedBy) > 0 {
			fmt.Fprintf(formatter.Writer, " (also in %d run(s))", len(e.SharedBy))
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
