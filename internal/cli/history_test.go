package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordRuns generates from defsDir n times into a fresh database.
func recordRuns(t *testing.T, n int) (string, []string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	var ids []string
	for i := 0; i < n; i++ {
		out, _, err := execute(t, NewGenCommand(&RootOptions{Format: "json"}), defsDir, "--db", dbPath)
		require.NoError(t, err)

		var resp struct {
			Data GenResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.NotEmpty(t, resp.Data.RunID)
		ids = append(ids, resp.Data.RunID)
	}
	return dbPath, ids
}

func TestHistoryCommand_ListsRuns(t *testing.T) {
	dbPath, ids := recordRuns(t, 2)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SEQ"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[1], ids[0])
	assert.Contains(t, lines[2], ids[1])
	assert.Contains(t, lines[2], defsDir)
}

func TestHistoryCommand_JSON(t *testing.T) {
	dbPath, ids := recordRuns(t, 2)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			ID       string `json:"id"`
			Seq      int64  `json:"seq"`
			VarCount int    `json:"var_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, ids[0], resp.Data[0].ID)
	assert.Equal(t, int64(2), resp.Data[1].Seq)
	assert.Equal(t, 5, resp.Data[1].VarCount)
}

func TestHistoryCommand_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistoryCommand_RunDetail(t *testing.T) {
	dbPath, ids := recordRuns(t, 2)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", dbPath, ids[1])
	require.NoError(t, err)

	var resp struct {
		Data RunDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ids[1], resp.Data.RunID)
	require.NotEmpty(t, resp.Data.TypeSets)
	for i, e := range resp.Data.TypeSets {
		assert.Equal(t, i, e.Index)
		assert.True(t, strings.HasPrefix(e.TypeSet, "TypeSet("))
		assert.Len(t, e.Hash, 64)
		assert.Equal(t, []string{ids[0]}, e.SharedBy, "both runs emit the same table")
	}

	out, _, err = execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath, ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+ids[0])
	assert.Contains(t, out, "  [0] TypeSet(")
	assert.Contains(t, out, "(also in 1 run(s))")
}

func TestHistoryCommand_UnknownRun(t *testing.T) {
	dbPath, _ := recordRuns(t, 1)

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "run not found: no-such-run")
}

func TestHistoryCommand_RequiresDB(t *testing.T) {
	_, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}
