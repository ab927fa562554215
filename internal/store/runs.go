package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/polytype/internal/canon"
	"github.com/roach88/polytype/internal/typeset"
)

// Run is one recorded generator run.
type Run struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Source   string `json:"source"`
	VarCount int    `json:"var_count"`
	// TypeSets is the length of the emitted TYPE_SETS table.
	TypeSets int `json:"typesets"`
}

// RecordRun stores a generator run together with its TypeSet table, in
// table order. The run gets a fresh UUIDv7 id and the next seq.
func (s *Store) RecordRun(ctx context.Context, source string, varCount int, sets []typeset.TypeSet) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	run := Run{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Source:   source,
		VarCount: varCount,
		TypeSets: len(sets),
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, source, var_count)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Seq, run.Source, run.VarCount)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	for i, ts := range sets {
		fields, err := marshalFields(ts)
		if err != nil {
			return Run{}, fmt.Errorf("record run: typeset %d: %w", i, err)
		}
		hash := ts.Hash()

		// Content-addressed: a set emitted by an earlier run is already present.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO typesets (hash, repr, fields)
			VALUES (?, ?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hash, ts.String(), fields)
		if err != nil {
			return Run{}, fmt.Errorf("record run: typeset %d: %w", i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_typesets (run_id, position, typeset_hash)
			VALUES (?, ?, ?)
		`, run.ID, i, hash)
		if err != nil {
			return Run{}, fmt.Errorf("record run: typeset %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

// Runs returns every recorded run, oldest first.
// Returns an empty slice (not nil) when nothing has been recorded.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.source, r.var_count, COUNT(rt.position)
		FROM runs r
		LEFT JOIN run_typesets rt ON rt.run_id = r.id
		GROUP BY r.id
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Source, &r.VarCount, &r.TypeSets); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunTypeSets returns the TypeSet table recorded for a run, in table order.
// An unknown run id yields sql.ErrNoRows.
func (s *Store) RunTypeSets(ctx context.Context, runID string) ([]typeset.TypeSet, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.fields
		FROM run_typesets rt
		JOIN typesets t ON t.hash = rt.typeset_hash
		WHERE rt.run_id = ?
		ORDER BY rt.position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query typesets: %w", err)
	}
	defer rows.Close()

	sets := []typeset.TypeSet{}
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("scan typeset: %w", err)
		}
		ts, err := unmarshalFields(fields)
		if err != nil {
			return nil, fmt.Errorf("run %s: typeset %d: %w", runID, len(sets), err)
		}
		sets = append(sets, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate typesets: %w", err)
	}
	return sets, nil
}

// RunsWithTypeSet returns the runs whose table contains ts, oldest first.
func (s *Store) RunsWithTypeSet(ctx context.Context, ts typeset.TypeSet) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.seq
		FROM run_typesets rt
		JOIN runs r ON r.id = rt.run_id
		WHERE rt.typeset_hash = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, ts.Hash())
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		var seq int64
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return ids, nil
}

// marshalFields encodes TypeSet.Fields as a canonical JSON object.
func marshalFields(ts typeset.TypeSet) (string, error) {
	obj := make(map[string]any, 8)
	for _, f := range ts.Fields() {
		obj[f.Name] = f.Value
	}
	data, err := canon.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// fieldOrder is the order typeset.FromFields expects.
var fieldOrder = typeset.TypeSet{}.Fields()

func unmarshalFields(data string) (typeset.TypeSet, error) {
	var obj map[string]int
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return typeset.TypeSet{}, fmt.Errorf("unmarshal fields: %w", err)
	}
	fields := make([]typeset.Field, len(fieldOrder))
	for i, f := range fieldOrder {
		v, ok := obj[f.Name]
		if !ok {
			return typeset.TypeSet{}, fmt.Errorf("unmarshal fields: missing %s", f.Name)
		}
		fields[i] = typeset.Field{Name: f.Name, Value: v}
	}
	return typeset.FromFields(fields)
}
