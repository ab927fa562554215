package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/polytype/internal/interval"
	"github.com/roach88/polytype/internal/typeset"
	"github.com/roach88/polytype/internal/types"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testTable is a small TypeSet table: a SIMD integer set, its lane set, a
// scalar bool and a set with no lanes.
func testTable() []typeset.TypeSet {
	return []typeset.TypeSet{
		typeset.MustNew(typeset.Options{Lanes: interval.All, Ints: interval.Range(16, 64)}),
		typeset.MustNew(typeset.Options{Ints: interval.Range(16, 64)}),
		typeset.Of(types.B1),
		typeset.MustNew(typeset.Options{Lanes: interval.Exactly(interval.Empty), Floats: interval.All}),
	}
}
