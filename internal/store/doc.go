// Package store records generator runs in SQLite.
//
// Each run of the generator writes one row to runs and one row per emitted
// TypeSet table entry to run_typesets. TypeSets themselves live in typesets,
// keyed by their content hash, so identical sets emitted by different runs
// share a row.
//
// # Ordering
//
// Runs are ordered by seq, a logical clock assigned at insert time, then by
// id. Timestamps are never stored, so two databases built from the same
// sequence of runs differ only in run ids.
//
// # Encoding
//
// The fields column holds the log2-encoded bounds of TypeSet.Fields as
// canonical JSON (see internal/canon). Reading a run back decodes
// those fields with typeset.FromFields.
//
// # Connection
//
// A Store holds a single connection in WAL mode with foreign keys enforced
// and a five second busy timeout. Pending migrations run on Open.
package store
