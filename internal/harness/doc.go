// Package harness runs scripted type variable scenarios.
//
// A scenario compiles CUE definition files, applies a sequence of
// operations to the resulting variables, then asserts on the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: narrow_and_rebind
//	description: "Constraints narrow free variables; derived views follow"
//	specs:
//	  - defs/arith.cue
//	steps:
//	  - solve: true
//	    expect: PROPAGATION_UNSUPPORTED
//	  - constrain: [Same, I32]
//	  - change_to_derived: {var: Ax, base: Half, fn: double_width}
//	  - strip_sameas: Same
//	assertions:
//	  - type: typeset
//	    var: Tx
//	    expect: "TypeSet(lanes=(1, 1), ints=(32, 32))"
//	  - type: subset
//	    var: Half
//	    of: Wide
//
// A step without expect must succeed. A step with expect must fail with
// that error code: a typevar.ErrorCode, or INVALID_INTERVAL for transforms
// whose result leaves an axis's range.
//
// # Assertion Types
//
//   - typeset: the variable's TypeSet prints as expect
//   - expr: the variable's generated-code expression equals expect
//   - subset: every type of var is a type of of
//   - error: computing the variable's TypeSet fails with code expect
//   - free_root: FreeTypeVar names expect (empty for singletons)
//
// # Deterministic Testing
//
// Steps are numbered by a logical clock starting at 1, and snapshots are
// canonical JSON, so a scenario always produces the same golden file.
package harness
