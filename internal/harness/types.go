package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64    `json:"seq"`
	Op   string   `json:"op"`
	Vars []string `json:"vars"`

	// Outcome is "ok" or the error code the step failed with.
	Outcome string `json:"outcome"`

	// Result is the TypeSet of the first variable after the step, or the
	// error message when the step failed. Solve steps leave it empty.
	Result string `json:"result,omitempty"`
}

// OutcomeOK marks a step that succeeded.
const OutcomeOK = "ok"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final maps each declared variable to its TypeSet string, or to the
	// error code its TypeSet failed with.
	Final map[string]string `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step record.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
