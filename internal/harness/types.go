package harness

import "github.com/jottty/jottty/internal/datom"

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step     int            `json:"step"`
	Datoms   int            `json:"datoms"`
	Entities []datom.Entity `json:"entities,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace records a step that committed.
func (r *Result) AddStepTrace(step, datoms int, entities []datom.Entity) {
	r.Trace = append(r.Trace, TraceEvent{Step: step, Datoms: datoms, Entities: entities})
}

// AddErrorTrace records a step that was rejected.
func (r *Result) AddErrorTrace(step, datoms int, err error) {
	r.Trace = append(r.Trace, TraceEvent{Step: step, Datoms: datoms, Error: err.Error()})
}
