package harness

// TraceEvent is one finished scheduler job.
type TraceEvent struct {
	Tick   int    `json:"tick"`
	Seq    int64  `json:"seq"`
	Parent int64  `json:"parent,omitempty"`
	Kind   string `json:"kind"`
	Target string `json:"target"`

	// Error is the job error code, empty for processed jobs.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trace contains all finished jobs in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ticks is the number of ticks the scenario ran.
	Ticks int `json:"ticks"`
}

// NewResult creates a new passing result.
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

// AddTrace appends a finished job to the trace.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
