package harness

// QueryResult is the outcome of one scenario query.
type QueryResult struct {
	Query string   `json:"query"`
	Index string   `json:"index,omitempty"`
	Paths []string `json:"paths"`

	// Error is the error code when the query failed.
	Error string `json:"error,omitempty"`

	// Explain is the rendered plan; empty when preparing failed.
	Explain string `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every query met its expectation.
	Pass bool `json:"pass"`

	// Queries holds one entry per scenario query, in order.
	Queries []QueryResult `json:"queries"`

	// Errors contains expectation mismatches.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryResult{},
		Errors:  []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
