package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every query's paths agree and match expectations.
	Pass bool `json:"pass"`

	Queries []QueryOutcome `json:"queries"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// QueryOutcome records how one query was evaluated.
type QueryOutcome struct {
	Name string `json:"name"`
	Tag  string `json:"tag,omitempty"`

	// Filter is the printable form of the compiled tag filter.
	Filter string `json:"filter"`

	SQL    string `json:"sql"`
	Params []any  `json:"params"`

	// Stored lists the uuids returned by SQLite, Memory those returned by
	// filterir.Match, both newest first.
	Stored []string `json:"stored"`
	Memory []string `json:"memory"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryOutcome{},
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
