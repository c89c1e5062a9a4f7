package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect and assertion matched.
	Pass bool `json:"pass"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the trace and final state, used for golden comparison.
	Snapshot Snapshot `json:"snapshot"`
}

// Snapshot captures a scenario's transitions and final sessions.
// Sessions appear by scenario name; times are offsets from the start.
type Snapshot struct {
	Scenario    string             `json:"scenario"`
	Transitions []TransitionRecord `json:"transitions"`
	Sessions    []SessionRecord    `json:"sessions"`
}

// TransitionRecord is one committed status change.
type TransitionRecord struct {
	Session string `json:"session"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	At      string `json:"at"`
}

// SessionRecord is one session's final state.
type SessionRecord struct {
	Session  string `json:"session"`
	ID       string `json:"id"`
	Event    string `json:"event"`
	Status   string `json:"status"`
	Position int    `json:"position,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
