package harness

// Trace event types.
const (
	EventStatus     = "status"
	EventState      = "state"
	EventTranscript = "transcript"
	EventMatched    = "matched"
	EventCallback   = "callback"
	EventNavigate   = "navigate"
	EventBack       = "back"
	EventNoMatch    = "no_match"
	EventError      = "error"
)

// TraceEvent is one observable notification in a scenario run.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`

	// Op is the control operation of a status event.
	Op string `json:"op,omitempty"`

	// Label is the command of matched and callback events.
	Label string `json:"label,omitempty"`

	// Input is the extracted input of matched and callback events.
	Input *string `json:"input,omitempty"`

	// Value carries the status, state, transcript, URL or error message.
	Value string `json:"value,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every observable notification in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// FinalState is the controller state after the last step.
	FinalState string `json:"final_state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
