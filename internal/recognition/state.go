package recognition

// State is the recognition state machine state.
type State int

const (
	// StateIdle means no engine activity. Recognition may only start from here.
	StateIdle State = iota
	// StateListening means the engine is capturing audio.
	StateListening
	// StateProcessing means a final transcript is being matched.
	StateProcessing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Status is the outcome of Start, Stop and Abort.
//
// Environmental conditions are reported as a Status rather than an error so
// that callers can react without error-handling ceremony.
type Status int

const (
	// StatusOK means the engine accepted the request.
	StatusOK Status = iota
	// StatusUnsupported means no speech-recognition engine is available.
	StatusUnsupported
	// StatusAlreadyActive means Start was called while a session is active.
	StatusAlreadyActive
	// StatusNotActive means Stop or Abort was called while idle.
	StatusNotActive
	// StatusFailed means the engine rejected the request.
	StatusFailed
)

// String returns the snake_case status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupported:
		return "unsupported"
	case StatusAlreadyActive:
		return "already_active"
	case StatusNotActive:
		return "not_active"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusOK, StatusUnsupported, StatusAlreadyActive, StatusNotActive, StatusFailed} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for _, st := range []State{StateIdle, StateListening, StateProcessing} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}
