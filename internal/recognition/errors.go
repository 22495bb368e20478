package recognition

import (
	"errors"
	"fmt"
)

// ErrUnsupported is reported when no speech-recognition engine is available.
var ErrUnsupported = errors.New("speech recognition not supported")

// ErrClosed is reported when Start is called on a closed Controller.
var ErrClosed = errors.New("recognition controller closed")

// EngineError wraps a failure reported by, or returned from, the engine.
// It is delivered through Hooks.OnError, never returned from Start/Stop/Abort.
type EngineError struct {
	// Op is "start", "stop", "abort" or "recognize".
	Op string

	// Session is the affected recognition session, if any.
	Session string

	Err error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Session != "" {
		return fmt.Sprintf("%s: %v (session=%s)", e.Op, e.Err, e.Session)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// ContractError reports a command that declares HasInput but whose matching
// pattern has no capture group. It indicates a misconfigured command.
type ContractError struct {
	Label      string
	Pattern    string
	Transcript string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("command %q declares input but pattern %q has no capture group (transcript=%q)",
		e.Label, e.Pattern, e.Transcript)
}

// IsContractError returns true if err is or wraps a *ContractError.
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
