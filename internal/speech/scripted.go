package speech

import (
	"sync"

	"github.com/roach88/voicecmd/internal/recognition"
)

// Engine operation names, as recorded by ScriptedEngine.Calls and accepted by FailOn.
const (
	OpStart = "start"
	OpStop  = "stop"
	OpAbort = "abort"
)

// ScriptedEngine is a deterministic engine driven by explicit calls.
//
// Start records the sink of the new session and, unless auto-begin is
// disabled, immediately reports that capture began. Everything else
// (results, ends, errors) is pushed by the test through Begin, Result, End
// and Fail, which always target the most recent session's sink. After an
// abort the old sink is kept, so a late result can be pushed to verify it
// is discarded.
//
// Thread-safety: ScriptedEngine is safe for concurrent use.
type ScriptedEngine struct {
	mu        sync.Mutex
	supported bool
	autoBegin bool
	failures  map[string]error
	sink      recognition.Sink
	calls     []string
}

// NewScriptedEngine creates a supported engine with auto-begin enabled.
func NewScriptedEngine() *ScriptedEngine {
	return &ScriptedEngine{
		supported: true,
		autoBegin: true,
		failures:  make(map[string]error),
	}
}

// SetSupported toggles the Supported capability query.
func (e *ScriptedEngine) SetSupported(supported bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.supported = supported
}

// SetAutoBegin controls whether Start emits a began event.
func (e *ScriptedEngine) SetAutoBegin(auto bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoBegin = auto
}

// FailOn makes op (OpStart, OpStop, OpAbort) return err until cleared with nil.
func (e *ScriptedEngine) FailOn(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, op)
		return
	}
	e.failures[op] = err
}

// Supported implements recognition.Engine.
func (e *ScriptedEngine) Supported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.supported
}

// Start implements recognition.Engine.
func (e *ScriptedEngine) Start(sink recognition.Sink) error {
	e.mu.Lock()
	e.calls = append(e.calls, OpStart)
	if err := e.failures[OpStart]; err != nil {
		e.mu.Unlock()
		return err
	}
	e.sink = sink
	auto := e.autoBegin
	e.mu.Unlock()

	if auto {
		sink.Emit(recognition.Began())
	}
	return nil
}

// Stop implements recognition.Engine.
func (e *ScriptedEngine) Stop() error {
	return e.record(OpStop)
}

// Abort implements recognition.Engine.
func (e *ScriptedEngine) Abort() error {
	return e.record(OpAbort)
}

func (e *ScriptedEngine) record(op string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, op)
	return e.failures[op]
}

// Begin reports that capture began. Returns false if no session was started.
func (e *ScriptedEngine) Begin() bool {
	return e.emit(recognition.Began())
}

// Result reports a final transcript. Returns false if no session was started.
func (e *ScriptedEngine) Result(transcript string) bool {
	return e.emit(recognition.Result(transcript))
}

// End reports that capture ended. Returns false if no session was started.
func (e *ScriptedEngine) End() bool {
	return e.emit(recognition.Ended())
}

// Fail reports a runtime error. Returns false if no session was started.
func (e *ScriptedEngine) Fail(err error) bool {
	return e.emit(recognition.Failed(err))
}

func (e *ScriptedEngine) emit(ev recognition.Event) bool {
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()

	if sink == nil {
		return false
	}
	sink.Emit(ev)
	return true
}

// Calls returns the engine operations invoked so far, in order.
func (e *ScriptedEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}
