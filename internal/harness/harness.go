package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/voicecmd/internal/catalog"
	"github.com/roach88/voicecmd/internal/command"
	"github.com/roach88/voicecmd/internal/navigation"
	"github.com/roach88/voicecmd/internal/recognition"
	"github.com/roach88/voicecmd/internal/speech"
	"github.com/roach88/voicecmd/internal/testutil"
	"github.com/roach88/voicecmd/internal/transcript"
)

// Harness is the scenario execution engine.
// It drives a controller with a scripted engine and records its trace.
type Harness struct {
	engine *speech.ScriptedEngine
	ctl    *recognition.Controller
	nav    *navigation.Recorder
	result *Result
	seq    int64
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh controller and engine. Execution flow:
//  1. Build the engine and controller with deterministic session IDs
//  2. Install the scenario catalog (or the built-in navigation commands)
//  3. Execute steps, processing queued engine events after each
//  4. Evaluate assertions against the trace
//
// Returns an error only if the scenario cannot be executed at all; failed
// expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	h := &Harness{
		engine: speech.NewScriptedEngine(),
		nav:    navigation.NewRecorder(),
		result: NewResult(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.engine.SetSupported(!scenario.Unsupported)
	h.engine.SetAutoBegin(!scenario.ManualBegin)

	opts := []recognition.Option{
		recognition.WithHooks(h.hooks()),
		recognition.WithSessionIDs(testutil.NewSequentialSessions(scenario.SessionPrefix)),
		recognition.WithLogger(h.logger),
	}
	if scenario.Normalize {
		opts = append(opts, recognition.WithNormalizer(transcript.Normalize))
	}
	h.ctl = recognition.New(h.engine, opts...)

	if err := h.install(scenario.Catalog); err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step); err != nil {
			return nil, err
		}
	}

	h.result.FinalState = h.ctl.State().String()

	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(errMsg)
	}

	return h.result, nil
}

// install binds the catalog to a navigator that traces every navigation,
// and registers each command with a tracing callback.
func (h *Harness) install(path string) error {
	var (
		cat *catalog.Catalog
		err error
	)
	if path != "" {
		cat, err = catalog.LoadCatalog(path)
	} else {
		cat, err = navigation.Builtin()
	}
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	nav := navigation.Multi(h.nav, navigation.Funcs{
		NavigateFunc: func(url string) { h.record(TraceEvent{Type: EventNavigate, Value: url}) },
		BackFunc:     func() { h.record(TraceEvent{Type: EventBack}) },
	})

	cmds, err := catalog.BindCatalog(cat, nav)
	if err != nil {
		return fmt.Errorf("failed to bind catalog: %w", err)
	}

	for _, cmd := range cmds {
		h.ctl.Register(h.traced(cmd))
	}
	return nil
}

// traced wraps cmd's callback so that each invocation is recorded first.
func (h *Harness) traced(cmd command.Command) command.Command {
	label, inner := cmd.Label, cmd.Callback
	cmd.Callback = func(input *string) {
		h.record(TraceEvent{Type: EventCallback, Label: label, Input: input})
		if inner != nil {
			inner(input)
		}
	}
	return cmd
}

func (h *Harness) hooks() recognition.Hooks {
	return recognition.Hooks{
		OnStateChange: func(s recognition.State) {
			h.record(TraceEvent{Type: EventState, Value: s.String()})
		},
		OnError: func(err error) {
			h.record(TraceEvent{Type: EventError, Value: err.Error()})
		},
		OnTranscript: func(t string) {
			h.record(TraceEvent{Type: EventTranscript, Value: t})
		},
		OnCommandMatched: func(cmd command.Command, input *string) {
			h.record(TraceEvent{Type: EventMatched, Label: cmd.Label, Input: input})
		},
		OnNoMatch: func(t string) {
			h.record(TraceEvent{Type: EventNoMatch, Value: t})
		},
	}
}

// record appends ev to the trace with the next logical sequence number.
func (h *Harness) record(ev TraceEvent) {
	h.seq++
	ev.Seq = h.seq
	h.result.Trace = append(h.result.Trace, ev)
}

// executeStep runs one step and processes the events it queued.
func (h *Harness) executeStep(i int, step Step) error {
	switch step.Op {
	case OpStart:
		h.checkStatus(i, step, h.ctl.Start())
	case OpStop:
		h.checkStatus(i, step, h.ctl.Stop())
	case OpAbort:
		h.checkStatus(i, step, h.ctl.Abort())
	case OpBegan:
		if !h.engine.Begin() {
			return fmt.Errorf("steps[%d]: began before any start", i)
		}
	case OpResult:
		if !h.engine.Result(step.Transcript) {
			return fmt.Errorf("steps[%d]: result before any start", i)
		}
	case OpEnded:
		if !h.engine.End() {
			return fmt.Errorf("steps[%d]: ended before any start", i)
		}
	case OpError:
		if !h.engine.Fail(errors.New(step.Error)) {
			return fmt.Errorf("steps[%d]: error before any start", i)
		}
	case OpTranscript:
		if _, err := h.ctl.HandleTranscript(step.Transcript); err != nil {
			h.record(TraceEvent{Type: EventError, Value: err.Error()})
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}

	// A contract violation is traced; the remaining events stay queued and
	// are processed by the next flush.
	for {
		err := h.ctl.Flush()
		if err == nil {
			break
		}
		h.record(TraceEvent{Type: EventError, Value: err.Error()})
	}

	h.logger.Info("scenario step completed",
		"step", i,
		"op", step.Op,
		"state", h.ctl.State().String(),
	)
	return nil
}

// checkStatus traces a control status and compares it with the expectation.
func (h *Harness) checkStatus(i int, step Step, got recognition.Status) {
	h.record(TraceEvent{Type: EventStatus, Op: step.Op, Value: got.String()})

	if step.Expect != "" && step.Expect != got.String() {
		h.result.AddError(fmt.Sprintf("steps[%d] %s: expected status %s, got %s",
			i, step.Op, step.Expect, got.String()))
	}
}
