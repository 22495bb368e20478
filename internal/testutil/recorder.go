// Package testutil provides deterministic helpers for recognition tests.
package testutil

import (
	"sync"

	"github.com/roach88/voicecmd/internal/command"
	"github.com/roach88/voicecmd/internal/recognition"
)

// Call is one recorded callback or matched notification.
type Call struct {
	Label string
	Input *string
}

// InputOr returns the recorded input, or def when it was nil.
func (c Call) InputOr(def string) string {
	if c.Input == nil {
		return def
	}
	return *c.Input
}

// Recorder captures every controller notification and command callback.
//
// Thread-safety: safe for concurrent use; accessors return copies.
type Recorder struct {
	mu          sync.Mutex
	states      []recognition.State
	errs        []error
	transcripts []string
	matched     []Call
	noMatches   []string
	callbacks   []Call
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hooks returns controller hooks that record into r.
func (r *Recorder) Hooks() recognition.Hooks {
	return recognition.Hooks{
		OnStateChange: func(s recognition.State) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, s)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
		OnTranscript: func(t string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.transcripts = append(r.transcripts, t)
		},
		OnCommandMatched: func(cmd command.Command, input *string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.matched = append(r.matched, Call{Label: cmd.Label, Input: input})
		},
		OnNoMatch: func(t string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.noMatches = append(r.noMatches, t)
		},
	}
}

// Callback returns a command callback that records invocations under label.
func (r *Recorder) Callback(label string) command.Callback {
	return func(input *string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.callbacks = append(r.callbacks, Call{Label: label, Input: input})
	}
}

// States returns recorded state changes.
func (r *Recorder) States() []recognition.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recognition.State(nil), r.states...)
}

// Errors returns recorded errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Transcripts returns recorded raw transcripts.
func (r *Recorder) Transcripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.transcripts...)
}

// Matched returns recorded matched notifications.
func (r *Recorder) Matched() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.matched...)
}

// NoMatches returns recorded no-match transcripts.
func (r *Recorder) NoMatches() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.noMatches...)
}

// Callbacks returns recorded command callback invocations.
func (r *Recorder) Callbacks() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.callbacks...)
}

// CallbacksFor returns recorded callback invocations of one label.
func (r *Recorder) CallbacksFor(label string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.callbacks {
		if c.Label == label {
			out = append(out, c)
		}
	}
	return out
}
