package recognition

import "github.com/roach88/voicecmd/internal/command"

// Hooks are the optional notifications fired by the controller.
// Nil fields are skipped. Hooks run on the goroutine processing events and
// must not block.
type Hooks struct {
	// OnStateChange fires on every state transition.
	OnStateChange func(state State)

	// OnError fires when the engine is unsupported, fails to start, stop or
	// abort, or reports a runtime error.
	OnError func(err error)

	// OnTranscript fires for every recognized utterance, before matching.
	OnTranscript func(transcript string)

	// OnCommandMatched fires once per matching (command, pattern) pair,
	// before the command's callback. input is nil for commands without input.
	OnCommandMatched func(cmd command.Command, input *string)

	// OnNoMatch fires once when a transcript matched no pattern at all.
	OnNoMatch func(transcript string)
}

// merge returns h with every non-nil field of other applied on top.
func (h Hooks) merge(other Hooks) Hooks {
	if other.OnStateChange != nil {
		h.OnStateChange = other.OnStateChange
	}
	if other.OnError != nil {
		h.OnError = other.OnError
	}
	if other.OnTranscript != nil {
		h.OnTranscript = other.OnTranscript
	}
	if other.OnCommandMatched != nil {
		h.OnCommandMatched = other.OnCommandMatched
	}
	if other.OnNoMatch != nil {
		h.OnNoMatch = other.OnNoMatch
	}
	return h
}

func (h Hooks) stateChanged(s State) {
	if h.OnStateChange != nil {
		h.OnStateChange(s)
	}
}

func (h Hooks) failed(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Hooks) transcript(t string) {
	if h.OnTranscript != nil {
		h.OnTranscript(t)
	}
}

func (h Hooks) matched(cmd command.Command, input *string) {
	if h.OnCommandMatched != nil {
		h.OnCommandMatched(cmd, input)
	}
}

func (h Hooks) noMatch(t string) {
	if h.OnNoMatch != nil {
		h.OnNoMatch(t)
	}
}
