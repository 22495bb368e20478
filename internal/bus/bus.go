// Package bus fans controller notifications out over an event bus so that
// several consumers can observe one controller.
package bus

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/roach88/voicecmd/internal/command"
	"github.com/roach88/voicecmd/internal/recognition"
)

// Topics published by Bridge.
const (
	TopicState      = "voice:state"      // func(recognition.State)
	TopicError      = "voice:error"      // func(error)
	TopicTranscript = "voice:transcript" // func(string)
	TopicMatched    = "voice:matched"    // func(Match)
	TopicNoMatch    = "voice:nomatch"    // func(string)
)

// Match is the payload of TopicMatched.
type Match struct {
	Label string `json:"label"`
	// Input is nil for commands without input.
	Input *string `json:"input,omitempty"`
}

// Bridge publishes controller hooks on an event bus.
//
// Handlers run synchronously on the publishing goroutine, which is the
// controller's event loop; they must not block.
type Bridge struct {
	bus evbus.Bus
}

// New creates a bridge over a fresh bus.
func New() *Bridge {
	return NewBridge(evbus.New())
}

// NewBridge creates a bridge over b.
func NewBridge(b evbus.Bus) *Bridge {
	return &Bridge{bus: b}
}

// Bus returns the underlying bus.
func (b *Bridge) Bus() evbus.Bus {
	return b.bus
}

// Hooks returns controller hooks that publish every notification.
func (b *Bridge) Hooks() recognition.Hooks {
	return recognition.Hooks{
		OnStateChange: func(s recognition.State) {
			b.bus.Publish(TopicState, s)
		},
		OnError: func(err error) {
			if err != nil {
				b.bus.Publish(TopicError, err)
			}
		},
		OnTranscript: func(t string) {
			b.bus.Publish(TopicTranscript, t)
		},
		OnCommandMatched: func(cmd command.Command, input *string) {
			b.bus.Publish(TopicMatched, Match{Label: cmd.Label, Input: input})
		},
		OnNoMatch: func(t string) {
			b.bus.Publish(TopicNoMatch, t)
		},
	}
}

// OnState subscribes fn to state changes.
func (b *Bridge) OnState(fn func(recognition.State)) error {
	return b.bus.Subscribe(TopicState, fn)
}

// OnError subscribes fn to errors.
func (b *Bridge) OnError(fn func(error)) error {
	return b.bus.Subscribe(TopicError, fn)
}

// OnTranscript subscribes fn to recognized transcripts.
func (b *Bridge) OnTranscript(fn func(string)) error {
	return b.bus.Subscribe(TopicTranscript, fn)
}

// OnMatched subscribes fn to command matches.
func (b *Bridge) OnMatched(fn func(Match)) error {
	return b.bus.Subscribe(TopicMatched, fn)
}

// OnNoMatch subscribes fn to transcripts that matched nothing.
func (b *Bridge) OnNoMatch(fn func(string)) error {
	return b.bus.Subscribe(TopicNoMatch, fn)
}

// Unsubscribe removes fn from topic.
func (b *Bridge) Unsubscribe(topic string, fn any) error {
	return b.bus.Unsubscribe(topic, fn)
}
