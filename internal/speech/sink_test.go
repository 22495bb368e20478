package speech_test

import (
	"sync"
	"testing"
	"time"

	"github.com/roach88/voicecmd/internal/recognition"
)

// collectSink records emitted events and signals each one on ch.
type collectSink struct {
	mu     sync.Mutex
	events []recognition.Event
	ch     chan recognition.Event
}

func newCollectSink() *collectSink {
	return &collectSink{ch: make(chan recognition.Event, 64)}
}

func (s *collectSink) Emit(ev recognition.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	s.ch <- ev
}

func (s *collectSink) Types() []recognition.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recognition.EventType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

// next waits for the next event or fails the test.
func (s *collectSink) next(t *testing.T) recognition.Event {
	t.Helper()
	select {
	case ev := <-s.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine event")
		return recognition.Event{}
	}
}
