package recognition

import "sync"

// EventType distinguishes engine lifecycle events.
type EventType int

const (
	// EventBegan means the engine started capturing audio.
	EventBegan EventType = iota + 1
	// EventResult carries a final transcript.
	EventResult
	// EventEnded means capture ended, with or without a result.
	EventEnded
	// EventError means the engine failed at runtime.
	EventError
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventBegan:
		return "began"
	case EventResult:
		return "result"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is an engine lifecycle event.
type Event struct {
	Type EventType

	// Session is set by the session-bound sink; engines leave it empty.
	Session string

	// Transcript is set for EventResult.
	Transcript string

	// Err is set for EventError.
	Err error
}

// Began returns an EventBegan event.
func Began() Event { return Event{Type: EventBegan} }

// Result returns an EventResult event carrying transcript.
func Result(transcript string) Event { return Event{Type: EventResult, Transcript: transcript} }

// Ended returns an EventEnded event.
func Ended() Event { return Event{Type: EventEnded} }

// Failed returns an EventError event carrying err.
func Failed(err error) Event { return Event{Type: EventError, Err: err} }

// eventQueue is a thread-safe FIFO queue for engine events.
//
// Engines may emit from their own goroutines while the controller's loop
// dequeues. The queue uses a channel for signaling to enable context-aware
// waiting in Run.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
