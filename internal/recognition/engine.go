package recognition

// Engine is the host speech-recognition capability.
//
// Engines are injected into the controller so that it can run against a
// browser relay, a line reader, or a scripted test double.
type Engine interface {
	// Supported reports whether recognition is available on this host.
	// It must not fail.
	Supported() bool

	// Start begins capturing audio. Lifecycle events for this session must be
	// reported through sink, from any goroutine.
	Start(sink Sink) error

	// Stop requests a graceful end to capture. A pending result may still
	// be delivered before the ended event.
	Stop() error

	// Abort ends capture immediately, discarding any pending result.
	Abort() error
}

// Sink receives engine lifecycle events for one recognition session.
// Emit is safe to call from any goroutine.
type Sink interface {
	Emit(ev Event)
}

// sessionSink stamps events with the session they belong to.
type sessionSink struct {
	c       *Controller
	session string
}

// Emit implements Sink.
func (s sessionSink) Emit(ev Event) {
	ev.Session = s.session
	if !s.c.queue.Enqueue(ev) {
		s.c.logger.Debug("dropping recognition event after close",
			"type", ev.Type.String(),
			"session", s.session,
		)
	}
}
