package recognition

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/voicecmd/internal/command"
)

// Controller owns the recognition state machine.
//
// Thread-safety model:
//   - Start/Stop/Abort, registry operations and SetHooks: safe from any goroutine
//   - Sink.Emit (used by engines): safe from any goroutine
//   - Run: must be called from exactly ONE goroutine
//   - Flush: must not be called while Run is active
//
// Hooks and callbacks are invoked without internal locks held, so they may
// call back into the controller (e.g. a command that stops listening).
//
// INVARIANTS:
//   - At most one recognition session is active (session != "")
//   - The state is StateIdle whenever no session is active
//   - Events of any session other than the current one are discarded
type Controller struct {
	engine   Engine
	registry *command.Registry
	sessions SessionIDGenerator
	queue    *eventQueue
	logger   *slog.Logger

	// normalize maps a transcript to the text patterns are tested against.
	normalize func(string) string

	mu      sync.Mutex
	state   State
	session string
	hooks   Hooks
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(r *command.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithHooks sets the initial notification hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithSessionIDs overrides the session ID generator.
//
// Default: UUIDv7Generator.
func WithSessionIDs(g SessionIDGenerator) Option {
	return func(c *Controller) {
		if g != nil {
			c.sessions = g
		}
	}
}

// WithNormalizer sets the function applied to transcripts before matching.
// Notifications still receive the transcript as the engine reported it.
func WithNormalizer(fn func(string) string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Controller driving engine.
// A nil engine means recognition is unsupported on this host; the registry
// and HandleTranscript still work.
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:    engine,
		registry:  command.NewRegistry(),
		sessions:  UUIDv7Generator{},
		queue:     newEventQueue(),
		logger:    slog.Default(),
		normalize: func(s string) string { return s },
		state:     StateIdle,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Supported reports whether a speech-recognition engine is available.
func (c *Controller) Supported() bool {
	return c.engine != nil && c.engine.Supported()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the active session ID, or "" when idle.
func (c *Controller) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetHooks merges the non-nil hooks of h into the current hooks.
func (c *Controller) SetHooks(h Hooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = c.hooks.merge(h)
}

// Registry returns the command registry.
func (c *Controller) Registry() *command.Registry {
	return c.registry
}

// Register appends cmd to the registry.
func (c *Controller) Register(cmd command.Command) {
	c.registry.Register(cmd)
}

// Unregister removes every command labelled label.
func (c *Controller) Unregister(label string) {
	c.registry.Unregister(label)
}

// Clear removes every command.
func (c *Controller) Clear() {
	c.registry.Clear()
}

// Commands returns a snapshot of the registered commands.
func (c *Controller) Commands() []command.Command {
	return c.registry.List()
}

// Start begins a recognition session. Legal only from StateIdle.
// After Close it returns StatusFailed and reports ErrClosed.
//
// The state moves to StateListening when the engine reports that it began.
// A second Start before the session ends returns StatusAlreadyActive, even
// if the engine has not reported yet.
func (c *Controller) Start() Status {
	if !c.Supported() {
		c.currentHooks().failed(ErrUnsupported)
		return StatusUnsupported
	}

	c.mu.Lock()
	if c.closed {
		hooks := c.hooks
		c.mu.Unlock()
		hooks.failed(ErrClosed)
		return StatusFailed
	}
	if c.session != "" || c.state != StateIdle {
		c.mu.Unlock()
		return StatusAlreadyActive
	}
	id := c.sessions.Generate()
	c.session = id
	hooks := c.hooks
	c.mu.Unlock()

	c.logger.Debug("starting recognition", "session", id)

	if err := c.engine.Start(sessionSink{c: c, session: id}); err != nil {
		c.mu.Lock()
		if c.session == id {
			c.session = ""
		}
		c.mu.Unlock()

		c.logger.Warn("recognition failed to start", "session", id, "error", err)
		hooks.failed(&EngineError{Op: "start", Session: id, Err: err})
		return StatusFailed
	}

	return StatusOK
}

// Stop requests a graceful end to the active session. The engine may still
// deliver a pending result. Returns StatusNotActive when idle.
func (c *Controller) Stop() Status {
	if !c.Supported() {
		return StatusUnsupported
	}

	c.mu.Lock()
	id := c.session
	hooks := c.hooks
	c.mu.Unlock()

	if id == "" {
		return StatusNotActive
	}

	if err := c.engine.Stop(); err != nil {
		c.logger.Warn("recognition failed to stop", "session", id, "error", err)
		hooks.failed(&EngineError{Op: "stop", Session: id, Err: err})
		return StatusFailed
	}
	return StatusOK
}

// Abort ends the active session immediately and returns to StateIdle.
// Any result the engine still delivers for the session is discarded.
// Returns StatusNotActive when idle.
func (c *Controller) Abort() Status {
	if !c.Supported() {
		return StatusUnsupported
	}

	c.mu.Lock()
	id := c.session
	hooks := c.hooks
	c.mu.Unlock()

	if id == "" {
		return StatusNotActive
	}

	if err := c.engine.Abort(); err != nil {
		c.logger.Warn("recognition failed to abort", "session", id, "error", err)
		hooks.failed(&EngineError{Op: "abort", Session: id, Err: err})
		return StatusFailed
	}

	c.endSession(id)
	return StatusOK
}

// HandleTranscript runs one matching pass over the registered commands.
// It does not change the state; engine results go through the event loop.
//
// Returns the number of (command, pattern) matches, or a *ContractError if
// a command declaring input matched through a pattern without capture group.
func (c *Controller) HandleTranscript(transcript string) (int, error) {
	return matchTranscript(c.registry.List(), c.normalize(transcript), transcript, c.currentHooks())
}

// Run is the single-writer event loop.
// Blocks until ctx is cancelled, Close is called, or a matching pass fails
// with a *ContractError, which is returned.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Debug("recognition loop starting")

	for {
		if ev, ok := c.queue.TryDequeue(); ok {
			if err := c.processEvent(ev); err != nil {
				c.logger.Error("matching failed", "session", ev.Session, "error", err)
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.logger.Debug("recognition loop stopping: context cancelled")
			return ctx.Err()

		case <-c.queue.Wait():
			// The signal channel closes with the queue.
			if c.queue.Closed() && c.queue.Len() == 0 {
				c.logger.Debug("recognition loop stopping: closed")
				return nil
			}
		}
	}
}

// Flush processes every pending event on the calling goroutine.
// Returns the first *ContractError encountered; remaining events stay queued.
func (c *Controller) Flush() error {
	for {
		ev, ok := c.queue.TryDequeue()
		if !ok {
			return nil
		}
		if err := c.processEvent(ev); err != nil {
			return err
		}
	}
}

// Pending returns the number of queued engine events.
func (c *Controller) Pending() int {
	return c.queue.Len()
}

// Close aborts any active session and stops the event loop.
// Start fails with ErrClosed afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	active := c.session != ""
	c.mu.Unlock()

	if active {
		c.Abort()
	}
	c.queue.Close()
}

// processEvent applies one engine event to the state machine.
// CRITICAL: Called only from Run or Flush.
func (c *Controller) processEvent(ev Event) error {
	c.mu.Lock()
	if ev.Session == "" || ev.Session != c.session {
		current := c.session
		c.mu.Unlock()
		c.logger.Debug("discarding stale recognition event",
			"type", ev.Type.String(),
			"session", ev.Session,
			"current", current,
		)
		return nil
	}
	c.mu.Unlock()

	switch ev.Type {
	case EventBegan:
		c.transition(StateListening)
		return nil

	case EventResult:
		c.transition(StateProcessing)
		hooks := c.currentHooks()
		hooks.transcript(ev.Transcript)

		defer c.endSession(ev.Session)
		n, err := c.HandleTranscript(ev.Transcript)
		c.logger.Debug("transcript handled",
			"session", ev.Session,
			"transcript", ev.Transcript,
			"matches", n,
		)
		return err

	case EventEnded:
		c.endSession(ev.Session)
		return nil

	case EventError:
		c.currentHooks().failed(&EngineError{Op: "recognize", Session: ev.Session, Err: ev.Err})
		c.endSession(ev.Session)
		return nil

	default:
		c.logger.Warn("unknown recognition event", "type", int(ev.Type), "session", ev.Session)
		return nil
	}
}

// transition moves to s and notifies if the state changed.
func (c *Controller) transition(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	hooks := c.hooks
	c.mu.Unlock()

	if changed {
		c.logger.Debug("recognition state changed", "state", s.String())
		hooks.stateChanged(s)
	}
}

// endSession ends session id, if it is still current, and returns to idle.
func (c *Controller) endSession(id string) {
	c.mu.Lock()
	if c.session != id {
		c.mu.Unlock()
		return
	}
	c.session = ""
	c.mu.Unlock()

	c.transition(StateIdle)
}

func (c *Controller) currentHooks() Hooks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hooks
}
