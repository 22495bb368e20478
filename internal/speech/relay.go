package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/roach88/voicecmd/internal/recognition"
)

// Frame types exchanged with the relay peer.
const (
	// Server to peer.
	FrameStart    = "start"
	FrameStop     = "stop"
	FrameAbort    = "abort"
	FrameNavigate = "navigate"
	FrameBack     = "back"
	FrameState    = "state"

	// Peer to server.
	FrameBegan  = "began"
	FrameResult = "result"
	FrameEnded  = "ended"
	FrameError  = "error"

	// Peer requests, passed to the request handler.
	FrameListen = "listen"
	FrameCancel = "cancel"
)

// ErrNoPeer is returned when no relay peer is connected.
var ErrNoPeer = errors.New("no recognition peer connected")

// Frame is the JSON message exchanged over the relay websocket.
type Frame struct {
	Type       string    `json:"type"`
	Transcript string    `json:"transcript,omitempty"`
	Error      string    `json:"error,omitempty"`
	Settings   *Settings `json:"settings,omitempty"`
	URL        string    `json:"url,omitempty"`
	State      string    `json:"state,omitempty"`
}

// RelayEngine drives a recognizer running on a websocket peer.
//
// Start, Stop and Abort are sent to the peer as control frames; the peer
// answers with began, result, ended and error frames, which Serve forwards
// to the active session's sink. Listen and cancel frames are user requests
// and go to the handler set with OnRequest. Supported reports false while no
// peer is connected. Only one peer is served at a time.
type RelayEngine struct {
	settings Settings
	logger   *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	sink      recognition.Sink
	onRequest func(Frame)

	// gorilla/websocket supports one concurrent writer.
	writeMu sync.Mutex
}

// NewRelayEngine creates a relay engine sending settings with every start.
func NewRelayEngine(settings Settings, logger *slog.Logger) *RelayEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayEngine{settings: settings, logger: logger}
}

// OnRequest sets the handler of peer listen and cancel requests.
// The handler runs on the Serve goroutine.
func (e *RelayEngine) OnRequest(fn func(Frame)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRequest = fn
}

// Supported implements recognition.Engine.
func (e *RelayEngine) Supported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn != nil
}

// Start implements recognition.Engine.
func (e *RelayEngine) Start(sink recognition.Sink) error {
	// The sink must be in place before the peer can answer the start frame.
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()

	settings := e.settings
	if err := e.Send(Frame{Type: FrameStart, Settings: &settings}); err != nil {
		e.mu.Lock()
		e.sink = nil
		e.mu.Unlock()
		return err
	}
	return nil
}

// Stop implements recognition.Engine.
func (e *RelayEngine) Stop() error {
	return e.Send(Frame{Type: FrameStop})
}

// Abort implements recognition.Engine.
func (e *RelayEngine) Abort() error {
	if err := e.Send(Frame{Type: FrameAbort}); err != nil {
		return err
	}
	e.mu.Lock()
	e.sink = nil
	e.mu.Unlock()
	return nil
}

// Send writes a frame to the connected peer.
func (e *RelayEngine) Send(f Frame) error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()

	if conn == nil {
		return ErrNoPeer
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := conn.WriteJSON(f); err != nil {
		return fmt.Errorf("writing %s frame: %w", f.Type, err)
	}
	return nil
}

// Serve attaches conn as the peer and forwards its frames until the
// connection fails or ctx is cancelled. A session still active when the
// peer disconnects receives an error event.
func (e *RelayEngine) Serve(ctx context.Context, conn *websocket.Conn) error {
	e.mu.Lock()
	if e.conn != nil {
		e.mu.Unlock()
		return errors.New("relay peer already connected")
	}
	e.conn = conn
	e.mu.Unlock()

	e.logger.Info("recognition peer connected", "remote", conn.RemoteAddr().String())

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	err := e.readLoop(conn)

	e.mu.Lock()
	e.conn = nil
	sink := e.sink
	e.sink = nil
	e.mu.Unlock()

	if sink != nil {
		sink.Emit(recognition.Failed(fmt.Errorf("peer disconnected: %w", err)))
	}
	e.logger.Info("recognition peer disconnected", "error", err)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}

func (e *RelayEngine) readLoop(conn *websocket.Conn) error {
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}

		if f.Type == FrameListen || f.Type == FrameCancel {
			e.mu.Lock()
			fn := e.onRequest
			e.mu.Unlock()
			if fn != nil {
				fn(f)
			}
			continue
		}

		ev, ok := frameToEvent(f)
		if !ok {
			e.logger.Warn("ignoring unknown relay frame", "type", f.Type)
			continue
		}

		e.mu.Lock()
		sink := e.sink
		if ev.Type == recognition.EventEnded || ev.Type == recognition.EventError {
			e.sink = nil
		}
		e.mu.Unlock()

		if sink == nil {
			e.logger.Debug("relay frame outside a session", "type", f.Type)
			continue
		}
		sink.Emit(ev)
	}
}

func frameToEvent(f Frame) (recognition.Event, bool) {
	switch f.Type {
	case FrameBegan:
		return recognition.Began(), true
	case FrameResult:
		return recognition.Result(f.Transcript), true
	case FrameEnded:
		return recognition.Ended(), true
	case FrameError:
		msg := f.Error
		if msg == "" {
			msg = "unknown recognition error"
		}
		return recognition.Failed(errors.New(msg)), true
	default:
		return recognition.Event{}, false
	}
}
