package speech

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/roach88/voicecmd/internal/recognition"
)

// ErrCapturing is returned by Start while a line is still being read.
var ErrCapturing = errors.New("engine is already capturing")

// LineEngine treats each line of a reader as one utterance.
//
// Every Start reports began, then reads the next line on a background
// goroutine and reports it as a result followed by ended. A blank line is
// silence: ended without a result. At end of input the session ends without
// a result and Exhausted is closed; further Starts fail with io.EOF.
type LineEngine struct {
	mu        sync.Mutex
	scanner   *bufio.Scanner
	capturing bool
	aborted   bool
	eof       bool
	exhausted chan struct{}
}

// NewLineEngine creates an engine reading utterances from r.
func NewLineEngine(r io.Reader) *LineEngine {
	return &LineEngine{
		scanner:   bufio.NewScanner(r),
		exhausted: make(chan struct{}),
	}
}

// Supported implements recognition.Engine.
func (e *LineEngine) Supported() bool {
	return true
}

// Start implements recognition.Engine.
func (e *LineEngine) Start(sink recognition.Sink) error {
	e.mu.Lock()
	if e.eof {
		e.mu.Unlock()
		return io.EOF
	}
	if e.capturing {
		e.mu.Unlock()
		return ErrCapturing
	}
	e.capturing = true
	e.aborted = false
	e.mu.Unlock()

	sink.Emit(recognition.Began())
	go e.capture(sink)
	return nil
}

func (e *LineEngine) capture(sink recognition.Sink) {
	line, err := e.readLine()

	e.mu.Lock()
	aborted := e.aborted
	e.capturing = false
	if err != nil && !e.eof {
		e.eof = true
		close(e.exhausted)
	}
	e.mu.Unlock()

	if aborted {
		return
	}

	switch {
	case errors.Is(err, io.EOF):
		sink.Emit(recognition.Ended())
	case err != nil:
		sink.Emit(recognition.Failed(err))
	case line == "":
		sink.Emit(recognition.Ended())
	default:
		sink.Emit(recognition.Result(line))
		sink.Emit(recognition.Ended())
	}
}

func (e *LineEngine) readLine() (string, error) {
	if !e.scanner.Scan() {
		if err := e.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(e.scanner.Text()), nil
}

// Stop implements recognition.Engine. The pending line is still delivered.
func (e *LineEngine) Stop() error {
	return nil
}

// Abort implements recognition.Engine. The pending line is read but not reported.
func (e *LineEngine) Abort() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capturing {
		e.aborted = true
	}
	return nil
}

// Exhausted is closed once the reader has no more lines.
func (e *LineEngine) Exhausted() <-chan struct{} {
	return e.exhausted
}
