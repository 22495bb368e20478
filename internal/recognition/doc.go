// Package recognition implements the voice-command recognition controller.
//
// The controller wraps a host speech-recognition Engine, owns a three-state
// machine (idle, listening, processing), and routes every final transcript
// to the commands of a command.Registry.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Engines report lifecycle events (began, result, ended, error) through a
// session-bound Sink. Events are appended to a FIFO queue and processed one
// at a time, either by Run in a dedicated goroutine or by Flush on the
// caller's goroutine. This ensures:
//   - Callbacks never run concurrently with one another
//   - Events are handled in the order the engine reported them
//   - A matching pass runs to completion before the state returns to idle
//
// Event Processing Flow:
//  1. Start allocates a session ID and hands the engine a sink bound to it
//  2. The engine emits events; the sink stamps them with the session ID
//  3. Run/Flush dequeue events; events of a stale session are discarded
//  4. A result moves the state to processing, runs the matching pass,
//     then returns the state to idle and ends the session
//
// Matching:
// For each registered command, in registration order, for each of its
// patterns, in declaration order, a matching pattern invokes the command's
// callback once. Commands declaring HasInput receive the first capture group.
// When nothing matched, the no-match hook fires exactly once.
//
// Errors:
// Environmental failures (unsupported engine, engine start/stop failures,
// engine runtime errors) are reported through Hooks.OnError and the returned
// Status. A command declaring HasInput whose matching pattern has no capture
// group is a programming error: HandleTranscript returns a *ContractError
// and Run stops with it.
package recognition
