// Package harness runs voice-command scenarios against a scripted engine.
//
// A scenario drives a recognition controller through a sequence of engine
// and control steps, records every observable notification in a trace, and
// evaluates assertions over that trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: search_for_game
//	description: "Search carries the spoken query into the URL"
//	catalog: commands.cue        # optional; built-in navigation otherwise
//	unsupported: false           # optional; simulate a host without recognition
//	manual_begin: false          # optional; require explicit began steps
//	session_prefix: s            # optional; session IDs are s-1, s-2, ...
//	steps:
//	  - op: start
//	    expect: ok
//	  - op: result
//	    transcript: "search for zelda"
//	assertions:
//	  - type: called
//	    label: Search
//	    input: zelda
//	  - type: navigated
//	    urls: ["/search?query=zelda"]
//	  - type: final_state
//	    state: idle
//
// # Step Operations
//
//   - start, stop, abort: call the controller; expect checks the status
//   - began, result, ended, error: emit an engine event for the latest session
//   - transcript: run one matching pass directly, bypassing the engine
//
// Queued engine events are processed after every step.
//
// # Assertion Types
//
//   - called: a command callback ran (optionally with a given input)
//   - call_count: a command callback ran exactly N times
//   - call_order: callbacks ran in the given relative order
//   - no_match: a transcript matched nothing (optionally a given one)
//   - navigated: the exact navigation sequence ("back" for history back)
//   - final_state: the controller state after the last step
//   - error_contains: some reported error contains a substring
//
// # Deterministic Testing
//
// Session IDs come from testutil.SequentialSessions and every trace event
// carries a logical sequence number, so the same scenario always produces a
// byte-identical trace for golden comparison.
package harness
