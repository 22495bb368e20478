package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, describe(event))
		}
	}

	return buf.String()
}

// describe renders a trace event on one line.
func describe(ev TraceEvent) string {
	var parts []string
	parts = append(parts, ev.Type)
	if ev.Op != "" {
		parts = append(parts, ev.Op)
	}
	if ev.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", ev.Label))
	}
	if ev.Input != nil {
		parts = append(parts, fmt.Sprintf("input=%q", *ev.Input))
	}
	if ev.Value != "" {
		parts = append(parts, fmt.Sprintf("%q", ev.Value))
	}
	return strings.Join(parts, " ")
}

// callbacks returns the callback events, optionally restricted to label.
func callbacks(trace []TraceEvent, label string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range trace {
		if ev.Type == EventCallback && (label == "" || ev.Label == label) {
			out = append(out, ev)
		}
	}
	return out
}

// assertCalled checks that a callback of the label ran, with the given
// input if one is specified.
func assertCalled(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range callbacks(trace, assertion.Label) {
		if assertion.Input == nil {
			return nil
		}
		if ev.Input != nil && *ev.Input == *assertion.Input {
			return nil
		}
	}

	expected := fmt.Sprintf("callback %q", assertion.Label)
	if assertion.Input != nil {
		expected += fmt.Sprintf(" with input %q", *assertion.Input)
	}
	return &AssertionError{
		Type:     AssertCalled,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertCallCount checks that the label's callback ran exactly Count times.
func assertCallCount(trace []TraceEvent, assertion Assertion) error {
	count := len(callbacks(trace, assertion.Label))
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d callbacks of %q", assertion.Count, assertion.Label),
			Actual:   fmt.Sprintf("%d callbacks", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertCallOrder checks that the labels' first callbacks appear in the
// specified order. Intervening callbacks are allowed.
func assertCallOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, ev := range callbacks(trace, "") {
		if _, seen := positions[ev.Label]; !seen {
			positions[ev.Label] = i + 1 // 1-indexed for readability
		}
	}

	for _, label := range assertion.Labels {
		if positions[label] == 0 {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("all callbacks present: %v", assertion.Labels),
				Actual:   fmt.Sprintf("missing callback: %s", label),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Labels); i++ {
		prev, curr := assertion.Labels[i-1], assertion.Labels[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("callbacks in order: %v", assertion.Labels),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertNoMatch checks that a transcript (or the given one) matched nothing.
func assertNoMatch(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if ev.Type != EventNoMatch {
			continue
		}
		if assertion.Transcript == "" || ev.Value == assertion.Transcript {
			return nil
		}
	}

	expected := "a no-match notification"
	if assertion.Transcript != "" {
		expected = fmt.Sprintf("no-match for %q", assertion.Transcript)
	}
	return &AssertionError{
		Type:     AssertNoMatch,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertNavigated checks the exact navigation sequence.
func assertNavigated(trace []TraceEvent, assertion Assertion) error {
	var got []string
	for _, ev := range trace {
		switch ev.Type {
		case EventNavigate:
			got = append(got, ev.Value)
		case EventBack:
			got = append(got, "back")
		}
	}

	if !slices.Equal(got, assertion.URLs) {
		return &AssertionError{
			Type:     AssertNavigated,
			Expected: fmt.Sprintf("navigations %v", assertion.URLs),
			Actual:   fmt.Sprintf("navigations %v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertErrorContains checks that some reported error contains Message.
func assertErrorContains(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if ev.Type == EventError && strings.Contains(ev.Value, assertion.Message) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertErrorContains,
		Expected: fmt.Sprintf("an error containing %q", assertion.Message),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a list of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCalled:
			err = assertCalled(result.Trace, assertion)
		case AssertCallCount:
			err = assertCallCount(result.Trace, assertion)
		case AssertCallOrder:
			err = assertCallOrder(result.Trace, assertion)
		case AssertNoMatch:
			err = assertNoMatch(result.Trace, assertion)
		case AssertNavigated:
			err = assertNavigated(result.Trace, assertion)
		case AssertFinalState:
			if result.FinalState != assertion.State {
				err = &AssertionError{
					Type:     AssertFinalState,
					Expected: fmt.Sprintf("state %s", assertion.State),
					Actual:   fmt.Sprintf("state %s", result.FinalState),
				}
			}
		case AssertErrorContains:
			err = assertErrorContains(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
