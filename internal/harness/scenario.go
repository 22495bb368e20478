package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/voicecmd/internal/recognition"
)

// Scenario defines a voice-command scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog installed instead of the built-in
	// navigation commands. Relative paths resolve against the scenario file.
	Catalog string `yaml:"catalog,omitempty"`

	// Unsupported simulates a host without speech recognition.
	Unsupported bool `yaml:"unsupported,omitempty"`

	// ManualBegin disables the engine's automatic began event on start.
	ManualBegin bool `yaml:"manual_begin,omitempty"`

	// Normalize enables transcript normalization before matching.
	Normalize bool `yaml:"normalize,omitempty"`

	// SessionPrefix prefixes generated session IDs. Defaults to "session".
	SessionPrefix string `yaml:"session_prefix,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the trace after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step operations.
const (
	OpStart      = "start"
	OpStop       = "stop"
	OpAbort      = "abort"
	OpBegan      = "began"
	OpResult     = "result"
	OpEnded      = "ended"
	OpError      = "error"
	OpTranscript = "transcript"
)

// Step is one scenario action.
type Step struct {
	// Op is the operation (see the Op constants).
	Op string `yaml:"op"`

	// Transcript is the utterance of result and transcript steps.
	Transcript string `yaml:"transcript,omitempty"`

	// Error is the engine error message of error steps.
	Error string `yaml:"error,omitempty"`

	// Expect is the expected status of start, stop and abort steps.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type (see the Assert constants).
	Type string `yaml:"type"`

	// Label is the command label (used by called, call_count).
	Label string `yaml:"label,omitempty"`

	// Input is the expected callback input (used by called).
	// Absent means any input.
	Input *string `yaml:"input,omitempty"`

	// Count is the expected number of callbacks (used by call_count).
	Count int `yaml:"count,omitempty"`

	// Labels is the expected callback order (used by call_order).
	Labels []string `yaml:"labels,omitempty"`

	// Transcript is the expected unmatched transcript (used by no_match).
	// Empty means any.
	Transcript string `yaml:"transcript,omitempty"`

	// URLs is the expected navigation sequence (used by navigated).
	URLs []string `yaml:"urls,omitempty"`

	// State is the expected final state (used by final_state).
	State string `yaml:"state,omitempty"`

	// Message is the expected error substring (used by error_contains).
	Message string `yaml:"message,omitempty"`
}

// Assertion type constants.
const (
	AssertCalled        = "called"
	AssertCallCount     = "call_count"
	AssertCallOrder     = "call_order"
	AssertNoMatch       = "no_match"
	AssertNavigated     = "navigated"
	AssertFinalState    = "final_state"
	AssertErrorContains = "error_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the catalog path relative to the scenario BEFORE validation
	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found: %s", s.Catalog)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpStart, OpStop, OpAbort:
		if st.Expect != "" {
			if _, ok := recognition.ParseStatus(st.Expect); !ok {
				return fmt.Errorf("steps[%d]: unknown status %q", index, st.Expect)
			}
		}
		return nil
	case OpBegan, OpEnded:
	case OpResult, OpTranscript:
		if st.Transcript == "" {
			return fmt.Errorf("steps[%d]: transcript is required for %s", index, st.Op)
		}
	case OpError:
		if st.Error == "" {
			return fmt.Errorf("steps[%d]: error is required for error", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Expect != "" {
		return fmt.Errorf("steps[%d]: expect is only valid for start, stop and abort", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCalled:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for called", index)
		}
	case AssertCallCount:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertCallOrder:
		if len(a.Labels) == 0 {
			return fmt.Errorf("assertions[%d]: labels list is required for call_order", index)
		}
	case AssertNoMatch, AssertNavigated:
	case AssertFinalState:
		if _, ok := recognition.ParseState(a.State); !ok {
			return fmt.Errorf("assertions[%d]: unknown state %q for final_state", index, a.State)
		}
	case AssertErrorContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for error_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
