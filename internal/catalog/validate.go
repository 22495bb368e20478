package catalog

import (
	"fmt"
	"strings"

	"github.com/roach88/voicecmd/internal/command"
)

// Validation error codes (E200-E299)
const (
	ErrLabelEmpty        = "E201" // label is required
	ErrNoPatterns        = "E202" // at least one pattern required
	ErrInvalidPattern    = "E203" // pattern is not a valid regular expression
	ErrMissingCapture    = "E204" // input command pattern without capture group
	ErrInvalidAction     = "E205" // missing or unknown action
	ErrQueryWithoutInput = "E206" // query parameter on a command without input
	ErrDuplicateLabel    = "E207" // label used by more than one command
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates one command spec.
// Returns all errors found (does not fail-fast).
func Validate(spec *CommandSpec) []ValidationError {
	var errs []ValidationError

	prefix := "command"
	if spec.ID != "" {
		prefix = "command." + spec.ID
	}
	line := 0
	if spec.Pos.IsValid() {
		line = spec.Pos.Line()
	}
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   prefix + "." + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    line,
		})
	}

	// E201: label is required
	if strings.TrimSpace(spec.Label) == "" {
		add("label", ErrLabelEmpty, "label is required and must be non-empty")
	}

	// E202: at least one pattern
	if len(spec.Patterns) == 0 {
		add("patterns", ErrNoPatterns, "at least one pattern is required")
	}

	for i, expr := range spec.Patterns {
		re, err := command.CompilePattern(expr)
		if err != nil {
			// E203: invalid regexp
			add(fmt.Sprintf("patterns[%d]", i), ErrInvalidPattern, "%v", err)
			continue
		}
		// E204: input needs a capture group in every pattern
		if spec.Input && !command.HasCaptureGroup(re) {
			add(fmt.Sprintf("patterns[%d]", i), ErrMissingCapture,
				"pattern %q has no capture group but the command declares input", expr)
		}
	}

	// E205: missing or unknown action
	switch spec.Action.Kind {
	case ActionNavigate:
		if strings.TrimSpace(spec.Action.Path) == "" {
			add("action.navigate", ErrInvalidAction, "navigate requires a non-empty path")
		}
	case ActionBack:
	case "":
		add("action", ErrInvalidAction, "action is required (navigate or back)")
	default:
		add("action", ErrInvalidAction, "unknown action %q (expected navigate or back)", spec.Action.Kind)
	}

	// E206: query requires input
	if spec.Action.Query != "" && !spec.Input {
		add("action.query", ErrQueryWithoutInput,
			"query %q requires input: true", spec.Action.Query)
	}

	return errs
}

// ValidateCatalog validates every command and checks for duplicate labels.
func ValidateCatalog(c *Catalog) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]string)
	for i := range c.Commands {
		spec := &c.Commands[i]
		errs = append(errs, Validate(spec)...)

		// E207: unregister removes every command with a label
		key := spec.Label
		if strings.TrimSpace(key) == "" {
			continue
		}
		if first, dup := seen[key]; dup {
			line := 0
			if spec.Pos.IsValid() {
				line = spec.Pos.Line()
			}
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("command.%s.label", spec.ID),
				Message: fmt.Sprintf("duplicate label %q (also used by command.%s)", spec.Label, first),
				Code:    ErrDuplicateLabel,
				Line:    line,
			})
			continue
		}
		seen[key] = spec.ID
	}

	return errs
}
