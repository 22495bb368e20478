package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileCommand parses a CUE value into a CommandSpec.
//
// The CUE value should be the command struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`command: home: { ... }`)
//	spec, err := CompileCommand(v.LookupPath(cue.ParsePath("command.home")))
//
// CompileCommand checks structure only; semantic checks are done by Validate.
func CompileCommand(v cue.Value) (*CommandSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &CommandSpec{Pos: v.Pos()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.ID = labels[len(labels)-1].String()
	}

	labelVal := v.LookupPath(cue.ParsePath("label"))
	if !labelVal.Exists() {
		return nil, &CompileError{
			Field:   "label",
			Message: "label is required",
			Pos:     v.Pos(),
		}
	}
	label, err := labelVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Label = label

	spec.Patterns, err = parsePatterns(v)
	if err != nil {
		return nil, err
	}

	inputVal := v.LookupPath(cue.ParsePath("input"))
	if inputVal.Exists() {
		spec.Input, err = inputVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	spec.Action, err = parseAction(v)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// parsePatterns accepts a single string or a list of strings.
func parsePatterns(v cue.Value) ([]string, error) {
	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return nil, nil
	}

	if s, err := patternsVal.String(); err == nil {
		return []string{s}, nil
	}

	iter, err := patternsVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "patterns",
			Message: "must be a string or a list of strings",
			Pos:     patternsVal.Pos(),
		}
	}

	var patterns []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		patterns = append(patterns, s)
	}
	return patterns, nil
}

// parseAction reads the action struct. A missing or unrecognized action
// compiles to an Action with an empty or unknown Kind; Validate reports it.
func parseAction(v cue.Value) (Action, error) {
	var action Action

	actionVal := v.LookupPath(cue.ParsePath("action"))
	if !actionVal.Exists() {
		return action, nil
	}

	if navVal := actionVal.LookupPath(cue.ParsePath("navigate")); navVal.Exists() {
		path, err := navVal.String()
		if err != nil {
			return action, formatCUEError(err)
		}
		action.Kind = ActionNavigate
		action.Path = path

		if queryVal := actionVal.LookupPath(cue.ParsePath("query")); queryVal.Exists() {
			query, err := queryVal.String()
			if err != nil {
				return action, formatCUEError(err)
			}
			action.Query = query
		}
		return action, nil
	}

	if backVal := actionVal.LookupPath(cue.ParsePath("back")); backVal.Exists() {
		back, err := backVal.Bool()
		if err != nil {
			return action, formatCUEError(err)
		}
		if back {
			action.Kind = ActionBack
		}
		return action, nil
	}

	iter, err := actionVal.Fields()
	if err != nil {
		return action, &CompileError{
			Field:   "action",
			Message: "must be a struct",
			Pos:     actionVal.Pos(),
		}
	}
	if iter.Next() {
		action.Kind = ActionKind(iter.Label())
	}
	return action, nil
}

// CompileSource compiles CUE source text into a Catalog.
// name is used for error positions and as the catalog name.
func CompileSource(name string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileCatalog(name, v)
}

// compileCatalog compiles every command under the "command" struct.
func compileCatalog(name string, v cue.Value) (*Catalog, error) {
	cat := &Catalog{Name: name}

	commandsVal := v.LookupPath(cue.ParsePath("command"))
	if !commandsVal.Exists() {
		return cat, nil
	}

	iter, err := commandsVal.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   "command",
			Message: "must be a struct of commands",
			Pos:     commandsVal.Pos(),
		}
	}

	for iter.Next() {
		spec, err := CompileCommand(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("command.%s: %w", iter.Label(), err)
		}
		cat.Commands = append(cat.Commands, *spec)
	}

	return cat, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
