package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/roach88/voicecmd/internal/command"
)

// Navigator performs the effects of catalog actions.
type Navigator interface {
	// Navigate opens url, a path with an optional query string.
	Navigate(url string)

	// Back returns to the previous page.
	Back()
}

// Registrar is the subset of a command registry used to install catalogs.
// Implemented by *command.Registry and *recognition.Controller.
type Registrar interface {
	Register(cmd command.Command)
	Unregister(label string)
}

// Bind validates spec and returns a command whose callback performs the
// spec's action on nav.
func Bind(spec *CommandSpec, nav Navigator) (command.Command, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return command.Command{}, errs[0]
	}

	patterns := make([]*regexp.Regexp, len(spec.Patterns))
	for i, expr := range spec.Patterns {
		// Validate has compiled every pattern successfully.
		patterns[i] = command.Pattern(expr)
	}

	return command.Command{
		Label:    spec.Label,
		Patterns: patterns,
		HasInput: spec.Input,
		Callback: actionCallback(spec.Action, nav),
	}, nil
}

func actionCallback(action Action, nav Navigator) command.Callback {
	switch action.Kind {
	case ActionBack:
		return func(*string) { nav.Back() }

	case ActionNavigate:
		if action.Query == "" {
			return func(*string) { nav.Navigate(action.Path) }
		}
		return func(input *string) {
			// An empty input carries nothing to search for.
			if input == nil || *input == "" {
				return
			}
			nav.Navigate(WithQuery(action.Path, action.Query, *input))
		}

	default:
		return nil
	}
}

// WithQuery appends param=value to path. Both are query-escaped, with
// spaces written as %20 rather than +.
func WithQuery(path, param, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + url.QueryEscape(param) + "=" + strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// BindCatalog validates the whole catalog and binds every command in
// declaration order.
func BindCatalog(c *Catalog, nav Navigator) ([]command.Command, error) {
	if errs := ValidateCatalog(c); len(errs) > 0 {
		return nil, errs[0]
	}

	cmds := make([]command.Command, 0, len(c.Commands))
	for i := range c.Commands {
		cmd, err := Bind(&c.Commands[i], nav)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Install binds c and registers its commands on reg.
// Returns the installed labels, for Uninstall.
// Nothing is registered if any command is invalid.
func Install(reg Registrar, c *Catalog, nav Navigator) ([]string, error) {
	cmds, err := BindCatalog(c, nav)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(cmds))
	for i, cmd := range cmds {
		reg.Register(cmd)
		labels[i] = cmd.Label
	}
	return labels, nil
}

// Uninstall removes every command labelled with one of labels.
func Uninstall(reg Registrar, labels []string) {
	for _, label := range labels {
		reg.Unregister(label)
	}
}
