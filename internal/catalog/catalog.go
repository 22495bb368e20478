// Package catalog compiles declarative command catalogs written in CUE.
//
// A catalog declares commands under the top-level "command" struct, keyed by
// an identifier:
//
//	command: search: {
//		label:    "Search"
//		patterns: ["^search (?:for )?(.+)$", "^find (?:game )?(.+)$"]
//		input:    true
//		action: {navigate: "/search", query: "query"}
//	}
//
// Declaration order is registration order. Catalogs are compiled to
// CommandSpecs, validated, and bound to a Navigator to produce
// command.Commands.
package catalog

import "cuelang.org/go/cue/token"

// ActionKind identifies what a command does when it matches.
type ActionKind string

const (
	// ActionNavigate opens a path, optionally carrying the input as a query parameter.
	ActionNavigate ActionKind = "navigate"
	// ActionBack returns to the previous page.
	ActionBack ActionKind = "back"
)

// Action is the effect of a catalog command.
type Action struct {
	Kind ActionKind `json:"kind"`

	// Path is the navigation target for ActionNavigate.
	Path string `json:"path,omitempty"`

	// Query names the parameter the input is encoded into. Requires Input.
	Query string `json:"query,omitempty"`
}

// CommandSpec is a compiled catalog command.
type CommandSpec struct {
	// ID is the struct label under "command".
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Patterns []string  `json:"patterns"`
	Input    bool      `json:"input"`
	Action   Action    `json:"action"`
	Pos      token.Pos `json:"-"`
}

// Catalog is an ordered set of command specs.
type Catalog struct {
	// Name is the file or directory the catalog was loaded from.
	Name     string        `json:"name"`
	Commands []CommandSpec `json:"commands"`
}

// Labels returns the command labels in declaration order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Commands))
	for i, spec := range c.Commands {
		labels[i] = spec.Label
	}
	return labels
}
