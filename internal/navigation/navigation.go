// Package navigation provides the built-in navigation voice commands and
// the navigators that carry them out.
package navigation

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/roach88/voicecmd/internal/catalog"
)

//go:embed navigation.cue
var builtinSource []byte

// BuiltinName is the catalog name of the built-in navigation commands.
const BuiltinName = "navigation.cue"

// Navigator performs navigation for matched commands.
type Navigator = catalog.Navigator

var builtin = sync.OnceValues(func() (*catalog.Catalog, error) {
	cat, err := catalog.CompileSource(BuiltinName, builtinSource)
	if err != nil {
		return nil, fmt.Errorf("compiling built-in navigation catalog: %w", err)
	}
	return cat, nil
})

// Builtin returns a copy of the built-in navigation catalog.
func Builtin() (*catalog.Catalog, error) {
	cat, err := builtin()
	if err != nil {
		return nil, err
	}
	out := &catalog.Catalog{Name: cat.Name, Commands: make([]catalog.CommandSpec, len(cat.Commands))}
	copy(out.Commands, cat.Commands)
	return out, nil
}

// Install registers the built-in navigation commands on reg, bound to nav.
// Returns the installed labels; pass them to Uninstall on teardown.
func Install(reg catalog.Registrar, nav Navigator) ([]string, error) {
	cat, err := Builtin()
	if err != nil {
		return nil, err
	}
	return catalog.Install(reg, cat, nav)
}

// Uninstall removes the commands installed by Install.
func Uninstall(reg catalog.Registrar, labels []string) {
	catalog.Uninstall(reg, labels)
}
