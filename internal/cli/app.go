package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/voicecmd/internal/bus"
	"github.com/roach88/voicecmd/internal/catalog"
	"github.com/roach88/voicecmd/internal/navigation"
	"github.com/roach88/voicecmd/internal/recognition"
	"github.com/roach88/voicecmd/internal/transcript"
)

// app is a controller with a catalog installed and its notifications
// published on a bus.
type app struct {
	ctl    *recognition.Controller
	bridge *bus.Bridge
	loaded *LoadResult
	labels []string
}

// newApp loads catalogPath (or the configured catalog, or the built-in
// navigation commands) and installs it on a controller driving engine.
// A nil engine gives a controller that only matches transcripts.
func newApp(opts *RootOptions, catalogPath string, engine recognition.Engine, nav catalog.Navigator) (*app, error) {
	cfg := opts.Settings()
	if catalogPath == "" {
		catalogPath = cfg.Catalog
	}

	loaded, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, loadFailure(err)
	}

	bridge := bus.New()
	ctlOpts := []recognition.Option{
		recognition.WithHooks(bridge.Hooks()),
		recognition.WithLogger(opts.Logger()),
	}
	if cfg.Normalize {
		ctlOpts = append(ctlOpts, recognition.WithNormalizer(transcript.Normalize))
	}
	ctl := recognition.New(engine, ctlOpts...)

	labels, err := catalog.Install(ctl, loaded.Catalog, nav)
	if err != nil {
		var verr catalog.ValidationError
		if errors.As(err, &verr) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid catalog [%s]", verr.Code), err)
		}
		return nil, WrapExitError(ExitCommandError, "invalid catalog", err)
	}

	opts.Logger().Debug("catalog installed",
		"catalog", loaded.Catalog.Name,
		"builtin", loaded.Builtin,
		"commands", len(labels),
	)

	return &app{ctl: ctl, bridge: bridge, loaded: loaded, labels: labels}, nil
}

// loadFailure converts a catalog load error to a command error.
func loadFailure(err error) error {
	return WrapExitError(ExitCommandError, "loading catalog", err)
}

// printNavigator reports navigations through fn.
func printNavigator(fn func(url string)) navigation.Funcs {
	return navigation.Funcs{
		NavigateFunc: fn,
		BackFunc:     func() { fn("back") },
	}
}
