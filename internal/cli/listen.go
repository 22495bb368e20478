package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/voicecmd/internal/bus"
	"github.com/roach88/voicecmd/internal/recognition"
	"github.com/roach88/voicecmd/internal/speech"
)

// ListenOptions holds flags for the listen command.
type ListenOptions struct {
	*RootOptions
	Catalog string
}

// Listen event types.
const (
	ListenState      = "state"
	ListenTranscript = "transcript"
	ListenMatched    = "matched"
	ListenNavigate   = "navigate"
	ListenNoMatch    = "no_match"
	ListenError      = "error"
)

// ListenEvent is one line of listen output.
type ListenEvent struct {
	Type       string  `json:"type"`
	State      string  `json:"state,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Label      string  `json:"label,omitempty"`
	Input      *string `json:"input,omitempty"`
	URL        string  `json:"url,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewListenCommand creates the listen command.
func NewListenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Dispatch commands from utterances read on stdin",
		Long: `Run recognition sessions back to back, reading one utterance per line
of standard input, and print what each utterance matched.

A blank line is silence. The command exits at end of input.
With --format json, one JSON event is printed per line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file or directory")

	return cmd
}

func runListen(opts *ListenOptions, cmd *cobra.Command) error {
	printer := &eventPrinter{formatter: newFormatter(opts.RootOptions, cmd)}
	engine := speech.NewLineEngine(cmd.InOrStdin())

	a, err := newApp(opts.RootOptions, opts.Catalog, engine, printNavigator(func(url string) {
		printer.print(ListenEvent{Type: ListenNavigate, URL: url})
	}))
	if err != nil {
		return err
	}

	idle := make(chan struct{}, 1)
	if err := a.bridge.OnState(func(s recognition.State) {
		if s == recognition.StateIdle {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	}); err != nil {
		return err
	}
	if err := printer.attach(a.bridge); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.ctl.Run(gctx)
	})
	g.Go(func() error {
		defer a.ctl.Close()
		return listenLoop(gctx, a.ctl, engine, idle)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if recognition.IsContractError(err) {
		return WrapExitError(ExitCommandError, "matching failed", err)
	}
	return err
}

// listenLoop starts one session per utterance until the input is exhausted.
func listenLoop(ctx context.Context, ctl *recognition.Controller, engine *speech.LineEngine, idle <-chan struct{}) error {
	for {
		select {
		case <-engine.Exhausted():
			return nil
		default:
		}

		if status := ctl.Start(); status != recognition.StatusOK {
			return fmt.Errorf("starting recognition: %s", status)
		}

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// eventPrinter writes controller notifications as text or JSON lines.
type eventPrinter struct {
	mu        sync.Mutex
	formatter *OutputFormatter
}

// attach subscribes the printer to every topic of the bridge.
func (p *eventPrinter) attach(b *bus.Bridge) error {
	return errors.Join(
		b.OnState(func(s recognition.State) {
			p.print(ListenEvent{Type: ListenState, State: s.String()})
		}),
		b.OnError(func(err error) {
			p.print(ListenEvent{Type: ListenError, Error: err.Error()})
		}),
		b.OnTranscript(func(t string) {
			p.print(ListenEvent{Type: ListenTranscript, Transcript: t})
		}),
		b.OnMatched(func(m bus.Match) {
			p.print(ListenEvent{Type: ListenMatched, Label: m.Label, Input: m.Input})
		}),
		b.OnNoMatch(func(t string) {
			p.print(ListenEvent{Type: ListenNoMatch, Transcript: t})
		}),
	)
}

func (p *eventPrinter) print(ev ListenEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := p.formatter
	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(ev)
		return
	}

	w := f.Writer
	switch ev.Type {
	case ListenState:
		f.VerboseLog("state: %s", ev.State)
	case ListenTranscript:
		fmt.Fprintf(w, "heard %q\n", ev.Transcript)
	case ListenMatched:
		if ev.Input != nil {
			fmt.Fprintf(w, "  matched %s (input %q)\n", ev.Label, *ev.Input)
		} else {
			fmt.Fprintf(w, "  matched %s\n", ev.Label)
		}
	case ListenNavigate:
		fmt.Fprintf(w, "  → %s\n", ev.URL)
	case ListenNoMatch:
		fmt.Fprintln(w, "  no match")
	case ListenError:
		fmt.Fprintf(f.GetErrWriter(), "error: %s\n", ev.Error)
	}
}
