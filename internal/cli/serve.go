package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/voicecmd/internal/config"
	"github.com/roach88/voicecmd/internal/navigation"
	"github.com/roach88/voicecmd/internal/recognition"
	"github.com/roach88/voicecmd/internal/speech"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Catalog string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recognition relay over a websocket",
		Long: `Serve a websocket at /ws for a page running the browser's speech
recognizer. The page sends "listen" and "cancel" requests and relays
recognition events; the server answers with start/stop/abort control
frames, state frames, and navigate/back frames for matched commands.

GET /healthz reports the controller state and whether a peer is connected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file or directory")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	addr := opts.Addr
	if addr == "" {
		addr = opts.Settings().Addr
	}

	srv, err := newRelayServer(opts.RootOptions, opts.Catalog)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "listen failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "relay listening on ws://%s/ws\n", ln.Addr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return srv.serve(ctx, ln)
}

// relayServer connects a websocket peer to a controller.
type relayServer struct {
	app      *app
	engine   *speech.RelayEngine
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func newRelayServer(opts *RootOptions, catalogPath string) (*relayServer, error) {
	logger := opts.Logger()
	s := &relayServer{
		engine: speech.NewRelayEngine(opts.Settings().Speech, logger),
		logger: logger,
	}

	nav := navigation.Funcs{
		NavigateFunc: func(url string) { s.send(speech.Frame{Type: speech.FrameNavigate, URL: url}) },
		BackFunc:     func() { s.send(speech.Frame{Type: speech.FrameBack}) },
	}
	a, err := newApp(opts, catalogPath, s.engine, nav)
	if err != nil {
		return nil, err
	}
	s.app = a

	if err := a.bridge.OnState(func(st recognition.State) {
		s.send(speech.Frame{Type: speech.FrameState, State: st.String()})
	}); err != nil {
		return nil, err
	}
	if err := a.bridge.OnError(func(err error) {
		s.send(speech.Frame{Type: speech.FrameError, Error: err.Error()})
	}); err != nil {
		return nil, err
	}
	if err := a.bridge.OnNoMatch(func(t string) {
		s.logger.Info("no command matched", "transcript", t)
	}); err != nil {
		return nil, err
	}
	s.engine.OnRequest(s.handleRequest)

	return s, nil
}

// send writes f to the peer, if one is connected.
func (s *relayServer) send(f speech.Frame) {
	if err := s.engine.Send(f); err != nil && !errors.Is(err, speech.ErrNoPeer) {
		s.logger.Warn("relay send failed", "type", f.Type, "error", err)
	}
}

// handleRequest maps peer requests to controller operations.
func (s *relayServer) handleRequest(f speech.Frame) {
	var status recognition.Status
	switch f.Type {
	case speech.FrameListen:
		status = s.app.ctl.Start()
	case speech.FrameCancel:
		status = s.app.ctl.Abort()
	default:
		return
	}
	s.logger.Debug("peer request", "type", f.Type, "status", status.String())
}

// handler routes /ws and /healthz. Websocket peers are served until ctx is done.
func (s *relayServer) handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			s.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		if err := s.engine.Serve(ctx, conn); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("relay peer ended", "error", err)
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		formatter := &OutputFormatter{Format: "json", Writer: w}
		w.Header().Set("Content-Type", "application/json")
		_ = formatter.Success(map[string]any{
			"state": s.app.ctl.State().String(),
			"peer":  s.engine.Supported(),
		})
	})

	return mux
}

// serve runs the controller loop and the HTTP server until ctx is done or
// either fails.
func (s *relayServer) serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	httpSrv := &http.Server{
		Handler:           s.handler(gctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		return s.app.ctl.Run(gctx)
	})
	g.Go(func() error {
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.app.ctl.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if recognition.IsContractError(err) {
		return WrapExitError(ExitCommandError, "matching failed", err)
	}
	return err
}
