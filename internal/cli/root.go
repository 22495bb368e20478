package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/voicecmd/internal/config"
	"github.com/roach88/voicecmd/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional YAML config file
	LogFile string // overrides log_file from config

	// Set by the root command before a subcommand runs. Subcommands built
	// directly (as in tests) fall back to defaults.
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Settings returns the loaded configuration, or the defaults.
func (o *RootOptions) Settings() config.Config {
	if o.cfg == nil {
		return config.Default()
	}
	return *o.cfg
}

// Logger returns the configured logger, or slog's default.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// setup loads configuration and installs the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().Load(o.Config)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}

	logger, closer, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	o.cfg = &cfg
	o.logger = logger
	o.closer = closer
	return nil
}

// NewRootCommand creates the root command for the voicecmd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "voicecmd",
		Short: "voicecmd - voice command dispatch",
		Long: `Match spoken transcripts against registered voice commands and
dispatch their callbacks, driving a recognition session state machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closer != nil {
				return opts.closer.Close()
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write logs to a rotating file")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewListenCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
