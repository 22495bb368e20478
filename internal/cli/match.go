package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/voicecmd/internal/bus"
	"github.com/roach88/voicecmd/internal/recognition"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Catalog string
}

// TranscriptResult is the outcome of one matching pass.
type TranscriptResult struct {
	Transcript  string      `json:"transcript"`
	Matches     []bus.Match `json:"matches"`
	Navigations []string    `json:"navigations,omitempty"`
	NoMatch     bool        `json:"no_match,omitempty"`
}

// MatchResult holds the outcome of every transcript, in argument order.
type MatchResult struct {
	Results   []TranscriptResult `json:"results"`
	Unmatched int                `json:"unmatched"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <transcript>...",
		Short: "Match transcripts against the registered commands",
		Long: `Run one matching pass per transcript, without a recognition session,
and report the matched commands, their inputs and the resulting navigations.

Exit codes:
  0 - Every transcript matched at least one command
  1 - At least one transcript matched nothing
  2 - Command error (invalid catalog, etc.)

Examples:
  voicecmd match "go home" "search for zelda"
  voicecmd match --catalog ./games.cue "play celeste" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file or directory")

	return cmd
}

func runMatch(opts *MatchOptions, transcripts []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// current collects the notifications of the transcript being matched.
	var current *TranscriptResult

	a, err := newApp(opts.RootOptions, opts.Catalog, nil, printNavigator(func(url string) {
		current.Navigations = append(current.Navigations, url)
	}))
	if err != nil {
		return err
	}

	if err := a.bridge.OnMatched(func(m bus.Match) {
		current.Matches = append(current.Matches, m)
	}); err != nil {
		return err
	}
	if err := a.bridge.OnNoMatch(func(string) {
		current.NoMatch = true
	}); err != nil {
		return err
	}

	result := MatchResult{Results: make([]TranscriptResult, 0, len(transcripts))}
	for _, t := range transcripts {
		current = &TranscriptResult{Transcript: t, Matches: []bus.Match{}}

		if _, err := a.ctl.HandleTranscript(t); err != nil {
			if recognition.IsContractError(err) {
				return WrapExitError(ExitCommandError, "matching failed", err)
			}
			return err
		}

		formatter.VerboseLog("%q: %d match(es)", t, len(current.Matches))
		if current.NoMatch {
			result.Unmatched++
		}
		result.Results = append(result.Results, *current)
	}

	var outErr error
	if formatter.JSON() {
		outErr = formatter.Success(result)
	} else {
		outErr = outputMatchText(formatter, result)
	}
	if outErr != nil {
		return outErr
	}

	if result.Unmatched > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d transcript(s) matched no command", result.Unmatched))
	}
	return nil
}

func outputMatchText(formatter *OutputFormatter, result MatchResult) error {
	w := formatter.Writer
	for _, r := range result.Results {
		if r.NoMatch {
			fmt.Fprintf(w, "✗ %q: no match\n", r.Transcript)
			continue
		}
		fmt.Fprintf(w, "✓ %q\n", r.Transcript)
		for _, m := range r.Matches {
			if m.Input != nil {
				fmt.Fprintf(w, "  matched %s (input %q)\n", m.Label, *m.Input)
			} else {
				fmt.Fprintf(w, "  matched %s\n", m.Label)
			}
		}
		for _, url := range r.Navigations {
			fmt.Fprintf(w, "  → %s\n", url)
		}
	}
	return nil
}
