package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/voicecmd/internal/catalog"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Catalog string
}

// ListedCommand is one registered command as reported by list.
type ListedCommand struct {
	Label    string   `json:"label"`
	Patterns []string `json:"patterns"`
	Input    bool     `json:"input"`
	Action   string   `json:"action"`
}

// ListResult holds the registered commands in registration order.
type ListResult struct {
	Catalog  string          `json:"catalog"`
	Builtin  bool            `json:"builtin"`
	Commands []ListedCommand `json:"commands"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered voice commands",
		Long: `List the commands a catalog registers, in registration order.

Without --catalog (or a catalog in the config file), the built-in
navigation commands are listed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file or directory")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	a, err := newApp(opts.RootOptions, opts.Catalog, nil, printNavigator(func(string) {}))
	if err != nil {
		return err
	}

	// Describe commands from the catalog; the registry holds compiled patterns.
	specs := make(map[string]catalog.CommandSpec, len(a.loaded.Catalog.Commands))
	for _, spec := range a.loaded.Catalog.Commands {
		specs[spec.Label] = spec
	}

	result := ListResult{
		Catalog: a.loaded.Catalog.Name,
		Builtin: a.loaded.Builtin,
	}
	for _, c := range a.ctl.Commands() {
		spec := specs[c.Label]
		result.Commands = append(result.Commands, ListedCommand{
			Label:    c.Label,
			Patterns: spec.Patterns,
			Input:    c.HasInput,
			Action:   describeAction(spec.Action),
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tINPUT\tACTION\tPATTERNS")
	for _, c := range result.Commands {
		input := "-"
		if c.Input {
			input = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Label, input, c.Action, strings.Join(c.Patterns, "  "))
	}
	return tw.Flush()
}

// describeAction renders an action on one line.
func describeAction(a catalog.Action) string {
	switch a.Kind {
	case catalog.ActionBack:
		return "back"
	case catalog.ActionNavigate:
		if a.Query != "" {
			return fmt.Sprintf("navigate %s?%s=<input>", a.Path, a.Query)
		}
		return "navigate " + a.Path
	default:
		return string(a.Kind)
	}
}
