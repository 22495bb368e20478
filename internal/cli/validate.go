package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/voicecmd/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Catalog  string                    `json:"catalog"`
	Commands int                       `json:"commands"`
	Errors   []catalog.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Validate a command catalog",
		Long: `Validate a CUE command catalog (a .cue file or a directory).

Checks labels, patterns, capture groups for commands that take input,
actions and duplicate labels, and reports every problem found.

Exit codes:
  0 - Catalog is valid
  1 - Validation failed
  2 - Command error (catalog not found, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, err := LoadCatalog(path)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		// Compile errors in a command are validation failures; the rest are
		// command errors.
		if strings.HasPrefix(loadErr.Code, "E2") {
			return outputValidationErrors(formatter, path, []catalog.ValidationError{{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    loadErr.Line(),
			}})
		}
		return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, path)
	for _, spec := range loadResult.Catalog.Commands {
		formatter.VerboseLog("Validating command: %s", spec.ID)
	}

	if errs := catalog.ValidateCatalog(loadResult.Catalog); len(errs) > 0 {
		return outputValidationErrors(formatter, path, errs)
	}

	return outputValidateSuccess(formatter, path, len(loadResult.Catalog.Commands))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, path string, commands int) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Catalog: path, Commands: commands})
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d commands)\n", commands)
	return nil
}

// outputValidateError outputs a single command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, path string, errs []catalog.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:   false,
				Catalog: path,
				Errors:  errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
		return failure
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}
