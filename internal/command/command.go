// Package command holds voice commands and the registry they live in.
//
// A Command is a named behavior unit: a label, an ordered list of patterns,
// and a callback. A transcript matching ANY pattern triggers the command.
// Patterns are independent alternatives, so a command whose patterns overlap
// may fire more than once for a single transcript.
package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Callback receives the extracted input of a match.
// input is nil when the command does not declare HasInput.
type Callback func(input *string)

// Command is a voice command.
type Command struct {
	// Label identifies the command. Unregister removes by label.
	Label string

	// Patterns are tested in declaration order.
	Patterns []*regexp.Regexp

	// HasInput declares that a match yields the first capture group of the
	// matching pattern. Every pattern must then contain a capture group.
	HasInput bool

	// Callback is invoked once per matching pattern.
	Callback Callback
}

// caseInsensitiveFlag prefixes expressions that should ignore case.
const caseInsensitiveFlag = "(?i)"

// Pattern compiles expr as a case-insensitive pattern.
// Panics if expr is not a valid regular expression, like regexp.MustCompile.
func Pattern(expr string) *regexp.Regexp {
	re, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return re
}

// CompilePattern compiles expr as a case-insensitive pattern.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(withCaseFolding(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return re, nil
}

// Patterns compiles each expression with Pattern.
func Patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = Pattern(expr)
	}
	return out
}

// foldCase returns re unchanged when it already ignores case, otherwise a
// case-insensitive recompilation of the same expression. Prefixing a valid
// expression with a flag group always yields a valid expression.
func foldCase(re *regexp.Regexp) *regexp.Regexp {
	if re == nil || strings.HasPrefix(re.String(), caseInsensitiveFlag) {
		return re
	}
	return regexp.MustCompile(caseInsensitiveFlag + re.String())
}

func withCaseFolding(expr string) string {
	if strings.HasPrefix(expr, caseInsensitiveFlag) {
		return expr
	}
	return caseInsensitiveFlag + expr
}

// HasCaptureGroup reports whether re declares at least one capture group.
func HasCaptureGroup(re *regexp.Regexp) bool {
	return re != nil && re.NumSubexp() > 0
}

// clone copies cmd so that callers cannot mutate the registry's pattern slice.
func (c Command) clone() Command {
	if c.Patterns != nil {
		patterns := make([]*regexp.Regexp, len(c.Patterns))
		copy(patterns, c.Patterns)
		c.Patterns = patterns
	}
	return c
}
