// Package transcript prepares recognized utterances for pattern matching.
package transcript

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode NFC with surrounding whitespace trimmed and
// inner whitespace runs collapsed to a single space.
//
// Recognizers differ in how they compose accented characters and pad
// results; normalizing keeps patterns written against plain text matching.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// IsBlank reports whether s contains nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
