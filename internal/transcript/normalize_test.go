package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unchanged", "go home", "go home"},
		{"trim", "  go home\t", "go home"},
		{"collapse", "search   for\tzelda", "search for zelda"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		// "e" followed by a combining acute accent composes to U+00E9.
		{"nfc", "cafe\u0301", "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  \t"))
	assert.False(t, IsBlank(" a "))
}
