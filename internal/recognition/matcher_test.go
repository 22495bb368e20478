package recognition

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voicecmd/internal/command"
)

func TestMatchTranscript_NilPatternSkipped(t *testing.T) {
	cmds := []command.Command{{
		Label:    "Home",
		Patterns: []*regexp.Regexp{nil, command.Pattern(`^home$`)},
	}}

	var labels []string
	n, err := matchTranscript(cmds, "home", "home", Hooks{
		OnCommandMatched: func(cmd command.Command, _ *string) { labels = append(labels, cmd.Label) },
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Home"}, labels)
}

func TestMatchTranscript_MatchedHookBeforeCallback(t *testing.T) {
	var order []string
	cmds := []command.Command{{
		Label:    "Home",
		Patterns: command.Patterns(`^home$`),
		Callback: func(*string) { order = append(order, "callback") },
	}}

	_, err := matchTranscript(cmds, "home", "home", Hooks{
		OnCommandMatched: func(command.Command, *string) { order = append(order, "matched") },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"matched", "callback"}, order)
}

func TestMatchTranscript_NoMatchReceivesRawTranscript(t *testing.T) {
	var got []string
	_, err := matchTranscript(nil, "go home", "  Go Home ", Hooks{
		OnNoMatch: func(t string) { got = append(got, t) },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"  Go Home "}, got)
}

func TestMatchTranscript_InputFromSubject(t *testing.T) {
	var input *string
	cmds := []command.Command{{
		Label:    "Search",
		Patterns: command.Patterns(`^search (.+)$`),
		HasInput: true,
		Callback: func(in *string) { input = in },
	}}

	_, err := matchTranscript(cmds, "search zelda", "search   zelda", Hooks{})

	require.NoError(t, err)
	require.NotNil(t, input)
	assert.Equal(t, "zelda", *input)
}

func TestMatchTranscript_EmptyCaptureIsNotNil(t *testing.T) {
	var input *string
	called := false
	cmds := []command.Command{{
		Label:    "Echo",
		Patterns: command.Patterns(`^echo(.*)$`),
		HasInput: true,
		Callback: func(in *string) { called, input = true, in },
	}}

	_, err := matchTranscript(cmds, "echo", "echo", Hooks{})

	require.NoError(t, err)
	require.True(t, called)
	require.NotNil(t, input)
	assert.Empty(t, *input)
}

func TestExtractInput(t *testing.T) {
	assert.Nil(t, extractInput("abc", []int{0, 3}))
	assert.Nil(t, extractInput("abc", []int{0, 3, -1, -1}))

	got := extractInput("abc", []int{0, 3, 1, 3})
	require.NotNil(t, got)
	assert.Equal(t, "bc", *got)
}
