package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBuiltin(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "LABEL")
	assert.Contains(t, output, "Go Home")
	assert.Contains(t, output, "navigate /search?query=<input>")
	assert.Contains(t, output, "^go back$")
}

func TestListCatalogJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--catalog", filepath.Join("testdata", "games.cue")})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Data.Builtin)

	require.Len(t, resp.Data.Commands, 3)
	assert.Equal(t, ListedCommand{
		Label:    "Play",
		Patterns: []string{"^play (.+)$", "^start (?:game )?(.+)$"},
		Input:    true,
		Action:   "navigate /play?game=<input>",
	}, resp.Data.Commands[0])
	assert.Equal(t, "Library", resp.Data.Commands[1].Label)
	assert.Equal(t, "back", resp.Data.Commands[2].Action)
}

func TestListMissingCatalog(t *testing.T) {
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--catalog", "/nonexistent.cue"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
