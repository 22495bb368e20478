package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/voicecmd/internal/command"
)

const sampleCatalog = `
command: home: {
	label:    "Go Home"
	patterns: ["^go (?:to )?home$", "^home page$"]
	action: navigate: "/"
}

command: search: {
	label:    "Search"
	patterns: ["^search (?:for )?(.+)$"]
	input:    true
	action: {navigate: "/search", query: "query"}
}

command: back: {
	label:    "Go Back"
	patterns: "^go back$"
	action: back: true
}
`

type fakeNav struct {
	visits []string
}

func (n *fakeNav) Navigate(url string) { n.visits = append(n.visits, url) }
func (n *fakeNav) Back()               { n.visits = append(n.visits, "<back>") }

func TestCompileCommandBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(sampleCatalog)
	require.NoError(t, v.Err())

	spec, err := CompileCommand(v.LookupPath(cue.ParsePath("command.search")))
	require.NoError(t, err)

	assert.Equal(t, "search", spec.ID)
	assert.Equal(t, "Search", spec.Label)
	assert.Equal(t, []string{"^search (?:for )?(.+)$"}, spec.Patterns)
	assert.True(t, spec.Input)
	assert.Equal(t, Action{Kind: ActionNavigate, Path: "/search", Query: "query"}, spec.Action)
}

func TestCompileCommandMissingLabel(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`command: bad: { patterns: ["x"] }`)
	require.NoError(t, v.Err())

	_, err := CompileCommand(v.LookupPath(cue.ParsePath("command.bad")))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "label", ce.Field)
	assert.Contains(t, err.Error(), "required")
}

func TestCompileCommandPatternsWrongType(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`command: bad: { label: "Bad", patterns: 42 }`)
	require.NoError(t, v.Err())

	_, err := CompileCommand(v.LookupPath(cue.ParsePath("command.bad")))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "patterns", ce.Field)
}

func TestCompileSourcePreservesDeclarationOrder(t *testing.T) {
	cat, err := CompileSource("sample.cue", []byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, "sample.cue", cat.Name)
	assert.Equal(t, []string{"Go Home", "Search", "Go Back"}, cat.Labels())
	assert.Equal(t, []string{"^go back$"}, cat.Commands[2].Patterns)
	assert.Equal(t, ActionBack, cat.Commands[2].Action.Kind)
	assert.Empty(t, ValidateCatalog(cat))
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`command: {`))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestCompileSourceWithoutCommands(t *testing.T) {
	cat, err := CompileSource("empty.cue", []byte(`other: 1`))
	require.NoError(t, err)
	assert.Empty(t, cat.Commands)
}

func TestCompileSourceUnknownAction(t *testing.T) {
	cat, err := CompileSource("x.cue", []byte(`command: x: { label: "X", patterns: ["^x$"], action: teleport: "/moon" }`))
	require.NoError(t, err)
	assert.Equal(t, ActionKind("teleport"), cat.Commands[0].Action.Kind)

	errs := Validate(&cat.Commands[0])
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidAction, errs[0].Code)
	assert.Contains(t, errs[0].Message, "teleport")
}

func TestValidateCodes(t *testing.T) {
	tests := []struct {
		name  string
		spec  CommandSpec
		codes []string
	}{
		{
			name: "valid",
			spec: CommandSpec{Label: "Home", Patterns: []string{"^home$"}, Action: Action{Kind: ActionNavigate, Path: "/"}},
		},
		{
			name:  "empty label",
			spec:  CommandSpec{Label: "  ", Patterns: []string{"^home$"}, Action: Action{Kind: ActionBack}},
			codes: []string{ErrLabelEmpty},
		},
		{
			name:  "no patterns",
			spec:  CommandSpec{Label: "Home", Action: Action{Kind: ActionBack}},
			codes: []string{ErrNoPatterns},
		},
		{
			name:  "invalid pattern",
			spec:  CommandSpec{Label: "Home", Patterns: []string{"^(home$"}, Action: Action{Kind: ActionBack}},
			codes: []string{ErrInvalidPattern},
		},
		{
			name:  "input without capture group",
			spec:  CommandSpec{Label: "Search", Patterns: []string{"^search (.+)$", "^find$"}, Input: true, Action: Action{Kind: ActionBack}},
			codes: []string{ErrMissingCapture},
		},
		{
			name:  "missing action",
			spec:  CommandSpec{Label: "Home", Patterns: []string{"^home$"}},
			codes: []string{ErrInvalidAction},
		},
		{
			name:  "navigate without path",
			spec:  CommandSpec{Label: "Home", Patterns: []string{"^home$"}, Action: Action{Kind: ActionNavigate}},
			codes: []string{ErrInvalidAction},
		},
		{
			name:  "query without input",
			spec:  CommandSpec{Label: "Search", Patterns: []string{"^search$"}, Action: Action{Kind: ActionNavigate, Path: "/search", Query: "q"}},
			codes: []string{ErrQueryWithoutInput},
		},
		{
			name:  "collects every error",
			spec:  CommandSpec{Input: true, Patterns: []string{"^x$"}},
			codes: []string{ErrLabelEmpty, ErrMissingCapture, ErrInvalidAction},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.spec)
			var codes []string
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	withLine := ValidationError{Field: "command.x.label", Message: "label is required", Code: ErrLabelEmpty, Line: 3}
	assert.Equal(t, "[E201] line 3: command.x.label: label is required", withLine.Error())

	noLine := ValidationError{Field: "command.x.label", Message: "label is required", Code: ErrLabelEmpty}
	assert.Equal(t, "[E201] command.x.label: label is required", noLine.Error())
}

func TestValidateCatalogDuplicateLabels(t *testing.T) {
	cat := &Catalog{Commands: []CommandSpec{
		{ID: "a", Label: "Home", Patterns: []string{"^home$"}, Action: Action{Kind: ActionBack}},
		{ID: "b", Label: "Home", Patterns: []string{"^house$"}, Action: Action{Kind: ActionBack}},
	}}

	errs := ValidateCatalog(cat)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateLabel, errs[0].Code)
	assert.Equal(t, "command.b.label", errs[0].Field)
	assert.Contains(t, errs[0].Message, "command.a")
}

func TestBindNavigate(t *testing.T) {
	nav := &fakeNav{}
	cmd, err := Bind(&CommandSpec{Label: "Home", Patterns: []string{"^home$"}, Action: Action{Kind: ActionNavigate, Path: "/"}}, nav)
	require.NoError(t, err)

	assert.Equal(t, "Home", cmd.Label)
	assert.False(t, cmd.HasInput)
	assert.True(t, cmd.Patterns[0].MatchString("HOME"), "bound patterns ignore case")

	cmd.Callback(nil)
	assert.Equal(t, []string{"/"}, nav.visits)
}

func TestBindNavigateWithQuery(t *testing.T) {
	nav := &fakeNav{}
	cmd, err := Bind(&CommandSpec{
		Label:    "Search",
		Patterns: []string{"^search (.*)$"},
		Input:    true,
		Action:   Action{Kind: ActionNavigate, Path: "/search", Query: "query"},
	}, nav)
	require.NoError(t, err)

	in := "javascript sucks"
	cmd.Callback(&in)
	empty := ""
	cmd.Callback(&empty)
	cmd.Callback(nil)

	assert.Equal(t, []string{"/search?query=javascript%20sucks"}, nav.visits)
}

func TestBindBack(t *testing.T) {
	nav := &fakeNav{}
	cmd, err := Bind(&CommandSpec{Label: "Back", Patterns: []string{"^back$"}, Action: Action{Kind: ActionBack}}, nav)
	require.NoError(t, err)

	cmd.Callback(nil)
	assert.Equal(t, []string{"<back>"}, nav.visits)
}

func TestBindInvalid(t *testing.T) {
	_, err := Bind(&CommandSpec{Label: "Broken", Patterns: []string{"^x$"}, Input: true, Action: Action{Kind: ActionBack}}, &fakeNav{})

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrMissingCapture, ve.Code)
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/search?query=a%20b%26c", WithQuery("/search", "query", "a b&c"))
	assert.Equal(t, "/search?query=1%2B1", WithQuery("/search", "query", "1+1"))
	assert.Equal(t, "/search?page=2&query=x", WithQuery("/search?page=2", "query", "x"))
}

func TestInstallAndUninstall(t *testing.T) {
	cat, err := CompileSource("sample.cue", []byte(sampleCatalog))
	require.NoError(t, err)

	reg := command.NewRegistry()
	reg.Register(command.Command{Label: "Other", Patterns: command.Patterns(`^other$`)})

	labels, err := Install(reg, cat, &fakeNav{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Home", "Search", "Go Back"}, labels)
	assert.Equal(t, []string{"Other", "Go Home", "Search", "Go Back"}, reg.Labels())

	Uninstall(reg, labels)
	assert.Equal(t, []string{"Other"}, reg.Labels())
}

func TestInstallInvalidRegistersNothing(t *testing.T) {
	cat := &Catalog{Commands: []CommandSpec{
		{ID: "ok", Label: "Home", Patterns: []string{"^home$"}, Action: Action{Kind: ActionBack}},
		{ID: "bad", Label: "Bad", Patterns: []string{"^(bad$"}, Action: Action{Kind: ActionBack}},
	}}

	reg := command.NewRegistry()
	_, err := Install(reg, cat, &fakeNav{})

	require.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.cue")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, path, cat.Name)
	assert.Len(t, cat.Commands, 3)
}

func TestLoadCatalogDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.cue"), []byte(`
command: home: {
	label:    "Go Home"
	patterns: ["^go home$"]
	action: navigate: "/"
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "back.cue"), []byte(`
command: back: {
	label:    "Go Back"
	patterns: ["^go back$"]
	action: back: true
}
`), 0o644))

	cat, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go Home", "Go Back"}, cat.Labels())
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.cue"))
	assert.ErrorContains(t, err, "catalog not found")

	_, err = LoadCatalog(t.TempDir())
	assert.ErrorContains(t, err, "no CUE files")
}
