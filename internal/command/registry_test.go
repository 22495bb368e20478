package command

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*string) {}

func TestRegistry_RegisterPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "A", Patterns: Patterns("^a$"), Callback: noop})
	r.Register(Command{Label: "B", Patterns: Patterns("^b$"), Callback: noop})
	r.Register(Command{Label: "C", Patterns: Patterns("^c$"), Callback: noop})

	assert.Equal(t, []string{"A", "B", "C"}, r.Labels())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RegisterAllowsDuplicateLabels(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "Log in", Patterns: Patterns("^log in$")})
	r.Register(Command{Label: "Log in", Patterns: Patterns("^sign in$")})

	assert.Equal(t, 2, r.Len())
}

func TestRegistry_UnregisterRemovesEveryMatchingLabel(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "A", Patterns: Patterns("^a$")})
	r.Register(Command{Label: "B", Patterns: Patterns("^b$")})
	r.Register(Command{Label: "A", Patterns: Patterns("^aa$")})

	r.Unregister("A")

	assert.Equal(t, []string{"B"}, r.Labels())
}

func TestRegistry_UnregisterUnknownLabelIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "A", Patterns: Patterns("^a$")})

	r.Unregister("missing")
	r.Unregister("missing")

	assert.Equal(t, []string{"A"}, r.Labels())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "A"})
	r.Register(Command{Label: "B"})

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "A", Patterns: Patterns("^a$", "^aa$")})

	list := r.List()
	require.Len(t, list, 1)

	list[0].Label = "mutated"
	list[0].Patterns[0] = Pattern("^zzz$")
	_ = append(list, Command{Label: "extra"})

	fresh := r.List()
	require.Len(t, fresh, 1)
	assert.Equal(t, "A", fresh[0].Label)
	assert.True(t, fresh[0].Patterns[0].MatchString("a"))
}

func TestRegistry_RegisterDoesNotAliasCallerSlice(t *testing.T) {
	r := NewRegistry()
	patterns := Patterns("^a$")
	r.Register(Command{Label: "A", Patterns: patterns})

	patterns[0] = Pattern("^b$")

	got := r.List()[0]
	assert.True(t, got.Patterns[0].MatchString("A"))
	assert.False(t, got.Patterns[0].MatchString("b"))
}

func TestRegistry_RegisterFoldsCase(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Label: "Go Home", Patterns: []*regexp.Regexp{regexp.MustCompile(`^go home$`)}})

	got := r.List()[0]
	assert.True(t, got.Patterns[0].MatchString("Go Home"))
	assert.True(t, got.Patterns[0].MatchString("GO HOME"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register(Command{Label: "X", Patterns: Patterns("^x$")})
		}()
		go func() {
			defer wg.Done()
			_ = r.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
	r.Unregister("X")
	assert.Equal(t, 0, r.Len())
}

func TestPattern_CaseInsensitive(t *testing.T) {
	re := Pattern(`^search (?:for )?(.+)$`)
	m := re.FindStringSubmatch("SEARCH for Zelda")
	require.Len(t, m, 2)
	assert.Equal(t, "Zelda", m[1])
}

func TestPattern_KeepsExistingFlag(t *testing.T) {
	re := Pattern(`(?i)^back$`)
	assert.Equal(t, `(?i)^back$`, re.String())
}

func TestCompilePattern_Invalid(t *testing.T) {
	_, err := CompilePattern(`^go (home$`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestPattern_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { Pattern(`(`) })
}

func TestHasCaptureGroup(t *testing.T) {
	assert.True(t, HasCaptureGroup(Pattern(`^find (.+)$`)))
	assert.False(t, HasCaptureGroup(Pattern(`^find (?:game )?x$`)))
	assert.False(t, HasCaptureGroup(nil))
}
