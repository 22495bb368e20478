package recognition

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Generate(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a, b, "UUIDv7 IDs should be time-sortable")
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("session-1", "session-2")

	assert.Equal(t, "session-1", gen.Generate())
	assert.Equal(t, "session-2", gen.Generate())
	assert.PanicsWithValue(t, "FixedGenerator: all session IDs exhausted", func() {
		gen.Generate()
	})
}
