package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Path:
// - ":" and "__" separators parse to the same segments
// - Empty string parses to the root path
// - Empty segments are rejected
// - String() round-trips through ParsePath

func TestParsePath_Separators(t *testing.T) {
	t.Parallel()

	colon, err := ParsePath("App:User:Window")
	require.NoError(t, err)
	underscore, err := ParsePath("App__User__Window")
	require.NoError(t, err)

	assert.Equal(t, Path{"App", "User", "Window"}, colon)
	assert.Equal(t, colon, underscore)
}

func TestParsePath_Root(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("")
	require.NoError(t, err)
	assert.True(t, p.IsRoot())
	assert.Empty(t, p.String())
}

func TestParsePath_EmptySegment(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"App::User", ":App", "App:", "__App", "App__"} {
		_, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrEmptySegment, "input %q", bad)
	}
}

func TestPath_StringRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("App__User")
	require.NoError(t, err)
	assert.Equal(t, "App:User", p.String())

	again, err := ParsePath(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, again)
}
