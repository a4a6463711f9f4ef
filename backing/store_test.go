package backing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Store:
// - Exists / ReadFile / WriteFile round-trip
// - Replace clobbers an existing target, even on the in-memory store
// - CanOpenWrite is false for missing files, true for writable ones
// - ReadDir lists created entries
// - Mem is not watchable; OS is

func TestStore_ReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	s := Mem()
	require.NoError(t, s.MkdirAll("/d", 0o755))
	require.NoError(t, s.WriteFile("/d/f.json", []byte("data"), 0o644))

	assert.True(t, s.Exists("/d/f.json"))
	data, err := s.ReadFile("/d/f.json")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestStore_ReplaceClobbersTarget(t *testing.T) {
	t.Parallel()

	s := Mem()
	require.NoError(t, s.WriteFile("/old", []byte("new content"), 0o644))
	require.NoError(t, s.WriteFile("/target", []byte("stale"), 0o644))

	require.NoError(t, s.Replace("/old", "/target"))

	data, err := s.ReadFile("/target")
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
	assert.False(t, s.Exists("/old"))
}

func TestStore_CanOpenWrite(t *testing.T) {
	t.Parallel()

	s := Mem()
	assert.False(t, s.CanOpenWrite("/nope"))

	require.NoError(t, s.WriteFile("/yes", []byte("x"), 0o644))
	assert.True(t, s.CanOpenWrite("/yes"))
}

func TestStore_ReadDir(t *testing.T) {
	t.Parallel()

	s := Mem()
	require.NoError(t, s.MkdirAll("/d", 0o755))
	require.NoError(t, s.WriteFile("/d/a", nil, 0o644))
	require.NoError(t, s.WriteFile("/d/b", nil, 0o644))

	entries, err := s.ReadDir("/d")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_Watchable(t *testing.T) {
	t.Parallel()

	assert.True(t, OS().Watchable())
	assert.False(t, Mem().Watchable())
}
