package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - Add registers a store; Get finds it by name
// - Duplicate names are rejected
// - Names returns sorted instance names
// - Close shuts every store down and empties the registry

func TestRegistry(t *testing.T) {
	t.Parallel()

	cfgUser, _ := newMemConfig(t, "user", "App:User")
	user, err := New(cfgUser)
	require.NoError(t, err)

	cfgOther, _ := newMemConfig(t, "app", "App:Other")
	app, err := New(cfgOther)
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Add(user))
	require.NoError(t, r.Add(app))

	got, ok := r.Get("user")
	require.True(t, ok)
	assert.Equal(t, user.Path(), got.Path())

	assert.Equal(t, []string{"app", "user"}, r.Names())
}

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	t.Parallel()

	cfg, _ := newMemConfig(t, "user", "App:User")
	first, err := New(cfg)
	require.NoError(t, err)
	second, err := New(cfg)
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Add(first))
	assert.ErrorIs(t, r.Add(second), ErrDuplicateName)
}

func TestRegistry_Close(t *testing.T) {
	t.Parallel()

	cfg, _ := newMemConfig(t, "user", "App:User")
	s, err := New(cfg)
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Add(s))
	require.NoError(t, r.Close())

	_, ok := r.Get("user")
	assert.False(t, ok)

	// The store itself stays usable for Get/Save after Close.
	_, err = s.Get(context.Background())
	assert.NoError(t, err)
}
