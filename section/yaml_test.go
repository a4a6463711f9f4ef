package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test Plan for the YAML codec:
// - Extract walks nested mappings
// - Extract on missing segments / scalar blocks returns ErrSectionNotFound
// - Merge preserves sibling keys, their order, and comments on kept nodes
// - Merge into an empty or malformed document synthesizes the skeleton
// - Round-trip through Merge+Extract preserves values

func TestYAML_ExtractNested(t *testing.T) {
	t.Parallel()

	doc := []byte("app:\n  user:\n    name: x\n  other:\n    volume: 11\n")
	sub, err := YAML().Extract(doc, MustParsePath("app:user"))
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(sub, &got))
	assert.Equal(t, map[string]string{"name": "x"}, got)
}

func TestYAML_ExtractNotFound(t *testing.T) {
	t.Parallel()

	codec := YAML()

	_, err := codec.Extract([]byte("app: {}\n"), MustParsePath("app:user"))
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = codec.Extract([]byte("app: just-a-string\n"), MustParsePath("app:user"))
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = codec.Extract([]byte(": broken ["), MustParsePath("app"))
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestYAML_MergePreservesSiblingsAndComments(t *testing.T) {
	t.Parallel()

	doc := []byte("# top comment\napp:\n  other:\n    volume: 11 # keep me\nzed: true\n")
	out, err := YAML().Merge(doc, MustParsePath("app:user"), []byte("name: x\n"))
	require.NoError(t, err)

	var got struct {
		App struct {
			Other struct {
				Volume int `yaml:"volume"`
			} `yaml:"other"`
			User struct {
				Name string `yaml:"name"`
			} `yaml:"user"`
		} `yaml:"app"`
		Zed bool `yaml:"zed"`
	}
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, 11, got.App.Other.Volume)
	assert.Equal(t, "x", got.App.User.Name)
	assert.True(t, got.Zed)

	assert.Contains(t, string(out), "keep me")
}

func TestYAML_MergeIntoEmpty(t *testing.T) {
	t.Parallel()

	out, err := YAML().Merge(nil, MustParsePath("app:user"), []byte("name: x\n"))
	require.NoError(t, err)

	sub, err := YAML().Extract(out, MustParsePath("app:user"))
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(sub, &got))
	assert.Equal(t, map[string]string{"name": "x"}, got)
}

func TestYAML_MergeReplacesScalarIntermediate(t *testing.T) {
	t.Parallel()

	doc := []byte("app: squatting\n")
	out, err := YAML().Merge(doc, MustParsePath("app:user"), []byte("name: x\n"))
	require.NoError(t, err)

	_, err = YAML().Extract(out, MustParsePath("app:user"))
	assert.NoError(t, err)
}

func TestYAML_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := YAML()
	type prefs struct {
		Name  string   `yaml:"name"`
		Tags  []string `yaml:"tags"`
		Depth int      `yaml:"depth"`
	}
	value := prefs{Name: "x", Tags: []string{"a", "b"}, Depth: 3}

	sub, err := codec.Marshal(value)
	require.NoError(t, err)

	doc, err := codec.Merge(nil, MustParsePath("app:prefs"), sub)
	require.NoError(t, err)

	back, err := codec.Extract(doc, MustParsePath("app:prefs"))
	require.NoError(t, err)

	var got prefs
	require.NoError(t, codec.Unmarshal(back, &got))
	assert.Equal(t, value, got)
}
