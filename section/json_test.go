package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// Test Plan for the JSON codec:
// - Extract walks nested objects and returns the raw sub-document
// - Extract on a missing segment or through a scalar returns ErrSectionNotFound
// - Merge into an empty/malformed document synthesizes the nested skeleton
// - Merge preserves sibling keys byte-for-byte
// - Merge with the root path replaces the whole document
// - Round-trip: Extract(Merge(empty, S, serialize(V)), S) equals V
// - The App:User / App:Other shared-file scenario nests both under "App"

type userSettings struct {
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

func TestJSON_ExtractNested(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"App":{"User":{"name":"x"},"Other":{"k":1}}}`)
	sub, err := JSON().Extract(doc, MustParsePath("App:User"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(sub))
}

func TestJSON_ExtractNotFound(t *testing.T) {
	t.Parallel()

	codec := JSON()

	// Missing segment.
	_, err := codec.Extract([]byte(`{"App":{}}`), MustParsePath("App:User"))
	assert.ErrorIs(t, err, ErrSectionNotFound)

	// Scalar where a map is required.
	_, err = codec.Extract([]byte(`{"App":"oops"}`), MustParsePath("App:User"))
	assert.ErrorIs(t, err, ErrSectionNotFound)

	// Malformed document reads as "no data".
	_, err = codec.Extract([]byte(`{not json`), MustParsePath("App"))
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestJSON_MergeIntoEmpty(t *testing.T) {
	t.Parallel()

	out, err := JSON().Merge(nil, MustParsePath("App:User"), []byte(`{"name":"x"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"App":{"User":{"name":"x"}}}`, string(out))
}

func TestJSON_MergePreservesSiblings(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"App":{"Other":{"volume":11}},"Unrelated":true}`)
	out, err := JSON().Merge(doc, MustParsePath("App:User"), []byte(`{"name":"x"}`))
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"App":{"Other":{"volume":11},"User":{"name":"x"}},"Unrelated":true}`,
		string(out))
	// Sibling section comes back byte-for-byte.
	assert.Equal(t, `{"volume":11}`, gjson.GetBytes(out, "App.Other").Raw)
}

func TestJSON_MergeRootReplaces(t *testing.T) {
	t.Parallel()

	out, err := JSON().Merge([]byte(`{"old":1}`), nil, []byte(`{"new":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"new":2}`, string(out))
}

func TestJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := JSON()
	value := userSettings{Name: "x", Theme: "dark"}

	sub, err := codec.Marshal(value)
	require.NoError(t, err)

	doc, err := codec.Merge(nil, MustParsePath("App:User"), sub)
	require.NoError(t, err)

	back, err := codec.Extract(doc, MustParsePath("App:User"))
	require.NoError(t, err)

	var got userSettings
	require.NoError(t, codec.Unmarshal(back, &got))
	assert.Equal(t, value, got)
}

func TestJSON_KeyWithDot(t *testing.T) {
	t.Parallel()

	codec := JSON()
	path := Path{"my.app", "User"}

	doc, err := codec.Merge(nil, path, []byte(`{"name":"x"}`))
	require.NoError(t, err)

	sub, err := codec.Extract(doc, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(sub))
}
