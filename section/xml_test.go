package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the XML codec:
// - Path segments map to nested elements under the document root
// - Extract on missing elements returns ErrSectionNotFound
// - Merge grafts the sub-document under the final segment, renaming its
//   root element to the segment name
// - Merge preserves sibling elements
// - Merge into empty input synthesizes the <settings> root
// - Round-trip through Marshal+Merge+Extract+Unmarshal preserves values

type xmlUser struct {
	Name  string `xml:"name"`
	Theme string `xml:"theme"`
}

func TestXML_ExtractNested(t *testing.T) {
	t.Parallel()

	doc := []byte(`<settings><App><User><name>x</name></User></App></settings>`)
	sub, err := XML().Extract(doc, MustParsePath("App:User"))
	require.NoError(t, err)

	var got xmlUser
	require.NoError(t, XML().Unmarshal(sub, &got))
	assert.Equal(t, "x", got.Name)
}

func TestXML_ExtractNotFound(t *testing.T) {
	t.Parallel()

	codec := XML()

	doc := []byte(`<settings><App/></settings>`)
	_, err := codec.Extract(doc, MustParsePath("App:User"))
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = codec.Extract([]byte(`not xml at all`), MustParsePath("App"))
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestXML_MergePreservesSiblings(t *testing.T) {
	t.Parallel()

	doc := []byte(`<settings><App><Other><volume>11</volume></Other></App></settings>`)
	out, err := XML().Merge(doc, MustParsePath("App:User"), []byte(`<u><name>x</name></u>`))
	require.NoError(t, err)

	other, err := XML().Extract(out, MustParsePath("App:Other"))
	require.NoError(t, err)
	assert.Contains(t, string(other), "<volume>11</volume>")

	user, err := XML().Extract(out, MustParsePath("App:User"))
	require.NoError(t, err)
	assert.Contains(t, string(user), "<name>x</name>")
}

func TestXML_MergeIntoEmpty(t *testing.T) {
	t.Parallel()

	out, err := XML().Merge(nil, MustParsePath("App:User"), []byte(`<u><name>x</name></u>`))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<settings>")

	_, err = XML().Extract(out, MustParsePath("App:User"))
	assert.NoError(t, err)
}

func TestXML_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := XML()
	value := xmlUser{Name: "x", Theme: "dark"}

	sub, err := codec.Marshal(value)
	require.NoError(t, err)

	doc, err := codec.Merge(nil, MustParsePath("App:User"), sub)
	require.NoError(t, err)

	back, err := codec.Extract(doc, MustParsePath("App:User"))
	require.NoError(t, err)

	var got xmlUser
	require.NoError(t, codec.Unmarshal(back, &got))
	assert.Equal(t, value, got)
}
