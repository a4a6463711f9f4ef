package section

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// jsonCodec implements Codec over UTF-8 JSON documents. Extraction and
// merging operate on raw bytes via gjson/sjson so sibling sections come
// back byte-for-byte untouched.
type jsonCodec struct{}

// JSON returns the JSON section codec.
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Ext() string  { return ".json" }

func (jsonCodec) Extract(doc []byte, path Path) ([]byte, error) {
	if len(doc) == 0 || !gjson.ValidBytes(doc) {
		return nil, ErrSectionNotFound
	}
	if path.IsRoot() {
		return doc, nil
	}
	cur := gjson.ParseBytes(doc)
	for _, seg := range path {
		if !cur.IsObject() {
			return nil, ErrSectionNotFound
		}
		next := cur.Get(escapeJSONKey(seg))
		if !next.Exists() {
			return nil, ErrSectionNotFound
		}
		cur = next
	}
	return []byte(cur.Raw), nil
}

func (jsonCodec) Merge(doc []byte, path Path, sub []byte) ([]byte, error) {
	if path.IsRoot() {
		return sub, nil
	}
	if len(doc) == 0 || !gjson.ValidBytes(doc) {
		doc = []byte("{}")
	}
	segs := make([]string, len(path))
	for i, seg := range path {
		segs[i] = escapeJSONKey(seg)
	}
	return sjson.SetRawBytesOptions(doc, strings.Join(segs, "."), sub,
		&sjson.Options{ReplaceInPlace: false})
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// escapeJSONKey protects literal key characters that gjson/sjson path
// syntax would otherwise interpret as wildcards or separators.
func escapeJSONKey(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
