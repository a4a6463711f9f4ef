package section

import (
	"errors"
	"strings"
)

// ErrSectionNotFound is returned by Extract when a path segment is absent
// or a non-map node blocks the walk. Callers treat it as "no data yet"
// and fall back to defaults; it is not a parse failure.
var ErrSectionNotFound = errors.New("section not found in document")

// Codec is the format-specific half of the section contract. One Codec
// instance is shared by every settings instance using its format; all
// implementations are stateless and safe for concurrent use.
type Codec interface {
	// Name is the short format name ("json", "yaml", "xml").
	Name() string

	// Ext is the canonical file extension, including the dot.
	Ext() string

	// Extract returns the raw sub-document at path. A missing segment or
	// a scalar where a map was expected yields ErrSectionNotFound.
	Extract(doc []byte, path Path) ([]byte, error)

	// Merge writes sub into doc at path, preserving every sibling key at
	// every level. An empty path replaces the whole document. When doc is
	// empty or malformed a fresh nested structure containing only the new
	// section is synthesized.
	Merge(doc []byte, path Path, sub []byte) ([]byte, error)

	// Marshal serializes a settings value to a sub-document.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes a sub-document into a settings value.
	Unmarshal(data []byte, v any) error
}

// ByExt returns the codec registered for a file extension (with or
// without the leading dot). The second result is false for unknown
// extensions.
func ByExt(ext string) (Codec, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "json":
		return JSON(), true
	case "yaml", "yml":
		return YAML(), true
	case "xml":
		return XML(), true
	}
	return nil, false
}
