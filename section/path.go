// Package section locates and rewrites nested sub-documents inside a
// shared settings file. A Path names a nesting point; a Codec knows how to
// extract the sub-document at a Path and how to merge a replacement back
// in without disturbing sibling sections, per supported format.
package section

import (
	"errors"
	"strings"
)

// ErrEmptySegment indicates a section path string containing an empty
// segment, e.g. "App::User" or a leading separator.
var ErrEmptySegment = errors.New("section path contains an empty segment")

// Path is an ordered list of non-empty key segments. The empty Path
// addresses the document root.
type Path []string

// ParsePath splits s on ":" or "__" separators. An empty string yields
// the root Path. Empty segments are rejected.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	normalized := strings.ReplaceAll(s, "__", ":")
	parts := strings.Split(normalized, ":")
	path := make(Path, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, ErrEmptySegment
		}
		path = append(path, p)
	}
	return path, nil
}

// MustParsePath is ParsePath for compile-time-known strings; it panics on
// a malformed path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic("section: " + err.Error() + ": " + s)
	}
	return p
}

// IsRoot reports whether p addresses the document root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// String re-serializes the path with ":" separators. Parsing the result
// yields an equivalent traversal.
func (p Path) String() string {
	return strings.Join(p, ":")
}
