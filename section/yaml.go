package section

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlCodec implements Codec over YAML documents. Documents are walked as
// yaml.Node trees and re-emitted node-by-node, so sibling keys, their
// order, and their comments survive a merge.
type yamlCodec struct{}

// YAML returns the YAML section codec.
func YAML() Codec {
	return yamlCodec{}
}

func (yamlCodec) Name() string { return "yaml" }
func (yamlCodec) Ext() string  { return ".yaml" }

func (yamlCodec) Extract(doc []byte, path Path) ([]byte, error) {
	if len(doc) == 0 {
		return nil, ErrSectionNotFound
	}
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil || len(root.Content) == 0 {
		return nil, ErrSectionNotFound
	}
	cur := root.Content[0]
	if path.IsRoot() {
		return yaml.Marshal(cur)
	}
	for _, seg := range path {
		if cur.Kind != yaml.MappingNode {
			return nil, ErrSectionNotFound
		}
		next := mappingValue(cur, seg)
		if next == nil {
			return nil, ErrSectionNotFound
		}
		cur = next
	}
	return yaml.Marshal(cur)
}

func (yamlCodec) Merge(doc []byte, path Path, sub []byte) ([]byte, error) {
	if path.IsRoot() {
		return sub, nil
	}

	newValue, err := parseYAMLValue(sub)
	if err != nil {
		return nil, fmt.Errorf("parse merge value: %w", err)
	}

	// A missing or malformed existing document degrades to a fresh
	// skeleton holding only the new section.
	var top *yaml.Node
	if len(doc) > 0 {
		var root yaml.Node
		if err := yaml.Unmarshal(doc, &root); err == nil && len(root.Content) > 0 &&
			root.Content[0].Kind == yaml.MappingNode {
			top = root.Content[0]
		}
	}
	if top == nil {
		top = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	cur := top
	for i, seg := range path {
		last := i == len(path)-1
		idx := mappingKeyIndex(cur, seg)
		if last {
			if idx >= 0 {
				cur.Content[idx+1] = newValue
			} else {
				appendMappingEntry(cur, seg, newValue)
			}
			break
		}
		var next *yaml.Node
		if idx >= 0 {
			next = cur.Content[idx+1]
			if next.Kind != yaml.MappingNode {
				// A scalar is squatting on an intermediate segment;
				// replace it with a nested map.
				next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				cur.Content[idx+1] = next
			}
		} else {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			appendMappingEntry(cur, seg, next)
		}
		cur = next
	}
	return yaml.Marshal(top)
}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// parseYAMLValue parses a sub-document and returns its value node.
func parseYAMLValue(data []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return root.Content[0], nil
}

// mappingKeyIndex returns the index of the key node matching key inside a
// mapping node's Content slice, or -1.
func mappingKeyIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// mappingValue returns the value node for key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if i := mappingKeyIndex(m, key); i >= 0 {
		return m.Content[i+1]
	}
	return nil
}

func appendMappingEntry(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value)
}
