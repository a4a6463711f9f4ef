package section

import (
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
)

// defaultXMLRoot names the document root element synthesized when merging
// into an empty or malformed XML document.
const defaultXMLRoot = "settings"

// xmlCodec implements Codec over XML documents. Path segments map to
// nested element names under the document root; the root element itself
// is not a path segment. Settings values must be xml-marshalable structs.
type xmlCodec struct{}

// XML returns the XML section codec.
func XML() Codec {
	return xmlCodec{}
}

func (xmlCodec) Name() string { return "xml" }
func (xmlCodec) Ext() string  { return ".xml" }

func (xmlCodec) Extract(doc []byte, path Path) ([]byte, error) {
	if len(doc) == 0 {
		return nil, ErrSectionNotFound
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc); err != nil || tree.Root() == nil {
		return nil, ErrSectionNotFound
	}
	cur := tree.Root()
	for _, seg := range path {
		next := cur.SelectElement(seg)
		if next == nil {
			return nil, ErrSectionNotFound
		}
		cur = next
	}
	out := etree.NewDocument()
	out.SetRoot(cur.Copy())
	out.Indent(2)
	return out.WriteToBytes()
}

func (xmlCodec) Merge(doc []byte, path Path, sub []byte) ([]byte, error) {
	if path.IsRoot() {
		return sub, nil
	}

	subTree := etree.NewDocument()
	if err := subTree.ReadFromBytes(sub); err != nil {
		return nil, fmt.Errorf("parse merge value: %w", err)
	}
	if subTree.Root() == nil {
		return nil, fmt.Errorf("parse merge value: empty sub-document")
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc); err != nil || tree.Root() == nil {
		tree = etree.NewDocument()
		tree.CreateElement(defaultXMLRoot)
	}

	cur := tree.Root()
	for _, seg := range path[:len(path)-1] {
		next := cur.SelectElement(seg)
		if next == nil {
			next = cur.CreateElement(seg)
		}
		cur = next
	}

	last := path[len(path)-1]
	if existing := cur.SelectElement(last); existing != nil {
		cur.RemoveChild(existing)
	}
	grafted := subTree.Root().Copy()
	grafted.Tag = last
	cur.AddChild(grafted)

	tree.Indent(2)
	return tree.WriteToBytes()
}

func (xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.MarshalIndent(v, "", "  ")
}

func (xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
