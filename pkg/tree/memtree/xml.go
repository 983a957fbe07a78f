package memtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Parse loads an XML snapshot of a host tree. The root XML element becomes
// the only child of the document body.
func Parse(r io.Reader) (*Document, error) {
	x := etree.NewDocument()
	if _, err := x.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse tree snapshot: %w", err)
	}
	root := x.Root()
	if root == nil {
		return nil, fmt.Errorf("tree snapshot has no root element")
	}

	doc := NewDocument()
	doc.Body().AppendChild(fromXML(doc, root))
	return doc, nil
}

// ParseString is Parse over a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func fromXML(doc *Document, xe *etree.Element) *Element {
	el := doc.CreateElement(xe.Tag)
	for _, a := range xe.Attr {
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
		}
		if key == "class" {
			for _, c := range strings.Fields(a.Value) {
				el.classes = appendClass(el.classes, c)
			}
			continue
		}
		el.attrs = append(el.attrs, Attr{Key: key, Value: a.Value})
	}
	for _, child := range xe.ChildElements() {
		c := fromXML(doc, child)
		c.parent = el
		el.children = append(el.children, c)
	}
	return el
}

// WriteXML writes the children of the body as an indented XML snapshot
func (d *Document) WriteXML(w io.Writer) error {
	x := etree.NewDocument()

	d.mu.Lock()
	for _, c := range d.body.children {
		toXML(&x.Element, c)
	}
	d.mu.Unlock()

	x.Indent(2)
	_, err := x.WriteTo(w)
	return err
}

// toXML is called with the document lock held
func toXML(parent *etree.Element, el *Element) {
	xe := parent.CreateElement(el.tag)
	if len(el.classes) > 0 {
		xe.CreateAttr("class", strings.Join(el.classes, " "))
	}
	for _, a := range el.attrs {
		xe.CreateAttr(a.Key, a.Value)
	}
	for _, c := range el.children {
		toXML(xe, c)
	}
}
