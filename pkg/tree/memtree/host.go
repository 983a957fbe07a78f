package memtree

import "github.com/arthur-debert/hidefolder/pkg/tree"

// Host exposes a Document through the tree.Host contract
type Host struct {
	doc *Document
	sel tree.Selectors
}

var _ tree.Host = (*Host)(nil)

// NewHost wraps doc; folders are found with the given selectors
func NewHost(doc *Document, sel tree.Selectors) *Host {
	return &Host{doc: doc, sel: sel.WithDefaults()}
}

// Document returns the wrapped document
func (h *Host) Document() *Document { return h.doc }

// Container implements tree.Host
func (h *Host) Container(selector string) (tree.Container, bool) {
	el := h.doc.Query(selector)
	if el == nil {
		return nil, false
	}
	return &container{el: el, sel: h.sel}, true
}

// OnLayoutChange implements tree.Host
func (h *Host) OnLayoutChange(fn func()) (cancel func()) {
	return h.doc.OnLayoutChange(fn)
}

type container struct {
	el  *Element
	sel tree.Selectors
}

func (c *container) Key() string { return c.el.Key() }

func (c *container) Folders() []tree.Node {
	els := c.el.QueryAll(c.sel.Folder)
	nodes := make([]tree.Node, len(els))
	for i, el := range els {
		nodes[i] = &folder{el: el, sel: c.sel}
	}
	return nodes
}

func (c *container) Observe(fn func()) (cancel func()) {
	return c.el.doc.Observe(c.el, func([]Record) { fn() })
}

// folder adapts a folder element to tree.Node
type folder struct {
	el  *Element
	sel tree.Selectors
}

func (f *folder) IsRoot() bool {
	return f.el.HasClass(f.sel.RootClass)
}

// Path reads the path attribute of the folder's own title element
func (f *folder) Path() (string, bool) {
	title := f.el.ChildMatching(f.sel.Title)
	if title == nil {
		title = f.el.Query(f.sel.Title)
	}
	if title == nil {
		return "", false
	}
	p, ok := title.Attr(f.sel.PathAttr)
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

func (f *folder) Suppressed() bool {
	return f.el.HasClass(f.sel.Marker)
}

func (f *folder) SetSuppressed(v bool) {
	if v {
		f.el.AddClass(f.sel.Marker)
	} else {
		f.el.RemoveClass(f.sel.Marker)
	}
}
