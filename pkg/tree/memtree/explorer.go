package memtree

import (
	"path"
	"strings"

	"github.com/arthur-debert/hidefolder/pkg/tree"
)

// childrenClass wraps the sub-folders of a folder in the reference host
const childrenClass = "nav-folder-children"

// Explorer builds and edits a file-explorer shaped tree in a Document
type Explorer struct {
	doc       *Document
	sel       tree.Selectors
	container *Element
	root      *Element
}

// NewExplorer appends a container with a root folder to the document body
func NewExplorer(doc *Document, sel tree.Selectors) *Explorer {
	x := &Explorer{doc: doc, sel: sel.WithDefaults()}
	x.container, x.root = x.build()
	doc.Body().AppendChild(x.container)
	return x
}

// Container returns the current container element
func (x *Explorer) Container() *Element { return x.container }

// build creates a detached container and root folder
func (x *Explorer) build() (*Element, *Element) {
	c := x.doc.CreateElement("div", ClassName(x.sel.Container))
	root := x.newFolder("/")
	root.AddClass(x.sel.RootClass)
	c.AppendChild(root)
	return c, root
}

func (x *Explorer) newFolder(p string) *Element {
	f := x.doc.CreateElement("div", ClassName(x.sel.Folder))
	title := x.doc.CreateElement("div", ClassName(x.sel.Title))
	title.SetAttr(x.sel.PathAttr, p)
	f.AppendChild(title)
	f.AppendChild(x.doc.CreateElement("div", childrenClass))
	return f
}

// AddFolder creates the folder for p under its parent folder, creating
// missing parents, and returns the folder element
func (x *Explorer) AddFolder(p string) *Element {
	p = strings.Trim(p, "/")
	if existing := x.Folder(p); existing != nil {
		return existing
	}

	parent := x.root
	if dir := path.Dir(p); dir != "." {
		parent = x.AddFolder(dir)
	}

	f := x.newFolder(p)
	parent.ChildMatching("." + childrenClass).AppendChild(f)
	return f
}

// AddUnrenderedFolder adds a folder whose title has no path yet
func (x *Explorer) AddUnrenderedFolder() *Element {
	f := x.doc.CreateElement("div", ClassName(x.sel.Folder))
	f.AppendChild(x.doc.CreateElement("div", ClassName(x.sel.Title)))
	x.root.ChildMatching("." + childrenClass).AppendChild(f)
	return f
}

// Folder returns the folder element for p in the current container
func (x *Explorer) Folder(p string) *Element {
	for _, f := range x.container.QueryAll(x.sel.Folder) {
		title := f.ChildMatching(x.sel.Title)
		if title == nil {
			continue
		}
		if v, ok := title.Attr(x.sel.PathAttr); ok && v == p {
			return f
		}
	}
	return nil
}

// Rename updates the path attribute of the folder at p
func (x *Explorer) Rename(from, to string) bool {
	f := x.Folder(from)
	if f == nil {
		return false
	}
	f.ChildMatching(x.sel.Title).SetAttr(x.sel.PathAttr, to)
	return true
}

// RemoveFolder detaches the folder at p
func (x *Explorer) RemoveFolder(p string) bool {
	f := x.Folder(p)
	if f == nil {
		return false
	}
	f.Remove()
	return true
}

// Replace swaps the container for a freshly rendered one holding the same
// folder paths, as a host does when it rebuilds its panel, and returns the
// old container.
func (x *Explorer) Replace() *Element {
	var paths []string
	for _, f := range x.container.QueryAll(x.sel.Folder) {
		if f.HasClass(x.sel.RootClass) {
			continue
		}
		if title := f.ChildMatching(x.sel.Title); title != nil {
			if v, ok := title.Attr(x.sel.PathAttr); ok && v != "" {
				paths = append(paths, v)
			}
		}
	}

	old := x.container
	x.container, x.root = x.build()
	for _, p := range paths {
		x.AddFolder(p)
	}
	old.ReplaceWith(x.container)
	return old
}
