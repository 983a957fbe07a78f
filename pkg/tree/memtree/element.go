package memtree

import (
	"strings"

	"github.com/google/uuid"
)

// Attr is one element attribute
type Attr struct {
	Key   string
	Value string
}

// Element is one node of the document
type Element struct {
	doc      *Document
	key      string
	tag      string
	classes  []string
	attrs    []Attr
	parent   *Element
	children []*Element
}

func newElement(doc *Document, tag string, classes ...string) *Element {
	el := &Element{
		doc: doc,
		key: uuid.NewString(),
		tag: tag,
	}
	for _, c := range classes {
		el.classes = appendClass(el.classes, c)
	}
	return el
}

// Key is the identity of the element
func (e *Element) Key() string { return e.key }

// Tag returns the element tag name
func (e *Element) Tag() string { return e.tag }

// Parent returns the parent element, nil when detached
func (e *Element) Parent() *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.parent
}

// Children returns a copy of the child list
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Classes returns a copy of the class list
func (e *Element) Classes() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// HasClass reports whether the class is present
func (e *Element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return hasClass(e.classes, class)
}

// AddClass adds a class; adding a present class records nothing
func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if class == "" || hasClass(e.classes, class) {
		return
	}
	e.classes = appendClass(e.classes, class)
	e.doc.record(Record{Kind: Attributes, Target: e, Attr: "class"})
}

// RemoveClass removes a class; removing an absent class records nothing
func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if !hasClass(e.classes, class) {
		return
	}
	out := e.classes[:0]
	for _, c := range e.classes {
		if c != class {
			out = append(out, c)
		}
	}
	e.classes = out
	e.doc.record(Record{Kind: Attributes, Target: e, Attr: "class"})
}

// Attr returns an attribute value
func (e *Element) Attr(key string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if key == "class" {
		return strings.Join(e.classes, " "), len(e.classes) > 0
	}
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes other than class
func (e *Element) Attrs() []Attr {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// SetAttr sets an attribute. Setting "class" replaces the class list.
func (e *Element) SetAttr(key, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if key == "class" {
		e.classes = nil
		for _, c := range strings.Fields(value) {
			e.classes = appendClass(e.classes, c)
		}
	} else {
		found := false
		for i := range e.attrs {
			if e.attrs[i].Key == key {
				e.attrs[i].Value = value
				found = true
				break
			}
		}
		if !found {
			e.attrs = append(e.attrs, Attr{Key: key, Value: value})
		}
	}
	e.doc.record(Record{Kind: Attributes, Target: e, Attr: key})
}

// RemoveAttr deletes an attribute
func (e *Element) RemoveAttr(key string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for i, a := range e.attrs {
		if a.Key == key {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.doc.record(Record{Kind: Attributes, Target: e, Attr: key})
			return
		}
	}
}

// AppendChild moves child to the end of e's children
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if child.parent != nil {
		old := child.parent
		old.children = removeChild(old.children, child)
		e.doc.record(Record{Kind: ChildList, Target: old})
	}
	child.parent = e
	e.children = append(e.children, child)
	e.doc.record(Record{Kind: ChildList, Target: e})
}

// Remove detaches the element from its parent
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.parent == nil {
		return
	}
	p := e.parent
	p.children = removeChild(p.children, e)
	e.parent = nil
	e.doc.record(Record{Kind: ChildList, Target: p})
}

// ReplaceWith puts other in e's place and detaches e
func (e *Element) ReplaceWith(other *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	p := e.parent
	if p == nil {
		return
	}
	if other.parent != nil {
		other.parent.children = removeChild(other.parent.children, other)
		e.doc.record(Record{Kind: ChildList, Target: other.parent})
	}
	for i, c := range p.children {
		if c == e {
			p.children[i] = other
			break
		}
	}
	other.parent = p
	e.parent = nil
	e.doc.record(Record{Kind: ChildList, Target: p})
}

// Contains reports whether other is e or one of its descendants
func (e *Element) Contains(other *Element) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return contains(e, other)
}

// Query returns the first descendant matching the selector
func (e *Element) Query(selector string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	sel := parseSelector(selector)
	var found *Element
	walk(e, func(el *Element) bool {
		if el != e && sel.matches(el) {
			found = el
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every descendant matching the selector in document order
func (e *Element) QueryAll(selector string) []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	sel := parseSelector(selector)
	var out []*Element
	walk(e, func(el *Element) bool {
		if el != e && sel.matches(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ChildMatching returns the first direct child matching the selector
func (e *Element) ChildMatching(selector string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	sel := parseSelector(selector)
	for _, c := range e.children {
		if sel.matches(c) {
			return c
		}
	}
	return nil
}

func contains(e, other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// walk visits e and its descendants depth first until fn returns false
func walk(e *Element, fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

func appendClass(classes []string, class string) []string {
	if class == "" || hasClass(classes, class) {
		return classes
	}
	return append(classes, class)
}

func removeChild(children []*Element, child *Element) []*Element {
	for i, c := range children {
		if c == child {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}
