package memtree

import "strings"

// selector is a compound selector: optional tag, optional #id, any .class
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) selector {
	var sel selector
	s = strings.TrimSpace(s)

	parts := strings.Split(s, ".")
	head := parts[0]
	if idx := strings.Index(head, "#"); idx >= 0 {
		sel.id = head[idx+1:]
		head = head[:idx]
	}
	sel.tag = head
	for _, c := range parts[1:] {
		if c != "" {
			sel.classes = append(sel.classes, c)
		}
	}
	return sel
}

// matches is called with the document lock held
func (s selector) matches(el *Element) bool {
	if s.tag == "" && s.id == "" && len(s.classes) == 0 {
		return false
	}
	if s.tag != "" && s.tag != "*" && s.tag != el.tag {
		return false
	}
	if s.id != "" {
		found := false
		for _, a := range el.attrs {
			if a.Key == "id" && a.Value == s.id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range s.classes {
		if !hasClass(el.classes, c) {
			return false
		}
	}
	return true
}

// ClassName returns the class named by a ".class" selector
func ClassName(sel string) string {
	return strings.TrimPrefix(strings.TrimSpace(sel), ".")
}
