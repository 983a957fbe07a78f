// Package treetest provides in-memory tree.Node fakes for unit tests.
package treetest

import "github.com/arthur-debert/hidefolder/pkg/tree"

// Node is a settable tree.Node
type Node struct {
	Root    bool
	P       string
	HasPath bool
	Marked  bool
	Writes  int // Number of SetSuppressed calls that changed the marker
}

var _ tree.Node = (*Node)(nil)

// Folder returns a non-root node with the given path
func Folder(path string) *Node {
	return &Node{P: path, HasPath: true}
}

// Root returns a root node
func Root() *Node {
	return &Node{Root: true, P: "/", HasPath: true}
}

// Unrendered returns a non-root node without a path yet
func Unrendered() *Node {
	return &Node{}
}

func (n *Node) IsRoot() bool { return n.Root }

func (n *Node) Path() (string, bool) { return n.P, n.HasPath }

func (n *Node) Suppressed() bool { return n.Marked }

func (n *Node) SetSuppressed(v bool) {
	if n.Marked != v {
		n.Writes++
	}
	n.Marked = v
}

// Nodes converts fakes to tree.Node values
func Nodes(ns ...*Node) []tree.Node {
	out := make([]tree.Node, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}

// Folders builds one non-root node per path
func Folders(paths ...string) []*Node {
	out := make([]*Node, len(paths))
	for i, p := range paths {
		out[i] = Folder(p)
	}
	return out
}

// SuppressedPaths returns the paths of marked nodes in input order
func SuppressedPaths(ns []*Node) []string {
	var out []string
	for _, n := range ns {
		if n.Marked {
			out = append(out, n.P)
		}
	}
	return out
}
