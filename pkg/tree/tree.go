package tree

// Node is one folder entry of the host tree
type Node interface {
	// IsRoot reports whether the node is the tree root, which is never suppressed
	IsRoot() bool

	// Path returns the folder path, or false while the host has not rendered it yet
	Path() (string, bool)

	// Suppressed reports whether the engine marker is present
	Suppressed() bool

	// SetSuppressed adds or removes the engine marker
	SetSuppressed(bool)
}

// Container is the host element holding every folder node
type Container interface {
	// Key identifies the container; a replaced container gets a new key
	Key() string

	// Folders returns every folder node under the container, root included
	Folders() []Node

	// Observe registers fn to run once per batch of structural or attribute
	// changes anywhere under the container. The returned function cancels the
	// registration and must not block on a callback in flight.
	Observe(fn func()) (cancel func())
}

// Host owns the tree and exposes lookups plus a layout signal
type Host interface {
	// Container resolves the selector to the current container
	Container(selector string) (Container, bool)

	// OnLayoutChange registers fn to run whenever the host layout changes,
	// which may replace the container. The returned function unsubscribes.
	OnLayoutChange(fn func()) (cancel func())
}

// Same reports whether two containers are the same host element
func Same(a, b Container) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}
