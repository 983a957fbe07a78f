package tree

import (
	"sort"
	"strings"
)

// Entry is one folder in a snapshot of the tree
type Entry struct {
	Path       string `json:"path"`
	Depth      int    `json:"depth"`
	Suppressed bool   `json:"suppressed"`
	// Hidden is true when the folder or one of its ancestors is suppressed
	Hidden bool `json:"hidden"`
}

// Snapshot lists the non-root folders with a known path, sorted by path.
// A folder below a suppressed folder is reported as hidden.
func Snapshot(nodes []Node) []Entry {
	entries := make([]Entry, 0, len(nodes))
	suppressed := make(map[string]bool)

	for _, n := range nodes {
		if n == nil || n.IsRoot() {
			continue
		}
		p, ok := n.Path()
		if !ok || p == "" {
			continue
		}
		s := n.Suppressed()
		if s {
			suppressed[p] = true
		}
		entries = append(entries, Entry{
			Path:       p,
			Depth:      strings.Count(p, "/"),
			Suppressed: s,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	for i := range entries {
		entries[i].Hidden = entries[i].Suppressed || hasSuppressedAncestor(entries[i].Path, suppressed)
	}
	return entries
}

func hasSuppressedAncestor(p string, suppressed map[string]bool) bool {
	for {
		idx := strings.LastIndex(p, "/")
		if idx < 0 {
			return false
		}
		p = p[:idx]
		if suppressed[p] {
			return true
		}
	}
}
