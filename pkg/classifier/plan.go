package classifier

import (
	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/tree"
)

// Decision is the outcome of evaluating one node without touching it
type Decision struct {
	Path       string
	Suppressed bool // Marker currently present
	Matched    bool // A rule would suppress the node
	Rule       rules.Rule
}

// Plan evaluates nodes against the set without writing any marker. It
// follows the same preconditions as Classify: when disabled or without rules
// no node is reported as matched.
func (c *Classifier) Plan(nodes []tree.Node, set *rules.Set, enabled bool) []Decision {
	decisions := make([]Decision, 0, len(nodes))
	for _, n := range nodes {
		path, ok := candidatePath(n)
		if !ok {
			continue
		}

		d := Decision{Path: path, Suppressed: n.Suppressed()}
		if enabled && !set.Empty() {
			d.Rule, d.Matched = set.Match(path)
		}
		decisions = append(decisions, d)
	}
	return decisions
}
