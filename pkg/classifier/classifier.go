// Package classifier decides which folders of the host tree are suppressed
// and applies or clears the suppression marker on them.
//
// Classification is idempotent: a node that already carries the marker is
// left alone, so running a pass over an unchanged tree reports zero newly
// suppressed nodes and writes nothing. The engine relies on this to stop the
// feedback loop caused by its own marker writes.
package classifier

import (
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/rs/zerolog"
)

// Classifier applies a rule set to tree nodes
type Classifier struct {
	logger zerolog.Logger
}

// New creates a classifier
func New() *Classifier {
	return &Classifier{
		logger: logging.GetLogger("classifier"),
	}
}

// NewWithLogger creates a classifier logging to logger
func NewWithLogger(logger zerolog.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify suppresses every unmarked, non-root node whose path matches a
// rule and returns how many nodes it newly suppressed. Nothing is touched
// when the engine is disabled or the set has no rules.
func (c *Classifier) Classify(nodes []tree.Node, set *rules.Set, enabled bool) int {
	if !enabled || set.Empty() {
		c.logger.Trace().
			Bool("enabled", enabled).
			Int("ruleCount", set.Len()).
			Msg("Classify skipped")
		return 0
	}

	count := 0
	for _, n := range nodes {
		path, ok := candidatePath(n)
		if !ok || n.Suppressed() {
			continue
		}

		rule, matched := set.Match(path)
		if !matched {
			continue
		}

		n.SetSuppressed(true)
		count++
		c.logger.Debug().
			Str("path", path).
			Str("rule", rule.String()).
			Msg("Folder suppressed")
	}

	c.logger.Trace().
		Int("nodes", len(nodes)).
		Int("suppressed", count).
		Msg("Classify pass complete")
	return count
}

// RestoreAll clears the marker on every suppressed node, whatever the rules
// say, and returns how many nodes it restored.
func (c *Classifier) RestoreAll(nodes []tree.Node) int {
	count := 0
	for _, n := range nodes {
		if n == nil || !n.Suppressed() {
			continue
		}
		n.SetSuppressed(false)
		count++
	}

	c.logger.Trace().
		Int("nodes", len(nodes)).
		Int("restored", count).
		Msg("Restore pass complete")
	return count
}

// candidatePath returns the path of a node that classification may act on
func candidatePath(n tree.Node) (string, bool) {
	if n == nil || n.IsRoot() {
		return "", false
	}
	path, ok := n.Path()
	if !ok || path == "" {
		return "", false
	}
	return path, true
}
