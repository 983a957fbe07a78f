package classifier

import (
	"testing"

	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/tree/treetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewWithLogger(zerolog.Nop())
}

func TestClassifyScenario(t *testing.T) {
	c := newTestClassifier()
	folders := treetest.Folders("_assets", "notes/drafts", "projects", "projects/drafts/x", "projects/drafts")
	set := rules.Compile("^_assets$\n.*\\/drafts$")

	n := c.Classify(treetest.Nodes(folders...), set, true)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"_assets", "notes/drafts", "projects/drafts"}, treetest.SuppressedPaths(folders))
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newTestClassifier()
	folders := treetest.Folders("a/attachments", "attachments", "notes", "attach")
	nodes := treetest.Nodes(folders...)
	set := rules.Compile("attachments")

	first := c.Classify(nodes, set, true)
	require.Equal(t, 2, first)
	before := treetest.SuppressedPaths(folders)

	second := c.Classify(nodes, set, true)
	assert.Equal(t, 0, second, "second pass over an unchanged tree suppresses nothing")
	assert.Equal(t, before, treetest.SuppressedPaths(folders))

	for _, f := range folders {
		assert.LessOrEqual(t, f.Writes, 1, "marker written at most once for %s", f.P)
	}
}

func TestClassifyCountsEachNodeOnce(t *testing.T) {
	c := newTestClassifier()
	folders := treetest.Folders("notes/drafts")
	set := rules.Compile("notes\ndrafts\n.*")

	assert.Equal(t, 1, c.Classify(treetest.Nodes(folders...), set, true))
	assert.Equal(t, 1, folders[0].Writes)
}

func TestRestoreAllInvertsClassify(t *testing.T) {
	c := newTestClassifier()
	folders := treetest.Folders("_assets", "notes/drafts", "projects", "archive")
	nodes := treetest.Nodes(folders...)
	set := rules.Compile("^_assets$\ndrafts\narchive")

	suppressed := c.Classify(nodes, set, true)
	restored := c.RestoreAll(nodes)

	assert.Equal(t, 3, suppressed)
	assert.Equal(t, suppressed, restored)
	assert.Empty(t, treetest.SuppressedPaths(folders))
	assert.Equal(t, 0, c.RestoreAll(nodes), "nothing left to restore")
}

func TestRestoreAllIgnoresRules(t *testing.T) {
	c := newTestClassifier()
	marked := treetest.Folder("anything")
	marked.Marked = true
	root := treetest.Root()
	root.Marked = true

	assert.Equal(t, 2, c.RestoreAll(append(treetest.Nodes(marked, root), nil)))
	assert.False(t, marked.Marked)
	assert.False(t, root.Marked)
}

func TestRootIsExempt(t *testing.T) {
	c := newTestClassifier()
	root := treetest.Root()
	root.P = "notes"

	assert.Equal(t, 0, c.Classify(treetest.Nodes(root), rules.Compile(".*"), true))
	assert.False(t, root.Marked)
}

func TestClassifyPreconditions(t *testing.T) {
	c := newTestClassifier()

	t.Run("disabled", func(t *testing.T) {
		folders := treetest.Folders("attachments")
		n := c.Classify(treetest.Nodes(folders...), rules.Compile("attachments"), false)
		assert.Equal(t, 0, n)
		assert.Zero(t, folders[0].Writes)
	})

	t.Run("empty configuration", func(t *testing.T) {
		folders := treetest.Folders("", "attachments")
		for _, text := range []string{"", "\n\n"} {
			assert.NotPanics(t, func() {
				assert.Equal(t, 0, c.Classify(treetest.Nodes(folders...), rules.Compile(text), true))
			})
		}
		assert.Empty(t, treetest.SuppressedPaths(folders))
	})

	t.Run("nil set", func(t *testing.T) {
		assert.Equal(t, 0, c.Classify(treetest.Nodes(treetest.Folder("x")), nil, true))
	})
}

func TestClassifySkipsIncompleteNodes(t *testing.T) {
	c := newTestClassifier()
	unrendered := treetest.Unrendered()
	emptyPath := treetest.Folder("")

	n := c.Classify(append(treetest.Nodes(unrendered, emptyPath), nil), rules.Compile(".*"), true)

	assert.Equal(t, 0, n)
	assert.False(t, unrendered.Marked)
	assert.False(t, emptyPath.Marked)
}

func TestPlanDoesNotWrite(t *testing.T) {
	c := newTestClassifier()
	folders := treetest.Folders("notes", "notes/drafts")
	folders[0].Marked = true
	nodes := treetest.Nodes(append(folders, treetest.Root())...)

	decisions := c.Plan(nodes, rules.Compile("zzz\ndrafts"), true)
	require.Len(t, decisions, 2)

	assert.Equal(t, "notes", decisions[0].Path)
	assert.True(t, decisions[0].Suppressed)
	assert.False(t, decisions[0].Matched)

	assert.Equal(t, "notes/drafts", decisions[1].Path)
	assert.True(t, decisions[1].Matched)
	assert.Equal(t, 2, decisions[1].Rule.Line)

	assert.Zero(t, folders[1].Writes)

	disabled := c.Plan(nodes, rules.Compile("drafts"), false)
	assert.False(t, disabled[1].Matched)
}
