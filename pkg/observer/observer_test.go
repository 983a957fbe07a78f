package observer

import (
	"testing"

	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/arthur-debert/hidefolder/pkg/tree/memtree"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*memtree.Explorer, *memtree.Host, *Observer, *int) {
	t.Helper()
	doc := memtree.NewDocument()
	sel := tree.DefaultSelectors()
	x := memtree.NewExplorer(doc, sel)
	calls := 0
	o := NewWithLogger(func() { calls++ }, zerolog.Nop())
	return x, memtree.NewHost(doc, sel), o, &calls
}

func current(t *testing.T, h *memtree.Host) tree.Container {
	t.Helper()
	c, ok := h.Container(tree.DefaultSelectors().Container)
	require.True(t, ok)
	return c
}

func TestAttachReportsEachBatchOnce(t *testing.T) {
	x, h, o, calls := setup(t)
	assert.Equal(t, Detached, o.State())

	o.Attach(current(t, h))
	assert.Equal(t, Attached, o.State())

	x.AddFolder("a")
	x.AddFolder("b")
	x.Rename("a", "c")
	h.Document().Flush()

	assert.Equal(t, 1, *calls)
}

func TestAttachSameContainerIsNoop(t *testing.T) {
	x, h, o, calls := setup(t)
	o.Attach(current(t, h))
	o.Attach(current(t, h))

	assert.Equal(t, 1, h.Document().Observers())

	x.AddFolder("a")
	h.Document().Flush()
	assert.Equal(t, 1, *calls)
}

func TestDetachStopsReports(t *testing.T) {
	x, h, o, calls := setup(t)
	o.Attach(current(t, h))
	x.AddFolder("a")
	o.Detach()
	h.Document().Flush()

	assert.Zero(t, *calls)
	assert.Equal(t, Detached, o.State())
	assert.Nil(t, o.Current())
	assert.Zero(t, h.Document().Observers())

	o.Detach()
}

func TestReattachWatchesOnlyNewContainer(t *testing.T) {
	x, h, o, calls := setup(t)
	first := current(t, h)
	o.Attach(first)

	old := x.Replace()
	h.Document().Flush()
	*calls = 0

	second := current(t, h)
	require.False(t, tree.Same(first, second))
	o.Attach(second)
	assert.Equal(t, 1, h.Document().Observers(), "never two containers at once")
	assert.Equal(t, second.Key(), o.Current().Key())

	old.AppendChild(h.Document().CreateElement("div"))
	h.Document().Flush()
	assert.Zero(t, *calls, "old container changes are ignored")

	x.AddFolder("fresh")
	h.Document().Flush()
	assert.Equal(t, 1, *calls)
}

func TestAttachNilDetaches(t *testing.T) {
	_, h, o, _ := setup(t)
	o.Attach(current(t, h))
	o.Attach(nil)
	assert.Equal(t, Detached, o.State())
}

func TestStaleCallbackDropped(t *testing.T) {
	calls := 0
	o := NewWithLogger(func() { calls++ }, zerolog.Nop())
	c := &manual{key: "a"}
	o.Attach(c)
	stale := c.fn

	o.Detach()
	o.Attach(&manual{key: "b"})
	stale()

	assert.Zero(t, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "detached", Detached.String())
	assert.Equal(t, "attached", Attached.String())
	assert.Equal(t, "unknown", State(9).String())
}

// manual keeps the callback so tests can fire it after cancellation
type manual struct {
	key string
	fn  func()
}

func (m *manual) Key() string          { return m.key }
func (m *manual) Folders() []tree.Node { return nil }
func (m *manual) Observe(fn func()) func() {
	m.fn = fn
	return func() {}
}
