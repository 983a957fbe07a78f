package fstree_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/arthur-debert/hidefolder/pkg/tree/fstree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0755))
	}
}

func paths(nodes []tree.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		p, _ := n.Path()
		out = append(out, p)
	}
	return out
}

func newHost(t *testing.T, root string, opts fstree.Options) *fstree.Host {
	t.Helper()
	h, err := fstree.NewHost(root, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewHostErrors(t *testing.T) {
	_, err := fstree.NewHost(filepath.Join(t.TempDir(), "missing"), fstree.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = fstree.NewHost(file, fstree.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "notes/daily", "archive", ".git/objects", "node_modules/x")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "a.md"), nil, 0644))

	h := newHost(t, root, fstree.Options{Ignore: []string{".git", "node_modules"}})
	c, ok := h.Container(".nav-files-container")
	require.True(t, ok)

	nodes := c.Folders()
	assert.Equal(t, []string{"/", "archive", "notes", "notes/daily"}, paths(nodes))
	assert.True(t, nodes[0].IsRoot())
	assert.False(t, nodes[1].IsRoot())
}

func TestContainerIdentity(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vault")
	mkdirs(t, root, "a")

	h := newHost(t, root, fstree.Options{})
	first, ok := h.Container("")
	require.True(t, ok)
	again, ok := h.Container("")
	require.True(t, ok)
	assert.True(t, tree.Same(first, again), "same directory, same container")

	require.NoError(t, os.RemoveAll(root))
	_, ok = h.Container("")
	assert.False(t, ok, "no container while the root is missing")

	mkdirs(t, root, "b")
	replaced, ok := h.Container("")
	require.True(t, ok)
	assert.False(t, tree.Same(first, replaced), "recreated root is a new container")
}

func TestMarkers(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "keep", "drop")

	h := newHost(t, root, fstree.Options{})
	tc, _ := h.Container("")
	c := tc.(*fstree.Container)

	for _, n := range c.Folders() {
		if p, _ := n.Path(); p == "drop" {
			n.SetSuppressed(true)
			n.SetSuppressed(true)
		}
	}
	assert.Equal(t, []string{"drop"}, c.Marked())

	// Markers are keyed by path and survive a fresh listing
	for _, n := range c.Folders() {
		p, _ := n.Path()
		assert.Equal(t, p == "drop", n.Suppressed(), p)
	}

	// Markers of removed directories are pruned on the next listing
	require.NoError(t, os.Remove(filepath.Join(root, "drop")))
	c.Folders()
	assert.Empty(t, c.Marked())

	// The files themselves are untouched
	_, err := os.Stat(filepath.Join(root, "keep"))
	assert.NoError(t, err)
}

func TestObserve(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "notes")

	h := newHost(t, root, fstree.Options{Debounce: 20 * time.Millisecond})
	c, _ := h.Container("")

	var calls atomic.Int32
	cancel := c.Observe(func() { calls.Add(1) })
	defer cancel()

	mkdirs(t, root, "notes/new")
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	// A directory created after the watch started is itself watched
	before := calls.Load()
	mkdirs(t, root, "notes/new/deeper")
	require.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestObserveDebounce(t *testing.T) {
	root := t.TempDir()
	h := newHost(t, root, fstree.Options{Debounce: 200 * time.Millisecond})
	c, _ := h.Container("")

	var calls atomic.Int32
	cancel := c.Observe(func() { calls.Add(1) })
	defer cancel()

	for _, name := range []string{"a", "b", "c", "d"} {
		mkdirs(t, root, name)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst is one batch")
}

func TestObserveCancel(t *testing.T) {
	root := t.TempDir()
	h := newHost(t, root, fstree.Options{Debounce: 10 * time.Millisecond})
	c, _ := h.Container("")

	var calls atomic.Int32
	cancel := c.Observe(func() { calls.Add(1) })
	cancel()
	cancel()

	mkdirs(t, root, "after")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestObserveIgnored(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git")
	h := newHost(t, root, fstree.Options{Debounce: 10 * time.Millisecond, Ignore: []string{".git"}})
	c, _ := h.Container("")

	var calls atomic.Int32
	cancel := c.Observe(func() { calls.Add(1) })
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestOnLayoutChange(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vault")
	mkdirs(t, root)

	h := newHost(t, root, fstree.Options{})
	var calls atomic.Int32
	cancel := h.OnLayoutChange(func() { calls.Add(1) })
	require.NoError(t, h.LayoutErr())

	// Unrelated siblings are not layout changes
	mkdirs(t, parent, "other")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.Rename(root, filepath.Join(parent, "moved")))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	n := calls.Load()
	mkdirs(t, root)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, calls.Load(), "no calls after cancel")
}
