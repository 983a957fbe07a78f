// Package fstree exposes a directory on disk through the host tree
// contract. Every directory under the root is a folder node, named by its
// slash-separated path relative to the root; the root itself is the root
// node with path "/".
//
// Suppression markers live in memory, one set per container, so the engine
// never touches the files it classifies. Changes under the root are
// reported through fsnotify, coalesced over a debounce window. Replacing or
// removing the root directory is the layout change: the next Container call
// returns a container with a new key.
package fstree

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RootPath is the path reported by the root node
const RootPath = "/"

// Options tunes a Host
type Options struct {
	// Debounce coalesces bursts of filesystem events into one batch
	Debounce time.Duration
	// Ignore lists directory name globs that are neither listed nor watched
	Ignore []string
	// Logger defaults to the "fstree" component logger
	Logger *zerolog.Logger
}

// Host serves one root directory
type Host struct {
	root   string
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	current *Container
	closed  bool

	layoutOnce sync.Once
	layoutW    *fsnotify.Watcher
	layoutErr  error
	subsMu     sync.Mutex
	subs       map[int]func()
	nextSub    int
}

var _ tree.Host = (*Host)(nil)

// NewHost creates a host for root, which must be an existing directory
func NewHost(root string, opts Options) (*Host, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "tree root %s", abs).WithDetail("path", abs)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "tree root %s is not a directory", abs).WithDetail("path", abs)
	}

	logger := logging.GetLogger("fstree")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Host{
		root:   abs,
		opts:   opts,
		logger: logger,
		subs:   make(map[int]func()),
	}, nil
}

// Root returns the absolute root directory
func (h *Host) Root() string { return h.root }

// Container implements tree.Host. The selector is not used: the root
// directory is the only container. A container is reused for as long as the
// root directory is the same directory on disk and has not been seen
// missing.
func (h *Host) Container(string) (tree.Container, bool) {
	info, err := os.Stat(h.root)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil || !info.IsDir() {
		// Forget the old container so a recreated root never reuses it,
		// even if the filesystem hands out the same inode
		h.current = nil
		return nil, false
	}
	if h.closed {
		return nil, false
	}
	if h.current != nil && os.SameFile(h.current.info, info) {
		return h.current, true
	}

	h.current = newContainer(h, info)
	h.logger.Debug().Str("root", h.root).Str("container", h.current.key).Msg("New container")
	return h.current, true
}

// OnLayoutChange implements tree.Host. fn runs when the root directory is
// created, removed, or renamed.
func (h *Host) OnLayoutChange(fn func()) (cancel func()) {
	h.layoutOnce.Do(h.startLayoutWatch)

	h.subsMu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.subsMu.Unlock()

	return func() {
		h.subsMu.Lock()
		delete(h.subs, id)
		h.subsMu.Unlock()
	}
}

// LayoutErr reports why the layout watch could not start, if it failed
func (h *Host) LayoutErr() error {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	return h.layoutErr
}

func (h *Host) startLayoutWatch() {
	w, err := fsnotify.NewWatcher()
	if err == nil {
		err = w.Add(filepath.Dir(h.root))
		if err != nil {
			_ = w.Close()
		}
	}
	if err != nil {
		h.subsMu.Lock()
		h.layoutErr = errors.Wrapf(err, errors.ErrHostWatch, "failed to watch %s", filepath.Dir(h.root))
		h.subsMu.Unlock()
		h.logger.Warn().Err(err).Str("root", h.root).Msg("Layout changes will not be reported")
		return
	}

	h.mu.Lock()
	h.layoutW = w
	h.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != h.root {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				h.logger.Debug().Str("op", ev.Op.String()).Msg("Layout changed")
				h.notifyLayout()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				h.logger.Warn().Err(err).Msg("Layout watch error")
			}
		}
	}()
}

func (h *Host) notifyLayout() {
	h.subsMu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close stops the layout watch. Containers already handed out keep working
// until their observers are cancelled.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.layoutW != nil {
		err := h.layoutW.Close()
		h.layoutW = nil
		return err
	}
	return nil
}

func (h *Host) ignored(name string) bool {
	for _, pat := range h.opts.Ignore {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// Container is one incarnation of the root directory
type Container struct {
	host *Host
	key  string
	info os.FileInfo

	mu    sync.Mutex
	marks map[string]bool
}

var _ tree.Container = (*Container)(nil)

func newContainer(h *Host, info os.FileInfo) *Container {
	return &Container{
		host:  h,
		key:   uuid.NewString(),
		info:  info,
		marks: make(map[string]bool),
	}
}

// Key implements tree.Container
func (c *Container) Key() string { return c.key }

// Folders implements tree.Container. Directories are listed in lexical
// order; markers of directories that no longer exist are dropped.
func (c *Container) Folders() []tree.Node {
	root := c.host.root
	var nodes []tree.Node
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Vanished or unreadable below the root
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path == root {
			nodes = append(nodes, &node{c: c, rel: RootPath, root: true})
			return nil
		}
		if c.host.ignored(d.Name()) {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true
		nodes = append(nodes, &node{c: c, rel: rel})
		return nil
	})
	if err != nil {
		c.host.logger.Debug().Err(err).Str("root", root).Msg("Cannot list folders")
		return nil
	}

	c.mu.Lock()
	for rel := range c.marks {
		if !seen[rel] {
			delete(c.marks, rel)
		}
	}
	c.mu.Unlock()

	return nodes
}

// Marked returns the relative paths currently carrying the marker, sorted
func (c *Container) Marked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.marks))
	for rel := range c.marks {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Observe implements tree.Container. Every directory under the root is
// watched, new ones as they appear.
func (c *Container) Observe(fn func()) (cancel func()) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		c.host.logger.Warn().Err(err).Msg("Cannot create watcher; changes will not be reported")
		return func() {}
	}

	s := &subscription{fn: fn, debounce: c.host.opts.Debounce, done: make(chan struct{})}
	c.addRecursive(w, c.host.root)

	go func() {
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != c.host.root && c.host.ignored(filepath.Base(ev.Name)) {
					continue
				}
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						c.addRecursive(w, ev.Name)
					}
				}
				s.trigger()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.host.logger.Warn().Err(err).Str("container", c.key).Msg("Watch error")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.stop()
			_ = w.Close()
		})
	}
}

func (c *Container) addRecursive(w *fsnotify.Watcher, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != c.host.root && c.host.ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			c.host.logger.Debug().Err(err).Str("dir", path).Msg("Cannot watch directory")
		}
		return nil
	})
}

func (c *Container) marked(rel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks[rel]
}

func (c *Container) setMarked(rel string, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v {
		c.marks[rel] = true
	} else {
		delete(c.marks, rel)
	}
}

// subscription coalesces events into debounced calls of fn
type subscription struct {
	fn       func()
	debounce time.Duration
	done     chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func (s *subscription) trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *subscription) fire() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if !stopped {
		s.fn()
	}
}

// stop never waits for a fire already running
func (s *subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
}

// node is one directory
type node struct {
	c    *Container
	rel  string
	root bool
}

func (n *node) IsRoot() bool { return n.root }

func (n *node) Path() (string, bool) { return n.rel, n.rel != "" }

func (n *node) Suppressed() bool { return n.c.marked(n.rel) }

func (n *node) SetSuppressed(v bool) { n.c.setMarked(n.rel, v) }
