// Package observer watches one host container at a time and reports each
// batch of changes under it.
//
// The observer is a two-state machine:
//
//	Detached ──Attach(c)──▶ Attached(c) ──Detach()──▶ Detached
//	                           │
//	                           └─Attach(c')──▶ Attached(c')   (old watch cancelled first)
//
// Changes caused by the engine's own marker writes are reported like any
// other change. The handler is expected to be idempotent so that the extra
// pass they trigger is a no-op.
package observer

import (
	"sync"

	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/rs/zerolog"
)

// State of the observer
type State int

const (
	Detached State = iota
	Attached
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	default:
		return "unknown"
	}
}

// Observer forwards container changes to a handler
type Observer struct {
	mu        sync.Mutex
	onChange  func()
	container tree.Container
	cancel    func()
	gen       uint64
	logger    zerolog.Logger
}

// New creates a detached observer calling onChange once per change batch
func New(onChange func()) *Observer {
	return NewWithLogger(onChange, logging.GetLogger("observer"))
}

// NewWithLogger is New with an explicit logger
func NewWithLogger(onChange func(), logger zerolog.Logger) *Observer {
	return &Observer{onChange: onChange, logger: logger}
}

// Attach starts watching c. A different container being watched is released
// first; attaching to the container already watched does nothing.
func (o *Observer) Attach(c tree.Container) {
	if c == nil {
		o.Detach()
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.container != nil && tree.Same(o.container, c) {
		return
	}
	o.detachLocked()

	o.gen++
	gen := o.gen
	o.container = c
	o.cancel = c.Observe(func() { o.deliver(gen) })

	o.logger.Debug().
		Str("container", c.Key()).
		Uint64("generation", gen).
		Msg("Observer attached")
}

// Detach stops watching; further changes are not reported
func (o *Observer) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detachLocked()
}

func (o *Observer) detachLocked() {
	if o.container == nil {
		return
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.logger.Debug().
		Str("container", o.container.Key()).
		Uint64("generation", o.gen).
		Msg("Observer detached")
	o.container = nil
	o.cancel = nil
	o.gen++
}

// deliver drops callbacks from a subscription that has since been replaced
func (o *Observer) deliver(gen uint64) {
	o.mu.Lock()
	current := o.container != nil && o.gen == gen
	o.mu.Unlock()

	if !current {
		o.logger.Trace().Uint64("generation", gen).Msg("Dropped stale change batch")
		return
	}
	o.onChange()
}

// State returns the current state
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.container == nil {
		return Detached
	}
	return Attached
}

// Current returns the watched container, nil when detached
func (o *Observer) Current() tree.Container {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.container
}
