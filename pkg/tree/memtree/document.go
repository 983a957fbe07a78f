package memtree

import (
	"fmt"
	"sync"
)

// MutationKind tells what changed
type MutationKind int

const (
	// ChildList records a child added to or removed from Target
	ChildList MutationKind = iota
	// Attributes records an attribute or class change on Target
	Attributes
)

// Record is one queued mutation
type Record struct {
	Kind   MutationKind
	Target *Element
	Attr   string
}

type registration struct {
	id      int
	target  *Element
	fn      func([]Record)
	pending []Record
	active  bool
}

// Document owns a tree of elements and its observers
type Document struct {
	mu   sync.Mutex
	body *Element

	regs    []*registration
	nextReg int

	layoutSubs map[int]func()
	nextLayout int
}

// NewDocument creates a document with an empty body element
func NewDocument() *Document {
	d := &Document{layoutSubs: make(map[int]func())}
	d.body = newElement(d, "body")
	return d
}

// Body returns the top element of the document
func (d *Document) Body() *Element { return d.body }

// CreateElement creates a detached element
func (d *Document) CreateElement(tag string, classes ...string) *Element {
	return newElement(d, tag, classes...)
}

// Query returns the first element under the body matching the selector
func (d *Document) Query(selector string) *Element {
	return d.body.Query(selector)
}

// Observe queues a record for fn whenever an element under target changes.
// The returned function cancels the registration; pending records are dropped.
func (d *Document) Observe(target *Element, fn func([]Record)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextReg++
	reg := &registration{id: d.nextReg, target: target, fn: fn, active: true}
	d.regs = append(d.regs, reg)

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		reg.active = false
		reg.pending = nil
		for i, r := range d.regs {
			if r == reg {
				d.regs = append(d.regs[:i], d.regs[i+1:]...)
				break
			}
		}
	}
}

// Observers returns the number of active registrations
func (d *Document) Observers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.regs)
}

// record is called with the lock held
func (d *Document) record(r Record) {
	for _, reg := range d.regs {
		if reg.active && contains(reg.target, r.Target) {
			reg.pending = append(reg.pending, r)
		}
	}
}

// Pending reports whether any observer has undelivered records
func (d *Document) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, reg := range d.regs {
		if len(reg.pending) > 0 {
			return true
		}
	}
	return false
}

type batch struct {
	reg     *registration
	records []Record
}

// Flush delivers every pending batch, one callback per observer, and returns
// the number of batches delivered. Records produced by the callbacks stay
// queued for the next Flush.
func (d *Document) Flush() int {
	d.mu.Lock()
	var batches []batch
	for _, reg := range d.regs {
		if reg.active && len(reg.pending) > 0 {
			batches = append(batches, batch{reg: reg, records: reg.pending})
			reg.pending = nil
		}
	}
	d.mu.Unlock()

	delivered := 0
	for _, b := range batches {
		d.mu.Lock()
		active := b.reg.active
		d.mu.Unlock()
		if !active {
			continue
		}
		b.reg.fn(b.records)
		delivered++
	}
	return delivered
}

// Settle flushes until nothing is pending and returns the number of rounds
// that delivered at least one batch. It fails when records are still pending
// after maxRounds rounds.
func (d *Document) Settle(maxRounds int) (int, error) {
	rounds := 0
	for {
		if d.Flush() == 0 {
			return rounds, nil
		}
		rounds++
		if rounds >= maxRounds && d.Pending() {
			return rounds, fmt.Errorf("mutations still pending after %d rounds", rounds)
		}
	}
}

// OnLayoutChange registers fn for TriggerLayoutChange
func (d *Document) OnLayoutChange(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextLayout++
	id := d.nextLayout
	d.layoutSubs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.layoutSubs, id)
	}
}

// TriggerLayoutChange runs every layout subscriber
func (d *Document) TriggerLayoutChange() {
	d.mu.Lock()
	subs := make([]func(), 0, len(d.layoutSubs))
	for _, fn := range d.layoutSubs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
