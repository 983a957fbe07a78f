// Package memtree is an in-memory, DOM-like host for the visibility engine.
//
// Elements carry a tag, an ordered class list and attributes. Every change to
// an element is recorded as a mutation and queued for the observers whose
// target contains the element. Records are not delivered while the change is
// being made: Flush hands each observer its pending batch, the way a browser
// delivers MutationObserver records after the current task. Callbacks may
// mutate the document again; those records are delivered by the next Flush.
//
// Settle flushes until no records are pending, which lets tests assert that
// a self-triggering observer reaches a fixed point.
//
// Documents can be loaded from and written to XML snapshots with Parse and
// WriteXML.
package memtree
