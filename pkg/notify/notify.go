// Package notify delivers the short, transient messages a user sees while
// the engine runs: how many folders were hidden or restored, acquisition
// failures, and settings saves.
package notify

import (
	"fmt"
	"sync"
)

// Kind identifies a notice
type Kind string

const (
	KindSuppressed    Kind = "suppressed"
	KindRestored      Kind = "restored"
	KindAcquireFailed Kind = "acquire_failed"
	KindSettingsSaved Kind = "settings_saved"
	KindInvalidRules  Kind = "invalid_rules"
)

// Notice is one user-facing message
type Notice struct {
	Kind  Kind
	Count int
	Err   error
}

// String renders the notice as the user reads it
func (n Notice) String() string {
	switch n.Kind {
	case KindSuppressed:
		return fmt.Sprintf("hidden %d %s", n.Count, folders(n.Count))
	case KindRestored:
		return fmt.Sprintf("restore display %d %s", n.Count, folders(n.Count))
	case KindAcquireFailed:
		return "files list not found"
	case KindSettingsSaved:
		return "settings saved"
	case KindInvalidRules:
		if n.Count == 1 {
			return "skipped 1 invalid pattern line"
		}
		return fmt.Sprintf("skipped %d invalid pattern lines", n.Count)
	default:
		return string(n.Kind)
	}
}

func folders(n int) string {
	if n == 1 {
		return "folder"
	}
	return "folders"
}

// Notifier shows notices to the user. Implementations must not call back
// into the engine.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier
type Func func(Notice)

// Notify implements Notifier
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice
var Discard Notifier = Func(func(Notice) {})

// Multi fans a notice out to several notifiers
func Multi(ns ...Notifier) Notifier {
	return Func(func(n Notice) {
		for _, x := range ns {
			if x != nil {
				x.Notify(n)
			}
		}
	})
}

// Recorder keeps every notice; safe for concurrent use
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Of returns the recorded notices of one kind
func (r *Recorder) Of(kind Kind) []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Reset forgets every recorded notice
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
