// Package timer tracks deferred callbacks by owner key so they can be
// cancelled deterministically. At most one timer is armed per key: arming a
// key always replaces whatever was armed under it before, so a stale callback
// can never fire for state that has already moved on.
package timer

import (
	"sync"
	"time"
)

type Registry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		timers: make(map[string]*time.Timer),
	}
}

// Arm schedules fn to run after d, replacing any timer currently armed under
// key. fn runs on its own goroutine without the registry lock held.
func (r *Registry) Arm(key string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.timers[key]; ok {
		old.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		r.mu.Lock()
		cur, ok := r.timers[key]
		if !ok || cur != t {
			// Replaced or cancelled after firing; drop silently.
			r.mu.Unlock()
			return
		}
		delete(r.timers, key)
		r.mu.Unlock()

		fn()
	})
	r.timers[key] = t
}

// Cancel stops and forgets the timer armed under key, if any. Returns whether
// a timer was armed.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.timers, key)
	return true
}

// Stop cancels every armed timer.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}

// Len reports the number of currently armed timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
