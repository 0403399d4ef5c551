// Package notify manages the presentation lifecycle of transient UI messages,
// decoupled from the caller's async timing. The queue owns the id-keyed
// entries and their timers; rendering is left to whatever subscribes to the
// queue's events.
package notify

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dappstate/internal/metrics"
	"dappstate/internal/timer"
)

// Defaults seed the preset helpers.
type Defaults struct {
	// Timeout is the auto-dismiss interval for success notices.
	Timeout time.Duration
	// LoadingDelay defers loading notices so fast operations never flicker.
	LoadingDelay time.Duration
}

type Queue struct {
	mu        sync.Mutex
	entries   map[string]*Entry
	order     map[Lane][]string
	timers    *timer.Registry
	defaults  Defaults
	callbacks []EventCallback

	nextID atomic.Uint64
}

func NewQueue(defaults Defaults) *Queue {
	if defaults.Timeout <= 0 {
		defaults.Timeout = 2500 * time.Millisecond
	}
	if defaults.LoadingDelay <= 0 {
		defaults.LoadingDelay = 200 * time.Millisecond
	}
	return &Queue{
		entries: make(map[string]*Entry),
		order: map[Lane][]string{
			LaneEphemeral: nil,
			LaneForm:      nil,
		},
		timers:   timer.NewRegistry(),
		defaults: defaults,
	}
}

// OnChange registers a callback invoked synchronously after every lifecycle
// transition, outside the queue lock.
func (q *Queue) OnChange(cb EventCallback) {
	q.mu.Lock()
	q.callbacks = append(q.callbacks, cb)
	q.mu.Unlock()
}

// Show creates a notification, or updates the existing one when cfg.ID
// matches a live entry. With a positive Delay the entry stays pending until
// the delay elapses; dismissing or replacing it first means it is never
// shown. Returns the entry id, generated when the caller supplies none.
func (q *Queue) Show(cfg Config) string {
	id := cfg.ID
	if id == "" {
		id = fmt.Sprintf("n-%d", q.nextID.Add(1))
	}
	if cfg.Lane == "" {
		cfg.Lane = LaneEphemeral
	}

	q.mu.Lock()
	if _, ok := q.entries[id]; ok {
		ev := q.applyPatch(id, patchOf(cfg))
		q.mu.Unlock()
		q.emit(ev)
		return id
	}

	e := &Entry{
		ID:          id,
		Title:       cfg.Title,
		Message:     cfg.Message,
		Kind:        cfg.Kind,
		Lane:        cfg.Lane,
		Timeout:     cfg.Timeout,
		Delay:       cfg.Delay,
		Dismissible: cfg.Dismissible,
		CreatedAt:   time.Now(),
	}
	q.entries[id] = e
	metrics.NotifyLive.Set(float64(len(q.entries)))

	if cfg.Delay > 0 {
		e.Status = Pending
		q.timers.Arm(id, cfg.Delay, func() { q.reveal(id) })
		q.mu.Unlock()
		return id
	}

	ev := q.makeVisible(e)
	q.mu.Unlock()
	q.emit(ev)
	return id
}

// Update patches a pending or visible entry in place without changing its
// identity. A non-nil Timeout cancels the outstanding auto-dismiss timer and
// arms a fresh one (or none, when the new timeout is zero).
func (q *Queue) Update(id string, p Patch) error {
	q.mu.Lock()
	if _, ok := q.entries[id]; !ok {
		q.mu.Unlock()
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	ev := q.applyPatch(id, p)
	q.mu.Unlock()

	q.emit(ev)
	return nil
}

// Dismiss cancels the entry's timers and removes it. Unknown or already
// dismissed ids are a no-op failure; the queue is left unchanged.
func (q *Queue) Dismiss(id string) error {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("dismiss %q: %w", id, ErrNotFound)
	}

	q.timers.Cancel(id)

	var ev Event
	if e.Status == Pending {
		e.Status = Cancelled
		metrics.NotifyCancelledTotal.Inc()
		ev = Event{Kind: EventCancelled, Entry: *e}
	} else {
		e.Status = Dismissed
		q.removeFromLane(e)
		metrics.NotifyDismissedTotal.WithLabelValues(string(e.Lane), string(e.Kind)).Inc()
		ev = Event{Kind: EventDismissed, Entry: *e}
	}
	delete(q.entries, id)
	metrics.NotifyLive.Set(float64(len(q.entries)))
	q.mu.Unlock()

	q.emit(ev)
	return nil
}

// Loading shows a loading notice with the default display delay and no
// auto-dismiss; the caller updates or dismisses it once the operation
// settles.
func (q *Queue) Loading(id, message string) string {
	return q.Show(Config{
		ID:      id,
		Message: message,
		Kind:    KindLoading,
		Lane:    LaneEphemeral,
		Delay:   q.defaults.LoadingDelay,
	})
}

// Success shows an auto-dismissing success notice.
func (q *Queue) Success(id, message string) string {
	return q.Show(Config{
		ID:          id,
		Message:     message,
		Kind:        KindSuccess,
		Lane:        LaneEphemeral,
		Timeout:     q.defaults.Timeout,
		Dismissible: true,
	})
}

// Error shows a sticky error notice that stays until explicitly dismissed.
func (q *Queue) Error(id, message string) string {
	return q.Show(Config{
		ID:          id,
		Message:     message,
		Kind:        KindError,
		Lane:        LaneEphemeral,
		Dismissible: true,
	})
}

// Visible returns copies of the lane's visible entries in display order:
// most-recent-first for the ephemeral lane, chronological for the form lane.
func (q *Queue) Visible(lane Lane) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := q.order[lane]
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := q.entries[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// Len reports pending plus visible entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close cancels every outstanding timer. Entries are left as-is; the queue
// must not be used afterwards.
func (q *Queue) Close() {
	q.timers.Stop()
}

// reveal flips a pending entry to visible once its delay elapses. Runs on the
// timer goroutine; entries dismissed in the meantime are gone from the map
// and stay invisible forever.
func (q *Queue) reveal(id string) {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok || e.Status != Pending {
		q.mu.Unlock()
		return
	}
	ev := q.makeVisible(e)
	q.mu.Unlock()

	q.emit(ev)
}

// makeVisible inserts the entry into its lane and arms the auto-dismiss
// timer. Callers hold the lock.
func (q *Queue) makeVisible(e *Entry) Event {
	e.Status = Visible
	if e.Lane == LaneEphemeral {
		q.order[e.Lane] = append([]string{e.ID}, q.order[e.Lane]...)
	} else {
		q.order[e.Lane] = append(q.order[e.Lane], e.ID)
	}
	if e.Timeout > 0 {
		id := e.ID
		q.timers.Arm(id, e.Timeout, func() { q.expire(id) })
	}
	metrics.NotifyShownTotal.WithLabelValues(string(e.Lane), string(e.Kind)).Inc()
	return Event{Kind: EventShown, Entry: *e}
}

// applyPatch mutates an existing entry. Callers hold the lock and have
// checked existence.
func (q *Queue) applyPatch(id string, p Patch) Event {
	e := q.entries[id]
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Message != nil {
		e.Message = *p.Message
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Dismissible != nil {
		e.Dismissible = *p.Dismissible
	}
	if p.Timeout != nil {
		e.Timeout = *p.Timeout
		if e.Status == Visible {
			// Never leave two timers racing for one entry.
			q.timers.Cancel(id)
			if e.Timeout > 0 {
				q.timers.Arm(id, e.Timeout, func() { q.expire(id) })
			}
		}
	}
	return Event{Kind: EventUpdated, Entry: *e}
}

// expire removes a visible entry whose auto-dismiss timeout elapsed.
func (q *Queue) expire(id string) {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok || e.Status != Visible {
		q.mu.Unlock()
		return
	}
	e.Status = Dismissed
	q.removeFromLane(e)
	delete(q.entries, id)
	metrics.NotifyDismissedTotal.WithLabelValues(string(e.Lane), string(e.Kind)).Inc()
	metrics.NotifyLive.Set(float64(len(q.entries)))
	ev := Event{Kind: EventDismissed, Entry: *e}
	q.mu.Unlock()

	q.emit(ev)
}

func (q *Queue) removeFromLane(e *Entry) {
	ids := q.order[e.Lane]
	for i, id := range ids {
		if id == e.ID {
			q.order[e.Lane] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func (q *Queue) emit(ev Event) {
	q.mu.Lock()
	cbs := make([]EventCallback, len(q.callbacks))
	copy(cbs, q.callbacks)
	q.mu.Unlock()

	for _, cb := range cbs {
		cb(ev)
	}
}
