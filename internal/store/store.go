// Package store holds the authoritative-until-confirmed view of domain
// records and supports speculative edits with rollback. All operations are
// synchronous and local; failure always means a precondition violation and
// leaves the store unchanged and usable.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"dappstate/internal/metrics"
)

// Action is a speculative edit kind understood by the status derivation.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

const DefaultRequiredApprovals = 2

type Store struct {
	mu        sync.RWMutex
	records   map[string]*Record
	snapshots map[string]*Record
	threshold int
	callbacks []ChangeCallback
}

func New(requiredApprovals int) *Store {
	if requiredApprovals <= 0 {
		requiredApprovals = DefaultRequiredApprovals
	}
	return &Store{
		records:   make(map[string]*Record),
		snapshots: make(map[string]*Record),
		threshold: requiredApprovals,
	}
}

// OnChange registers a callback invoked synchronously after every successful
// mutation. Callbacks run outside the store lock and receive copies; they may
// read the store but must not rely on it being unchanged since the event.
func (s *Store) OnChange(cb ChangeCallback) {
	s.mu.Lock()
	s.callbacks = append(s.callbacks, cb)
	s.mu.Unlock()
}

// Initialize bulk-loads records, replacing all state and discarding any
// outstanding snapshots. Used once per session, or again on a full refresh.
func (s *Store) Initialize(records []Record) {
	s.mu.Lock()
	s.records = make(map[string]*Record, len(records))
	s.snapshots = make(map[string]*Record)
	for _, r := range records {
		rec := r.clone()
		if rec.LastUpdated.IsZero() {
			rec.LastUpdated = time.Now()
		}
		s.records[rec.Key] = &rec
	}
	metrics.StoreOperationsTotal.WithLabelValues("initialize").Inc()
	metrics.StoreRecords.Set(float64(len(s.records)))
	metrics.StoreSnapshotsOutstanding.Set(0)
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeInitialize})
}

// Create adds a single record. Fails with ErrKeyExists if the key is taken.
func (s *Store) Create(r Record) error {
	s.mu.Lock()
	if _, ok := s.records[r.Key]; ok {
		metrics.StoreOperationErrors.WithLabelValues("create").Inc()
		s.mu.Unlock()
		return fmt.Errorf("create %q: %w", r.Key, ErrKeyExists)
	}
	rec := r.clone()
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	s.records[rec.Key] = &rec
	metrics.StoreOperationsTotal.WithLabelValues("create").Inc()
	metrics.StoreRecords.Set(float64(len(s.records)))
	ev := ChangeEvent{Kind: ChangeCreate, Key: rec.Key, Record: rec.clone()}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Update merges partial fields into an existing record and stamps
// LastUpdated. Fails with ErrKeyNotFound if the key is absent.
func (s *Store) Update(key string, partial map[string]any) error {
	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		metrics.StoreOperationErrors.WithLabelValues("update").Inc()
		s.mu.Unlock()
		return fmt.Errorf("update %q: %w", key, ErrKeyNotFound)
	}
	s.merge(rec, partial)
	metrics.StoreOperationsTotal.WithLabelValues("update").Inc()
	ev := ChangeEvent{Kind: ChangeUpdate, Key: key, Record: rec.clone()}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// ApplyOptimistic derives a speculative state from the current record and the
// action, saves a snapshot of the pre-edit record and applies the derived
// fields. A second speculative edit on a key whose first edit is unresolved
// is rejected with ErrOptimisticPending; the original snapshot is kept.
func (s *Store) ApplyOptimistic(key string, action Action) error {
	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		metrics.StoreOperationErrors.WithLabelValues("optimistic").Inc()
		s.mu.Unlock()
		return fmt.Errorf("optimistic %q: %w", key, ErrKeyNotFound)
	}
	if _, held := s.snapshots[key]; held {
		metrics.StoreOperationErrors.WithLabelValues("optimistic").Inc()
		s.mu.Unlock()
		return fmt.Errorf("optimistic %q: %w", key, ErrOptimisticPending)
	}

	derived, err := deriveFields(rec, action, s.threshold)
	if err != nil {
		metrics.StoreOperationErrors.WithLabelValues("optimistic").Inc()
		s.mu.Unlock()
		return fmt.Errorf("optimistic %q: %w", key, err)
	}

	snap := rec.clone()
	s.snapshots[key] = &snap

	s.merge(rec, derived)
	rec.Optimistic = true

	metrics.StoreOperationsTotal.WithLabelValues("optimistic").Inc()
	metrics.StoreSnapshotsOutstanding.Set(float64(len(s.snapshots)))
	ev := ChangeEvent{Kind: ChangeOptimistic, Key: key, Record: rec.clone()}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Rollback restores the record to exactly its pre-edit snapshot and discards
// the snapshot. Fails with ErrNoSnapshot if no speculative edit is pending.
func (s *Store) Rollback(key string) error {
	s.mu.Lock()
	snap, ok := s.snapshots[key]
	if !ok {
		metrics.StoreOperationErrors.WithLabelValues("rollback").Inc()
		s.mu.Unlock()
		return fmt.Errorf("rollback %q: %w", key, ErrNoSnapshot)
	}
	restored := snap.clone()
	s.records[key] = &restored
	delete(s.snapshots, key)

	metrics.StoreOperationsTotal.WithLabelValues("rollback").Inc()
	metrics.StoreRollbacksTotal.Inc()
	metrics.StoreSnapshotsOutstanding.Set(float64(len(s.snapshots)))
	ev := ChangeEvent{Kind: ChangeRollback, Key: key, Record: restored.clone()}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Confirm merges authoritative fields from the resolved transaction or query,
// clears the optimistic mark and drops any outstanding snapshot, whether or
// not a speculative edit preceded it.
func (s *Store) Confirm(key string, fields map[string]any) error {
	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		metrics.StoreOperationErrors.WithLabelValues("confirm").Inc()
		s.mu.Unlock()
		return fmt.Errorf("confirm %q: %w", key, ErrKeyNotFound)
	}
	s.merge(rec, fields)
	rec.Optimistic = false
	delete(s.snapshots, key)

	metrics.StoreOperationsTotal.WithLabelValues("confirm").Inc()
	metrics.StoreSnapshotsOutstanding.Set(float64(len(s.snapshots)))
	ev := ChangeEvent{Kind: ChangeConfirm, Key: key, Record: rec.clone()}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Get returns a copy of the record under key.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// All returns copies of every record, ordered by key.
func (s *Store) All() []Record {
	return s.Filtered(func(Record) bool { return true })
}

// Filtered returns copies of the records matching pred, ordered by key.
func (s *Store) Filtered(pred func(Record) bool) []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		c := rec.clone()
		if pred(c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// merge copies partial field values into rec and stamps LastUpdated.
// Callers hold the write lock.
func (s *Store) merge(rec *Record, partial map[string]any) {
	if rec.Fields == nil {
		rec.Fields = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		rec.Fields[k] = copyValue(v)
	}
	rec.LastUpdated = time.Now()
}

func (s *Store) notify(ev ChangeEvent) {
	s.mu.RLock()
	cbs := make([]ChangeCallback, len(s.callbacks))
	copy(cbs, s.callbacks)
	s.mu.RUnlock()

	for _, cb := range cbs {
		cb(ev)
	}
}
