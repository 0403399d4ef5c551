package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dappstate/internal/store"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu      sync.Mutex
	records []store.Record
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]store.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeFetcher) set(records []store.Record) {
	f.mu.Lock()
	f.records = records
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPoller_SeedsColdStore(t *testing.T) {
	s := store.New(2)
	f := &fakeFetcher{records: []store.Record{
		{Key: "p1", Fields: map[string]any{"approvals": 1}},
		{Key: "p2", Fields: map[string]any{"approvals": 0}},
	}}

	p := NewPoller(f, s, 10*time.Millisecond)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return s.Len() == 2 })
}

func TestPoller_ConfirmsKnownAndCreatesUnknown(t *testing.T) {
	s := store.New(2)
	s.Initialize([]store.Record{
		{Key: "p1", Fields: map[string]any{"approvals": 1, "status": "pending"}},
	})
	require := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	require(s.ApplyOptimistic("p1", store.ActionApprove))

	f := &fakeFetcher{records: []store.Record{
		{Key: "p1", Fields: map[string]any{"approvals": 2, "status": "ready"}},
		{Key: "p3", Fields: map[string]any{"approvals": 0}},
	}}

	p := NewPoller(f, s, 10*time.Millisecond)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return s.Len() == 2 })
	waitFor(t, func() bool {
		rec, ok := s.Get("p1")
		return ok && !rec.Optimistic && rec.Fields["status"] == "ready"
	})

	// The authoritative refresh resolved the speculative edit.
	if err := s.Rollback("p1"); !errors.Is(err, store.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot after confirm, got %v", err)
	}
}

func TestPoller_FetchErrorsAreNotFatal(t *testing.T) {
	s := store.New(2)
	f := &fakeFetcher{err: errors.New("rpc down")}

	p := NewPoller(f, s, 5*time.Millisecond)
	p.Start(context.Background())

	waitFor(t, func() bool { return f.callCount() >= 3 })
	p.Stop()

	if s.Len() != 0 {
		t.Fatalf("len = %d, want 0", s.Len())
	}

	// The loop kept running and later data lands.
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	f.set([]store.Record{{Key: "p1", Fields: map[string]any{"approvals": 0}}})

	p2 := NewPoller(f, s, 5*time.Millisecond)
	p2.Start(context.Background())
	defer p2.Stop()

	waitFor(t, func() bool { return s.Len() == 1 })
}

func TestPoller_StopHaltsLoop(t *testing.T) {
	s := store.New(2)
	f := &fakeFetcher{}

	p := NewPoller(f, s, 5*time.Millisecond)
	p.Start(context.Background())

	waitFor(t, func() bool { return f.callCount() >= 1 })
	p.Stop()

	n := f.callCount()
	time.Sleep(30 * time.Millisecond)
	if f.callCount() != n {
		t.Fatal("poller kept fetching after Stop")
	}
}

func TestPoller_ContextCancelHaltsLoop(t *testing.T) {
	s := store.New(2)
	f := &fakeFetcher{}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(f, s, 5*time.Millisecond)
	p.Start(ctx)

	waitFor(t, func() bool { return f.callCount() >= 1 })
	cancel()

	time.Sleep(20 * time.Millisecond)
	n := f.callCount()
	time.Sleep(30 * time.Millisecond)
	if f.callCount() != n {
		t.Fatal("poller kept fetching after context cancel")
	}
	p.Stop()
}
