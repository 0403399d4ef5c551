package store

import (
	"errors"
	"reflect"
	"testing"
)

func seeded(t *testing.T, threshold int) *Store {
	t.Helper()

	s := New(threshold)
	s.Initialize([]Record{
		{Key: "p1", Fields: map[string]any{FieldApprovals: 1, FieldStatus: StatusPending, "executed": false}},
		{Key: "p2", Fields: map[string]any{FieldApprovals: 0, FieldStatus: StatusPending}},
	})
	return s
}

func TestStore_UnknownKeyOperationsLeaveStateUnchanged(t *testing.T) {
	s := seeded(t, 2)
	before := s.All()

	if err := s.Update("missing", map[string]any{"x": 1}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.ApplyOptimistic("missing", ActionApprove); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Rollback("missing"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	if err := s.Confirm("missing", nil); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if after := s.All(); !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed by failed operations:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestStore_ApplyOptimisticThenRollbackRestoresExactState(t *testing.T) {
	s := seeded(t, 2)

	before, _ := s.Get("p1")

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}

	mid, _ := s.Get("p1")
	if !mid.Optimistic {
		t.Fatal("record not marked optimistic")
	}

	if err := s.Rollback("p1"); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	after, _ := s.Get("p1")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback did not restore pre-edit state:\nbefore %+v\nafter  %+v", before, after)
	}

	// The snapshot is gone; a second rollback fails.
	if err := s.Rollback("p1"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestStore_ApproveDerivation(t *testing.T) {
	s := seeded(t, 2)

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}

	rec, _ := s.Get("p1")
	if got := rec.Fields[FieldApprovals]; got != 2 {
		t.Fatalf("approvals = %v, want 2", got)
	}
	if got := rec.Fields[FieldStatus]; got != StatusReady {
		t.Fatalf("status = %v, want %q", got, StatusReady)
	}
}

func TestStore_ApproveBelowThresholdStaysPending(t *testing.T) {
	s := seeded(t, 2)

	if err := s.ApplyOptimistic("p2", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}

	rec, _ := s.Get("p2")
	if got := rec.Fields[FieldApprovals]; got != 1 {
		t.Fatalf("approvals = %v, want 1", got)
	}
	if got := rec.Fields[FieldStatus]; got != StatusPending {
		t.Fatalf("status = %v, want %q", got, StatusPending)
	}
}

func TestStore_RejectDerivation(t *testing.T) {
	s := seeded(t, 2)

	if err := s.ApplyOptimistic("p1", ActionReject); err != nil {
		t.Fatalf("optimistic: %v", err)
	}

	rec, _ := s.Get("p1")
	if got := rec.Fields[FieldStatus]; got != StatusRejected {
		t.Fatalf("status = %v, want %q", got, StatusRejected)
	}
	if got := rec.Fields[FieldApprovals]; got != 1 {
		t.Fatalf("approvals = %v, want unchanged 1", got)
	}
}

func TestStore_UnknownActionRejectedWithoutSnapshot(t *testing.T) {
	s := seeded(t, 2)
	before, _ := s.Get("p1")

	if err := s.ApplyOptimistic("p1", Action("execute")); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}

	after, _ := s.Get("p1")
	if !reflect.DeepEqual(before, after) {
		t.Fatal("rejected action mutated the record")
	}
	if err := s.Rollback("p1"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatal("rejected action left a snapshot behind")
	}
}

func TestStore_SecondSpeculativeEditRejected(t *testing.T) {
	s := seeded(t, 3)

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("first optimistic: %v", err)
	}
	if err := s.ApplyOptimistic("p1", ActionApprove); !errors.Is(err, ErrOptimisticPending) {
		t.Fatalf("expected ErrOptimisticPending, got %v", err)
	}

	// The original snapshot survives: rollback lands on the pre-first state.
	if err := s.Rollback("p1"); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	rec, _ := s.Get("p1")
	if got := rec.Fields[FieldApprovals]; got != 1 {
		t.Fatalf("approvals after rollback = %v, want 1", got)
	}
}

func TestStore_ConfirmClearsOptimisticAndSnapshot(t *testing.T) {
	s := seeded(t, 2)

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}
	if err := s.Confirm("p1", map[string]any{FieldApprovals: 2, FieldStatus: StatusReady, "executed": true}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	rec, _ := s.Get("p1")
	if rec.Optimistic {
		t.Fatal("confirm left the optimistic mark set")
	}
	if got := rec.Fields["executed"]; got != true {
		t.Fatalf("executed = %v, want true", got)
	}
	if err := s.Rollback("p1"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatal("confirm left the snapshot behind")
	}
}

func TestStore_ConfirmWithoutPriorOptimistic(t *testing.T) {
	s := seeded(t, 2)

	if err := s.Confirm("p2", map[string]any{FieldApprovals: 1}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	rec, _ := s.Get("p2")
	if rec.Optimistic {
		t.Fatal("confirm set the optimistic mark")
	}
}

func TestStore_CreateAndDuplicate(t *testing.T) {
	s := seeded(t, 2)

	if err := s.Create(Record{Key: "p3", Fields: map[string]any{FieldApprovals: 0}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if err := s.Create(Record{Key: "p3"}); !errors.Is(err, ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	s := seeded(t, 2)

	rec, _ := s.Get("p1")
	rec.Fields[FieldApprovals] = 99

	again, _ := s.Get("p1")
	if got := again.Fields[FieldApprovals]; got != 1 {
		t.Fatalf("external mutation leaked into store: approvals = %v", got)
	}

	all := s.All()
	all[0].Fields["tampered"] = true
	if rec, _ := s.Get(all[0].Key); rec.Fields["tampered"] != nil {
		t.Fatal("All() exposed internal storage")
	}
}

func TestStore_FilteredAndOrdering(t *testing.T) {
	s := seeded(t, 2)

	pending := s.Filtered(func(r Record) bool {
		return r.Fields[FieldStatus] == StatusPending
	})
	if len(pending) != 2 {
		t.Fatalf("filtered len = %d, want 2", len(pending))
	}
	if pending[0].Key != "p1" || pending[1].Key != "p2" {
		t.Fatalf("results not ordered by key: %v, %v", pending[0].Key, pending[1].Key)
	}
}

func TestStore_ObserverSeesMutations(t *testing.T) {
	s := seeded(t, 2)

	var events []ChangeEvent
	s.OnChange(func(ev ChangeEvent) { events = append(events, ev) })

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}
	if err := s.Rollback("p1"); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := s.Confirm("p1", map[string]any{FieldApprovals: 2}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	want := []ChangeKind{ChangeOptimistic, ChangeRollback, ChangeConfirm}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Fatalf("event %d = %s, want %s", i, events[i].Kind, kind)
		}
		if events[i].Key != "p1" {
			t.Fatalf("event %d key = %q", i, events[i].Key)
		}
	}

	// Failed operations emit nothing.
	n := len(events)
	_ = s.Update("missing", nil)
	if len(events) != n {
		t.Fatal("failed operation emitted an event")
	}
}

func TestStore_InitializeDiscardsSnapshots(t *testing.T) {
	s := seeded(t, 2)

	if err := s.ApplyOptimistic("p1", ActionApprove); err != nil {
		t.Fatalf("optimistic: %v", err)
	}

	s.Initialize([]Record{{Key: "p1", Fields: map[string]any{FieldApprovals: 5}}})

	if err := s.Rollback("p1"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot after initialize, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}
