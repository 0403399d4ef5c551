package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
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

func TestRegistry_ArmFires(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()

	var fired atomic.Bool
	r.Arm("k", 5*time.Millisecond, func() { fired.Store(true) })

	waitFor(t, fired.Load)

	if r.Len() != 0 {
		t.Fatalf("fired timer still tracked, len = %d", r.Len())
	}
}

func TestRegistry_CancelPreventsCallback(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()

	var fired atomic.Bool
	r.Arm("k", 10*time.Millisecond, func() { fired.Store(true) })

	if !r.Cancel("k") {
		t.Fatal("cancel reported no timer armed")
	}

	time.Sleep(30 * time.Millisecond)
	if fired.Load() {
		t.Fatal("cancelled callback fired")
	}
}

func TestRegistry_CancelUnknownKey(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()

	if r.Cancel("nope") {
		t.Fatal("cancel of unknown key reported a timer")
	}
}

func TestRegistry_RearmReplacesPredecessor(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()

	var first, second atomic.Bool
	r.Arm("k", 10*time.Millisecond, func() { first.Store(true) })
	r.Arm("k", 10*time.Millisecond, func() { second.Store(true) })

	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}

	waitFor(t, second.Load)

	time.Sleep(20 * time.Millisecond)
	if first.Load() {
		t.Fatal("replaced timer fired")
	}
}

func TestRegistry_IndependentKeys(t *testing.T) {
	r := NewRegistry()
	defer r.Stop()

	var a, b atomic.Bool
	r.Arm("a", 5*time.Millisecond, func() { a.Store(true) })
	r.Arm("b", 5*time.Millisecond, func() { b.Store(true) })

	r.Cancel("a")

	waitFor(t, b.Load)
	if a.Load() {
		t.Fatal("cancelling one key fired another")
	}
}

func TestRegistry_StopCancelsAll(t *testing.T) {
	r := NewRegistry()

	var fired atomic.Int32
	for _, k := range []string{"a", "b", "c"} {
		r.Arm(k, 10*time.Millisecond, func() { fired.Add(1) })
	}

	r.Stop()

	time.Sleep(30 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Fatalf("%d callbacks fired after Stop", n)
	}
	if r.Len() != 0 {
		t.Fatalf("len = %d after Stop", r.Len())
	}
}
