package slots

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/planit/internal/orbit"
)

// recorder collects every change published by a registry.
type recorder struct {
	changes []Change
}

func newRecorded(t *testing.T, capacity int) (*Registry, *recorder) {
	t.Helper()
	r := New(capacity)
	rec := &recorder{}
	r.Subscribe(func(c Change) { rec.changes = append(rec.changes, c) })
	return r, rec
}

func mustClaim(t *testing.T, r *Registry, body orbit.Body, idx int) {
	t.Helper()
	if err := r.Claim(body, idx); err != nil {
		t.Fatalf("Claim(%q, %d): %v", body, idx, err)
	}
}

func TestClaim(t *testing.T) {
	t.Parallel()

	t.Run("records mapping and notifies", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "cat", 3)

		if got, _ := r.Occupant(3); got != "cat" {
			t.Errorf("Occupant(3) = %q, want cat", got)
		}
		if idx, ok := r.SlotOf("cat"); !ok || idx != 3 {
			t.Errorf("SlotOf(cat) = %d, %v; want 3, true", idx, ok)
		}
		want := []Change{{Op: OpClaim, Body: "cat", To: 3}}
		if diff := cmp.Diff(want, rec.changes); diff != "" {
			t.Errorf("changes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("slot held by another body", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "cat", 3)
		err := r.Claim("study", 3)
		if !errors.Is(err, ErrSlotAlreadyOccupied) {
			t.Fatalf("Claim err = %v, want ErrSlotAlreadyOccupied", err)
		}
		if got, _ := r.Occupant(3); got != "cat" {
			t.Errorf("Occupant(3) = %q after rejected claim", got)
		}
		if len(rec.changes) != 1 {
			t.Errorf("rejected claim notified: %+v", rec.changes)
		}
	})

	t.Run("body already placed elsewhere", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		mustClaim(t, r, "cat", 3)
		if err := r.Claim("cat", 4); !errors.Is(err, ErrBodyAlreadyPlaced) {
			t.Fatalf("Claim err = %v, want ErrBodyAlreadyPlaced", err)
		}
		if idx, _ := r.SlotOf("cat"); idx != 3 {
			t.Errorf("SlotOf(cat) = %d, want 3", idx)
		}
	})

	t.Run("idempotent on own slot", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "cat", 3)
		idx, _ := r.SlotOf("cat")
		mustClaim(t, r, "cat", idx)
		if len(rec.changes) != 1 {
			t.Errorf("idempotent claim notified: %d changes", len(rec.changes))
		}
	})

	t.Run("invalid index", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		for _, idx := range []int{0, 19, -3} {
			if err := r.Claim("cat", idx); !errors.Is(err, ErrInvalidSlotIndex) {
				t.Errorf("Claim(cat, %d) = %v, want ErrInvalidSlotIndex", idx, err)
			}
		}
		if _, err := r.Occupant(0); !errors.Is(err, ErrInvalidSlotIndex) {
			t.Errorf("Occupant(0) = %v, want ErrInvalidSlotIndex", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		if err := r.Claim("", 1); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("Claim(\"\") = %v, want ErrEmptyBody", err)
		}
	})
}

func TestRelease(t *testing.T) {
	t.Parallel()

	r, rec := newRecorded(t, 18)
	mustClaim(t, r, "cat", 5)

	if !r.Release("cat") {
		t.Fatal("Release(cat) = false, want true")
	}
	if r.Release("cat") {
		t.Error("second Release(cat) = true, want false")
	}
	if r.Release("ghost") {
		t.Error("Release(ghost) = true, want false")
	}
	if got, _ := r.Occupant(5); got != "" {
		t.Errorf("Occupant(5) = %q, want free", got)
	}
	want := []Change{
		{Op: OpClaim, Body: "cat", To: 5},
		{Op: OpRelease, Body: "cat", From: 5},
	}
	if diff := cmp.Diff(want, rec.changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestMove(t *testing.T) {
	t.Parallel()

	t.Run("to free slot", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "A", 3)
		ch, err := r.Move("A", 9)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		want := Change{Op: OpMove, Body: "A", From: 3, To: 9}
		if ch != want {
			t.Errorf("Move change = %+v, want %+v", ch, want)
		}
		if got, _ := r.Occupant(3); got != "" {
			t.Errorf("old slot still held by %q", got)
		}
		if len(rec.changes) != 2 {
			t.Errorf("got %d notifications, want 2", len(rec.changes))
		}
	})

	t.Run("swap with occupant", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "A", 3)
		mustClaim(t, r, "B", 7)
		rec.changes = nil

		var seen []Assignment
		r.Subscribe(func(Change) { seen = r.Assignments() })

		ch, err := r.Move("A", 7)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if a, _ := r.SlotOf("A"); a != 7 {
			t.Errorf("SlotOf(A) = %d, want 7", a)
		}
		if b, ok := r.SlotOf("B"); !ok || b != 3 {
			t.Errorf("SlotOf(B) = %d, %v; want 3, true", b, ok)
		}
		want := Change{Op: OpSwap, Body: "A", From: 3, To: 7, Displaced: "B"}
		if ch != want {
			t.Errorf("change = %+v, want %+v", ch, want)
		}
		if len(rec.changes) != 1 {
			t.Errorf("swap fired %d notifications, want 1", len(rec.changes))
		}
		wantSeen := []Assignment{{Slot: 3, Body: "B"}, {Slot: 7, Body: "A"}}
		if diff := cmp.Diff(wantSeen, seen); diff != "" {
			t.Errorf("listener saw partial state (-want +got):\n%s", diff)
		}
	})

	t.Run("onto own slot is a no-op", func(t *testing.T) {
		t.Parallel()
		r, rec := newRecorded(t, 18)
		mustClaim(t, r, "A", 3)
		idx, _ := r.SlotOf("A")
		ch, err := r.Move("A", idx)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if ch != (Change{}) {
			t.Errorf("no-op move returned %+v", ch)
		}
		if len(rec.changes) != 1 {
			t.Errorf("no-op move notified")
		}
	})

	t.Run("unplaced body to free slot claims", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		ch, err := r.Move("A", 2)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if ch.Op != OpClaim || ch.To != 2 {
			t.Errorf("change = %+v, want claim of slot 2", ch)
		}
	})

	t.Run("unplaced body onto occupied slot", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		mustClaim(t, r, "B", 2)
		if _, err := r.Move("A", 2); !errors.Is(err, ErrSlotAlreadyOccupied) {
			t.Errorf("Move err = %v, want ErrSlotAlreadyOccupied", err)
		}
		if b, _ := r.Occupant(2); b != "B" {
			t.Errorf("Occupant(2) = %q, want B", b)
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		t.Parallel()
		r, _ := newRecorded(t, 18)
		mustClaim(t, r, "A", 1)
		if _, err := r.Move("A", 99); !errors.Is(err, ErrInvalidSlotIndex) {
			t.Errorf("Move err = %v, want ErrInvalidSlotIndex", err)
		}
	})
}

func TestFreeSlots(t *testing.T) {
	t.Parallel()

	r := New(5)
	mustClaim(t, r, "a", 2)
	mustClaim(t, r, "b", 4)
	if diff := cmp.Diff([]int{1, 3, 5}, r.FreeSlots()); diff != "" {
		t.Errorf("FreeSlots mismatch (-want +got):\n%s", diff)
	}
	if r.Len() != 2 || r.Capacity() != 5 {
		t.Errorf("Len/Capacity = %d/%d, want 2/5", r.Len(), r.Capacity())
	}
	if diff := cmp.Diff([]orbit.Body{"a", "b"}, r.Bodies()); diff != "" {
		t.Errorf("Bodies mismatch (-want +got):\n%s", diff)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	r, rec := newRecorded(t, 4)
	r.Reset() // empty: no notification
	mustClaim(t, r, "a", 1)
	mustClaim(t, r, "b", 2)
	r.Reset()

	if r.Len() != 0 || len(r.FreeSlots()) != 4 {
		t.Errorf("after Reset Len=%d free=%v", r.Len(), r.FreeSlots())
	}
	if got := rec.changes[len(rec.changes)-1].Op; got != OpReset {
		t.Errorf("last op = %v, want reset", got)
	}
	if len(rec.changes) != 3 {
		t.Errorf("got %d notifications, want 3", len(rec.changes))
	}
}

// TestInvariantsUnderRandomOps drives the registry with a seeded stream of
// operations and checks uniqueness and capacity after every step.
func TestInvariantsUnderRandomOps(t *testing.T) {
	t.Parallel()

	const capacity = 18
	r := New(capacity)
	rng := rand.New(rand.NewPCG(7, 11))
	bodies := make([]orbit.Body, 25)
	for i := range bodies {
		bodies[i] = orbit.Body(fmt.Sprintf("P%d", i+1))
	}

	for step := 0; step < 2000; step++ {
		b := bodies[rng.IntN(len(bodies))]
		idx := rng.IntN(capacity) + 1
		switch rng.IntN(3) {
		case 0:
			_ = r.Claim(b, idx)
		case 1:
			r.Release(b)
		case 2:
			_, _ = r.Move(b, idx)
		}

		seenSlots := make(map[int]orbit.Body)
		seenBodies := make(map[orbit.Body]int)
		for _, a := range r.Assignments() {
			if prev, dup := seenSlots[a.Slot]; dup {
				t.Fatalf("step %d: slot %d held by %q and %q", step, a.Slot, prev, a.Body)
			}
			if prev, dup := seenBodies[a.Body]; dup {
				t.Fatalf("step %d: %q in slots %d and %d", step, a.Body, prev, a.Slot)
			}
			seenSlots[a.Slot] = a.Body
			seenBodies[a.Body] = a.Slot
			if occ, _ := r.Occupant(a.Slot); occ != a.Body {
				t.Fatalf("step %d: Occupant(%d) = %q, want %q", step, a.Slot, occ, a.Body)
			}
		}
		if r.Len() > capacity {
			t.Fatalf("step %d: %d occupied > capacity %d", step, r.Len(), capacity)
		}
		if r.Len()+len(r.FreeSlots()) != capacity {
			t.Fatalf("step %d: occupied %d + free %d != %d", step, r.Len(), len(r.FreeSlots()), capacity)
		}
	}
}

func TestOpString(t *testing.T) {
	t.Parallel()

	tests := map[Op]string{
		OpClaim: "claim", OpRelease: "release", OpMove: "move", OpSwap: "swap", OpReset: "reset", Op(42): "op(42)",
	}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", int(op), got, want)
		}
	}
}
