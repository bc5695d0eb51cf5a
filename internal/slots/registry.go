// Package slots tracks which body occupies which slot of the orbit grid.
//
// The Registry is a partial injective map from slot index to body: a slot
// holds at most one body, a body holds at most one slot, and the number of
// occupied slots never exceeds the capacity fixed at construction. Every call
// that changes state publishes exactly one Change, after the registry lock has
// been released, so a listener always observes the finished update.
package slots

import (
	"fmt"
	"sort"
	"sync"

	"github.com/papapumpkin/planit/internal/notify"
	"github.com/papapumpkin/planit/internal/orbit"
)

// Op names the kind of state change a Change describes.
type Op int

const (
	OpClaim   Op = iota + 1 // unplaced body took a free slot
	OpRelease               // body left its slot
	OpMove                  // body moved to a free slot
	OpSwap                  // two bodies exchanged slots
	OpReset                 // every assignment was dropped
)

// String returns the lowercase op name used in telemetry.
func (o Op) String() string {
	switch o {
	case OpClaim:
		return "claim"
	case OpRelease:
		return "release"
	case OpMove:
		return "move"
	case OpSwap:
		return "swap"
	case OpReset:
		return "reset"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Change describes one committed registry update. From and To are slot
// indices, 0 meaning unplaced. For OpSwap, Displaced moved from To to From.
type Change struct {
	Op        Op
	Body      orbit.Body
	From      int
	To        int
	Displaced orbit.Body
}

// Assignment pairs a slot index with its occupant.
type Assignment struct {
	Slot int
	Body orbit.Body
}

// Registry holds slot occupancy for one layout session.
type Registry struct {
	mu       sync.RWMutex
	occupant []orbit.Body // 1-based; occupant[0] unused
	slotOf   map[orbit.Body]int
	changes  notify.Notifier[Change]
}

// New creates an empty registry with slots 1..capacity.
func New(capacity int) *Registry {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry{
		occupant: make([]orbit.Body, capacity+1),
		slotOf:   make(map[orbit.Body]int),
	}
}

// Subscribe registers fn to receive every committed Change.
func (r *Registry) Subscribe(fn func(Change)) (unsubscribe func()) {
	return r.changes.Subscribe(fn)
}

// Capacity returns N.
func (r *Registry) Capacity() int {
	return len(r.occupant) - 1
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slotOf)
}

func (r *Registry) checkIndex(index int) error {
	if index < 1 || index > r.Capacity() {
		return fmt.Errorf("slots: slot %d of %d: %w", index, r.Capacity(), ErrInvalidSlotIndex)
	}
	return nil
}

// Occupant returns the body in slot index, or "" if the slot is free.
func (r *Registry) Occupant(index int) (orbit.Body, error) {
	if err := r.checkIndex(index); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.occupant[index], nil
}

// SlotOf returns the slot held by body.
func (r *Registry) SlotOf(body orbit.Body) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.slotOf[body]
	return idx, ok
}

// Claim records body in slot index. Claiming the slot the body already holds
// is a silent no-op.
func (r *Registry) Claim(body orbit.Body, index int) error {
	if body == "" {
		return ErrEmptyBody
	}
	if err := r.checkIndex(index); err != nil {
		return err
	}

	r.mu.Lock()
	if cur, ok := r.slotOf[body]; ok {
		r.mu.Unlock()
		if cur == index {
			return nil
		}
		return fmt.Errorf("slots: claim slot %d for %q (holds %d): %w", index, body, cur, ErrBodyAlreadyPlaced)
	}
	if other := r.occupant[index]; other != "" {
		r.mu.Unlock()
		return fmt.Errorf("slots: claim slot %d for %q (held by %q): %w", index, body, other, ErrSlotAlreadyOccupied)
	}
	r.occupant[index] = body
	r.slotOf[body] = index
	r.mu.Unlock()

	r.changes.Notify(Change{Op: OpClaim, Body: body, To: index})
	return nil
}

// Release frees the slot held by body. It reports whether anything changed.
func (r *Registry) Release(body orbit.Body) bool {
	r.mu.Lock()
	idx, ok := r.slotOf[body]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.slotOf, body)
	r.occupant[idx] = ""
	r.mu.Unlock()

	r.changes.Notify(Change{Op: OpRelease, Body: body, From: idx})
	return true
}

// Move puts body in target. A free target is claimed after releasing the
// body's old slot; a target held by another body is swapped, the displaced
// body taking the mover's old slot. Moving a body onto its own slot is a
// no-op and returns the zero Change. An unplaced body cannot displace
// anyone, so that case fails with ErrSlotAlreadyOccupied.
func (r *Registry) Move(body orbit.Body, target int) (Change, error) {
	if body == "" {
		return Change{}, ErrEmptyBody
	}
	if err := r.checkIndex(target); err != nil {
		return Change{}, err
	}

	r.mu.Lock()
	from, placed := r.slotOf[body]
	other := r.occupant[target]

	var ch Change
	switch {
	case placed && from == target:
		r.mu.Unlock()
		return Change{}, nil

	case other == "":
		if placed {
			r.occupant[from] = ""
		}
		r.occupant[target] = body
		r.slotOf[body] = target
		ch = Change{Op: OpMove, Body: body, From: from, To: target}
		if !placed {
			ch.Op = OpClaim
		}

	case !placed:
		r.mu.Unlock()
		return Change{}, fmt.Errorf("slots: move unplaced %q onto slot %d (held by %q): %w", body, target, other, ErrSlotAlreadyOccupied)

	default:
		r.occupant[from] = other
		r.occupant[target] = body
		r.slotOf[other] = from
		r.slotOf[body] = target
		ch = Change{Op: OpSwap, Body: body, From: from, To: target, Displaced: other}
	}
	r.mu.Unlock()

	r.changes.Notify(ch)
	return ch, nil
}

// FreeSlots returns the unoccupied slot indices in ascending order.
func (r *Registry) FreeSlots() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	free := make([]int, 0, r.Capacity()-len(r.slotOf))
	for i := 1; i < len(r.occupant); i++ {
		if r.occupant[i] == "" {
			free = append(free, i)
		}
	}
	return free
}

// Assignments returns every occupied slot in index order.
func (r *Registry) Assignments() []Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Assignment, 0, len(r.slotOf))
	for body, idx := range r.slotOf {
		out = append(out, Assignment{Slot: idx, Body: body})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Bodies returns every placed body, ordered by slot index.
func (r *Registry) Bodies() []orbit.Body {
	as := r.Assignments()
	out := make([]orbit.Body, len(as))
	for i, a := range as {
		out[i] = a.Body
	}
	return out
}

// Reset drops every assignment. It notifies once, and only if the registry
// was non-empty.
func (r *Registry) Reset() {
	r.mu.Lock()
	if len(r.slotOf) == 0 {
		r.mu.Unlock()
		return
	}
	for i := range r.occupant {
		r.occupant[i] = ""
	}
	r.slotOf = make(map[orbit.Body]int)
	r.mu.Unlock()

	r.changes.Notify(Change{Op: OpReset})
}
