// Package drag turns pointer gestures on rendered bodies into slot
// reassignments.
//
// A Controller is a two-state machine. PointerDown on a placed body moves it
// from Idle to Dragging; PointerMove updates the live position and the
// nearest-slot highlight without touching occupancy; PointerUp (or Cancel,
// which behaves like PointerUp at the last known pointer) resolves the
// nearest slot and asks the registry to move or swap, then returns to Idle
// whatever the outcome.
package drag

import (
	"fmt"
	"sync"

	"github.com/papapumpkin/planit/internal/notify"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/slots"
)

// HighlightKind classifies a slot for rendering while a drag is active.
type HighlightKind int

const (
	Free HighlightKind = iota
	Occupied
	Nearest
)

// String returns the lowercase kind name.
func (k HighlightKind) String() string {
	switch k {
	case Free:
		return "free"
	case Occupied:
		return "occupied"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("highlight(%d)", int(k))
	}
}

// SlotHighlight is the drag affordance for one slot.
type SlotHighlight struct {
	Index int
	Kind  HighlightKind
}

// State is the transient gesture record. Live is where the dragged body is
// drawn: the pointer minus the grab offset.
type State struct {
	Body    orbit.Body
	Origin  int
	Offset  orbit.Point
	Pointer orbit.Point
	Live    orbit.Point
	Nearest int
}

// Result reports how a gesture ended. Moved is false for a drop back onto
// the origin slot.
type Result struct {
	Body      orbit.Body
	From      int
	To        int
	Moved     bool
	Cancelled bool
	Change    slots.Change
}

// EventKind names a gesture lifecycle event.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventEnd
	EventCancel
)

// Event is published when a gesture starts or ends.
type Event struct {
	Kind   EventKind
	State  State
	Result Result
	Err    error
}

// Controller resolves drags against one geometry and registry.
type Controller struct {
	geo    *orbit.Geometry
	reg    *slots.Registry
	events notify.Notifier[Event]

	mu    sync.Mutex
	state *State
}

// New creates an idle controller.
func New(geo *orbit.Geometry, reg *slots.Registry) *Controller {
	return &Controller{geo: geo, reg: reg}
}

// Subscribe registers fn for gesture start/end events.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}

// Dragging reports whether a gesture is active.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != nil
}

// State returns a copy of the active gesture.
func (c *Controller) State() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return State{}, false
	}
	return *c.state, true
}

// position returns the rendered position of a placed body.
func (c *Controller) position(body orbit.Body) (int, orbit.Point, bool) {
	idx, ok := c.reg.SlotOf(body)
	if !ok {
		return 0, orbit.Point{}, false
	}
	s, err := c.geo.Slot(idx)
	if err != nil {
		return 0, orbit.Point{}, false
	}
	return idx, s.Pos, true
}

// HitTest returns the placed body whose position lies within radius of p,
// preferring the closest. Hosts that only see raw coordinates use it to
// pick the body for PointerDown.
func (c *Controller) HitTest(p orbit.Point, radius float64) (orbit.Body, bool) {
	var (
		best     orbit.Body
		bestDist = radius
		found    bool
	)
	for _, a := range c.reg.Assignments() {
		s, err := c.geo.Slot(a.Slot)
		if err != nil {
			continue
		}
		if d := s.Pos.Distance(p); d <= bestDist {
			best, bestDist, found = a.Body, d, true
		}
	}
	return best, found
}

// PointerDown starts dragging body, grabbed at pointer.
func (c *Controller) PointerDown(body orbit.Body, pointer orbit.Point) error {
	idx, pos, ok := c.position(body)
	if !ok {
		return fmt.Errorf("drag: start %q: %w", body, ErrBodyNotPlaced)
	}

	c.mu.Lock()
	if c.state != nil {
		active := c.state.Body
		c.mu.Unlock()
		return fmt.Errorf("drag: start %q while dragging %q: %w", body, active, ErrAlreadyDragging)
	}
	st := State{
		Body:    body,
		Origin:  idx,
		Offset:  pointer.Sub(pos),
		Pointer: pointer,
		Live:    pos,
		Nearest: idx,
	}
	c.state = &st
	c.mu.Unlock()

	c.events.Notify(Event{Kind: EventStart, State: st})
	return nil
}

// PointerMove updates the live position and returns the slot nearest to it.
// It reports false when no drag is active.
func (c *Controller) PointerMove(pointer orbit.Point) (orbit.Slot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return orbit.Slot{}, false
	}
	c.state.Pointer = pointer
	c.state.Live = pointer.Sub(c.state.Offset)
	nearest := c.geo.Nearest(c.state.Live)
	c.state.Nearest = nearest.Index
	return nearest, true
}

// PointerUp drops the dragged body at the slot nearest to its release
// position, swapping with any occupant. The gesture is discarded whether or
// not the move succeeds. Without an active drag it returns a zero Result.
func (c *Controller) PointerUp(pointer orbit.Point) (Result, error) {
	return c.finish(pointer, false)
}

// Cancel ends an active gesture as a release at the last known pointer, so
// a lost pointer never leaves a drag dangling.
func (c *Controller) Cancel() (Result, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return Result{}, nil
	}
	pointer := c.state.Pointer
	c.mu.Unlock()
	return c.finish(pointer, true)
}

func (c *Controller) finish(pointer orbit.Point, cancelled bool) (Result, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return Result{}, nil
	}
	st := *c.state
	c.state = nil
	c.mu.Unlock()

	st.Pointer = pointer
	st.Live = pointer.Sub(st.Offset)
	target := c.geo.Nearest(st.Live)
	st.Nearest = target.Index

	res := Result{Body: st.Body, To: target.Index, Cancelled: cancelled}
	kind := EventEnd
	if cancelled {
		kind = EventCancel
	}

	from, ok := c.reg.SlotOf(st.Body)
	if !ok {
		// Released by the task layer mid-gesture.
		err := fmt.Errorf("drag: drop %q: %w", st.Body, ErrBodyNotPlaced)
		c.events.Notify(Event{Kind: kind, State: st, Result: res, Err: err})
		return res, err
	}
	res.From = from
	if from == target.Index {
		c.events.Notify(Event{Kind: kind, State: st, Result: res})
		return res, nil
	}

	ch, err := c.reg.Move(st.Body, target.Index)
	if err != nil {
		err = fmt.Errorf("drag: drop %q on slot %d: %w", st.Body, target.Index, err)
		c.events.Notify(Event{Kind: kind, State: st, Result: res, Err: err})
		return res, err
	}
	res.Moved = true
	res.Change = ch
	c.events.Notify(Event{Kind: kind, State: st, Result: res})
	return res, nil
}

// Highlights classifies every slot for the active gesture, in index order.
// It returns nil when idle.
func (c *Controller) Highlights() []SlotHighlight {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return nil
	}
	nearest := c.state.Nearest
	c.mu.Unlock()

	all := c.geo.Slots()
	out := make([]SlotHighlight, len(all))
	for i, s := range all {
		kind := Free
		if occ, _ := c.reg.Occupant(s.Index); occ != "" {
			kind = Occupied
		}
		if s.Index == nearest {
			kind = Nearest
		}
		out[i] = SlotHighlight{Index: s.Index, Kind: kind}
	}
	return out
}
