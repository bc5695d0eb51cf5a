package orbit

import (
	"fmt"
	"math"
	"sync"
)

// Slot is one legal body position. Index is the durable identity (1..N);
// Pos is re-derived whenever the anchor moves.
type Slot struct {
	Index  int     `json:"index"`
	Orbit  int     `json:"orbit"`
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
	Pos    Point   `json:"pos"`
}

// Slots lays out the table around anchor. Indices are assigned sequentially
// by walking orbits, then angles, in declared order.
func Slots(anchor Point, table Table) []Slot {
	slots := make([]Slot, 0, table.SlotCount())
	idx := 0
	for oi, o := range table {
		for _, a := range o.Angles {
			idx++
			slots = append(slots, Slot{
				Index:  idx,
				Orbit:  oi + 1,
				Radius: o.Radius,
				Angle:  a,
				Pos:    anchor.Polar(o.Radius, a),
			})
		}
	}
	return slots
}

// Nearest returns the slot closest to p. Ties go to the lowest index. It
// returns false only when slots is empty.
func Nearest(slots []Slot, p Point) (Slot, bool) {
	if len(slots) == 0 {
		return Slot{}, false
	}
	best := slots[0]
	bestDist := best.Pos.Distance(p)
	for _, s := range slots[1:] {
		d := s.Pos.Distance(p)
		if d < bestDist || (d == bestDist && s.Index < best.Index) {
			best, bestDist = s, d
		}
	}
	return best, true
}

// Geometry derives slot coordinates from a fixed table and the current
// anchor. Resizing only moves coordinates; the index-to-orbit mapping never
// changes for the lifetime of a Geometry.
type Geometry struct {
	mu       sync.RWMutex
	table    Table
	sun      Sun
	viewport Size
	anchor   Point
	slots    []Slot
}

// NewGeometry validates table and lays it out for viewport.
func NewGeometry(table Table, sun Sun, viewport Size) (*Geometry, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	g := &Geometry{table: table.Clone(), sun: sun}
	g.resizeLocked(viewport)
	return g, nil
}

// Resize recomputes the anchor and every slot coordinate for a new viewport.
func (g *Geometry) Resize(viewport Size) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resizeLocked(viewport)
}

func (g *Geometry) resizeLocked(viewport Size) {
	g.viewport = viewport
	g.anchor = g.sun.Anchor(viewport)
	g.slots = Slots(g.anchor, g.table)
}

// SetAnchor pins the anchor to p regardless of viewport.
func (g *Geometry) SetAnchor(p Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.anchor = p
	g.slots = Slots(p, g.table)
}

// Anchor returns the current anchor.
func (g *Geometry) Anchor() Point {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.anchor
}

// Viewport returns the last viewport passed to Resize.
func (g *Geometry) Viewport() Size {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewport
}

// Count returns N.
func (g *Geometry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.slots)
}

// Radii returns the distinct orbit radii in declared order.
func (g *Geometry) Radii() []float64 {
	return g.table.Radii()
}

// Slots returns a copy of the current slot list in index order.
func (g *Geometry) Slots() []Slot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// Slot returns the slot with the given index.
func (g *Geometry) Slot(index int) (Slot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if index < 1 || index > len(g.slots) {
		return Slot{}, fmt.Errorf("orbit: slot %d of %d: %w", index, len(g.slots), ErrInvalidSlotIndex)
	}
	return g.slots[index-1], nil
}

// Nearest returns the slot closest to p, lowest index on ties.
func (g *Geometry) Nearest(p Point) Slot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, _ := Nearest(g.slots, p)
	return s
}

// Degrees converts degrees to radians.
func Degrees(deg float64) float64 {
	return deg * math.Pi / 180
}
