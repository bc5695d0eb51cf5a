package orbit

import (
	"fmt"
	"math"
)

// Orbit is one concentric ring: a radius from the anchor and the angles
// (radians) at which slots exist on it, in declared order.
type Orbit struct {
	Radius float64
	Angles []float64
}

// Table is the static orbit configuration. Declared order of orbits, and of
// angles within each orbit, fixes slot indices.
type Table []Orbit

// DefaultTable returns the five-orbit, 18-slot table. Angles are negative
// (upward) because the anchor sits near the bottom-left of the viewport.
func DefaultTable() Table {
	pi := math.Pi
	return Table{
		{Radius: 500, Angles: []float64{-pi / 6, -pi / 3, 0}},
		{Radius: 750, Angles: []float64{-pi / 8, -pi / 4, -3 * pi / 8, 0}},
		{Radius: 1000, Angles: []float64{-pi / 12, -pi / 6, -pi / 4, -pi / 3, -5 * pi / 12}},
		{Radius: 1250, Angles: []float64{-pi / 8, -pi / 4, -3 * pi / 8}},
		{Radius: 1500, Angles: []float64{-pi / 6, -pi / 4, -pi / 3}},
	}
}

// SlotCount returns N, the total number of slots across all orbits.
func (t Table) SlotCount() int {
	n := 0
	for _, o := range t {
		n += len(o.Angles)
	}
	return n
}

// Validate reports whether the table can produce a usable slot grid.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no orbits", ErrInvalidTable)
	}
	for i, o := range t {
		if o.Radius <= 0 || math.IsNaN(o.Radius) || math.IsInf(o.Radius, 0) {
			return fmt.Errorf("%w: orbit %d radius %v", ErrInvalidTable, i+1, o.Radius)
		}
		if len(o.Angles) == 0 {
			return fmt.Errorf("%w: orbit %d has no angles", ErrInvalidTable, i+1)
		}
		for j, a := range o.Angles {
			if math.IsNaN(a) || math.IsInf(a, 0) {
				return fmt.Errorf("%w: orbit %d angle %d is %v", ErrInvalidTable, i+1, j+1, a)
			}
		}
	}
	return nil
}

// Radii returns each distinct orbit radius once, in declared order.
func (t Table) Radii() []float64 {
	seen := make(map[float64]bool, len(t))
	radii := make([]float64, 0, len(t))
	for _, o := range t {
		if seen[o.Radius] {
			continue
		}
		seen[o.Radius] = true
		radii = append(radii, o.Radius)
	}
	return radii
}

// Clone returns a deep copy so callers cannot mutate a shared table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, o := range t {
		out[i] = Orbit{Radius: o.Radius, Angles: append([]float64(nil), o.Angles...)}
	}
	return out
}
