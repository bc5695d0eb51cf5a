// Package orbit describes where bodies may sit around the anchor: the static
// orbit table, the anchor derived from the viewport, and the indexed slot
// coordinates produced from both.
package orbit

import "math"

// Body identifies a trackable item (a task category). The engine treats it as
// an opaque, non-empty name.
type Body string

// Point is a position in viewport pixels. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Polar returns the point at radius r and angle theta (radians) from p.
func (p Point) Polar(r, theta float64) Point {
	return Point{X: p.X + r*math.Cos(theta), Y: p.Y + r*math.Sin(theta)}
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
