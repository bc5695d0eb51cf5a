package orbit

// Sun positions the anchor relative to the viewport. The sun image is Size
// pixels square, LeftOffset pixels from the left edge (negative pushes it off
// screen) and BottomOffset pixels above the bottom edge.
type Sun struct {
	Size         float64
	LeftOffset   float64
	BottomOffset float64
}

// DefaultSun returns an 800px sun three quarters off the left edge, 40px above
// the bottom.
func DefaultSun() Sun {
	return Sun{
		Size:         800,
		LeftOffset:   -800 * 3 / 4,
		BottomOffset: 40,
	}
}

// Anchor returns the sun centre for the given viewport.
func (s Sun) Anchor(viewport Size) Point {
	left := s.LeftOffset
	top := viewport.Height - s.Size - s.BottomOffset
	return Point{X: left + s.Size/2, Y: top + s.Size/2}
}
