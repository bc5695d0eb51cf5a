package placement

import (
	"math"
	"sort"

	"github.com/papapumpkin/planit/internal/orbit"
)

// Polar is a position relative to the anchor.
type Polar struct {
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// ChordDistance returns the straight-line distance between two polar
// positions via the law of cosines.
func ChordDistance(a, b Polar) float64 {
	d2 := a.Radius*a.Radius + b.Radius*b.Radius - 2*a.Radius*b.Radius*math.Cos(a.Angle-b.Angle)
	if d2 < 0 {
		// rounding when a == b
		return 0
	}
	return math.Sqrt(d2)
}

const (
	minPlanetSize = 80
	maxPlanetSize = 150
)

// PlanetSize returns the rendered diameter for a body with count completed
// tasks. It starts at 80px and saturates toward 150px.
func PlanetSize(count int) float64 {
	if count < 0 {
		count = 0
	}
	return math.Max(minPlanetSize, maxPlanetSize*(1-math.Exp(-float64(count))))
}

// LegacyConfig tunes the continuous placer.
type LegacyConfig struct {
	Radii       []float64              // candidate orbit radii, later ones weighted heavier
	Preset      map[orbit.Body]float64 // fixed radii for well-known bodies
	Arc         float64                // angles are drawn from [-Arc, +Arc]
	Margin      float64                // extra gap required between planet edges
	MaxAttempts int
}

// DefaultLegacyConfig returns the stock tuning: five radii, a ±15° arc,
// 20px margin, 100 attempts.
func DefaultLegacyConfig() LegacyConfig {
	return LegacyConfig{
		Radii:       []float64{350, 500, 750, 1000, 1250},
		Arc:         math.Pi / 12,
		Margin:      20,
		MaxAttempts: 100,
	}
}

// RadiusPicker assigns each body an orbit radius once, by weighted random
// sampling where candidate i has weight i+1, and remembers the choice for
// the picker's lifetime. A body that leaves and returns gets the same orbit.
type RadiusPicker struct {
	radii []float64
	rng   Rand
	memo  map[orbit.Body]float64
}

// NewRadiusPicker creates a picker over radii. preset entries are returned
// as-is and never sampled.
func NewRadiusPicker(radii []float64, preset map[orbit.Body]float64, rng Rand) *RadiusPicker {
	memo := make(map[orbit.Body]float64, len(preset))
	for b, r := range preset {
		memo[b] = r
	}
	return &RadiusPicker{radii: append([]float64(nil), radii...), rng: rng, memo: memo}
}

// Pick returns body's radius, sampling it on first use.
func (p *RadiusPicker) Pick(body orbit.Body) float64 {
	if r, ok := p.memo[body]; ok {
		return r
	}
	r := p.sample()
	p.memo[body] = r
	return r
}

func (p *RadiusPicker) sample() float64 {
	if len(p.radii) == 0 {
		return 0
	}
	n := len(p.radii)
	total := float64(n * (n + 1) / 2)
	u := p.rng.Float64() * total

	var sum float64
	for i, r := range p.radii {
		sum += float64(i + 1)
		if u < sum {
			return r
		}
	}
	return p.radii[n-1]
}

// Placement is the outcome of placing one body without a grid.
type Placement struct {
	Body        orbit.Body `json:"body"`
	Polar       Polar      `json:"polar"`
	Size        float64    `json:"size"`
	Attempts    int        `json:"attempts"`
	Overlapping bool       `json:"overlapping"`
}

// Continuous places bodies on weighted orbits with rejection sampling. It
// has no slots, occupancy or swap; once placed, a body keeps its position
// until removed.
type Continuous struct {
	cfg    LegacyConfig
	rng    Rand
	radii  *RadiusPicker
	placed map[orbit.Body]Placement
}

// NewContinuous creates a placer. Zero-valued config fields fall back to
// DefaultLegacyConfig; a nil rng uses a clock-seeded PCG.
func NewContinuous(cfg LegacyConfig, rng Rand) *Continuous {
	def := DefaultLegacyConfig()
	if len(cfg.Radii) == 0 {
		cfg.Radii = def.Radii
	}
	if cfg.Arc <= 0 {
		cfg.Arc = def.Arc
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &Continuous{
		cfg:    cfg,
		rng:    rng,
		radii:  NewRadiusPicker(cfg.Radii, cfg.Preset, rng),
		placed: make(map[orbit.Body]Placement),
	}
}

// Fits reports whether a body of the given size at p keeps the required gap
// from every placed body other than except.
func (c *Continuous) Fits(p Polar, size float64, except orbit.Body) bool {
	_, ok := c.collision(p, size, except)
	return !ok
}

func (c *Continuous) collision(p Polar, size float64, except orbit.Body) (orbit.Body, bool) {
	for b, other := range c.placed {
		if b == except {
			continue
		}
		minDist := (other.Size+size)/2 + c.cfg.Margin
		if ChordDistance(p, other.Polar) < minDist {
			return b, true
		}
	}
	return "", false
}

// Place positions body, or returns its existing placement. When every
// attempt collides, the last attempted angle is kept and the result is
// flagged Overlapping.
func (c *Continuous) Place(body orbit.Body, size float64) Placement {
	if p, ok := c.placed[body]; ok {
		return p
	}

	radius := c.radii.Pick(body)
	var cand Polar
	attempts := 0
	fits := false
	for attempts < c.cfg.MaxAttempts && !fits {
		angle := c.rng.Float64()*2*c.cfg.Arc - c.cfg.Arc
		cand = Polar{Radius: radius, Angle: angle}
		attempts++
		fits = c.Fits(cand, size, body)
	}

	p := Placement{Body: body, Polar: cand, Size: size, Attempts: attempts, Overlapping: !fits}
	c.placed[body] = p
	return p
}

// Put records a placement directly, replacing any previous one for body.
func (c *Continuous) Put(body orbit.Body, p Polar, size float64) {
	c.placed[body] = Placement{Body: body, Polar: p, Size: size}
}

// Resize updates the diameter of a placed body without moving it. Later
// collision checks use the new size.
func (c *Continuous) Resize(body orbit.Body, size float64) bool {
	p, ok := c.placed[body]
	if !ok {
		return false
	}
	p.Size = size
	c.placed[body] = p
	return true
}

// Remove drops body's placement. Its radius stays remembered.
func (c *Continuous) Remove(body orbit.Body) bool {
	if _, ok := c.placed[body]; !ok {
		return false
	}
	delete(c.placed, body)
	return true
}

// Placements returns every placement sorted by body name.
func (c *Continuous) Placements() []Placement {
	out := make([]Placement, 0, len(c.placed))
	for _, p := range c.placed {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Body < out[j].Body })
	return out
}

// Positions converts every placement to viewport coordinates around anchor.
func (c *Continuous) Positions(anchor orbit.Point) map[orbit.Body]orbit.Point {
	out := make(map[orbit.Body]orbit.Point, len(c.placed))
	for b, p := range c.placed {
		out[b] = anchor.Polar(p.Polar.Radius, p.Polar.Angle)
	}
	return out
}
