// Package placement decides where newly observed bodies go.
//
// AutoPlacer is the grid placer: it claims a uniformly random free slot in a
// slots.Registry. Continuous is the older grid-less placer that samples a
// weighted orbit radius and a random angle, rejecting positions that collide
// with bodies already placed.
package placement

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/slots"
)

// Rand is the randomness placement needs. *rand.Rand from math/rand/v2
// satisfies it; tests substitute fixed sequences.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG-backed Rand. A zero seed seeds from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AutoPlacer assigns unplaced bodies to free slots.
type AutoPlacer struct {
	reg *slots.Registry
	rng Rand
}

// NewAutoPlacer creates a placer over reg. A nil rng uses a clock-seeded PCG.
func NewAutoPlacer(reg *slots.Registry, rng Rand) *AutoPlacer {
	if rng == nil {
		rng = NewRand(0)
	}
	return &AutoPlacer{reg: reg, rng: rng}
}

// Place returns the slot held by body, claiming a random free one if the body
// is not yet placed. Bodies that already hold a slot are left untouched.
func (p *AutoPlacer) Place(body orbit.Body) (int, error) {
	if idx, ok := p.reg.SlotOf(body); ok {
		return idx, nil
	}
	free := p.reg.FreeSlots()
	if len(free) == 0 {
		return 0, fmt.Errorf("placement: place %q: %w", body, ErrGridFull)
	}
	idx := free[p.rng.IntN(len(free))]
	if err := p.reg.Claim(body, idx); err != nil {
		return 0, fmt.Errorf("placement: place %q: %w", body, err)
	}
	return idx, nil
}

// PlaceAll places bodies in order. Every body is attempted; failures are
// joined into the returned error.
func (p *AutoPlacer) PlaceAll(bodies []orbit.Body) (map[orbit.Body]int, error) {
	placed := make(map[orbit.Body]int, len(bodies))
	var errs []error
	for _, b := range bodies {
		idx, err := p.Place(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		placed[b] = idx
	}
	return placed, errors.Join(errs...)
}
