package layout

import (
	"go.uber.org/zap"

	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
	"github.com/papapumpkin/planit/internal/telemetry"
)

// Sized is a body with a rendered diameter, as the grid-less placer needs.
type Sized struct {
	Body orbit.Body
	Size float64
}

// Legacy is the grid-less layout session. It places bodies with
// placement.Continuous around the anchor of a fixed sun and viewport.
type Legacy struct {
	cont     *placement.Continuous
	sun      orbit.Sun
	viewport orbit.Size
	log      *zap.Logger
	tel      *telemetry.Emitter
}

// NewLegacy creates a grid-less session. Table and Rand in opts are ignored
// and supplied through cfg and rng instead.
func NewLegacy(cfg placement.LegacyConfig, rng placement.Rand, opts Options) *Legacy {
	if opts.Sun == (orbit.Sun{}) {
		opts.Sun = orbit.DefaultSun()
	}
	if opts.Viewport == (orbit.Size{}) {
		opts.Viewport = DefaultViewport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Legacy{
		cont:     placement.NewContinuous(cfg, rng),
		sun:      opts.Sun,
		viewport: opts.Viewport,
		log:      opts.Logger,
		tel:      opts.Telemetry,
	}
}

// Sync removes bodies that vanished and places new ones in order. Bodies
// that stay keep their position but take their new size.
func (l *Legacy) Sync(bodies []Sized) SyncReport {
	keep := make(map[orbit.Body]float64, len(bodies))
	order := make([]orbit.Body, 0, len(bodies))
	for _, s := range bodies {
		if s.Body == "" {
			continue
		}
		if _, dup := keep[s.Body]; dup {
			continue
		}
		keep[s.Body] = s.Size
		order = append(order, s.Body)
	}

	var rep SyncReport
	for _, p := range l.cont.Placements() {
		if _, ok := keep[p.Body]; !ok && l.cont.Remove(p.Body) {
			rep.Released = append(rep.Released, p.Body)
		}
	}
	for _, b := range order {
		if l.cont.Resize(b, keep[b]) {
			continue
		}
		p := l.cont.Place(b, keep[b])
		rep.Placed = append(rep.Placed, b)
		if p.Overlapping {
			l.log.Warn("no collision-free position, keeping overlap",
				zap.String("body", string(b)),
				zap.Int("attempts", p.Attempts),
				zap.Float64("radius", p.Polar.Radius),
			)
			if err := l.tel.Emit(telemetry.Event{Kind: telemetry.KindLegacyOverlap, Body: string(b), Data: p}); err != nil {
				l.log.Warn("telemetry emit failed", zap.Error(err))
			}
		}
	}
	return rep
}

// Placements returns every placement sorted by body.
func (l *Legacy) Placements() []placement.Placement {
	return l.cont.Placements()
}

// Positions converts placements to viewport coordinates.
func (l *Legacy) Positions() PositionMap {
	return PositionMap(l.cont.Positions(l.sun.Anchor(l.viewport)))
}
