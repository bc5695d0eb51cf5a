// Package layout composes the orbit geometry, slot registry, auto placer and
// drag controller into one session object.
//
// An Engine is fed the live set of bodies with Sync and the viewport with
// Resize; it answers with a PositionMap. Layout is never persisted: a new
// Engine recomputes placement from whatever bodies it is given.
package layout

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/papapumpkin/planit/internal/drag"
	"github.com/papapumpkin/planit/internal/notify"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
	"github.com/papapumpkin/planit/internal/slots"
	"github.com/papapumpkin/planit/internal/telemetry"
)

// DefaultViewport is used when Options.Viewport is zero.
var DefaultViewport = orbit.Size{Width: 1280, Height: 800}

// PositionMap maps every placed body to the centre of its slot.
type PositionMap map[orbit.Body]orbit.Point

// ChangeKind distinguishes occupancy updates from geometry updates.
type ChangeKind int

const (
	ChangeOccupancy ChangeKind = iota + 1
	ChangeGeometry
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeOccupancy:
		return "occupancy"
	case ChangeGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change is published whenever positions may have moved. Slots is set for
// occupancy changes, Viewport for geometry changes.
type Change struct {
	Kind     ChangeKind
	Slots    slots.Change
	Viewport orbit.Size
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Table     orbit.Table
	Sun       orbit.Sun
	Viewport  orbit.Size
	Rand      placement.Rand
	Logger    *zap.Logger
	Telemetry *telemetry.Emitter
}

// SyncReport lists what a Sync did. Unplaced bodies did not fit and will be
// retried on the next Sync.
type SyncReport struct {
	Placed   []orbit.Body
	Released []orbit.Body
	Unplaced []orbit.Body
}

// Changed reports whether the sync altered occupancy.
func (r SyncReport) Changed() bool {
	return len(r.Placed) > 0 || len(r.Released) > 0
}

// Engine is a single layout session.
type Engine struct {
	geo    *orbit.Geometry
	reg    *slots.Registry
	placer *placement.AutoPlacer
	drag   *drag.Controller
	log    *zap.Logger
	tel    *telemetry.Emitter

	changes notify.Notifier[Change]
	unsubs  []func()
	// syncMu serialises Sync so two diffing passes never interleave.
	syncMu sync.Mutex
}

// New builds an Engine from opts.
func New(opts Options) (*Engine, error) {
	if len(opts.Table) == 0 {
		opts.Table = orbit.DefaultTable()
	}
	if opts.Sun == (orbit.Sun{}) {
		opts.Sun = orbit.DefaultSun()
	}
	if opts.Viewport == (orbit.Size{}) {
		opts.Viewport = DefaultViewport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	geo, err := orbit.NewGeometry(opts.Table, opts.Sun, opts.Viewport)
	if err != nil {
		return nil, fmt.Errorf("layout: new engine: %w", err)
	}
	reg := slots.New(geo.Count())
	e := &Engine{
		geo:    geo,
		reg:    reg,
		placer: placement.NewAutoPlacer(reg, opts.Rand),
		drag:   drag.New(geo, reg),
		log:    opts.Logger,
		tel:    opts.Telemetry,
	}
	e.unsubs = append(e.unsubs,
		reg.Subscribe(e.onSlotChange),
		e.drag.Subscribe(e.onDragEvent),
	)
	e.log.Debug("layout engine ready",
		zap.Int("slots", geo.Count()),
		zap.Float64("viewport_width", opts.Viewport.Width),
		zap.Float64("viewport_height", opts.Viewport.Height),
	)
	return e, nil
}

// Geometry returns the slot geometry provider.
func (e *Engine) Geometry() *orbit.Geometry { return e.geo }

// Registry returns the slot registry.
func (e *Engine) Registry() *slots.Registry { return e.reg }

// Drag returns the drag controller hosts feed pointer events to.
func (e *Engine) Drag() *drag.Controller { return e.drag }

// OnChange registers fn for occupancy and geometry changes.
func (e *Engine) OnChange(fn func(Change)) (unsubscribe func()) {
	return e.changes.Subscribe(fn)
}

// Sync reconciles occupancy with bodies. Bodies no longer present are
// released; new ones are placed in input order. Duplicate and empty names
// are ignored. Bodies that do not fit are reported in Unplaced and the
// returned error joins one ErrGridFull per body.
func (e *Engine) Sync(bodies []orbit.Body) (SyncReport, error) {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	want := dedupe(bodies)
	keep := make(map[orbit.Body]struct{}, len(want))
	for _, b := range want {
		keep[b] = struct{}{}
	}

	var rep SyncReport
	for _, b := range e.reg.Bodies() {
		if _, ok := keep[b]; ok {
			continue
		}
		if e.reg.Release(b) {
			rep.Released = append(rep.Released, b)
		}
	}

	var errs []error
	for _, b := range want {
		if _, ok := e.reg.SlotOf(b); ok {
			continue
		}
		if _, err := e.placer.Place(b); err != nil {
			errs = append(errs, err)
			if errors.Is(err, placement.ErrGridFull) {
				rep.Unplaced = append(rep.Unplaced, b)
				e.log.Warn("no free slot", zap.String("body", string(b)), zap.Int("capacity", e.reg.Capacity()))
				e.emit(telemetry.KindGridFull, b, map[string]int{"capacity": e.reg.Capacity()})
			}
			continue
		}
		rep.Placed = append(rep.Placed, b)
	}

	e.log.Debug("sync",
		zap.Int("bodies", len(want)),
		zap.Int("placed", len(rep.Placed)),
		zap.Int("released", len(rep.Released)),
		zap.Int("unplaced", len(rep.Unplaced)),
	)
	e.emit(telemetry.KindSync, "", map[string]int{
		"bodies":   len(want),
		"placed":   len(rep.Placed),
		"released": len(rep.Released),
		"unplaced": len(rep.Unplaced),
	})
	return rep, errors.Join(errs...)
}

// Resize recomputes slot coordinates for a new viewport. Occupancy is
// untouched. Listeners are notified only if the viewport actually changed.
func (e *Engine) Resize(viewport orbit.Size) {
	if e.geo.Viewport() == viewport {
		return
	}
	e.geo.Resize(viewport)
	e.log.Debug("resize", zap.Float64("width", viewport.Width), zap.Float64("height", viewport.Height))
	e.emit(telemetry.KindResize, "", viewport)
	e.changes.Notify(Change{Kind: ChangeGeometry, Viewport: viewport})
}

// Positions returns the position of every placed body.
func (e *Engine) Positions() PositionMap {
	as := e.reg.Assignments()
	all := e.geo.Slots()
	pm := make(PositionMap, len(as))
	for _, a := range as {
		pm[a.Body] = all[a.Slot-1].Pos
	}
	return pm
}

// Position returns the position of body if it is placed.
func (e *Engine) Position(body orbit.Body) (orbit.Point, bool) {
	idx, ok := e.reg.SlotOf(body)
	if !ok {
		return orbit.Point{}, false
	}
	s, err := e.geo.Slot(idx)
	if err != nil {
		return orbit.Point{}, false
	}
	return s.Pos, true
}

// Slots returns every slot with its current occupant.
func (e *Engine) Slots() []SlotView {
	all := e.geo.Slots()
	out := make([]SlotView, len(all))
	for i, s := range all {
		out[i] = SlotView{Slot: s}
	}
	for _, a := range e.reg.Assignments() {
		out[a.Slot-1].Body = a.Body
	}
	return out
}

// SlotView is a slot together with the body holding it ("" when free).
type SlotView struct {
	orbit.Slot
	Body orbit.Body `json:"body,omitempty"`
}

// Close detaches the engine's internal listeners. Listeners registered with
// OnChange stay attached until they unsubscribe.
func (e *Engine) Close() {
	for _, u := range e.unsubs {
		u()
	}
	e.unsubs = nil
}

func (e *Engine) onSlotChange(ch slots.Change) {
	fields := []zap.Field{
		zap.String("op", ch.Op.String()),
		zap.String("body", string(ch.Body)),
		zap.Int("from", ch.From),
		zap.Int("to", ch.To),
	}
	switch ch.Op {
	case slots.OpClaim:
		e.emit(telemetry.KindSlotClaimed, ch.Body, map[string]int{"slot": ch.To})
	case slots.OpRelease:
		e.emit(telemetry.KindSlotReleased, ch.Body, map[string]int{"slot": ch.From})
	case slots.OpMove:
		e.emit(telemetry.KindSlotMoved, ch.Body, map[string]int{"from": ch.From, "to": ch.To})
	case slots.OpSwap:
		fields = append(fields, zap.String("displaced", string(ch.Displaced)))
		e.emit(telemetry.KindSlotSwapped, ch.Body, map[string]any{
			"from": ch.From, "to": ch.To, "displaced": string(ch.Displaced),
		})
	case slots.OpReset:
		e.emit(telemetry.KindSlotsReset, "", nil)
	}
	e.log.Debug("slot change", fields...)
	e.changes.Notify(Change{Kind: ChangeOccupancy, Slots: ch})
}

func (e *Engine) onDragEvent(ev drag.Event) {
	switch ev.Kind {
	case drag.EventStart:
		e.log.Debug("drag start", zap.String("body", string(ev.State.Body)), zap.Int("origin", ev.State.Origin))
		e.emit(telemetry.KindDragStart, ev.State.Body, map[string]int{"origin": ev.State.Origin})
	case drag.EventEnd, drag.EventCancel:
		kind := telemetry.KindDragEnd
		if ev.Kind == drag.EventCancel {
			kind = telemetry.KindDragCancel
		}
		if ev.Err != nil {
			e.log.Warn("drag failed", zap.String("body", string(ev.Result.Body)), zap.Error(ev.Err))
		} else {
			e.log.Debug("drag end",
				zap.String("body", string(ev.Result.Body)),
				zap.Int("from", ev.Result.From),
				zap.Int("to", ev.Result.To),
				zap.Bool("moved", ev.Result.Moved),
			)
		}
		e.emit(kind, ev.Result.Body, map[string]any{
			"from": ev.Result.From, "to": ev.Result.To, "moved": ev.Result.Moved,
		})
	}
}

func (e *Engine) emit(kind string, body orbit.Body, data any) {
	if err := e.tel.Emit(telemetry.Event{Kind: kind, Body: string(body), Data: data}); err != nil {
		e.log.Warn("telemetry emit failed", zap.String("kind", kind), zap.Error(err))
	}
}

// dedupe keeps the first occurrence of each non-empty body.
func dedupe(bodies []orbit.Body) []orbit.Body {
	seen := make(map[orbit.Body]struct{}, len(bodies))
	out := make([]orbit.Body, 0, len(bodies))
	for _, b := range bodies {
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
