package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/layout"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	blue    = "\033[34m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

// Printer writes human-facing CLI output, colored, to stderr.
type Printer struct {
	w io.Writer
}

func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer that writes to w instead of stderr.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Banner() {
	fmt.Fprintln(p.w, bold+yellow+"  ☀ "+reset+bold+"PLANIT  "+dim+"tasks in orbit"+reset)
	fmt.Fprintln(p.w)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, yellow+bold+"⚠ "+reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", msg)
}

// SyncReport summarizes one reconciliation of the body set.
func (p *Printer) SyncReport(rep layout.SyncReport) {
	for _, b := range rep.Placed {
		fmt.Fprintf(p.w, green+"+ %s"+reset+"\n", b)
	}
	for _, b := range rep.Released {
		fmt.Fprintf(p.w, dim+"- %s"+reset+"\n", b)
	}
	if n := len(rep.Unplaced); n > 0 {
		names := make([]string, n)
		for i, b := range rep.Unplaced {
			names[i] = string(b)
		}
		fmt.Fprintf(p.w, red+bold+"✗ grid full"+reset+": %d left out: %s\n", n, strings.Join(names, ", "))
	}
}

// SlotTable prints every slot, its polar and pixel coordinates, and its
// occupant.
func (p *Printer) SlotTable(views []layout.SlotView) {
	fmt.Fprintln(p.w, bold+"slot  orbit  radius   angle        x        y  body"+reset)
	occupied := 0
	for _, v := range views {
		body := dim + "·" + reset
		if v.Body != "" {
			body = cyan + string(v.Body) + reset
			occupied++
		}
		fmt.Fprintf(p.w, "%4d  %5d  %6.0f  %6.1f°  %7.1f  %7.1f  %s\n",
			v.Index, v.Orbit, v.Radius, v.Angle*180/math.Pi, v.Pos.X, v.Pos.Y, body)
	}
	fmt.Fprintf(p.w, dim+"%d/%d slots occupied"+reset+"\n", occupied, len(views))
}

// Positions prints a position map sorted by body.
func (p *Printer) Positions(pm layout.PositionMap) {
	names := make([]orbit.Body, 0, len(pm))
	for b := range pm {
		names = append(names, b)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, b := range names {
		pt := pm[b]
		fmt.Fprintf(p.w, cyan+"● %s"+reset+dim+" (%.1f, %.1f)"+reset+"\n", b, pt.X, pt.Y)
	}
}

// LegacyPlacements prints grid-less placements, flagging overlaps.
func (p *Printer) LegacyPlacements(ps []placement.Placement) {
	for _, pl := range ps {
		flag := ""
		if pl.Overlapping {
			flag = yellow + "  overlaps" + reset
		}
		fmt.Fprintf(p.w, magenta+"● %s"+reset+dim+" r=%.0f θ=%.1f° size=%.0f tries=%d"+reset+"%s\n",
			pl.Body, pl.Polar.Radius, pl.Polar.Angle*180/math.Pi, pl.Size, pl.Attempts, flag)
	}
}

func (p *Printer) TaskAdded(t bodies.Task) {
	fmt.Fprintf(p.w, green+"◆ task"+reset+" %s "+dim+"in %s (%s)"+reset+"\n", t.Title, t.Category, t.ID)
}

// Launched reports tasks completed in one batch.
func (p *Printer) Launched(n int) {
	if n == 0 {
		fmt.Fprintln(p.w, dim+"nothing to launch"+reset)
		return
	}
	fmt.Fprintf(p.w, green+bold+"🚀 launched %d task(s)"+reset+"\n", n)
}

// TaskList prints tasks with ages relative to now.
func (p *Printer) TaskList(tasks []bodies.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(p.w, dim+"no tasks"+reset)
		return
	}
	for _, t := range tasks {
		mark := blue + "○" + reset
		when := "added " + humanize.RelTime(t.CreatedAt, now, "ago", "from now")
		if t.Done {
			mark = green + "●" + reset
			if t.CompletedAt != nil {
				when = "done " + humanize.RelTime(*t.CompletedAt, now, "ago", "from now")
			}
		}
		fmt.Fprintf(p.w, "%s %s "+dim+"[%s] %s  %s"+reset+"\n", mark, t.Title, t.Category, when, shortID(t.ID))
	}
}

// Categories prints the body set with completed counts.
func (p *Printer) Categories(entries []bodies.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, dim+"no categories"+reset)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, cyan+"● %s"+reset+dim+" %s completed"+reset+"\n", e.Name, humanize.Comma(int64(e.Completed)))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
