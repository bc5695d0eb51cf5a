package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planit/internal/drag"
	"github.com/papapumpkin/planit/internal/layout"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/placement"
)

// Projection maps viewport pixels onto terminal cells. Cells are roughly
// twice as tall as they are wide, so the default keeps circles round.
type Projection struct {
	CellWidth  float64
	CellHeight float64
}

// DefaultProjection is 10×20 pixels per cell.
func DefaultProjection() Projection {
	return Projection{CellWidth: 10, CellHeight: 20}
}

// Viewport returns the pixel size covered by cols×rows cells.
func (p Projection) Viewport(cols, rows int) orbit.Size {
	return orbit.Size{Width: float64(cols) * p.CellWidth, Height: float64(rows) * p.CellHeight}
}

// Cell returns the cell containing pt.
func (p Projection) Cell(pt orbit.Point) (col, row int) {
	return int(math.Floor(pt.X / p.CellWidth)), int(math.Floor(pt.Y / p.CellHeight))
}

// Point returns the pixel centre of a cell.
func (p Projection) Point(col, row int) orbit.Point {
	return orbit.Pt((float64(col)+0.5)*p.CellWidth, (float64(row)+0.5)*p.CellHeight)
}

// Planet is one body to draw.
type Planet struct {
	Body      orbit.Body
	Pos       orbit.Point
	Completed int
}

// Scene is everything one frame of the orbit view shows.
type Scene struct {
	Cols, Rows int
	Proj       Projection
	Sun        orbit.Sun
	Anchor     orbit.Point
	Radii      []float64
	Slots      []layout.SlotView
	Highlights []drag.SlotHighlight
	ShowSlots  bool
	Planets    []Planet
	// Dragging is drawn at Live instead of its slot position.
	Dragging orbit.Body
	Live     orbit.Point
}

type cell struct {
	r     rune
	style *lipgloss.Style
}

type canvas struct {
	cols, rows int
	cells      [][]cell
	proj       Projection
}

func newCanvas(cols, rows int, proj Projection) *canvas {
	cells := make([][]cell, rows)
	for i := range cells {
		row := make([]cell, cols)
		for j := range row {
			row[j] = cell{r: ' ', style: &styleBlank}
		}
		cells[i] = row
	}
	return &canvas{cols: cols, rows: rows, cells: cells, proj: proj}
}

func (c *canvas) set(col, row int, r rune, st *lipgloss.Style) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] = cell{r: r, style: st}
}

func (c *canvas) plot(pt orbit.Point, r rune, st *lipgloss.Style) {
	col, row := c.proj.Cell(pt)
	c.set(col, row, r, st)
}

func (c *canvas) text(col, row int, s string, st *lipgloss.Style) {
	for _, r := range s {
		c.set(col, row, r, st)
		col++
	}
}

func (c *canvas) ring(center orbit.Point, radius float64) {
	step := math.Min(c.proj.CellWidth, c.proj.CellHeight) / radius
	for a := 0.0; a < 2*math.Pi; a += step {
		c.plot(center.Polar(radius, a), glyphRing, &styleRing)
	}
}

func (c *canvas) disc(center orbit.Point, radius float64) {
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			if c.proj.Point(col, row).Distance(center) <= radius {
				c.set(col, row, glyphSun, &styleSun)
			}
		}
	}
}

// String renders the canvas, merging runs of equally styled cells.
func (c *canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].style == row[start].style {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:j] {
				run.WriteRune(cl.r)
			}
			b.WriteString(row[start].style.Render(run.String()))
			start = j
		}
	}
	return b.String()
}

// Render draws the scene: sun, one ring per radius, optional slot markers,
// then planets with their labels on top.
func (s Scene) Render() string {
	if s.Cols <= 0 || s.Rows <= 0 {
		return ""
	}
	c := newCanvas(s.Cols, s.Rows, s.Proj)
	c.disc(s.Anchor, s.Sun.Size/2)
	for _, r := range s.Radii {
		c.ring(s.Anchor, r)
	}

	kinds := make(map[int]drag.HighlightKind, len(s.Highlights))
	for _, h := range s.Highlights {
		kinds[h.Index] = h.Kind
	}
	if s.ShowSlots || len(kinds) > 0 {
		for _, v := range s.Slots {
			glyph, st := glyphFree, &styleFree
			kind, ok := kinds[v.Index]
			switch {
			case ok && kind == drag.Nearest:
				glyph, st = glyphNearest, &styleNearest
			case (ok && kind == drag.Occupied) || (!ok && v.Body != ""):
				glyph, st = glyphOccupied, &styleOccupied
			}
			c.plot(v.Pos, glyph, st)
		}
	}

	var dragged *Planet
	for i, p := range s.Planets {
		if p.Body == s.Dragging {
			dragged = &s.Planets[i]
			continue
		}
		s.drawPlanet(c, p, p.Pos)
	}
	if dragged != nil {
		s.drawPlanet(c, *dragged, s.Live)
	}
	return c.String()
}

func (s Scene) drawPlanet(c *canvas, p Planet, pos orbit.Point) {
	st := lipgloss.NewStyle().Foreground(PlanetColor(p.Body)).Bold(true)
	glyph := glyphPlanet
	if placement.PlanetSize(p.Completed) >= 120 {
		glyph = glyphGiant
	}
	col, row := s.Proj.Cell(pos)
	c.set(col, row, glyph, &st)
	c.text(col+2, row, string(p.Body), &styleLabel)
}
