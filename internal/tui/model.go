// Package tui provides the BubbleTea-based orbit view.
//
// The view draws the sun, orbit rings and every placed body, and turns mouse
// gestures into drag-controller calls: press grabs the body under the
// pointer, motion moves it and highlights the nearest slot, release drops
// it. Losing focus or pressing esc ends the drag where the pointer last was.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planit/internal/bodies"
	"github.com/papapumpkin/planit/internal/layout"
	"github.com/papapumpkin/planit/internal/orbit"
	"github.com/papapumpkin/planit/internal/slots"
)

// hitRadius is how far, in pixels, a press may land from a planet centre
// and still grab it.
const hitRadius = 40

// chromeRows is the status bar plus the footer.
const chromeRows = 2

// Model is the root orbit-view model.
type Model struct {
	Engine *layout.Engine
	Source bodies.Source
	Keys   KeyMap
	Proj   Projection
	Sun    orbit.Sun

	Width, Height int
	ShowSlots     bool
	Hover         orbit.Body
	Status        string
	Err           error

	counts map[orbit.Body]int
	// last is written by the engine listener; a pointer so copies of the
	// model share it.
	last  *string
	unsub func()
}

// NewModel creates a model over engine. src may be nil when entries are
// only ever pushed with MsgEntries.
func NewModel(engine *layout.Engine, src bodies.Source, sun orbit.Sun) Model {
	m := Model{
		Engine: engine,
		Source: src,
		Keys:   DefaultKeyMap(),
		Proj:   DefaultProjection(),
		Sun:    sun,
		counts: make(map[orbit.Body]int),
		last:   new(string),
	}
	last := m.last
	m.unsub = engine.OnChange(func(c layout.Change) {
		if c.Kind == layout.ChangeOccupancy {
			*last = describe(c.Slots)
		}
	})
	return m
}

// Close detaches the model from the engine. It is idempotent.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Init loads the initial body set.
func (m Model) Init() tea.Cmd {
	return m.loadEntries()
}

func (m Model) loadEntries() tea.Cmd {
	if m.Source == nil {
		return nil
	}
	src := m.Source
	return func() tea.Msg {
		entries, err := src.Entries(context.Background())
		return MsgEntries{Entries: entries, Err: err}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Engine.Resize(m.Proj.Viewport(m.Width, m.canvasRows()))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.Engine.Drag().Cancel() //nolint:errcheck // exiting anyway
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Cancel):
			m = m.cancelDrag()
		case key.Matches(msg, m.Keys.Slots):
			m.ShowSlots = !m.ShowSlots
		case key.Matches(msg, m.Keys.Reload):
			return m, m.loadEntries()
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.BlurMsg:
		return m.cancelDrag(), nil

	case MsgEntries:
		return m.applyEntries(msg), nil
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	pt := m.Proj.Point(msg.X, msg.Y)
	ctl := m.Engine.Drag()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		body, ok := ctl.HitTest(pt, hitRadius)
		if !ok {
			return m
		}
		if err := ctl.PointerDown(body, pt); err != nil {
			m.Err = err
			return m
		}
		m.Err = nil
		m.Status = fmt.Sprintf("dragging %s", body)

	case tea.MouseActionMotion:
		if slot, ok := ctl.PointerMove(pt); ok {
			st, _ := ctl.State()
			m.Status = fmt.Sprintf("dragging %s → slot %d", st.Body, slot.Index)
			return m
		}
		m.Hover, _ = ctl.HitTest(pt, hitRadius)

	case tea.MouseActionRelease:
		if !ctl.Dragging() {
			return m
		}
		*m.last = ""
		res, err := ctl.PointerUp(pt)
		m.Err = err
		if err == nil {
			m.Status = m.dropStatus(res.Body)
		}
	}
	return m
}

func (m Model) cancelDrag() Model {
	if !m.Engine.Drag().Dragging() {
		return m
	}
	*m.last = ""
	res, err := m.Engine.Drag().Cancel()
	m.Err = err
	if err == nil {
		m.Status = m.dropStatus(res.Body) + " (cancelled)"
	}
	return m
}

func (m Model) dropStatus(body orbit.Body) string {
	if *m.last != "" {
		return *m.last
	}
	return fmt.Sprintf("%s stayed put", body)
}

func (m Model) applyEntries(msg MsgEntries) Model {
	if msg.Err != nil {
		m.Err = msg.Err
		return m
	}
	m.counts = bodies.Counts(msg.Entries)
	rep, err := m.Engine.Sync(bodies.Names(msg.Entries))
	m.Err = err
	switch {
	case len(rep.Unplaced) > 0:
		m.Status = fmt.Sprintf("%d bodies did not fit", len(rep.Unplaced))
	case rep.Changed():
		m.Status = fmt.Sprintf("+%d −%d", len(rep.Placed), len(rep.Released))
	}
	return m
}

func (m Model) canvasRows() int {
	return max(m.Height-chromeRows, 0)
}

// Scene assembles the current frame.
func (m Model) Scene() Scene {
	geo := m.Engine.Geometry()
	sc := Scene{
		Cols:      m.Width,
		Rows:      m.canvasRows(),
		Proj:      m.Proj,
		Sun:       m.Sun,
		Anchor:    geo.Anchor(),
		Radii:     geo.Radii(),
		Slots:     m.Engine.Slots(),
		ShowSlots: m.ShowSlots,
	}
	for _, v := range sc.Slots {
		if v.Body != "" {
			sc.Planets = append(sc.Planets, Planet{Body: v.Body, Pos: v.Pos, Completed: m.counts[v.Body]})
		}
	}
	if st, ok := m.Engine.Drag().State(); ok {
		sc.Dragging = st.Body
		sc.Live = st.Live
		sc.Highlights = m.Engine.Drag().Highlights()
	}
	return sc
}

// View renders the orbit canvas, status bar and footer.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.Scene().Render(),
		m.statusLine(),
		m.footer(),
	)
}

func (m Model) statusLine() string {
	if m.Err != nil {
		return styleStatusError.Width(m.Width).Render("✗ " + m.Err.Error())
	}
	reg := m.Engine.Registry()
	parts := []string{fmt.Sprintf("☀ %d/%d", reg.Len(), reg.Capacity())}
	if m.Hover != "" {
		parts = append(parts, fmt.Sprintf("%s: %d completed", m.Hover, m.counts[m.Hover]))
	}
	if m.Status != "" {
		parts = append(parts, m.Status)
	}
	return styleStatusBar.Width(m.Width).Render(strings.Join(parts, "  │  "))
}

func (m Model) footer() string {
	var parts []string
	for _, b := range m.Keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styleFooter.Width(m.Width).Render(strings.Join(parts, " · "))
}

func describe(c slots.Change) string {
	switch c.Op {
	case slots.OpClaim:
		return fmt.Sprintf("%s → slot %d", c.Body, c.To)
	case slots.OpMove:
		return fmt.Sprintf("%s moved %d → %d", c.Body, c.From, c.To)
	case slots.OpSwap:
		return fmt.Sprintf("%s ⇄ %s", c.Body, c.Displaced)
	case slots.OpRelease:
		return fmt.Sprintf("%s left", c.Body)
	default:
		return c.Op.String()
	}
}
