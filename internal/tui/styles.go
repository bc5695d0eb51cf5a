package tui

import (
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planit/internal/orbit"
)

// Semantic color palette.
var (
	colorSun        = lipgloss.Color("#FFB020") // Amber, the anchor
	colorRing       = lipgloss.Color("#3A3A55") // Dim violet, orbit rings
	colorFree       = lipgloss.Color("#636363") // Gray, free slot
	colorOccupied   = lipgloss.Color("#5B8DEF") // Blue, occupied slot
	colorNearest    = lipgloss.Color("#00E676") // Green, drop target
	colorDanger     = lipgloss.Color("#FF5252") // Red, errors
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray, labels
	colorWhite      = lipgloss.Color("#EEEEEE") // Off-white, primary text
	colorSurface    = lipgloss.Color("#1E1E2E") // Dark surface, status bar bg
	colorSurfaceDim = lipgloss.Color("#181825") // Darkest surface, footer bg
)

// planetColors are the gradient start colors planets are drawn in.
var planetColors = []lipgloss.Color{
	"#667eea",
	"#f093fb",
	"#4facfe",
	"#43e97b",
	"#fa709a",
	"#30cfd0",
	"#a8edea",
	"#ff9a9e",
}

// PlanetColor picks a body's color from its first rune, so a body keeps its
// color across sessions.
func PlanetColor(b orbit.Body) lipgloss.Color {
	r, _ := utf8.DecodeRuneInString(string(b))
	if r == utf8.RuneError {
		return planetColors[0]
	}
	return planetColors[int(r)%len(planetColors)]
}

// Glyphs drawn on the canvas.
const (
	glyphRing     = '·'
	glyphSun      = '░'
	glyphFree     = '○'
	glyphOccupied = '◌'
	glyphNearest  = '◎'
	glyphPlanet   = '●'
	glyphGiant    = '◉'
)

var (
	styleRing     = lipgloss.NewStyle().Foreground(colorRing)
	styleSun      = lipgloss.NewStyle().Foreground(colorSun)
	styleFree     = lipgloss.NewStyle().Foreground(colorFree)
	styleOccupied = lipgloss.NewStyle().Foreground(colorOccupied)
	styleNearest  = lipgloss.NewStyle().Foreground(colorNearest).Bold(true)
	styleLabel    = lipgloss.NewStyle().Foreground(colorMutedLight)
	styleBlank    = lipgloss.NewStyle()
)

// Status bar and footer styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleStatusError = lipgloss.NewStyle().
				Background(colorSurface).
				Foreground(colorDanger).
				Bold(true).
				Padding(0, 1)

	styleFooter = lipgloss.NewStyle().
			Background(colorSurfaceDim).
			Foreground(colorMutedLight).
			Padding(0, 1)
)
