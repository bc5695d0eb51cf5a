package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates a full-screen program for m with mouse motion and focus
// reporting enabled, both of which the drag gesture relies on.
func NewProgram(m Model, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(m, allOpts...)
}

// Run runs p, blocking until it exits.
func Run(p *Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
