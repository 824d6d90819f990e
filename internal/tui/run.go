// Package tui implements the terminal quiz player using Bubble Tea.
package tui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when stdout is not a terminal.
var ErrNotInteractive = errors.New("the quiz player needs an interactive terminal")

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the player in alternate screen mode.
func Run(m tea.Model) error {
	if !IsTTY() {
		return ErrNotInteractive
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
