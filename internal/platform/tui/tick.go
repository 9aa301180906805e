// Package tui runs an engine host inside a Bubble Tea program. The terminal
// plays the part of the visible surface: one cell is one pixel, focus
// changes create and destroy the surface, and mouse events become touches.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends one TickMsg after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
