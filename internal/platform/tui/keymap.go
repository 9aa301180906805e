package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/enginehost/internal/core"
)

// KeyMap defines the shell's key bindings. Everything else belongs to the
// engine, which only receives touches.
type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Screenshot key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Screenshot, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Help, k.Screenshot, k.Quit}}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save frame"),
		),
	}
}

// touchFromMouse translates a mouse message into a touch on pointer 0.
// Wheel and unknown actions are not touches.
func touchFromMouse(msg tea.MouseMsg) (core.TouchEvent, bool) {
	evt := core.TouchEvent{X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return evt, false
		}
		evt.Action = core.TouchDown
	case tea.MouseActionRelease:
		evt.Action = core.TouchUp
	case tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft {
			return evt, false
		}
		evt.Action = core.TouchMove
	default:
		return evt, false
	}
	return evt, true
}
