package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/enginehost/internal/core"
	"github.com/vovakirdan/enginehost/internal/host"
	"github.com/vovakirdan/enginehost/internal/surface"
)

// statusRows is the height reserved below the surface for the status bar.
const statusRows = 1

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// surfaceCreatedMsg asks the model to create the surface.
type surfaceCreatedMsg struct{}

func createSurface() tea.Msg { return surfaceCreatedMsg{} }

// Model is the Bubble Tea model presenting one bootstrapped host.
// The terminal window is the surface: focus creates it, blur destroys it
// and every tick draws a frame while it is active.
type Model struct {
	host          *host.Host
	screen        *core.Screen
	timing        core.Timing
	keys          KeyMap
	help          help.Model
	screenshotDir string

	width    int // surface size, without the status bar
	height   int
	sized    bool
	showHelp bool
	quitting bool
	err      error
}

// NewModel creates a model for h. h must already be bootstrapped.
func NewModel(h *host.Host, timing core.Timing) Model {
	return Model{
		host:   h,
		screen: core.NewScreen(0, 0),
		timing: timing,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// WithScreenshotDir enables ctrl+s frame dumps into dir.
func (m Model) WithScreenshotDir(dir string) Model {
	m.screenshotDir = dir
	return m
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error { return m.err }

// Init creates the surface and starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(createSurface, tickCmd(m.timing.Interval()))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case surfaceCreatedMsg, tea.FocusMsg:
		return m.handleCreate()

	case tea.BlurMsg:
		if err := m.host.SurfaceDestroyed(); err != nil {
			return m.fail(err)
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = max(msg.Width, 0)
	m.height = max(msg.Height-statusRows, 0)
	m.sized = true
	m.help.Width = msg.Width
	m.screen.Resize(m.width, m.height)

	if !m.live() {
		return m, nil
	}
	if err := m.host.SurfaceChanged(m.width, m.height); err != nil {
		return m.fail(err)
	}
	return m, nil
}

// handleCreate brings the surface up. A focus event for a surface that
// is already live is ignored.
func (m Model) handleCreate() (tea.Model, tea.Cmd) {
	if m.live() {
		return m, nil
	}
	if err := m.host.SurfaceCreated(); err != nil {
		return m.fail(err)
	}
	if m.sized {
		if err := m.host.SurfaceChanged(m.width, m.height); err != nil {
			return m.fail(err)
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	evt, ok := touchFromMouse(msg)
	if !ok {
		return m, nil
	}

	bounds := m.screen.Bounds()
	if evt.Action == core.TouchUp {
		// A release may land on the status bar; keep it on the surface.
		evt.X = core.Clamp(evt.X, 0, max(m.width-1, 0))
		evt.Y = core.Clamp(evt.Y, 0, max(m.height-1, 0))
	} else if !bounds.Contains(evt.X, evt.Y) {
		return m, nil
	}

	if err := m.host.Touch(evt); err != nil {
		return m.fail(err)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.host.State() == surface.Active {
		if err := m.host.DrawFrame(); err != nil {
			return m.fail(err)
		}
	}
	return m, tickCmd(m.timing.Interval())
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.quitting = true
	return m, tea.Quit
}

func (m Model) live() bool {
	switch m.host.State() {
	case surface.ContextCreated, surface.Active:
		return true
	default:
		return false
	}
}

// saveScreenshot writes the current frame as plain text.
func (m *Model) saveScreenshot() {
	if m.screenshotDir == "" {
		return
	}
	m.host.Render(m.screen)

	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.screenshotDir, 0o755)

	name := fmt.Sprintf("frame_%s.txt", time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, the frame loop continues regardless
	os.WriteFile(filepath.Join(m.screenshotDir, name), []byte(m.screen.String()), 0o600)
}

// View renders the last frame and the status bar.
func (m Model) View() string {
	if m.quitting {
		if m.err != nil {
			return errorStyle.Render("error: "+m.err.Error()) + "\n"
		}
		return ""
	}
	if !m.sized {
		return ""
	}

	m.screen.Clear()
	if m.live() {
		m.host.Render(m.screen)
	} else {
		m.screen.DrawText(0, 0, "surface released", core.ColorGray)
	}
	return lipgloss.JoinVertical(lipgloss.Left, RenderScreen(m.screen), m.statusLine())
}

func (m Model) statusLine() string {
	var line string
	if m.showHelp {
		line = " " + m.help.View(m.keys)
	} else {
		line = fmt.Sprintf(" %s | %s | %dx%d | frame %d | ? help",
			m.host.State(), m.host.Candidate(), m.width, m.height, m.host.Frames())
	}
	return statusStyle.Width(m.width).MaxHeight(statusRows).Render(line)
}

// Run bootstraps h and presents it until the user quits.
func Run(h *host.Host, timing core.Timing, screenshotDir string) error {
	if err := h.Bootstrap(); err != nil {
		return err
	}
	defer h.Close() //nolint:errcheck // Surface is released on exit either way

	model := NewModel(h, timing).WithScreenshotDir(screenshotDir)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
