package surface

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// State is the lifecycle position of one visible surface.
type State int

const (
	Uninitialized State = iota
	ConfigChosen
	ContextCreated
	Active
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ConfigChosen:
		return "config-chosen"
	case ContextCreated:
		return "context-created"
	case Active:
		return "active"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Negotiator drives one surface through
// Uninitialized → ConfigChosen → ContextCreated → Active → Destroyed.
// A destroyed surface may be created again, which runs a fresh negotiation.
//
// Events are expected serially from a single render loop; Negotiator does
// no locking.
type Negotiator struct {
	display   Display
	selection Selection
	logger    *log.Logger

	state     State
	candidate Candidate
	context   Context
	width     int
	height    int
	frames    uint64
}

// NewNegotiator creates a negotiator for display using selection.
func NewNegotiator(display Display, selection Selection, logger *log.Logger) *Negotiator {
	if logger == nil {
		logger = log.Default()
	}
	return &Negotiator{
		display:   display,
		selection: selection,
		logger:    logger.WithPrefix("surface"),
	}
}

// SurfaceCreated chooses a configuration and creates a context.
// On failure the negotiator returns to Uninitialized; the error is a
// *NoMatchingConfigError or *ContextCreationError and is fatal to the surface.
func (n *Negotiator) SurfaceCreated() error {
	if n.state != Uninitialized && n.state != Destroyed {
		return fmt.Errorf("%w: surface created while %s", ErrInvalidState, n.state)
	}
	n.reset()

	req := n.selection.Request()
	candidate, err := ChooseConfig(n.display, req)
	if err != nil {
		n.logger.Error("config negotiation failed", "selection", n.selection, "error", err)
		return err
	}
	n.candidate = candidate
	n.state = ConfigChosen
	n.logger.Info("config chosen", "selection", n.selection.Strategy, "config", candidate)
	if n.logger.GetLevel() <= log.DebugLevel {
		n.logger.Debug("config attributes", "attribs", DescribeConfig(n.display, candidate.Config))
	}

	ctx, err := CreateContext(n.display, candidate, n.logger)
	if err != nil {
		n.logger.Error("context creation failed", "config", candidate, "error", err)
		n.reset()
		return err
	}
	n.context = ctx
	n.state = ContextCreated
	return nil
}

// SurfaceChanged records the surface's pixel dimensions and makes it Active.
func (n *Negotiator) SurfaceChanged(width, height int) error {
	if n.state != ContextCreated && n.state != Active {
		return fmt.Errorf("%w: surface changed while %s", ErrInvalidState, n.state)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("surface: invalid size %dx%d", width, height)
	}
	n.width, n.height = width, height
	n.state = Active
	n.logger.Debug("surface changed", "width", width, "height", height)
	return nil
}

// Frame accounts for one rendered frame. Only an Active surface renders.
func (n *Negotiator) Frame() error {
	if n.state != Active {
		return fmt.Errorf("%w: frame while %s", ErrInvalidState, n.state)
	}
	n.frames++
	return nil
}

// SurfaceDestroyed releases the context. Repeated calls, or calls before
// a context exists, are no-ops.
func (n *Negotiator) SurfaceDestroyed() error {
	if n.state == Uninitialized || n.state == Destroyed {
		return nil
	}

	ctx := n.context
	n.context = NoContext
	n.state = Destroyed

	if err := DestroyContext(n.display, ctx); err != nil {
		n.logger.Warn("context release failed", "error", err)
		return err
	}
	n.logger.Debug("surface destroyed", "frames", n.frames)
	return nil
}

// State returns the current lifecycle state.
func (n *Negotiator) State() State { return n.state }

// Selection returns the strategy the negotiator was built with.
func (n *Negotiator) Selection() Selection { return n.selection }

// Candidate returns the chosen configuration; zero before negotiation.
func (n *Negotiator) Candidate() Candidate { return n.candidate }

// Context returns the live context handle, or NoContext.
func (n *Negotiator) Context() Context { return n.context }

// Size returns the last delivered surface size.
func (n *Negotiator) Size() (int, int) { return n.width, n.height }

// Frames returns the frames rendered since the surface was created.
func (n *Negotiator) Frames() uint64 { return n.frames }

func (n *Negotiator) reset() {
	n.state = Uninitialized
	n.candidate = Candidate{}
	n.context = NoContext
	n.width, n.height = 0, 0
	n.frames = 0
}
