// Package host composes the resource stager, the surface negotiator and an
// engine handle into the lifecycle a platform shell drives:
//
//	Bootstrap → SurfaceCreated → SurfaceChanged → DrawFrame... → SurfaceDestroyed
//
// A destroyed surface may be created again. Touch may be called from any
// goroutine once bootstrapped; every other method is called serially from
// the shell's render loop.
package host

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/core"
	"github.com/vovakirdan/enginehost/internal/engine"
	"github.com/vovakirdan/enginehost/internal/surface"
)

// ErrNotBootstrapped is returned by surface and input calls made before
// Bootstrap completed.
var ErrNotBootstrapped = errors.New("host: not bootstrapped")

// Options configures a Host.
type Options struct {
	Source     assets.Source // required unless Staged
	SourceName string        // for logs and the journal
	Layout     assets.Layout
	Classifier assets.Classifier
	Staged     bool // the resource tree is already staged; skip the pass
	Strict     bool // a partial staging failure aborts Bootstrap

	Display   surface.Display
	Selection surface.Selection

	Engine  engine.Handle
	Journal Journal // optional
	Logger  *log.Logger
}

// Host drives one engine on one surface.
type Host struct {
	opts       Options
	logger     *log.Logger
	negotiator *surface.Negotiator

	bootstrapped atomic.Bool
	report       assets.Report
}

// New validates opts and creates a host.
func New(opts Options) (*Host, error) {
	if opts.Engine == nil {
		return nil, errors.New("host: no engine")
	}
	if opts.Display == nil {
		return nil, errors.New("host: no display")
	}
	if opts.Layout.Root == "" {
		return nil, errors.New("host: no resource root")
	}
	if !opts.Staged && opts.Source == nil {
		return nil, errors.New("host: no asset source")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Host{
		opts:       opts,
		logger:     opts.Logger.WithPrefix("host"),
		negotiator: surface.NewNegotiator(opts.Display, opts.Selection, opts.Logger),
	}, nil
}

// Bootstrap stages the resource tree (unless already staged) and hands the
// engine its directories. The engine's InitResources runs exactly once;
// later calls are no-ops.
func (h *Host) Bootstrap() error {
	if h.bootstrapped.Load() {
		return nil
	}

	if err := h.opts.Layout.Prepare(); err != nil {
		return err
	}

	if !h.opts.Staged {
		report, err := Stage(h.opts)
		h.report = report
		if err != nil {
			var partial *assets.PartialFailure
			if !errors.As(err, &partial) || h.opts.Strict {
				return err
			}
			h.logger.Warn("continuing with incomplete resources", "skipped", len(partial.Errors))
		}
	}

	res, user := h.opts.Layout.ResDir(), h.opts.Layout.UserDir()
	if err := h.opts.Engine.InitResources(res, user); err != nil {
		return fmt.Errorf("host: engine resource init failed: %w", err)
	}
	h.bootstrapped.Store(true)
	h.logger.Info("bootstrapped", "res", res, "user", user)
	return nil
}

// SurfaceCreated negotiates a configuration and context. Failures are fatal
// to the surface and journaled.
func (h *Host) SurfaceCreated() error {
	if !h.bootstrapped.Load() {
		return ErrNotBootstrapped
	}

	err := h.negotiator.SurfaceCreated()
	if errors.Is(err, surface.ErrInvalidState) {
		return err
	}
	h.journalNegotiation(err)
	return err
}

// SurfaceChanged delivers the surface size to the engine.
func (h *Host) SurfaceChanged(width, height int) error {
	if err := h.negotiator.SurfaceChanged(width, height); err != nil {
		return err
	}
	if err := h.opts.Engine.InitEngine(width, height); err != nil {
		return fmt.Errorf("host: engine init failed: %w", err)
	}
	return nil
}

// DrawFrame ticks the engine once.
func (h *Host) DrawFrame() error {
	if err := h.negotiator.Frame(); err != nil {
		return err
	}
	if err := h.opts.Engine.Tick(); err != nil {
		return fmt.Errorf("host: engine tick failed: %w", err)
	}
	return nil
}

// SurfaceDestroyed releases the context. The engine keeps its state and is
// resized again when a new surface arrives.
func (h *Host) SurfaceDestroyed() error {
	return h.negotiator.SurfaceDestroyed()
}

// Touch forwards a pointer event to the engine.
func (h *Host) Touch(evt core.TouchEvent) error {
	if !h.bootstrapped.Load() {
		return ErrNotBootstrapped
	}
	return h.opts.Engine.OnTouch(evt.Action, evt.Pointer, evt.X, evt.Y)
}

// Render presents the engine's last frame in dst. It reports false when
// the engine cannot render into a cell framebuffer.
func (h *Host) Render(dst *core.Screen) bool {
	r, ok := h.opts.Engine.(engine.Renderer)
	if !ok {
		return false
	}
	r.Render(dst)
	return true
}

// Close releases the surface and the engine.
func (h *Host) Close() error {
	err := h.negotiator.SurfaceDestroyed()
	if c, ok := h.opts.Engine.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// State returns the surface lifecycle state.
func (h *Host) State() surface.State { return h.negotiator.State() }

// Candidate returns the negotiated configuration.
func (h *Host) Candidate() surface.Candidate { return h.negotiator.Candidate() }

// Frames returns the frames drawn on the current surface.
func (h *Host) Frames() uint64 { return h.negotiator.Frames() }

// Selection returns the configured surface selection.
func (h *Host) Selection() surface.Selection { return h.negotiator.Selection() }

// Report returns the staging report of Bootstrap; zero when Staged.
func (h *Host) Report() assets.Report { return h.report }

func (h *Host) journalNegotiation(err error) {
	if h.opts.Journal == nil {
		return
	}
	sel := h.opts.Selection
	n := Negotiation{
		Strategy: sel.Strategy.String(),
		Request:  sel.Request().String(),
		At:       time.Now(),
	}
	if err != nil {
		n.Error = err.Error()
		var cce *surface.ContextCreationError
		if errors.As(err, &cce) {
			n.ConfigID = cce.Config.ID
			n.Config = cce.Config.String()
		}
	} else {
		c := h.negotiator.Candidate()
		n.ConfigID = c.ID
		n.Config = c.String()
	}
	if jerr := h.opts.Journal.SaveNegotiation(n); jerr != nil {
		h.logger.Warn("journal write failed", "error", jerr)
	}
}
