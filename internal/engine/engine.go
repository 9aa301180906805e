// Package engine defines the narrow handle through which the host reaches a
// rendering engine, and a registry that resolves engines by name.
//
// The host owns the handle and calls it serially from its render loop:
// InitResources once after staging, InitEngine on every surface change,
// Tick once per frame. OnTouch may arrive from another goroutine, so
// engines serialize their own state.
package engine

import (
	"errors"

	"github.com/vovakirdan/enginehost/internal/core"
)

// ErrUnknownEngine is returned by Create for an unregistered name.
var ErrUnknownEngine = errors.New("engine: unknown engine")

// Handle is the host-to-engine boundary.
type Handle interface {
	// InitResources hands the engine its staged resource directory and its
	// writable user directory. Called once, before any rendering call.
	InitResources(resourceDir, userDir string) error

	// InitEngine delivers the surface size in pixels. Called on every
	// surface change, including the first.
	InitEngine(width, height int) error

	// Tick renders one frame. It must not block indefinitely.
	Tick() error

	// OnTouch forwards one pointer event.
	OnTouch(action core.TouchAction, pointer, x, y int) error
}

// Renderer is implemented by engines that can present their last frame in
// a cell framebuffer. The terminal shell uses it in place of a GL surface.
type Renderer interface {
	Render(dst *core.Screen)
}
