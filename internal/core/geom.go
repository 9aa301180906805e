// Package core holds the primitives shared between the host and engines:
// the cell framebuffer engines draw into, touch events, and frame timing.
// It has no dependency on the terminal so engines stay testable.
package core

// Rect is an axis-aligned region of the framebuffer.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a rectangle at (x, y) with size w by h.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts val to [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
