package surface

import (
	"fmt"
	"strings"
)

// Request holds the desired channel bit depths.
// Color channels must match exactly; depth and stencil are minimums.
type Request struct {
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
}

func (r Request) String() string {
	return fmt.Sprintf("r%d g%d b%d a%d d%d s%d",
		r.Red, r.Green, r.Blue, r.Alpha, r.Depth, r.Stencil)
}

// Validate rejects negative bit widths.
func (r Request) Validate() error {
	for _, v := range []int{r.Red, r.Green, r.Blue, r.Alpha, r.Depth, r.Stencil} {
		if v < 0 {
			return fmt.Errorf("surface: negative bit width in request %s", r)
		}
	}
	return nil
}

// MeetsMinimums reports whether c has at least the requested depth and stencil.
func (r Request) MeetsMinimums(c Candidate) bool {
	return c.Depth >= r.Depth && c.Stencil >= r.Stencil
}

// MatchesColor reports whether c's color channels equal the request exactly.
func (r Request) MatchesColor(c Candidate) bool {
	return c.Red == r.Red && c.Green == r.Green && c.Blue == r.Blue && c.Alpha == r.Alpha
}

// Strategy selects how the request is built.
type Strategy int

const (
	// OpaquePreset is 16-bit 5/6/5 color without alpha.
	OpaquePreset Strategy = iota
	// TranslucentPreset is 32-bit 8/8/8/8 color, for surfaces blended
	// with content behind them.
	TranslucentPreset
	// CustomRequest uses caller-supplied channel widths.
	CustomRequest
)

func (s Strategy) String() string {
	switch s {
	case OpaquePreset:
		return "opaque"
	case TranslucentPreset:
		return "translucent"
	case CustomRequest:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opaque":
		return OpaquePreset, nil
	case "translucent":
		return TranslucentPreset, nil
	case "custom":
		return CustomRequest, nil
	default:
		return OpaquePreset, fmt.Errorf("surface: unknown preset %q", name)
	}
}

// Selection is a strategy plus its parameters, fixed at construction.
type Selection struct {
	Strategy       Strategy
	Depth, Stencil int
	Custom         Request
}

// Opaque selects the 5/6/5/0 preset.
func Opaque(depth, stencil int) Selection {
	return Selection{Strategy: OpaquePreset, Depth: depth, Stencil: stencil}
}

// Translucent selects the 8/8/8/8 preset.
func Translucent(depth, stencil int) Selection {
	return Selection{Strategy: TranslucentPreset, Depth: depth, Stencil: stencil}
}

// Custom selects exactly req.
func Custom(req Request) Selection {
	return Selection{Strategy: CustomRequest, Custom: req}
}

// Request returns the channel widths the selection asks for.
func (s Selection) Request() Request {
	switch s.Strategy {
	case TranslucentPreset:
		return Request{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: s.Depth, Stencil: s.Stencil}
	case CustomRequest:
		return s.Custom
	default:
		return Request{Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: s.Depth, Stencil: s.Stencil}
	}
}

// Translucent reports whether the surface must carry an alpha channel.
func (s Selection) Translucent() bool {
	return s.Request().Alpha > 0
}

func (s Selection) String() string {
	return s.Strategy.String() + " (" + s.Request().String() + ")"
}
