package surface

import (
	"fmt"
	"strings"
)

// looseAttribs is the display-side prefilter: at least 4 bits per color
// channel and OpenGL ES 2 renderable.
var looseAttribs = attribList(
	int32(RedSize), 4,
	int32(GreenSize), 4,
	int32(BlueSize), 4,
	int32(RenderableType), OpenGLES2Bit,
)

// Candidate is a display-offered configuration with its attributes resolved.
type Candidate struct {
	Config                  Config
	ID                      int
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
}

func (c Candidate) String() string {
	return fmt.Sprintf("#%d r%d g%d b%d a%d d%d s%d",
		c.ID, c.Red, c.Green, c.Blue, c.Alpha, c.Depth, c.Stencil)
}

// ChooseConfig picks the first display configuration, in platform order,
// whose depth and stencil are at least the requested sizes and whose color
// channels equal the request exactly.
//
// It fails with a *NoMatchingConfigError when the display offers no
// candidates (without scanning) or when the scan finds no match.
func ChooseConfig(d Display, req Request) (Candidate, error) {
	configs, err := candidates(d)
	if err != nil {
		return Candidate{}, err
	}
	if len(configs) == 0 {
		return Candidate{}, &NoMatchingConfigError{Request: req}
	}

	for _, cfg := range configs {
		c := Candidate{Config: cfg}
		c.Depth = attrib(d, cfg, DepthSize)
		c.Stencil = attrib(d, cfg, StencilSize)
		if !req.MeetsMinimums(c) {
			continue
		}

		c.Red = attrib(d, cfg, RedSize)
		c.Green = attrib(d, cfg, GreenSize)
		c.Blue = attrib(d, cfg, BlueSize)
		c.Alpha = attrib(d, cfg, AlphaSize)
		if !req.MatchesColor(c) {
			continue
		}

		c.ID = attrib(d, cfg, ConfigID)
		return c, nil
	}

	return Candidate{}, &NoMatchingConfigError{Request: req, Candidates: len(configs)}
}

// ListCandidates returns every configuration passing the loose filter, with
// all attributes resolved.
func ListCandidates(d Display) ([]Candidate, error) {
	configs, err := candidates(d)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, Resolve(d, cfg))
	}
	return out, nil
}

// Resolve reads all candidate attributes of cfg.
func Resolve(d Display, cfg Config) Candidate {
	return Candidate{
		Config:  cfg,
		ID:      attrib(d, cfg, ConfigID),
		Red:     attrib(d, cfg, RedSize),
		Green:   attrib(d, cfg, GreenSize),
		Blue:    attrib(d, cfg, BlueSize),
		Alpha:   attrib(d, cfg, AlphaSize),
		Depth:   attrib(d, cfg, DepthSize),
		Stencil: attrib(d, cfg, StencilSize),
	}
}

// DescribeConfig formats every known attribute of cfg, for debug listings.
func DescribeConfig(d Display, cfg Config) string {
	parts := make([]string, 0, len(attribNames))
	for _, n := range attribNames {
		v, err := d.ConfigAttrib(cfg, n.attr)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", n.name, v))
	}
	return strings.Join(parts, " ")
}

// candidates queries the count, then the list.
func candidates(d Display) ([]Config, error) {
	n, err := d.ChooseConfig(looseAttribs, nil)
	if err != nil {
		return nil, fmt.Errorf("surface: config count query failed: %w", err)
	}
	if n <= 0 {
		return nil, nil
	}

	configs := make([]Config, n)
	n, err = d.ChooseConfig(looseAttribs, configs)
	if err != nil {
		return nil, fmt.Errorf("surface: config query failed: %w", err)
	}
	return configs[:n], nil
}

// attrib reads one attribute, defaulting to 0 when the display refuses.
func attrib(d Display, cfg Config, attr Attrib) int {
	v, err := d.ConfigAttrib(cfg, attr)
	if err != nil {
		return 0
	}
	return int(v)
}
