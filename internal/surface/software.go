package surface

import "sync"

// CandidateSpec describes one configuration offered by a SoftwareDisplay.
type CandidateSpec struct {
	ID                      int
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
	Samples                 int
	Renderable              int // OpenGLES2Bit | OpenGLES3Bit
}

// SoftwareDisplay is an in-process Display offering a fixed list of
// configurations in the given order. It follows display semantics closely
// enough to exercise negotiation without a GPU: size attributes are
// minimum matches, renderable type is a bit mask, and failures queue an
// error code for GetError.
type SoftwareDisplay struct {
	mu       sync.Mutex
	specs    []CandidateSpec
	contexts map[Context]Config
	next     Context
	errors   []ErrorCode
}

// DefaultCandidates is a typical mobile GPU's configuration list.
func DefaultCandidates() []CandidateSpec {
	es := OpenGLES2Bit | OpenGLES3Bit
	return []CandidateSpec{
		{ID: 1, Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 24, Stencil: 8, Renderable: es},
		{ID: 2, Red: 8, Green: 8, Blue: 8, Alpha: 0, Depth: 24, Stencil: 8, Renderable: es},
		{ID: 3, Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: 0, Stencil: 0, Renderable: es},
		{ID: 4, Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: 16, Stencil: 0, Renderable: es},
		{ID: 5, Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: 24, Stencil: 8, Renderable: es},
		{ID: 6, Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 16, Stencil: 0, Renderable: es},
		{ID: 7, Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 24, Stencil: 8, Samples: 4, Renderable: es},
		{ID: 8, Red: 4, Green: 4, Blue: 4, Alpha: 4, Depth: 16, Stencil: 0, Renderable: OpenGLES2Bit},
	}
}

// NewSoftwareDisplay creates a display offering specs in order.
func NewSoftwareDisplay(specs []CandidateSpec) *SoftwareDisplay {
	cp := make([]CandidateSpec, len(specs))
	copy(cp, specs)
	return &SoftwareDisplay{
		specs:    cp,
		contexts: make(map[Context]Config),
	}
}

// ChooseConfig implements Display.
func (d *SoftwareDisplay) ChooseConfig(attribs []int32, configs []Config) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var matched []Config
	for i, spec := range d.specs {
		ok, code := specMatches(spec, attribs)
		if code != Success {
			d.errors = append(d.errors, code)
			return 0, code
		}
		if ok {
			matched = append(matched, Config(i+1))
		}
	}

	if configs == nil {
		return len(matched), nil
	}
	return copy(configs, matched), nil
}

// ConfigAttrib implements Display.
func (d *SoftwareDisplay) ConfigAttrib(config Config, attr Attrib) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.spec(config)
	if !ok {
		d.errors = append(d.errors, BadConfig)
		return 0, BadConfig
	}
	v, ok := specAttrib(spec, attr)
	if !ok {
		d.errors = append(d.errors, BadAttribute)
		return 0, BadAttribute
	}
	return v, nil
}

// CreateContext implements Display.
func (d *SoftwareDisplay) CreateContext(config Config, attribs []int32) (Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, ok := d.spec(config)
	if !ok {
		d.errors = append(d.errors, BadConfig)
		return NoContext, BadConfig
	}

	version := int32(1)
	code := Success
	eachAttrib(attribs, func(key Attrib, value int32) bool {
		if key != ContextClientVersion {
			code = BadAttribute
			return false
		}
		version = value
		return true
	})
	if code != Success {
		d.errors = append(d.errors, code)
		return NoContext, code
	}

	var bit int
	switch version {
	case 2:
		bit = OpenGLES2Bit
	case 3:
		bit = OpenGLES3Bit
	default:
		d.errors = append(d.errors, BadMatch)
		return NoContext, BadMatch
	}
	if spec.Renderable&bit == 0 {
		d.errors = append(d.errors, BadMatch)
		return NoContext, BadMatch
	}

	d.next++
	d.contexts[d.next] = config
	return d.next, nil
}

// DestroyContext implements Display.
func (d *SoftwareDisplay) DestroyContext(ctx Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.contexts[ctx]; !ok {
		d.errors = append(d.errors, BadContext)
		return BadContext
	}
	delete(d.contexts, ctx)
	return nil
}

// GetError implements Display.
func (d *SoftwareDisplay) GetError() ErrorCode {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.errors) == 0 {
		return Success
	}
	code := d.errors[0]
	d.errors = d.errors[1:]
	return code
}

// LiveContexts returns the number of contexts not yet destroyed.
func (d *SoftwareDisplay) LiveContexts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.contexts)
}

func (d *SoftwareDisplay) spec(config Config) (CandidateSpec, bool) {
	i := int(config) - 1
	if i < 0 || i >= len(d.specs) {
		return CandidateSpec{}, false
	}
	return d.specs[i], true
}

func specAttrib(spec CandidateSpec, attr Attrib) (int32, bool) {
	switch attr {
	case ConfigID:
		return int32(spec.ID), true
	case RedSize:
		return int32(spec.Red), true
	case GreenSize:
		return int32(spec.Green), true
	case BlueSize:
		return int32(spec.Blue), true
	case AlphaSize:
		return int32(spec.Alpha), true
	case DepthSize:
		return int32(spec.Depth), true
	case StencilSize:
		return int32(spec.Stencil), true
	case BufferSize:
		return int32(spec.Red + spec.Green + spec.Blue + spec.Alpha), true
	case Samples:
		return int32(spec.Samples), true
	case SampleBuffers:
		if spec.Samples > 0 {
			return 1, true
		}
		return 0, true
	case RenderableType:
		return int32(spec.Renderable), true
	case ConfigCaveat:
		return int32(None), true
	default:
		return 0, false
	}
}

// specMatches applies attribs to spec. Sizes are minimums, RenderableType
// is a mask, ConfigID is exact. An unknown key yields BadAttribute.
func specMatches(spec CandidateSpec, attribs []int32) (bool, ErrorCode) {
	match := true
	code := Success
	eachAttrib(attribs, func(key Attrib, value int32) bool {
		have, ok := specAttrib(spec, key)
		if !ok {
			code = BadAttribute
			return false
		}
		switch key {
		case RenderableType:
			if have&value != value {
				match = false
			}
		case ConfigID:
			if have != value {
				match = false
			}
		default:
			if have < value {
				match = false
			}
		}
		return match
	})
	return match, code
}
