package surface

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// countingDisplay wraps a Display and records how it was used.
type countingDisplay struct {
	Display
	countQueries int
	listQueries  int
	attribReads  int
	creates      int
	destroys     int
	getErrors    int
	failCreate   error
	pending      []ErrorCode
}

func (c *countingDisplay) ChooseConfig(attribs []int32, configs []Config) (int, error) {
	if configs == nil {
		c.countQueries++
	} else {
		c.listQueries++
	}
	return c.Display.ChooseConfig(attribs, configs)
}

func (c *countingDisplay) ConfigAttrib(config Config, attr Attrib) (int32, error) {
	c.attribReads++
	return c.Display.ConfigAttrib(config, attr)
}

func (c *countingDisplay) CreateContext(config Config, attribs []int32) (Context, error) {
	c.creates++
	if c.failCreate != nil {
		c.pending = append(c.pending, BadAlloc)
		return NoContext, c.failCreate
	}
	return c.Display.CreateContext(config, attribs)
}

func (c *countingDisplay) DestroyContext(ctx Context) error {
	c.destroys++
	return c.Display.DestroyContext(ctx)
}

func (c *countingDisplay) GetError() ErrorCode {
	c.getErrors++
	if len(c.pending) > 0 {
		code := c.pending[0]
		c.pending = c.pending[1:]
		return code
	}
	return c.Display.GetError()
}

func spec(id, r, g, b, a, d, s int) CandidateSpec {
	return CandidateSpec{ID: id, Red: r, Green: g, Blue: b, Alpha: a, Depth: d, Stencil: s, Renderable: OpenGLES2Bit}
}

func TestChooseConfigExactColorMatch(t *testing.T) {
	display := NewSoftwareDisplay([]CandidateSpec{
		spec(1, 8, 8, 8, 8, 24, 8),
		spec(2, 5, 6, 5, 0, 8, 0),  // depth too small
		spec(3, 5, 6, 5, 0, 16, 0), // match
		spec(4, 5, 6, 5, 0, 24, 8), // also a match, but later
	})

	req := Request{Red: 5, Green: 6, Blue: 5, Alpha: 0, Depth: 16}
	got, err := ChooseConfig(display, req)
	if err != nil {
		t.Fatalf("ChooseConfig() failed: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("ChooseConfig() = %v, expected config #3", got)
	}
	if got.Red != 5 || got.Green != 6 || got.Blue != 5 || got.Alpha != 0 || got.Depth != 16 {
		t.Errorf("candidate attributes not resolved: %v", got)
	}
}

func TestChooseConfigAllAlphaFails(t *testing.T) {
	display := NewSoftwareDisplay([]CandidateSpec{
		spec(1, 8, 8, 8, 8, 24, 8),
		spec(2, 5, 6, 5, 8, 16, 0),
		spec(3, 4, 4, 4, 8, 16, 0),
	})

	_, err := ChooseConfig(display, Opaque(16, 0).Request())
	if !errors.Is(err, ErrNoMatchingConfig) {
		t.Fatalf("ChooseConfig() error = %v, expected ErrNoMatchingConfig", err)
	}
	var nm *NoMatchingConfigError
	if !errors.As(err, &nm) || nm.Candidates != 3 {
		t.Errorf("expected NoMatchingConfigError with 3 candidates, got %v", err)
	}
}

func TestChooseConfigZeroCandidatesFailsWithoutScanning(t *testing.T) {
	display := &countingDisplay{Display: NewSoftwareDisplay(nil)}

	_, err := ChooseConfig(display, Opaque(16, 0).Request())
	if !errors.Is(err, ErrNoMatchingConfig) {
		t.Fatalf("ChooseConfig() error = %v, expected ErrNoMatchingConfig", err)
	}
	if display.countQueries != 1 {
		t.Errorf("count queries = %d, expected 1", display.countQueries)
	}
	if display.listQueries != 0 {
		t.Errorf("list queries = %d, expected 0", display.listQueries)
	}
	if display.attribReads != 0 {
		t.Errorf("attribute reads = %d, expected 0", display.attribReads)
	}
}

func TestChooseConfigLooseFilter(t *testing.T) {
	display := NewSoftwareDisplay([]CandidateSpec{
		spec(1, 3, 3, 2, 0, 16, 0), // below 4 bits per channel
		{ID: 2, Red: 5, Green: 6, Blue: 5, Depth: 16, Renderable: OpenGLES3Bit}, // not ES2
		spec(3, 5, 6, 5, 0, 16, 0),
	})

	got, err := ChooseConfig(display, Opaque(0, 0).Request())
	if err != nil {
		t.Fatalf("ChooseConfig() failed: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("ChooseConfig() = %v, expected config #3", got)
	}

	all, err := ListCandidates(display)
	if err != nil {
		t.Fatalf("ListCandidates() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListCandidates() returned %d, expected 1", len(all))
	}
}

func TestChooseConfigMinimumsAreInclusive(t *testing.T) {
	tests := []struct {
		name     string
		specs    []CandidateSpec
		req      Request
		expected int
	}{
		{
			name:     "depth equal",
			specs:    []CandidateSpec{spec(1, 8, 8, 8, 8, 16, 0)},
			req:      Translucent(16, 0).Request(),
			expected: 1,
		},
		{
			name:     "stencil above",
			specs:    []CandidateSpec{spec(1, 8, 8, 8, 8, 16, 0), spec(2, 8, 8, 8, 8, 16, 8)},
			req:      Translucent(16, 4).Request(),
			expected: 2,
		},
		{
			name:     "larger color is not a match",
			specs:    []CandidateSpec{spec(1, 8, 8, 8, 0, 24, 8), spec(2, 5, 6, 5, 0, 24, 8)},
			req:      Opaque(24, 8).Request(),
			expected: 2,
		},
		{
			name:     "custom request",
			specs:    DefaultCandidates(),
			req:      Request{Red: 8, Green: 8, Blue: 8, Alpha: 0, Depth: 24, Stencil: 8},
			expected: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ChooseConfig(NewSoftwareDisplay(tc.specs), tc.req)
			if err != nil {
				t.Fatalf("ChooseConfig() failed: %v", err)
			}
			if got.ID != tc.expected {
				t.Errorf("ChooseConfig() = %v, expected config #%d", got, tc.expected)
			}
		})
	}
}

func TestChooseConfigDeterministic(t *testing.T) {
	specs := DefaultCandidates()
	req := Translucent(16, 0).Request()

	first, err := ChooseConfig(NewSoftwareDisplay(specs), req)
	if err != nil {
		t.Fatalf("ChooseConfig() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := ChooseConfig(NewSoftwareDisplay(specs), req)
		if err != nil {
			t.Fatalf("ChooseConfig() failed: %v", err)
		}
		if again != first {
			t.Fatalf("run %d chose %v, expected %v", i, again, first)
		}
	}
	// First in platform order wins, even though #6 fits the request more tightly.
	if first.ID != 1 {
		t.Errorf("ChooseConfig() = %v, expected config #1", first)
	}
}

func TestCreateContextDrainsErrors(t *testing.T) {
	display := &countingDisplay{
		Display: NewSoftwareDisplay([]CandidateSpec{spec(1, 5, 6, 5, 0, 16, 0)}),
		pending: []ErrorCode{BadSurface},
	}
	c, err := ChooseConfig(display, Opaque(16, 0).Request())
	if err != nil {
		t.Fatalf("ChooseConfig() failed: %v", err)
	}

	ctx, err := CreateContext(display, c, quietLogger())
	if err != nil {
		t.Fatalf("CreateContext() failed despite a stale error code: %v", err)
	}
	if ctx == NoContext {
		t.Fatal("CreateContext() returned NoContext")
	}
	// One drain before (BadSurface, then Success) and one after (Success).
	if display.getErrors != 3 {
		t.Errorf("GetError calls = %d, expected 3", display.getErrors)
	}

	if err := DestroyContext(display, ctx); err != nil {
		t.Errorf("DestroyContext() failed: %v", err)
	}
}

func TestCreateContextFailure(t *testing.T) {
	display := &countingDisplay{
		Display:    NewSoftwareDisplay([]CandidateSpec{spec(1, 5, 6, 5, 0, 16, 0)}),
		failCreate: errors.New("out of memory"),
	}
	c, err := ChooseConfig(display, Opaque(16, 0).Request())
	if err != nil {
		t.Fatalf("ChooseConfig() failed: %v", err)
	}

	_, err = CreateContext(display, c, quietLogger())
	var cce *ContextCreationError
	if !errors.As(err, &cce) {
		t.Fatalf("CreateContext() error = %v, expected ContextCreationError", err)
	}
	if cce.Config.ID != 1 {
		t.Errorf("ContextCreationError.Config = %v, expected #1", cce.Config)
	}
	if display.GetError() != Success {
		t.Error("error queue should have been drained after the call")
	}
}

func TestSoftwareDisplayRejectsES3OnlyForES2Context(t *testing.T) {
	d := NewSoftwareDisplay([]CandidateSpec{{ID: 1, Red: 8, Green: 8, Blue: 8, Renderable: OpenGLES3Bit}})

	_, err := d.CreateContext(Config(1), attribList(int32(ContextClientVersion), 2))
	if !errors.Is(err, BadMatch) {
		t.Errorf("CreateContext() error = %v, expected BadMatch", err)
	}
	if code := d.GetError(); code != BadMatch {
		t.Errorf("GetError() = %v, expected %v", code, BadMatch)
	}
	if code := d.GetError(); code != Success {
		t.Errorf("GetError() after drain = %v, expected %v", code, Success)
	}
}

func TestSoftwareDisplayUnknownHandles(t *testing.T) {
	d := NewSoftwareDisplay(DefaultCandidates())

	if _, err := d.ConfigAttrib(Config(99), RedSize); !errors.Is(err, BadConfig) {
		t.Errorf("ConfigAttrib(99) error = %v, expected BadConfig", err)
	}
	if err := d.DestroyContext(Context(42)); !errors.Is(err, BadContext) {
		t.Errorf("DestroyContext(42) error = %v, expected BadContext", err)
	}
	if _, err := d.ChooseConfig(attribList(0x1234, 1), nil); !errors.Is(err, BadAttribute) {
		t.Errorf("ChooseConfig(unknown attrib) error = %v, expected BadAttribute", err)
	}
}

func TestDescribeConfig(t *testing.T) {
	d := NewSoftwareDisplay([]CandidateSpec{spec(7, 5, 6, 5, 0, 16, 0)})
	got := DescribeConfig(d, Config(1))
	for _, want := range []string{"CONFIG_ID=7", "RED_SIZE=5", "GREEN_SIZE=6", "DEPTH_SIZE=16", "BUFFER_SIZE=16"} {
		if !strings.Contains(got, want) {
			t.Errorf("DescribeConfig() = %q, missing %q", got, want)
		}
	}
}

func TestSelectionPresets(t *testing.T) {
	tests := []struct {
		name        string
		sel         Selection
		expected    Request
		translucent bool
	}{
		{"opaque", Opaque(16, 0), Request{5, 6, 5, 0, 16, 0}, false},
		{"translucent", Translucent(24, 8), Request{8, 8, 8, 8, 24, 8}, true},
		{"custom", Custom(Request{8, 8, 8, 0, 24, 0}), Request{8, 8, 8, 0, 24, 0}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sel.Request(); got != tc.expected {
				t.Errorf("Request() = %v, expected %v", got, tc.expected)
			}
			if got := tc.sel.Translucent(); got != tc.translucent {
				t.Errorf("Translucent() = %v, expected %v", got, tc.translucent)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for name, expected := range map[string]Strategy{
		"":            OpaquePreset,
		"opaque":      OpaquePreset,
		"Translucent": TranslucentPreset,
		"custom":      CustomRequest,
	} {
		got, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q) failed: %v", name, err)
		}
		if got != expected {
			t.Errorf("ParseStrategy(%q) = %v, expected %v", name, got, expected)
		}
	}
	if _, err := ParseStrategy("hdr"); err == nil {
		t.Error("ParseStrategy(\"hdr\") should fail")
	}
}
