package engine

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/enginehost/internal/core"
)

func init() {
	Register("trace", "Boundary call tracer", func(logger *log.Logger) (Handle, error) {
		return NewTrace(logger), nil
	})
}

// Call is one recorded boundary call.
type Call struct {
	Method string
	Args   []int
	Dirs   []string
}

func (c Call) String() string {
	if len(c.Dirs) > 0 {
		return fmt.Sprintf("%s%q", c.Method, c.Dirs)
	}
	return fmt.Sprintf("%s%v", c.Method, c.Args)
}

// MaxCalls bounds the call log kept by a Trace; older calls are dropped.
const MaxCalls = 256

// maxRecent bounds the non-tick calls kept for Render.
const maxRecent = 64

// Trace is an engine that records the calls it receives and renders the
// most recent ones. Failures can be injected per method.
type Trace struct {
	mu     sync.Mutex
	logger *log.Logger
	calls  []Call // last MaxCalls calls
	recent []Call // last maxRecent non-tick calls
	counts map[string]int
	fail   map[string]error

	width, height int
	frames        int
}

// NewTrace creates an empty trace engine.
func NewTrace(logger *log.Logger) *Trace {
	if logger == nil {
		logger = log.Default()
	}
	return &Trace{
		logger: logger,
		counts: make(map[string]int),
		fail:   make(map[string]error),
	}
}

// FailOn makes every later call to method return err. A nil err clears it.
func (t *Trace) FailOn(method string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.fail, method)
		return
	}
	t.fail[method] = err
}

// Calls returns a copy of the most recent calls, at most MaxCalls.
func (t *Trace) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// Count returns how many times method was called since creation.
func (t *Trace) Count(method string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[method]
}

// appendBounded appends c to calls, dropping the oldest entry once calls
// holds limit entries.
func appendBounded(calls []Call, c Call, limit int) []Call {
	if len(calls) < limit {
		return append(calls, c)
	}
	copy(calls, calls[1:])
	calls[len(calls)-1] = c
	return calls
}

func (t *Trace) record(c Call) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[c.Method]++
	t.calls = appendBounded(t.calls, c, MaxCalls)
	if c.Method != "Tick" {
		t.recent = appendBounded(t.recent, c, maxRecent)
	}
	t.logger.Debug("call", "method", c.Method, "args", c.Args)
	return t.fail[c.Method]
}

// InitResources implements Handle.
func (t *Trace) InitResources(resourceDir, userDir string) error {
	return t.record(Call{Method: "InitResources", Dirs: []string{resourceDir, userDir}})
}

// InitEngine implements Handle.
func (t *Trace) InitEngine(width, height int) error {
	if err := t.record(Call{Method: "InitEngine", Args: []int{width, height}}); err != nil {
		return err
	}
	t.mu.Lock()
	t.width, t.height = width, height
	t.mu.Unlock()
	return nil
}

// Tick implements Handle.
func (t *Trace) Tick() error {
	if err := t.record(Call{Method: "Tick"}); err != nil {
		return err
	}
	t.mu.Lock()
	t.frames++
	t.mu.Unlock()
	return nil
}

// OnTouch implements Handle.
func (t *Trace) OnTouch(action core.TouchAction, pointer, x, y int) error {
	return t.record(Call{Method: "OnTouch", Args: []int{int(action), pointer, x, y}})
}

// Render implements Renderer: a header line followed by the latest
// non-tick calls, newest at the bottom.
func (t *Trace) Render(dst *core.Screen) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dst.DrawText(0, 0, fmt.Sprintf("trace %dx%d frame %d", t.width, t.height, t.frames), core.ColorBrightCyan)

	rows := min(len(t.recent), max(dst.Height()-1, 0))
	for i, c := range t.recent[len(t.recent)-rows:] {
		dst.DrawText(0, i+1, c.String(), core.ColorGray)
	}
}
