// Package luaengine is a stand-in rendering engine driven by a Lua script
// in the staged resource tree. It reads main.lua from the resource
// directory like any engine resource, and forwards each host callback to
// the script's global function of the same role:
//
//	init(res_dir, user_dir)
//	resize(width, height)
//	tick()
//	touch(action, pointer, x, y)
//
// Missing functions are skipped. The script draws into a cell framebuffer
// through the global engine table.
package luaengine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/charmbracelet/log"
	"github.com/vovakirdan/enginehost/internal/core"
	"github.com/vovakirdan/enginehost/internal/engine"
)

// ScriptName is the entry script looked up in the resource directory.
const ScriptName = "main.lua"

// scriptLibraries are the standard libraries a script may use. io, os,
// package and debug are left out; files are reached through the engine
// table only.
var scriptLibraries = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "bit32", Function: lua.Bit32Open},
	{Name: "math", Function: lua.MathOpen},
}

// unsafeBaseFunctions read files by path from the base library.
var unsafeBaseFunctions = []string{"dofile", "loadfile"}

func openLibraries(state *lua.State) {
	for _, lib := range scriptLibraries {
		lua.Require(state, lib.Name, lib.Function, true)
		state.Pop(1)
	}
	for _, name := range unsafeBaseFunctions {
		state.PushNil()
		state.SetGlobal(name)
	}
}

var (
	errNotInitialized = errors.New("luaengine: resources not initialized")
	errClosed         = errors.New("luaengine: engine closed")
)

func init() {
	engine.Register("lua", "Lua script engine ("+ScriptName+")", func(logger *log.Logger) (engine.Handle, error) {
		return New(logger), nil
	})
}

// Engine runs one Lua state. All script execution happens under mu, which
// serializes touch input against frame ticks.
type Engine struct {
	mu     sync.Mutex
	logger *log.Logger
	state  *lua.State
	closed bool

	resDir  string
	userDir string
	width   int
	height  int
	frame   *core.Screen
}

var (
	_ engine.Handle   = (*Engine)(nil)
	_ engine.Renderer = (*Engine)(nil)
)

// New creates an engine; the script is loaded by InitResources.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		logger: logger.WithPrefix("lua"),
		frame:  core.NewScreen(0, 0),
	}
}

// InitResources loads and runs the entry script, then calls init.
func (e *Engine) InitResources(resourceDir, userDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errClosed
	}
	if e.state != nil {
		return fmt.Errorf("luaengine: resources already initialized from %s", e.resDir)
	}

	e.resDir, e.userDir = resourceDir, userDir

	state := lua.NewState()
	openLibraries(state)
	e.registerAPI(state)

	path := filepath.Join(resourceDir, ScriptName)
	if err := lua.LoadFile(state, path, ""); err != nil {
		return fmt.Errorf("luaengine: load %s: %w", path, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("luaengine: run %s: %w", path, err)
	}
	e.state = state
	e.logger.Debug("script loaded", "path", path)

	return e.call("init", resourceDir, userDir)
}

// InitEngine resizes the framebuffer and calls resize.
func (e *Engine) InitEngine(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}
	e.width, e.height = width, height
	e.frame.Resize(width, height)
	return e.call("resize", width, height)
}

// Tick calls tick.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}
	return e.call("tick")
}

// OnTouch calls touch.
func (e *Engine) OnTouch(action core.TouchAction, pointer, x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ready(); err != nil {
		return err
	}
	return e.call("touch", int(action), pointer, x, y)
}

// Render copies the last drawn frame into dst.
func (e *Engine) Render(dst *core.Screen) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for y := 0; y < min(dst.Height(), e.frame.Height()); y++ {
		for x := 0; x < min(dst.Width(), e.frame.Width()); x++ {
			c := e.frame.GetCell(x, y)
			dst.Set(x, y, c.Rune, c.Color)
		}
	}
}

// Close drops the Lua state. Later calls fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = nil
	e.closed = true
	return nil
}

func (e *Engine) ready() error {
	if e.closed {
		return errClosed
	}
	if e.state == nil {
		return errNotInitialized
	}
	return nil
}

// call invokes the global function name with args. Callers hold mu.
func (e *Engine) call(name string, args ...any) error {
	l := e.state
	l.Global(name)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}
	for _, a := range args {
		switch v := a.(type) {
		case int:
			l.PushInteger(v)
		case string:
			l.PushString(v)
		default:
			l.PushNil()
		}
	}
	if err := l.ProtectedCall(len(args), 0, 0); err != nil {
		return fmt.Errorf("luaengine: %s: %w", name, err)
	}
	return nil
}
