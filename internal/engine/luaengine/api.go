package luaengine

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/vovakirdan/enginehost/internal/core"
)

// registerAPI installs the global engine table.
func (e *Engine) registerAPI(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "width", Function: e.luaWidth},
		{Name: "height", Function: e.luaHeight},
		{Name: "clear", Function: e.luaClear},
		{Name: "draw", Function: e.luaDraw},
		{Name: "box", Function: e.luaBox},
		{Name: "log", Function: e.luaLog},
		{Name: "read", Function: e.luaRead},
		{Name: "read_line", Function: e.luaReadLine},
		{Name: "load", Function: e.luaLoad},
		{Name: "write_user", Function: e.luaWriteUser},
	}, 0)
	state.PushString(e.resDir)
	state.SetField(-2, "res_dir")
	state.PushString(e.userDir)
	state.SetField(-2, "user_dir")
	state.SetGlobal("engine")
}

// within resolves name under root. Absolute names and ".." segments are
// confined to root.
func within(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(path.Clean("/"+name)))
}

func (e *Engine) luaWidth(l *lua.State) int {
	l.PushInteger(e.width)
	return 1
}

func (e *Engine) luaHeight(l *lua.State) int {
	l.PushInteger(e.height)
	return 1
}

func (e *Engine) luaClear(l *lua.State) int {
	e.frame.Clear()
	return 0
}

// engine.draw(x, y, text [, color])
func (e *Engine) luaDraw(l *lua.State) int {
	x := lua.CheckInteger(l, 1)
	y := lua.CheckInteger(l, 2)
	text := lua.CheckString(l, 3)
	color := core.ParseColor(lua.OptString(l, 4, ""))
	e.frame.DrawText(x, y, text, color)
	return 0
}

// engine.box(x, y, w, h [, color]) outlines a rectangle. Boxes smaller
// than 2x2 draw nothing.
func (e *Engine) luaBox(l *lua.State) int {
	r := core.NewRect(lua.CheckInteger(l, 1), lua.CheckInteger(l, 2), lua.CheckInteger(l, 3), lua.CheckInteger(l, 4))
	color := core.ParseColor(lua.OptString(l, 5, ""))
	e.frame.DrawBox(r, color)
	return 0
}

func (e *Engine) luaLog(l *lua.State) int {
	msg := lua.CheckString(l, 1)
	e.logger.Info(msg)
	return 0
}

// engine.read(path) returns the file's content, or nil and a message.
func (e *Engine) luaRead(l *lua.State) int {
	data, err := os.ReadFile(within(e.resDir, lua.CheckString(l, 1)))
	if err != nil {
		l.PushNil()
		l.PushString(err.Error())
		return 2
	}
	l.PushString(string(data))
	return 1
}

// engine.read_line(path) returns the first line without its terminator.
func (e *Engine) luaReadLine(l *lua.State) int {
	f, err := os.Open(within(e.resDir, lua.CheckString(l, 1)))
	if err != nil {
		l.PushNil()
		l.PushString(err.Error())
		return 2
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		l.PushNil()
		l.PushString("empty file")
		return 2
	}
	l.PushString(strings.TrimRight(line, "\r\n"))
	return 1
}

// engine.load(path) runs a resource script and returns its first result.
func (e *Engine) luaLoad(l *lua.State) int {
	target := within(e.resDir, lua.CheckString(l, 1))
	if err := lua.LoadFile(l, target, ""); err != nil {
		lua.Errorf(l, "load %s: %s", target, err.Error())
		return 0
	}
	l.Call(0, 1)
	return 1
}

// engine.write_user(name, content) stores content in the user directory.
func (e *Engine) luaWriteUser(l *lua.State) int {
	target := within(e.userDir, lua.CheckString(l, 1))
	content := lua.CheckString(l, 2)

	err := os.MkdirAll(filepath.Dir(target), 0o755)
	if err == nil {
		err = os.WriteFile(target, []byte(content), 0o644)
	}
	if err != nil {
		e.logger.Warn("write failed", "path", target, "error", err)
		l.PushNil()
		l.PushString(err.Error())
		return 2
	}
	l.PushBoolean(true)
	return 1
}
