// Package surface negotiates a framebuffer configuration and a rendering
// context with a platform display, and tracks the per-surface lifecycle.
//
// The Display interface follows the shape of the EGL calls the negotiation
// needs; attribute names and error codes use the EGL values.
package surface

import "fmt"

// Config is an opaque framebuffer configuration handle owned by a Display.
type Config uintptr

// Context is an opaque rendering context handle owned by a Display.
type Context uintptr

const (
	NoConfig  Config  = 0
	NoContext Context = 0
)

// Attrib is a configuration or context attribute name.
type Attrib int32

// EGL attribute names.
const (
	BufferSize           Attrib = 0x3020
	AlphaSize            Attrib = 0x3021
	BlueSize             Attrib = 0x3022
	GreenSize            Attrib = 0x3023
	RedSize              Attrib = 0x3024
	DepthSize            Attrib = 0x3025
	StencilSize          Attrib = 0x3026
	ConfigCaveat         Attrib = 0x3027
	ConfigID             Attrib = 0x3028
	Samples              Attrib = 0x3031
	SampleBuffers        Attrib = 0x3032
	SurfaceType          Attrib = 0x3033
	None                 Attrib = 0x3038
	RenderableType       Attrib = 0x3040
	ContextClientVersion Attrib = 0x3098
)

// RenderableType bits.
const (
	OpenGLES2Bit = 0x0004
	OpenGLES3Bit = 0x0040
)

// attribNames is the order in which DescribeConfig reports attributes.
var attribNames = []struct {
	attr Attrib
	name string
}{
	{ConfigID, "CONFIG_ID"},
	{BufferSize, "BUFFER_SIZE"},
	{RedSize, "RED_SIZE"},
	{GreenSize, "GREEN_SIZE"},
	{BlueSize, "BLUE_SIZE"},
	{AlphaSize, "ALPHA_SIZE"},
	{DepthSize, "DEPTH_SIZE"},
	{StencilSize, "STENCIL_SIZE"},
	{Samples, "SAMPLES"},
	{SampleBuffers, "SAMPLE_BUFFERS"},
	{RenderableType, "RENDERABLE_TYPE"},
	{ConfigCaveat, "CONFIG_CAVEAT"},
}

func (a Attrib) String() string {
	for _, n := range attribNames {
		if n.attr == a {
			return n.name
		}
	}
	switch a {
	case None:
		return "NONE"
	case SurfaceType:
		return "SURFACE_TYPE"
	case ContextClientVersion:
		return "CONTEXT_CLIENT_VERSION"
	}
	return fmt.Sprintf("0x%04x", int32(a))
}

// ErrorCode is a display error code as returned by Display.GetError.
type ErrorCode int32

// EGL error codes.
const (
	Success           ErrorCode = 0x3000
	NotInitialized    ErrorCode = 0x3001
	BadAccess         ErrorCode = 0x3002
	BadAlloc          ErrorCode = 0x3003
	BadAttribute      ErrorCode = 0x3004
	BadConfig         ErrorCode = 0x3005
	BadContext        ErrorCode = 0x3006
	BadCurrentSurface ErrorCode = 0x3007
	BadDisplay        ErrorCode = 0x3008
	BadMatch          ErrorCode = 0x3009
	BadNativePixmap   ErrorCode = 0x300A
	BadNativeWindow   ErrorCode = 0x300B
	BadParameter      ErrorCode = 0x300C
	BadSurface        ErrorCode = 0x300D
	ContextLost       ErrorCode = 0x300E
)

var errorNames = map[ErrorCode]string{
	Success:           "EGL_SUCCESS",
	NotInitialized:    "EGL_NOT_INITIALIZED",
	BadAccess:         "EGL_BAD_ACCESS",
	BadAlloc:          "EGL_BAD_ALLOC",
	BadAttribute:      "EGL_BAD_ATTRIBUTE",
	BadConfig:         "EGL_BAD_CONFIG",
	BadContext:        "EGL_BAD_CONTEXT",
	BadCurrentSurface: "EGL_BAD_CURRENT_SURFACE",
	BadDisplay:        "EGL_BAD_DISPLAY",
	BadMatch:          "EGL_BAD_MATCH",
	BadNativePixmap:   "EGL_BAD_NATIVE_PIXMAP",
	BadNativeWindow:   "EGL_BAD_NATIVE_WINDOW",
	BadParameter:      "EGL_BAD_PARAMETER",
	BadSurface:        "EGL_BAD_SURFACE",
	ContextLost:       "EGL_CONTEXT_LOST",
}

func (c ErrorCode) String() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", int32(c))
}

func (c ErrorCode) Error() string {
	return "surface: display error " + c.String()
}

// attribList builds a None-terminated key/value list.
func attribList(pairs ...int32) []int32 {
	list := make([]int32, 0, len(pairs)+1)
	list = append(list, pairs...)
	return append(list, int32(None))
}

// eachAttrib calls fn for every key/value pair in a None-terminated list.
// It stops at None or at a dangling key.
func eachAttrib(list []int32, fn func(Attrib, int32) bool) {
	for i := 0; i+1 < len(list); i += 2 {
		key := Attrib(list[i])
		if key == None {
			return
		}
		if !fn(key, list[i+1]) {
			return
		}
	}
}
