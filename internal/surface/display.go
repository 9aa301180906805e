package surface

// Display is the platform graphics system the negotiator talks to.
type Display interface {
	// ChooseConfig reports the configurations matching attribs, a
	// None-terminated list of key/value pairs. With a nil configs slice it
	// only returns the number of matches; otherwise it fills configs in
	// platform order and returns how many were written.
	ChooseConfig(attribs []int32, configs []Config) (int, error)

	// ConfigAttrib returns the value of one attribute of config.
	ConfigAttrib(config Config, attr Attrib) (int32, error)

	// CreateContext creates a rendering context for config.
	// Failure is signalled by a NoContext result and a non-nil error.
	CreateContext(config Config, attribs []int32) (Context, error)

	// DestroyContext releases a context created by CreateContext.
	DestroyContext(ctx Context) error

	// GetError returns and clears the oldest pending error code, or
	// Success when none is pending.
	GetError() ErrorCode
}
