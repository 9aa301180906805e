package surface

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// contextAttribs requests an OpenGL ES 2 context.
var contextAttribs = attribList(int32(ContextClientVersion), 2)

// maxDrainedErrors bounds the error-queue drain so a misbehaving display
// cannot stall the render loop.
const maxDrainedErrors = 32

// CreateContext creates an ES 2 context for the chosen configuration.
//
// The display's error queue is drained and logged before and after the
// call. Those codes are diagnostics only; failure is decided by the create
// call itself.
func CreateContext(d Display, c Candidate, logger *log.Logger) (Context, error) {
	if logger == nil {
		logger = log.Default()
	}

	DrainErrors(d, "before CreateContext", logger)
	ctx, err := d.CreateContext(c.Config, contextAttribs)
	DrainErrors(d, "after CreateContext", logger)

	if err == nil && ctx == NoContext {
		err = fmt.Errorf("display returned no context")
	}
	if err != nil {
		return NoContext, &ContextCreationError{Config: c, Err: err}
	}
	return ctx, nil
}

// DestroyContext releases ctx. Call it once per created context.
func DestroyContext(d Display, ctx Context) error {
	if ctx == NoContext {
		return nil
	}
	if err := d.DestroyContext(ctx); err != nil {
		return fmt.Errorf("surface: cannot destroy context: %w", err)
	}
	return nil
}

// DrainErrors logs and clears pending display error codes.
// It returns the codes it drained.
func DrainErrors(d Display, where string, logger *log.Logger) []ErrorCode {
	var drained []ErrorCode
	for i := 0; i < maxDrainedErrors; i++ {
		code := d.GetError()
		if code == Success {
			break
		}
		drained = append(drained, code)
		logger.Error("display error", "where", where, "code", code)
	}
	return drained
}
