package surface

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingConfig is matched by every *NoMatchingConfigError.
	ErrNoMatchingConfig = errors.New("surface: no matching config")

	// ErrInvalidState is returned for lifecycle events delivered out of order.
	ErrInvalidState = errors.New("surface: invalid state")
)

// NoMatchingConfigError reports that negotiation exhausted the candidates.
// Rendering cannot proceed without a surface format.
type NoMatchingConfigError struct {
	Request    Request
	Candidates int // Number of candidates the display offered
}

func (e *NoMatchingConfigError) Error() string {
	if e.Candidates == 0 {
		return fmt.Sprintf("surface: no matching config for %s: display offered no candidates", e.Request)
	}
	return fmt.Sprintf("surface: no matching config for %s among %d candidates", e.Request, e.Candidates)
}

func (e *NoMatchingConfigError) Is(target error) bool {
	return target == ErrNoMatchingConfig
}

// ContextCreationError reports that the display refused to create a context.
type ContextCreationError struct {
	Config Candidate
	Err    error
}

func (e *ContextCreationError) Error() string {
	return fmt.Sprintf("surface: cannot create context for config %d: %v", e.Config.ID, e.Err)
}

func (e *ContextCreationError) Unwrap() error { return e.Err }
