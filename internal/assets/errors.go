package assets

import (
	"fmt"
	"strings"
)

// ListingError reports an asset subtree that could not be enumerated.
// The subtree is skipped.
type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("assets: cannot list %q: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// CopyError reports a leaf file that could not be read from the source or
// written to the destination. Its siblings are still staged.
type CopyError struct {
	Path string
	Dest string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("assets: cannot copy %q to %s: %v", e.Path, e.Dest, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// PartialFailure is returned by Stage when at least one entry was skipped.
// Everything else was staged; callers decide whether to escalate.
type PartialFailure struct {
	Errors []error
}

func (e *PartialFailure) Error() string {
	if len(e.Errors) == 1 {
		return "assets: staging incomplete: " + e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("assets: staging incomplete, %d entries skipped: %s",
		len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialFailure) Unwrap() []error { return e.Errors }
