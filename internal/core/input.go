package core

import (
	"fmt"
	"strings"
)

// TouchAction is the kind of a touch event. Values match the platform's
// motion-event action codes and are what engines receive.
type TouchAction int

const (
	TouchDown   TouchAction = 0
	TouchUp     TouchAction = 1
	TouchMove   TouchAction = 2
	TouchCancel TouchAction = 3
)

func (a TouchAction) String() string {
	switch a {
	case TouchDown:
		return "down"
	case TouchUp:
		return "up"
	case TouchMove:
		return "move"
	case TouchCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseTouchAction accepts a name ("down") or a numeric code ("0").
func ParseTouchAction(s string) (TouchAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "0":
		return TouchDown, nil
	case "up", "1":
		return TouchUp, nil
	case "move", "2":
		return TouchMove, nil
	case "cancel", "3":
		return TouchCancel, nil
	}
	return 0, fmt.Errorf("unknown touch action %q", s)
}

// TouchEvent is one pointer event delivered to the engine. Coordinates are
// surface pixels.
type TouchEvent struct {
	Action  TouchAction
	Pointer int
	X, Y    int
}

func (e TouchEvent) String() string {
	return fmt.Sprintf("%s #%d (%d,%d)", e.Action, e.Pointer, e.X, e.Y)
}
