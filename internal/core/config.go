package core

import (
	"fmt"
	"time"
)

// DefaultTickRate is the frame rate used when none is configured.
const DefaultTickRate = 60

// MaxTickRate bounds the frame loop.
const MaxTickRate = 240

// Timing controls how often the host draws a frame.
type Timing struct {
	TickRate int // frames per second
}

// DefaultTiming returns Timing at DefaultTickRate.
func DefaultTiming() Timing {
	return Timing{TickRate: DefaultTickRate}
}

// Interval is the delay between two frames.
func (t Timing) Interval() time.Duration {
	rate := t.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// Validate checks the tick rate is within (0, MaxTickRate].
func (t Timing) Validate() error {
	if t.TickRate <= 0 || t.TickRate > MaxTickRate {
		return fmt.Errorf("tick rate %d out of range 1..%d", t.TickRate, MaxTickRate)
	}
	return nil
}
