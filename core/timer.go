package core

import "time"

// Clock returns monotonic time since an arbitrary start point.
// All deadlines in the core are plain comparisons against this value.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the runtime monotonic clock relative to its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a clock at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// StepInterval converts a step rate into the time between pulses.
// A zero rate returns zero.
func StepInterval(stepsPerSecond uint32) time.Duration {
	if stepsPerSecond == 0 {
		return 0
	}
	return time.Second / time.Duration(stepsPerSecond)
}

// busyWait spins on the clock until d has elapsed. Used for pulse widths in
// the microsecond range where a scheduler sleep is too coarse.
func busyWait(c Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	end := c.Now() + d
	for c.Now() < end {
	}
}
