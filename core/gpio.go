// Plain GPIO step backend
// Drives a step line through the DigitalOut capability: assert, hold for the
// pulse width, de-assert.
package core

import "time"

// DefaultPulseWidth is the step pulse width used when none is configured.
// TMC2209 needs at least 100ns; 2us leaves margin for slow optocouplers.
const DefaultPulseWidth = 2 * time.Microsecond

// PinStepper implements StepBackend on top of a DigitalOut.
type PinStepper struct {
	pin        DigitalOut
	invert     bool
	pulseWidth time.Duration

	// wait holds the line for the pulse width
	wait func(time.Duration)
}

// NewPinStepper creates a pin-based step backend. A nil clock uses the
// system clock for the pulse width busy wait.
func NewPinStepper(pin DigitalOut, invert bool, pulseWidth time.Duration, clock Clock) *PinStepper {
	if pulseWidth <= 0 {
		pulseWidth = DefaultPulseWidth
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	s := &PinStepper{
		pin:        pin,
		invert:     invert,
		pulseWidth: pulseWidth,
	}
	s.wait = func(d time.Duration) { busyWait(clock, d) }

	// Idle level
	pin.Set(invert)
	return s
}

// Step generates one pulse on the step line
func (s *PinStepper) Step() {
	s.pin.Set(!s.invert)
	s.wait(s.pulseWidth)
	s.pin.Set(s.invert)
}

// Name returns the backend name
func (s *PinStepper) Name() string {
	return "GPIO"
}

// Info returns backend information
func (s *PinStepper) Info() StepBackendInfo {
	return StepBackendInfo{
		Name:        s.Name(),
		MaxStepRate: uint32(time.Second / (2 * s.pulseWidth)),
		MinPulseNs:  uint32(s.pulseWidth.Nanoseconds()),
	}
}
