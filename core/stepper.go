package core

// Stepper actuator for one filament lane
// Owns enable/direction/step outputs and issues at most one step pulse per
// control loop tick at the commanded rate.

import "time"

// Direction of filament travel
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ActuatorConfig describes the wiring of one stepper driver
type ActuatorConfig struct {
	EnableActiveLow bool // TMC EN is active-low
	InvertDir       bool // compensate motor wiring
}

// Actuator drives one stepper motor.
// Pulses are emitted only while enabled and rate > 0, never more than one
// per Tick call regardless of how late the call is.
type Actuator struct {
	cfg ActuatorConfig

	enablePin DigitalOut
	dirPin    DigitalOut
	backend   StepBackend

	enabled   bool
	direction Direction
	rate      uint32        // steps per second
	nextStep  time.Duration // time of next step

	steps uint64 // total pulses emitted
}

// NewActuator creates an actuator and puts the driver in the disabled,
// forward state. A nil enable pin is allowed for drivers with EN tied.
func NewActuator(cfg ActuatorConfig, enablePin, dirPin DigitalOut, backend StepBackend) *Actuator {
	if enablePin == nil {
		enablePin = nopOut{}
	}
	if dirPin == nil {
		dirPin = nopOut{}
	}

	a := &Actuator{
		cfg:       cfg,
		enablePin: enablePin,
		dirPin:    dirPin,
		backend:   backend,
	}
	a.SetEnabled(false)
	a.SetDirection(Forward)
	return a
}

// SetEnabled gates step pulses and drives the enable line.
func (a *Actuator) SetEnabled(on bool) {
	a.enabled = on
	a.enablePin.Set(on != a.cfg.EnableActiveLow)
}

// SetDirection sets the direction output, XORed with the invert flag.
func (a *Actuator) SetDirection(dir Direction) {
	a.direction = dir
	forward := dir == Forward
	a.dirPin.Set(forward != a.cfg.InvertDir)
}

// SetRate updates the commanded cadence; 0 stops pulses.
// The new rate takes effect from the next scheduled pulse.
func (a *Actuator) SetRate(stepsPerSecond uint32) {
	a.rate = stepsPerSecond
}

// Tick emits one step pulse if one is due.
// Returns true if a pulse was emitted.
func (a *Actuator) Tick(now time.Duration) bool {
	if !a.enabled || a.rate == 0 {
		return false
	}
	if now < a.nextStep {
		return false
	}

	a.backend.Step()
	a.steps++

	// Keep to the schedule so the tick period does not round every
	// interval up. More than one interval late (first pulse after enable,
	// a stalled loop) restarts the schedule instead of catching up.
	interval := StepInterval(a.rate)
	if now-a.nextStep >= interval {
		a.nextStep = now + interval
	} else {
		a.nextStep += interval
	}
	return true
}

// Enabled returns whether the driver is enabled
func (a *Actuator) Enabled() bool {
	return a.enabled
}

// Direction returns the current direction
func (a *Actuator) Direction() Direction {
	return a.direction
}

// Rate returns the commanded step rate
func (a *Actuator) Rate() uint32 {
	return a.rate
}

// Steps returns the number of pulses emitted since start
func (a *Actuator) Steps() uint64 {
	return a.steps
}

// Stop disables the driver and clears the rate.
func (a *Actuator) Stop() {
	a.SetEnabled(false)
	a.rate = 0
}
