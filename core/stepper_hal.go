package core

// StepBackend emits step pulses for one motor.
// Implementations can use a plain GPIO line, the RP2040 SIO block or PIO.
type StepBackend interface {
	// Step generates a single step pulse.
	// The backend handles the minimum pulse width internally and must return
	// promptly; it is called from the control loop.
	Step()

	// Name returns the backend implementation name
	Name() string
}

// StepBackendInfo provides information about a backend
type StepBackendInfo struct {
	Name        string
	MaxStepRate uint32 // Maximum steps/second
	MinPulseNs  uint32 // Minimum step pulse width (ns)
}
