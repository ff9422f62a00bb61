package core

// DigitalIn is the raw digital input capability the core samples every tick.
// Pull-up biasing and electrical polarity are configured by the target before
// the pin reaches the core.
type DigitalIn interface {
	// Get returns the current electrical level (true = high)
	Get() bool
}

// DigitalOut is the digital output capability used for enable, direction and
// step lines.
type DigitalOut interface {
	// Set drives the pin high (true) or low (false)
	Set(value bool)
}

// Polarity maps an electrical level onto a logical "active" state.
type Polarity uint8

const (
	// ActiveLow means the input is active when pulled to ground. This is the
	// normal case for a switch wired C -> GND, NO -> GPIO with pull-up.
	ActiveLow Polarity = iota
	// ActiveHigh means the input is active when the line reads high.
	ActiveHigh
)

// Active reports whether the given electrical level is the active level.
func (p Polarity) Active(level bool) bool {
	if p == ActiveHigh {
		return level
	}
	return !level
}

func (p Polarity) String() string {
	if p == ActiveHigh {
		return "active_high"
	}
	return "active_low"
}

// ParsePolarity converts a config string into a Polarity.
func ParsePolarity(s string) (Polarity, bool) {
	switch s {
	case "active_low", "low", "":
		return ActiveLow, true
	case "active_high", "high":
		return ActiveHigh, true
	default:
		return ActiveLow, false
	}
}

// PinFunc adapts a plain function to DigitalIn.
type PinFunc func() bool

// Get calls f.
func (f PinFunc) Get() bool { return f() }

// nopOut is used for optional outputs that are not wired on a board.
type nopOut struct{}

func (nopOut) Set(bool) {}
