package core

// AnalogMax is the full-scale value of an AnalogIn sample. Targets with a
// 12-bit converter left-shift their reading to 16 bits.
const AnalogMax = 0xFFFF

// AnalogIn is the optional analog input capability, used for the feed speed
// potentiometer.
type AnalogIn interface {
	// Get returns a 16-bit scaled sample
	Get() uint16
}
