package core

import "time"

// SpeedControl maps an optional potentiometer onto the feed rate.
// The analog input is polled at a slow fixed period; between polls the last
// mapped rate is held.
type SpeedControl struct {
	pin      AnalogIn
	min, max uint32
	period   time.Duration

	nextPoll time.Duration
	rate     uint32
}

// NewSpeedControl creates a speed control. With a nil pin the rate stays at
// fixed.
func NewSpeedControl(pin AnalogIn, min, max uint32, period time.Duration, fixed uint32) *SpeedControl {
	if max < min {
		min, max = max, min
	}
	return &SpeedControl{
		pin:    pin,
		min:    min,
		max:    max,
		period: period,
		rate:   fixed,
	}
}

// Update polls the analog input if due and returns the current rate.
func (s *SpeedControl) Update(now time.Duration) uint32 {
	if s.pin == nil || now < s.nextPoll {
		return s.rate
	}
	s.rate = MapRate(s.pin.Get(), s.min, s.max)
	s.nextPoll = now + s.period
	return s.rate
}

// Rate returns the last computed rate
func (s *SpeedControl) Rate() uint32 {
	return s.rate
}

// MapRate linearly maps a 16-bit sample into [min, max].
func MapRate(sample uint16, min, max uint32) uint32 {
	if max <= min {
		return min
	}
	return min + uint32(uint64(sample)*uint64(max-min)/AnalogMax)
}
