//go:build rp2040 || rp2350

package main

import (
	"machine"

	"laneswitch/core"
)

// speedPot reads the feed speed potentiometer.
// TinyGo returns the 12-bit conversion left-aligned in 16 bits, which is
// already the core.AnalogIn range.
type speedPot struct {
	adc machine.ADC
}

// newSpeedPot configures ADC0 (GPIO26)
func newSpeedPot() (core.AnalogIn, error) {
	machine.InitADC()

	p := &speedPot{adc: machine.ADC{Pin: machine.ADC0}}
	if err := p.adc.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the current sample, 0..core.AnalogMax
func (p *speedPot) Get() uint16 {
	return p.adc.Get()
}
