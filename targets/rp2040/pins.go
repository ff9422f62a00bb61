//go:build rp2040 || rp2350

package main

import (
	"machine"

	"laneswitch/core"
)

// Pin map of the reference board
const (
	pinL1Enable = machine.GPIO8
	pinL1Dir    = machine.GPIO9
	pinL1Step   = machine.GPIO10

	pinL2Enable = machine.GPIO14
	pinL2Dir    = machine.GPIO15
	pinL2Step   = machine.GPIO16

	pinL1In  = machine.GPIO24
	pinL1Out = machine.GPIO25
	pinL2In  = machine.GPIO22
	pinL2Out = machine.GPIO23

	pinYSplit     = machine.GPIO21
	pinBufferLow  = machine.GPIO6
	pinBufferHigh = machine.GPIO7

	// Optional manual reverse buttons, to GND
	pinL1Reverse = machine.GPIO2
	pinL2Reverse = machine.GPIO3

	pinStatusLED = machine.GPIO12 // WS2812 data

	pinDebugTX = machine.GPIO0
	pinDebugRX = machine.GPIO1
)

// Board options
const (
	reverseButtonsFitted = true
	// speed potentiometer on ADC0 (GPIO26)
	speedPotFitted = true
	// step inputs of the drivers are active-high
	invertStep = false
	// UART0 event mirror
	debugUARTFitted = true
)

// inputPin configures a switch input with the internal pull-up
func inputPin(p machine.Pin) core.DigitalIn {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return p
}

// outputPin configures a push-pull output driven to level
func outputPin(p machine.Pin, level bool) core.DigitalOut {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(level)
	return p
}
