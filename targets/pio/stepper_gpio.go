//go:build rp2040 || rp2350

package pio

import (
	"device/arm"
	"device/rp"
	"machine"

	"laneswitch/core"
)

// GPIOStepBackend pulses the step pin through SIO registers.
// This is the fallback when no PIO state machine is free or the step input
// is active-low.
// Pulse width: ~200ns @ 125MHz
type GPIOStepBackend struct {
	stepPin machine.Pin

	// Cached SIO masks; swapped for an inverted step line
	setMask   uint32
	clearMask uint32
	onSet     bool
}

// NewGPIOStepBackend configures the pin as an output at its idle level.
func NewGPIOStepBackend(stepPin machine.Pin, invert bool) *GPIOStepBackend {
	b := &GPIOStepBackend{
		stepPin:   stepPin,
		setMask:   1 << stepPin,
		clearMask: 1 << stepPin,
		onSet:     !invert,
	}
	stepPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	stepPin.Set(invert)
	return b
}

// Step generates a single step pulse
func (b *GPIOStepBackend) Step() {
	if b.onSet {
		rp.SIO.GPIO_OUT_SET.Set(b.setMask)
		b.hold()
		rp.SIO.GPIO_OUT_CLR.Set(b.clearMask)
		return
	}
	rp.SIO.GPIO_OUT_CLR.Set(b.clearMask)
	b.hold()
	rp.SIO.GPIO_OUT_SET.Set(b.setMask)
}

// hold keeps the step line asserted.
// Each NOP is ~8ns @ 125MHz; TMC drivers need 100ns minimum.
// 25 NOPs = ~200ns
func (b *GPIOStepBackend) hold() {
	arm.Asm("nop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop")
	arm.Asm("nop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop")
}

// Name returns the backend name
func (b *GPIOStepBackend) Name() string {
	return "SIO"
}

// Info returns backend performance information
func (b *GPIOStepBackend) Info() core.StepBackendInfo {
	return core.StepBackendInfo{
		Name:        b.Name(),
		MaxStepRate: 200000,
		MinPulseNs:  200,
	}
}
