//go:build rp2040 || rp2350

package pio

import (
	"machine"

	"laneswitch/core"
)

// Two PIO blocks with four state machines each
const (
	numPIO = 2
	numSM  = 4
)

// smPool hands out state machines round-robin across both blocks, so the
// two lanes land on different blocks and each block loads the program once.
type smPool struct {
	used [numPIO][numSM]bool
	next int
}

var stateMachines smPool

// claim returns a free state machine
func (p *smPool) claim() (pioNum, smNum uint8, ok bool) {
	for i := 0; i < numPIO*numSM; i++ {
		slot := (p.next + i) % (numPIO * numSM)
		blk, sm := slot%numPIO, slot/numPIO
		if !p.used[blk][sm] {
			p.used[blk][sm] = true
			p.next = slot + 1
			return uint8(blk), uint8(sm), true
		}
	}
	return 0, 0, false
}

func (p *smPool) release(pioNum, smNum uint8) {
	p.used[pioNum][smNum] = false
}

// NewStepBackend returns a PIO backend for the step pin. It falls back to
// the SIO backend for an inverted line, when no state machine is free or
// when PIO setup fails.
func NewStepBackend(stepPin machine.Pin, invert bool) core.StepBackend {
	if invert {
		return NewGPIOStepBackend(stepPin, invert)
	}

	pioNum, smNum, ok := stateMachines.claim()
	if !ok {
		return NewGPIOStepBackend(stepPin, invert)
	}

	b := NewPIOStepBackend(pioNum, smNum)
	if err := b.Init(stepPin); err != nil {
		stateMachines.release(pioNum, smNum)
		return NewGPIOStepBackend(stepPin, invert)
	}
	return b
}
