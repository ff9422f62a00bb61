//go:build rp2040 || rp2350

package pio

// PIO step backend using tinygo-org/pio
// The state machine times the pulse itself, so Step only pushes a word into
// the TX FIFO and returns.

import (
	"machine"

	"laneswitch/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for step pulse generation
// Command word: number of pulses minus one. The actuator issues one pulse
// per tick, so the word is always 0.
//
// Program flow:
//  1. Pull 32-bit command from FIFO into X
//  2. Drive the step pin high for 2 cycles, low for 2 cycles
//  3. Repeat while X-- is non-zero
//
// At the 1 MHz state machine clock one cycle is 1us.
func buildStepProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(),            // 1: out x, 32
		asm.Set(rp2pio.SetDestPins, 1).Delay(1).Encode(), // 2: set pins, 1 [1]
		asm.Set(rp2pio.SetDestPins, 0).Delay(1).Encode(), // 3: set pins, 0 [1]
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),         // 4: jmp x--, 2
		// .wrap
	}
}

// Loaded at offset 0 so the absolute jump target is correct. The program is
// shared by every state machine of a PIO block.
const stepProgramOrigin = 0

// PIO state machine clock
const smClockHz = 1000000

var programLoaded [numPIO]bool

// PIOStepBackend emits step pulses from a PIO state machine
type PIOStepBackend struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	stepPin machine.Pin
	pioNum  uint8
	smNum   uint8
}

// NewPIOStepBackend creates a backend on the given block and state machine.
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3
func NewPIOStepBackend(pioNum, smNum uint8) *PIOStepBackend {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOStepBackend{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		pioNum: pioNum,
		smNum:  smNum,
	}
}

// Init claims the state machine and hands the step pin to it. The program
// drives active-high pulses only.
func (b *PIOStepBackend) Init(stepPin machine.Pin) error {
	b.stepPin = stepPin

	// Claim the state machine before touching its registers
	b.sm.TryClaim()

	program := buildStepProgram()
	if !programLoaded[b.pioNum] {
		if _, err := b.pio.AddProgram(program, stepProgramOrigin); err != nil {
			return err
		}
		programLoaded[b.pioNum] = true
	}
	offset := uint8(stepProgramOrigin)

	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	// Shift right, explicit PULL, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(uint16(machine.CPUFrequency()/smClockHz), 0)

	// Init first, pin directions after
	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)

	b.sm.SetEnabled(true)
	return nil
}

// Step queues a single pulse. The FIFO holds four words, so this only waits
// if the caller steps faster than the pulse period.
func (b *PIOStepBackend) Step() {
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(0)
}

// Stop drops queued pulses and restarts the program
func (b *PIOStepBackend) Stop() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetEnabled(true)
}

// Name returns the backend name
func (b *PIOStepBackend) Name() string {
	return "PIO"
}

// Info returns backend performance information
func (b *PIOStepBackend) Info() core.StepBackendInfo {
	return core.StepBackendInfo{
		Name:        b.Name(),
		MaxStepRate: smClockHz / 4,
		MinPulseNs:  2000,
	}
}
