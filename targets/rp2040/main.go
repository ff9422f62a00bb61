//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"laneswitch/core"
	"laneswitch/targets/pio"
)

// Panics recovered in the main loop
var loopErrors uint32

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()

	cfg := core.DefaultConfig()
	clock := hardwareClock{}

	hw := buildHardware()
	c, err := core.NewController(cfg, hw, clock)
	if err != nil {
		// Only a firmware build error can get here; report it forever
		for {
			writeDebug("controller init failed: " + err.Error())
			time.Sleep(time.Second)
		}
	}
	c.SetDebugWriter(writeDebug)
	c.SetStatusSink(writeStatus)
	writeDebug("step backends " + hw.Lanes[0].Step.Name() + " " + hw.Lanes[1].Step.Name())

	led := newStatusLED(pinStatusLED)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopErrors++
					// Never leave a motor running after a fault
					c.Stop()
					c.Events().Dump()
				}
			}()

			now := clock.Now()
			c.Tick(now)
			led.Update(c.Indicator(), now)
		}()

		time.Sleep(cfg.TickPeriod)
	}
}

// buildHardware configures every pin of the board and returns the set
// handed to the controller.
func buildHardware() core.Hardware {
	hw := core.Hardware{
		Lanes: [2]core.LanePins{
			{
				In:     inputPin(pinL1In),
				Out:    inputPin(pinL1Out),
				Enable: outputPin(pinL1Enable, true), // EN active-low: disabled
				Dir:    outputPin(pinL1Dir, true),
				Step:   pio.NewStepBackend(pinL1Step, invertStep),
			},
			{
				In:     inputPin(pinL2In),
				Out:    inputPin(pinL2Out),
				Enable: outputPin(pinL2Enable, true),
				Dir:    outputPin(pinL2Dir, true),
				Step:   pio.NewStepBackend(pinL2Step, invertStep),
			},
		},
		BufferLow:  inputPin(pinBufferLow),
		BufferHigh: inputPin(pinBufferHigh),
		YSplit:     inputPin(pinYSplit),
	}

	if reverseButtonsFitted {
		hw.Lanes[0].Reverse = inputPin(pinL1Reverse)
		hw.Lanes[1].Reverse = inputPin(pinL2Reverse)
	}

	if speedPotFitted {
		if pot, err := newSpeedPot(); err == nil {
			hw.Speed = pot
		}
	}
	return hw
}
