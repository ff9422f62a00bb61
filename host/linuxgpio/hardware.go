package linuxgpio

import (
	"time"

	"laneswitch/core"
	"laneswitch/host/config"
)

// Hardware requests every line named in cfg and returns the controller
// hardware. Motors start disabled. On error the lines requested so far stay
// owned by chip; the caller closes it.
func Hardware(chip *Chip, cfg *config.LinuxConfig, pulseWidth time.Duration, clock core.Clock) (core.Hardware, error) {
	var hw core.Hardware

	for i, ln := range cfg.Lanes {
		pins := &hw.Lanes[i]
		var err error

		if pins.In, err = chip.Input(ln.In); err != nil {
			return hw, err
		}
		if pins.Out, err = chip.Input(ln.Out); err != nil {
			return hw, err
		}
		if ln.Reverse != nil {
			if pins.Reverse, err = chip.Input(*ln.Reverse); err != nil {
				return hw, err
			}
		}
		if ln.Enable != nil {
			// Released EN level: high for active-low drivers
			if pins.Enable, err = chip.Output(*ln.Enable, !ln.EnableActiveHigh); err != nil {
				return hw, err
			}
		}
		if pins.Dir, err = chip.Output(ln.Dir, false); err != nil {
			return hw, err
		}
		step, err := chip.Output(ln.Step, cfg.InvertStep)
		if err != nil {
			return hw, err
		}
		pins.Step = core.NewPinStepper(step, cfg.InvertStep, pulseWidth, clock)
	}

	var err error
	if hw.BufferLow, err = chip.Input(cfg.BufferLow); err != nil {
		return hw, err
	}
	if cfg.BufferHigh != nil {
		if hw.BufferHigh, err = chip.Input(*cfg.BufferHigh); err != nil {
			return hw, err
		}
	}
	if cfg.YSplit != nil {
		if hw.YSplit, err = chip.Input(*cfg.YSplit); err != nil {
			return hw, err
		}
	}
	return hw, nil
}
