package core

import (
	"image/color"
	"time"
)

// Indicator is the categorical controller state shown on the status LED.
type Indicator uint8

const (
	IndicatorIdle Indicator = iota
	IndicatorError
	IndicatorSwapArmed
	IndicatorAutoloading
	IndicatorFeeding
	IndicatorManualReverse
)

var indicatorNames = [...]string{
	IndicatorIdle:          "idle",
	IndicatorError:         "error",
	IndicatorSwapArmed:     "swap_armed",
	IndicatorAutoloading:   "autoloading",
	IndicatorFeeding:       "feeding",
	IndicatorManualReverse: "manual_reverse",
}

func (i Indicator) String() string {
	if int(i) < len(indicatorNames) {
		return indicatorNames[i]
	}
	return "unknown"
}

// ParseIndicator is the inverse of Indicator.String
func ParseIndicator(s string) (Indicator, bool) {
	for i, n := range indicatorNames {
		if n == s {
			return Indicator(i), true
		}
	}
	return IndicatorIdle, false
}

// IndicatorState is the input to the indicator priority resolution.
type IndicatorState struct {
	Modes [2]Mode
	Armed bool
	Fault bool
}

// ResolveIndicator picks the shown state. The order is load-bearing:
// ManualReverse > Feeding > Autoloading > SwapArmed > Error > Idle.
func ResolveIndicator(s IndicatorState) Indicator {
	has := func(m Mode) bool {
		return s.Modes[0] == m || s.Modes[1] == m
	}
	switch {
	case has(ModeManualReverse):
		return IndicatorManualReverse
	case has(ModeFeed):
		return IndicatorFeeding
	case has(ModeAutoload):
		return IndicatorAutoloading
	case s.Armed:
		return IndicatorSwapArmed
	case s.Fault:
		return IndicatorError
	default:
		return IndicatorIdle
	}
}

// BlinkSlot is the duration of one slot of a blink pattern.
const BlinkSlot = 100 * time.Millisecond

// blinkPatterns are 16-slot on/off masks, LSB first (1.6 s cycle).
var blinkPatterns = [...]uint16{
	IndicatorIdle:          0x0001, // short heartbeat
	IndicatorError:         0x0555, // six fast blinks then pause
	IndicatorSwapArmed:     0x0005, // double blink
	IndicatorAutoloading:   0x5555, // fast blink
	IndicatorFeeding:       0xFFFF, // solid
	IndicatorManualReverse: 0x0F0F, // slow blink
}

// Pattern returns the blink mask of the indicator
func (i Indicator) Pattern() uint16 {
	if int(i) < len(blinkPatterns) {
		return blinkPatterns[i]
	}
	return 0
}

// LED returns whether a single status LED is lit at time now.
func (i Indicator) LED(now time.Duration) bool {
	slot := uint((now / BlinkSlot) % 16)
	return i.Pattern()&(1<<slot) != 0
}

var indicatorColors = [...]color.RGBA{
	IndicatorIdle:          {R: 0x00, G: 0x00, B: 0x20, A: 0xFF},
	IndicatorError:         {R: 0x40, G: 0x00, B: 0x00, A: 0xFF},
	IndicatorSwapArmed:     {R: 0x30, G: 0x20, B: 0x00, A: 0xFF},
	IndicatorAutoloading:   {R: 0x00, G: 0x20, B: 0x30, A: 0xFF},
	IndicatorFeeding:       {R: 0x00, G: 0x40, B: 0x00, A: 0xFF},
	IndicatorManualReverse: {R: 0x30, G: 0x00, B: 0x30, A: 0xFF},
}

// Color returns the RGB colour at time now, black during "off" slots.
func (i Indicator) Color(now time.Duration) color.RGBA {
	if !i.LED(now) || int(i) >= len(indicatorColors) {
		return color.RGBA{A: 0xFF}
	}
	return indicatorColors[i]
}
