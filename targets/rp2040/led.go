//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"
	"time"

	"laneswitch/core"

	"tinygo.org/x/drivers/ws2812"
)

// statusLED shows the controller indicator on a single WS2812 pixel.
// Writes are skipped unless the colour changes; a WS2812 frame blocks for
// about 30us with interrupts off.
type statusLED struct {
	dev  ws2812.Device
	last color.RGBA
	buf  [1]color.RGBA
	set  bool
}

func newStatusLED(pin machine.Pin) *statusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &statusLED{dev: ws2812.New(pin)}
}

// Update refreshes the pixel for the given indicator state
func (l *statusLED) Update(ind core.Indicator, now time.Duration) {
	c := ind.Color(now)
	if l.set && c == l.last {
		return
	}
	l.buf[0] = c
	if err := l.dev.WriteColors(l.buf[:]); err != nil {
		return
	}
	l.last = c
	l.set = true
}
