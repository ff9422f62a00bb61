package core

import "time"

// FeedDemand turns the buffer-low switch into a time-qualified "need feed"
// signal. Buffer-low must read active continuously for longer than the
// delay; the buffer-high switch optionally vetoes demand (hysteresis).
type FeedDemand struct {
	low        *DebouncedInput
	high       optionalInput
	delay      time.Duration
	hysteresis bool

	lowActive bool
	lowSince  time.Duration // start of the current continuous low period
	need      bool
}

// NewFeedDemand creates the filter. high may be nil; hysteresis is ignored
// without a high switch.
func NewFeedDemand(low, high *DebouncedInput, delay time.Duration, hysteresis bool, now time.Duration) *FeedDemand {
	return &FeedDemand{
		low:        low,
		high:       optionalInput{high},
		delay:      delay,
		hysteresis: hysteresis,
		lowActive:  low.Active(),
		lowSince:   now,
	}
}

// Update recomputes need_feed from the debounced buffer switches.
func (f *FeedDemand) Update(now time.Duration) bool {
	low := f.low.Active()
	if !low {
		f.lowActive = false
		f.lowSince = now
		f.need = false
		return false
	}
	if !f.lowActive {
		f.lowActive = true
		f.lowSince = now
	}

	f.need = now-f.lowSince > f.delay
	if f.need && f.hysteresis && f.high.active() {
		f.need = false
	}
	return f.need
}

// NeedFeed returns the result of the last Update
func (f *FeedDemand) NeedFeed() bool {
	return f.need
}

// LowFor returns how long buffer-low has been continuously active
func (f *FeedDemand) LowFor(now time.Duration) time.Duration {
	if !f.lowActive {
		return 0
	}
	return now - f.lowSince
}

// BufferLow reports the debounced buffer-low state
func (f *FeedDemand) BufferLow() bool {
	return f.low.Active()
}

// BufferHigh reports the debounced buffer-high state; false if unwired
func (f *FeedDemand) BufferHigh() bool {
	return f.high.active()
}

func (f *FeedDemand) updateInputs(now time.Duration) {
	f.low.Update(now)
	f.high.update(now)
}
