package core

import "time"

// DefaultDebounce is the switch debounce interval
const DefaultDebounce = 25 * time.Millisecond

// DebouncedInput filters a raw switch signal into a stable logical state.
// The stable value only follows the raw value after the raw value has held
// for at least the debounce interval.
type DebouncedInput struct {
	pin      DigitalIn
	polarity Polarity
	debounce time.Duration

	raw       bool          // last raw sample
	stable    bool          // debounced electrical level
	changedAt time.Duration // time of the last raw change
}

// NewDebouncedInput samples the pin once and starts from that level.
func NewDebouncedInput(pin DigitalIn, polarity Polarity, debounce time.Duration, now time.Duration) *DebouncedInput {
	level := pin.Get()
	return &DebouncedInput{
		pin:       pin,
		polarity:  polarity,
		debounce:  debounce,
		raw:       level,
		stable:    level,
		changedAt: now,
	}
}

// Update samples the pin. Must be called every tick for timing correctness.
func (d *DebouncedInput) Update(now time.Duration) {
	v := d.pin.Get()
	if v != d.raw {
		d.raw = v
		d.changedAt = now
		return
	}
	if now-d.changedAt >= d.debounce {
		d.stable = v
	}
}

// Active returns the debounced state mapped through the input polarity.
func (d *DebouncedInput) Active() bool {
	return d.polarity.Active(d.stable)
}

// Level returns the debounced electrical level.
func (d *DebouncedInput) Level() bool {
	return d.stable
}

// optionalInput wraps a debounced input that may not be wired.
type optionalInput struct {
	*DebouncedInput
}

func (o optionalInput) update(now time.Duration) {
	if o.DebouncedInput != nil {
		o.Update(now)
	}
}

// active reports false for an unwired input.
func (o optionalInput) active() bool {
	return o.DebouncedInput != nil && o.Active()
}

func (o optionalInput) wired() bool {
	return o.DebouncedInput != nil
}
