package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePin is a settable digital line used as both input and output
type fakePin struct {
	level bool
	sets  int
}

func (p *fakePin) Get() bool { return p.level }

func (p *fakePin) Set(v bool) {
	p.level = v
	p.sets++
}

// fakeClock is advanced manually by tests
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

// fakeStep records step pulses with the clock time they were issued at
type fakeStep struct {
	clock *fakeClock
	at    []time.Duration
}

func (s *fakeStep) Step() { s.at = append(s.at, s.clock.now) }
func (s *fakeStep) Name() string { return "fake" }
func (s *fakeStep) count() int { return len(s.at) }

type fakeAnalog struct {
	value uint16
	reads int
}

func (a *fakeAnalog) Get() uint16 {
	a.reads++
	return a.value
}

const testTick = 100 * time.Microsecond

// rig wires a controller to fake hardware. Sensor helpers take logical
// values and translate them to the default wiring polarities.
type rig struct {
	t     *testing.T
	clock *fakeClock

	in, out, rev [2]*fakePin
	enable, dir  [2]*fakePin
	step         [2]*fakeStep

	bufLow, bufHigh, ySplit *fakePin
	speed                   *fakeAnalog

	c *Controller
}

type rigOption func(*rig, *Config, *Hardware)

func withSpeed(value uint16) rigOption {
	return func(r *rig, _ *Config, hw *Hardware) {
		r.speed = &fakeAnalog{value: value}
		hw.Speed = r.speed
	}
}

func withConfig(f func(*Config)) rigOption {
	return func(_ *rig, cfg *Config, _ *Hardware) { f(cfg) }
}

// boot state setter, applied before the controller samples its inputs
func withBoot(f func(*rig)) rigOption {
	return func(r *rig, _ *Config, _ *Hardware) { f(r) }
}

func newRig(t *testing.T, opts ...rigOption) *rig {
	t.Helper()

	r := &rig{
		t:       t,
		clock:   &fakeClock{},
		bufLow:  &fakePin{level: false}, // buffer not low
		bufHigh: &fakePin{level: true},  // buffer not high
		ySplit:  &fakePin{level: true},  // junction clear
	}

	var hw Hardware
	for i := 0; i < 2; i++ {
		r.in[i] = &fakePin{level: true} // no filament
		r.out[i] = &fakePin{level: true}
		r.rev[i] = &fakePin{level: true} // button released
		r.enable[i] = &fakePin{}
		r.dir[i] = &fakePin{}
		r.step[i] = &fakeStep{clock: r.clock}
		hw.Lanes[i] = LanePins{
			In:      r.in[i],
			Out:     r.out[i],
			Reverse: r.rev[i],
			Enable:  r.enable[i],
			Dir:     r.dir[i],
			Step:    r.step[i],
		}
	}
	hw.BufferLow = r.bufLow
	hw.BufferHigh = r.bufHigh
	hw.YSplit = r.ySplit

	cfg := DefaultConfig()
	for _, o := range opts {
		o(r, &cfg, &hw)
	}

	c, err := NewController(cfg, hw, r.clock)
	require.NoError(t, err)
	r.c = c
	return r
}

func (r *rig) setIn(id LaneID, present bool) { r.in[id.index()].level = !present }
func (r *rig) setOut(id LaneID, present bool) { r.out[id.index()].level = !present }
func (r *rig) setReverse(id LaneID, held bool) {
	r.rev[id.index()].level = !held
}
func (r *rig) setBufferLow(low bool) { r.bufLow.level = low }
func (r *rig) setBufferHigh(high bool) { r.bufHigh.level = !high }
func (r *rig) setYSplit(occupied bool) { r.ySplit.level = !occupied }
func (r *rig) lane(id LaneID) *Lane { return r.c.Lane(id) }
func (r *rig) steps(id LaneID) int { return r.step[id.index()].count() }
func (r *rig) mode(id LaneID) Mode { return r.lane(id).Mode() }
func (r *rig) tick() {
	r.clock.now += testTick
	r.c.Tick(r.clock.now)
}

func (r *rig) now() time.Duration { return r.clock.now }

func (r *rig) run(d time.Duration) {
	end := r.clock.now + d
	for r.clock.now < end {
		r.tick()
	}
}

// runUntil ticks until cond holds or limit elapses; returns whether cond held
func (r *rig) runUntil(limit time.Duration, cond func() bool) bool {
	end := r.clock.now + limit
	for r.clock.now < end {
		r.tick()
		if cond() {
			return true
		}
	}
	return false
}

// loaded boots with lane IN and OUT both present
func loaded(ids ...LaneID) rigOption {
	return withBoot(func(r *rig) {
		for _, id := range ids {
			r.setIn(id, true)
			r.setOut(id, true)
		}
	})
}
