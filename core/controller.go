package core

// Control loop
// Polls every input once per tick, then runs the feed-demand filter, the
// swap arbiter and each lane's state machine on that single snapshot, then
// issues at most one step pulse per motor.

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// LanePins is the hardware of one lane
type LanePins struct {
	In      DigitalIn
	Out     DigitalIn
	Reverse DigitalIn // manual reverse button, optional

	Enable DigitalOut // optional when EN is tied
	Dir    DigitalOut
	Step   StepBackend
}

// Hardware is the full pin set handed to the controller by a target
type Hardware struct {
	Lanes      [2]LanePins
	BufferLow  DigitalIn
	BufferHigh DigitalIn // optional
	YSplit     DigitalIn // optional
	Speed      AnalogIn  // optional potentiometer
}

// ErrMissingPin is returned when a required capability is nil
var ErrMissingPin = errors.New("required pin not wired")

// StatusSink receives a status snapshot every status period.
// The snapshot is only valid for the duration of the call.
type StatusSink func(*Status)

// Controller owns all lane, sensor and arbiter state. It is not safe for
// concurrent use: one goroutine calls Tick (or Run).
type Controller struct {
	cfg   Config
	clock Clock

	lanes   [2]*Lane
	demand  *FeedDemand
	speed   *SpeedControl
	arbiter *SwapArbiter
	ySplit  optionalInput
	events  EventLog

	indicator  Indicator
	statusSink StatusSink
	nextStatus time.Duration
	ticks      uint64
}

// NewController validates the hardware set and builds every component.
func NewController(cfg Config, hw Hardware, clock Clock) (*Controller, error) {
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := hw.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	c := &Controller{
		cfg:   cfg,
		clock: clock,
	}
	now := clock.Now()

	input := func(pin DigitalIn, p Polarity) *DebouncedInput {
		if pin == nil {
			return nil
		}
		return NewDebouncedInput(pin, p, cfg.Debounce, now)
	}

	for i := range c.lanes {
		id := LaneID(i + 1)
		pins := hw.Lanes[i]
		act := NewActuator(cfg.Actuators[i], pins.Enable, pins.Dir, pins.Step)
		c.lanes[i] = NewLane(id, cfg.laneConfig(),
			input(pins.In, cfg.Polarity.Sensors),
			input(pins.Out, cfg.Polarity.Sensors),
			input(pins.Reverse, cfg.Polarity.Reverse),
			act, &c.events)
	}

	c.demand = NewFeedDemand(
		input(hw.BufferLow, cfg.Polarity.BufferLow),
		input(hw.BufferHigh, cfg.Polarity.BufferHigh),
		cfg.LowDelay, cfg.BufferHighHysteresis, now)
	c.speed = NewSpeedControl(hw.Speed, cfg.MinFeedRate, cfg.MaxFeedRate, cfg.SpeedPollPeriod, cfg.FeedRate)
	c.arbiter = NewSwapArbiter(cfg.InitialLane, cfg.SwapCooldown, &c.events)
	c.ySplit = optionalInput{input(hw.YSplit, cfg.Polarity.YSplit)}

	return c, nil
}

func (hw *Hardware) validate() error {
	for i, l := range hw.Lanes {
		switch {
		case l.In == nil:
			return fmt.Errorf("%w: lane %d IN", ErrMissingPin, i+1)
		case l.Out == nil:
			return fmt.Errorf("%w: lane %d OUT", ErrMissingPin, i+1)
		case l.Step == nil:
			return fmt.Errorf("%w: lane %d STEP", ErrMissingPin, i+1)
		}
	}
	if hw.BufferLow == nil {
		return fmt.Errorf("%w: buffer low", ErrMissingPin)
	}
	return nil
}

// SetDebugWriter routes transition events to w
func (c *Controller) SetDebugWriter(w DebugWriter) {
	c.events.SetWriter(w)
}

// SetStatusSink sets the periodic status receiver
func (c *Controller) SetStatusSink(s StatusSink) {
	c.statusSink = s
}

// Tick runs one control loop iteration at time now.
func (c *Controller) Tick(now time.Duration) {
	c.ticks++

	// Sample and debounce everything before any decision reads it
	for _, l := range c.lanes {
		l.updateInputs(now)
	}
	c.demand.updateInputs(now)
	c.ySplit.update(now)

	rate := c.speed.Update(now)
	need := c.demand.Update(now)

	active := c.arbiter.Active()
	c.arbiter.Update(now, SwapInputs{
		ActiveInPresent:     c.lanes[active.index()].InPresent(),
		CandidateOutPresent: c.lanes[active.Other().index()].OutPresent(),
		NeedFeed:            need,
		YSplitClear:         c.YSplitClear(),
	})

	active = c.arbiter.Active()
	cooldown := c.arbiter.InCooldown(now)
	for _, l := range c.lanes {
		isActive := l.ID() == active
		l.Update(now, LaneCommand{
			Feed:          isActive && need && !cooldown,
			FeedRate:      rate,
			ActiveFeeding: isActive && need,
		})
	}

	for _, l := range c.lanes {
		l.Actuator().Tick(now)
	}

	c.indicator = ResolveIndicator(IndicatorState{
		Modes: [2]Mode{c.lanes[0].Mode(), c.lanes[1].Mode()},
		Armed: c.arbiter.Armed(),
		Fault: c.lanes[0].AutoloadFault() || c.lanes[1].AutoloadFault(),
	})

	if c.statusSink != nil && now >= c.nextStatus {
		s := c.Status(now)
		c.statusSink(&s)
		c.nextStatus = now + c.cfg.StatusPeriod
	}
}

// Run ticks at the configured period until ctx is done, then disables both
// motors.
func (c *Controller) Run(ctx context.Context) error {
	defer c.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.Tick(c.clock.Now())
		time.Sleep(c.cfg.TickPeriod)
	}
}

// Stop disables both motors. The next Tick re-evaluates every lane.
func (c *Controller) Stop() {
	for _, l := range c.lanes {
		l.enter(ModeIdle, 0)
	}
}

// YSplitClear reports whether a swap is allowed by the Y-split gate.
func (c *Controller) YSplitClear() bool {
	if !c.cfg.YSplitGate {
		return true
	}
	return !c.ySplit.active()
}

// Status builds a snapshot of the current state
func (c *Controller) Status(now time.Duration) Status {
	s := Status{
		UptimeMs:   now.Milliseconds(),
		Active:     c.arbiter.Active(),
		Armed:      c.arbiter.Armed(),
		NeedFeed:   c.demand.NeedFeed(),
		Cooldown:   c.arbiter.InCooldown(now),
		YSplit:     c.ySplit.active(),
		BufferLow:  c.demand.BufferLow(),
		BufferHigh: c.demand.BufferHigh(),
		Indicator:  c.indicator,
	}
	for i, l := range c.lanes {
		s.Lanes[i] = LaneStatus{
			In:    l.InPresent(),
			Out:   l.OutPresent(),
			Mode:  l.Mode(),
			Rate:  l.Actuator().Rate(),
			Steps: l.Actuator().Steps(),
			Fault: l.AutoloadFault(),
		}
	}
	return s
}

// Lane returns a lane by id, nil for an invalid id
func (c *Controller) Lane(id LaneID) *Lane {
	if !id.Valid() {
		return nil
	}
	return c.lanes[id.index()]
}

// Arbiter returns the swap arbiter
func (c *Controller) Arbiter() *SwapArbiter { return c.arbiter }

// FeedDemand returns the feed-demand filter
func (c *Controller) FeedDemand() *FeedDemand { return c.demand }

// Events returns the event log
func (c *Controller) Events() *EventLog { return &c.events }

// Indicator returns the status indicator state of the last tick
func (c *Controller) Indicator() Indicator { return c.indicator }

// Ticks returns the number of ticks run
func (c *Controller) Ticks() uint64 { return c.ticks }

// Config returns the effective configuration
func (c *Controller) Config() Config { return c.cfg }
