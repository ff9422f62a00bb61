package core

import "time"

// LaneID identifies one of the two filament lanes
type LaneID uint8

const (
	Lane1 LaneID = 1
	Lane2 LaneID = 2
)

// Other returns the opposite lane
func (id LaneID) Other() LaneID {
	if id == Lane1 {
		return Lane2
	}
	return Lane1
}

// Valid reports whether id names a lane
func (id LaneID) Valid() bool {
	return id == Lane1 || id == Lane2
}

func (id LaneID) index() int {
	return int(id) - 1
}

// Mode is the task a lane is running.
// Priority when requests overlap: ManualReverse > Feed > Autoload > Idle.
type Mode uint8

const (
	ModeIdle          Mode = iota // actuator disabled
	ModeAutoload                  // forward at autoload rate until OUT or timeout
	ModeFeed                      // forward at feed rate while demanded
	ModeManualReverse             // reverse at fixed rate while button held
)

var modeNames = [...]string{
	ModeIdle:          "idle",
	ModeAutoload:      "autoload",
	ModeFeed:          "feed",
	ModeManualReverse: "reverse",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode is the inverse of Mode.String
func ParseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return ModeIdle, false
}

// LaneConfig holds the per-lane task parameters
type LaneConfig struct {
	AutoloadRate    uint32
	ReverseRate     uint32
	AutoloadTimeout time.Duration
}

// LaneCommand carries the decisions made outside the lane for one tick.
type LaneCommand struct {
	// Feed is true when this lane is active, feed is demanded and no swap
	// cooldown is running. The lane additionally requires OUT present.
	Feed bool
	// FeedRate is the live feed rate in steps per second.
	FeedRate uint32
	// ActiveFeeding is true when this lane is active and feed is demanded.
	// Autoload is suppressed while it holds.
	ActiveFeeding bool
}

// Lane pairs IN and OUT sensors with one actuator and runs the task state
// machine. The previous IN value is kept on the lane for edge detection.
type Lane struct {
	id  LaneID
	cfg LaneConfig

	in      *DebouncedInput
	out     *DebouncedInput
	reverse optionalInput // manual reverse button, optional
	act     *Actuator
	log     *EventLog

	mode     Mode
	prevIn   bool          // IN presence on the previous tick
	deadline time.Duration // autoload deadline

	// autoloadFault is set when the last autoload timed out and cleared once
	// the lane's sensors change or a new task starts
	autoloadFault bool

	// feedHeld blocks Feed after a manual reverse until the demand that was
	// active at release has gone away
	feedHeld bool
}

// NewLane creates an idle lane. reverse may be nil.
func NewLane(id LaneID, cfg LaneConfig, in, out, reverse *DebouncedInput, act *Actuator, log *EventLog) *Lane {
	if log == nil {
		log = &EventLog{}
	}
	return &Lane{
		id:      id,
		cfg:     cfg,
		in:      in,
		out:     out,
		reverse: optionalInput{reverse},
		act:     act,
		log:     log,
		mode:    ModeIdle,
		// Filament already inserted at boot is not an insertion edge.
		prevIn: in.Active(),
	}
}

// Update advances the state machine by one tick. Inputs must already be
// debounced for this tick.
func (l *Lane) Update(now time.Duration, cmd LaneCommand) {
	inPresent := l.in.Active()
	outPresent := l.out.Active()
	rising := inPresent && !l.prevIn
	l.prevIn = inPresent

	if l.autoloadFault && (outPresent || !inPresent) {
		l.autoloadFault = false
	}
	if l.feedHeld && !cmd.ActiveFeeding {
		l.feedHeld = false
	}

	// Manual reverse preempts everything
	if l.reverse.active() {
		if l.mode != ModeManualReverse {
			if l.mode == ModeFeed {
				l.record(now, EvtFeedStop)
			}
			l.enter(ModeManualReverse, l.cfg.ReverseRate)
			l.record(now, EvtReverseStart)
		}
		return
	}

	switch l.mode {
	case ModeManualReverse:
		// Released: back to Idle. Feed needs a fresh demand, so a still
		// pending one does not push the filament straight back in.
		l.enter(ModeIdle, 0)
		l.feedHeld = cmd.ActiveFeeding
		l.record(now, EvtReverseStop)

	case ModeAutoload:
		if outPresent {
			l.enter(ModeIdle, 0)
			l.record(now, EvtAutoloadDone)
		} else if now >= l.deadline {
			l.enter(ModeIdle, 0)
			l.autoloadFault = true
			l.record(now, EvtAutoloadTimeout)
		}

	case ModeFeed:
		if !cmd.Feed || !outPresent {
			l.enter(ModeIdle, 0)
			l.record(now, EvtFeedStop)
			return
		}
		// Live speed control, no state change
		l.act.SetRate(cmd.FeedRate)

	case ModeIdle:
		if cmd.Feed && outPresent && !l.feedHeld {
			l.enter(ModeFeed, cmd.FeedRate)
			l.record(now, EvtFeedStart)
			return
		}
		if rising && !outPresent && !cmd.ActiveFeeding {
			l.deadline = now + l.cfg.AutoloadTimeout
			l.enter(ModeAutoload, l.cfg.AutoloadRate)
			l.record(now, EvtAutoloadStart)
		}
	}
}

// enter switches task. The actuator is always disabled before it is
// reconfigured, so two tasks never command the motor at once.
func (l *Lane) enter(m Mode, rate uint32) {
	l.act.SetEnabled(false)
	l.mode = m

	switch m {
	case ModeIdle:
		l.act.SetRate(0)
		return
	case ModeManualReverse:
		l.act.SetDirection(Reverse)
	default:
		l.act.SetDirection(Forward)
	}

	l.autoloadFault = false
	l.act.SetRate(rate)
	l.act.SetEnabled(true)
}

func (l *Lane) record(now time.Duration, kind EventKind) {
	l.log.Record(Event{Time: now, Kind: kind, Lane: l.id, Value: uint32(l.act.Steps())})
}

// ID returns the lane id
func (l *Lane) ID() LaneID { return l.id }

// Mode returns the current task
func (l *Lane) Mode() Mode { return l.mode }

// InPresent reports debounced filament presence at IN
func (l *Lane) InPresent() bool { return l.in.Active() }

// OutPresent reports debounced filament presence at OUT
func (l *Lane) OutPresent() bool { return l.out.Active() }

// ReverseRequested reports whether the manual reverse button is held
func (l *Lane) ReverseRequested() bool { return l.reverse.active() }

// FeedHeld reports whether Feed is blocked after a manual reverse
func (l *Lane) FeedHeld() bool { return l.feedHeld }

// AutoloadFault reports whether the last autoload timed out
func (l *Lane) AutoloadFault() bool { return l.autoloadFault }

// Actuator returns the lane's motor
func (l *Lane) Actuator() *Actuator { return l.act }

// Deadline returns the autoload deadline; meaningful only in ModeAutoload
func (l *Lane) Deadline() time.Duration { return l.deadline }

// updateInputs debounces the lane's sensors
func (l *Lane) updateInputs(now time.Duration) {
	l.in.Update(now)
	l.out.Update(now)
	l.reverse.update(now)
}
