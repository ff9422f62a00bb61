package core

import "time"

// SwapInputs is the per-tick view the arbiter decides on.
type SwapInputs struct {
	ActiveInPresent     bool // active lane IN sensor
	CandidateOutPresent bool // inactive lane OUT sensor
	NeedFeed            bool
	YSplitClear         bool // true when no gate is configured
}

// SwapArbiter decides when the active lane changes.
// Arming latches when the active lane runs empty at IN; a swap needs
// armed, need_feed, no cooldown, a clear Y-split and a candidate that is
// loaded up to OUT.
type SwapArbiter struct {
	active        LaneID
	armed         bool
	cooldownUntil time.Duration
	cooldown      time.Duration
	log           *EventLog
}

// NewSwapArbiter starts with the given lane active and no cooldown.
func NewSwapArbiter(active LaneID, cooldown time.Duration, log *EventLog) *SwapArbiter {
	if !active.Valid() {
		active = Lane1
	}
	if log == nil {
		log = &EventLog{}
	}
	return &SwapArbiter{
		active:   active,
		cooldown: cooldown,
		log:      log,
	}
}

// Update runs one arbitration step. Returns true if the active lane changed.
func (s *SwapArbiter) Update(now time.Duration, in SwapInputs) bool {
	// Arm: latched, only a swap or Reset clears it
	if !in.ActiveInPresent && !s.armed {
		s.armed = true
		s.log.Record(Event{Time: now, Kind: EvtSwapArmed, Lane: s.active})
	}

	// Gate
	if !s.armed || !in.NeedFeed || s.InCooldown(now) || !in.YSplitClear {
		return false
	}

	// Never swap to a lane that cannot feed immediately
	if !in.CandidateOutPresent {
		return false
	}

	prev := s.active
	s.active = prev.Other()
	s.armed = false
	s.cooldownUntil = now + s.cooldown
	s.log.Record(Event{Time: now, Kind: EvtSwap, Lane: prev, Value: uint32(s.active)})
	return true
}

// InCooldown reports whether a swap happened less than the cooldown ago
func (s *SwapArbiter) InCooldown(now time.Duration) bool {
	return now < s.cooldownUntil
}

// Active returns the active lane
func (s *SwapArbiter) Active() LaneID { return s.active }

// Armed returns the latched swap intent
func (s *SwapArbiter) Armed() bool { return s.armed }

// CooldownUntil returns the end of the current cooldown
func (s *SwapArbiter) CooldownUntil() time.Duration { return s.cooldownUntil }

// Reset clears the armed latch without swapping.
func (s *SwapArbiter) Reset() {
	s.armed = false
}
