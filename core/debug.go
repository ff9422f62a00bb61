package core

import (
	"strconv"
	"time"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventKind identifies a recorded state change
type EventKind uint8

// Event kind codes
const (
	EvtAutoloadStart   EventKind = iota + 1 // IN rising edge started autoload
	EvtAutoloadDone                         // OUT reached during autoload
	EvtAutoloadTimeout                      // autoload deadline elapsed
	EvtFeedStart                            // lane entered Feed
	EvtFeedStop                             // lane left Feed
	EvtReverseStart                         // manual reverse engaged
	EvtReverseStop                          // manual reverse released
	EvtSwapArmed                            // active lane ran empty at IN
	EvtSwap                                 // active lane changed
)

var eventNames = [...]string{
	EvtAutoloadStart:   "AUTOLOAD_START",
	EvtAutoloadDone:    "AUTOLOAD_DONE",
	EvtAutoloadTimeout: "AUTOLOAD_TIMEOUT",
	EvtFeedStart:       "FEED_START",
	EvtFeedStop:        "FEED_STOP",
	EvtReverseStart:    "REVERSE_START",
	EvtReverseStop:     "REVERSE_STOP",
	EvtSwapArmed:       "SWAP_ARMED",
	EvtSwap:            "SWAP",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) && eventNames[k] != "" {
		return eventNames[k]
	}
	return "UNKNOWN"
}

// Event captures a state change for post-mortem analysis
type Event struct {
	Time  time.Duration
	Kind  EventKind
	Lane  LaneID
	Value uint32 // context-dependent: step count, new active lane, ...
}

// String formats the event as a single debug line
func (e Event) String() string {
	s := "[" + strconv.FormatInt(e.Time.Milliseconds(), 10) + "ms] " + e.Kind.String()
	if e.Lane != 0 {
		s += " lane=" + strconv.Itoa(int(e.Lane))
	}
	if e.Value != 0 {
		s += " v=" + strconv.FormatUint(uint64(e.Value), 10)
	}
	return s
}

// EventRingSize is the number of events kept for post-mortem dumps
const EventRingSize = 32

// EventLog keeps the last EventRingSize events and forwards each one to an
// optional writer. Recording never blocks.
type EventLog struct {
	ring   [EventRingSize]Event
	head   uint8 // next write position
	count  uint32
	writer DebugWriter
}

// SetWriter sets the debug output function; nil disables output.
func (l *EventLog) SetWriter(w DebugWriter) {
	l.writer = w
}

// Record stores an event in the ring and writes it out
func (l *EventLog) Record(e Event) {
	l.ring[l.head] = e
	l.head = (l.head + 1) % EventRingSize
	l.count++
	if l.writer != nil {
		l.writer(e.String())
	}
}

// Count returns the number of events recorded since start
func (l *EventLog) Count() uint32 {
	return l.count
}

// Events returns the buffered events, oldest first
func (l *EventLog) Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := l.head
	for i := uint8(0); i < EventRingSize; i++ {
		e := l.ring[(start+i)%EventRingSize]
		if e.Kind == 0 {
			continue // empty slot
		}
		out = append(out, e)
	}
	return out
}

// Last returns the most recent event, if any
func (l *EventLog) Last() (Event, bool) {
	if l.count == 0 {
		return Event{}, false
	}
	return l.ring[(l.head+EventRingSize-1)%EventRingSize], true
}

// Dump writes the ring buffer through the writer
func (l *EventLog) Dump() {
	if l.writer == nil {
		return
	}
	l.writer("[EVENTS] === Event Ring Dump ===")
	for _, e := range l.Events() {
		l.writer("[EVENTS] " + e.String())
	}
	l.writer("[EVENTS] === End Dump ===")
}

// Clear empties the ring
func (l *EventLog) Clear() {
	l.ring = [EventRingSize]Event{}
	l.head = 0
	l.count = 0
}
