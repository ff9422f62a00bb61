// Package monitor follows the status lines of a running controller. It keeps
// the latest snapshot, republishes it over MQTT and serves it over HTTP.
package monitor

import (
	"sync"
	"time"

	"laneswitch/core"
)

// Snapshot is the JSON document served and published by the monitor.
type Snapshot struct {
	Status    *core.Status `json:"status,omitempty"`
	Received  time.Time    `json:"received,omitempty"`
	Lines     uint64       `json:"lines"`
	Errors    uint64       `json:"errors"`
	LastError string       `json:"last_error,omitempty"`
}

// Store holds the latest status. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	latest   core.Status
	have     bool
	received time.Time
	lines    uint64
	errors   uint64
	lastErr  string

	changed chan struct{}
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		changed: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Update replaces the latest status and wakes a waiting publisher.
func (s *Store) Update(st core.Status) {
	s.mu.Lock()
	s.latest = st
	s.have = true
	s.received = s.now()
	s.lines++
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// RecordError counts a line that could not be parsed.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	s.errors++
	s.lastErr = err.Error()
	s.mu.Unlock()
}

// Latest returns the last status and whether one was received.
func (s *Store) Latest() (core.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.have
}

// Age returns the time since the last status, or false before the first one.
func (s *Store) Age() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.have {
		return 0, false
	}
	return s.now().Sub(s.received), true
}

// Changed is signalled after Update. Several updates may collapse into one
// signal.
func (s *Store) Changed() <-chan struct{} { return s.changed }

// Snapshot copies the store contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Lines:     s.lines,
		Errors:    s.errors,
		LastError: s.lastErr,
	}
	if s.have {
		st := s.latest
		snap.Status = &st
		snap.Received = s.received
	}
	return snap
}
