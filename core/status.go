package core

// Status line
// One human-readable line per status period: key=value pairs framed with a
// CRC16 checksum by the protocol package. The host monitor parses it back
// with ParseStatus.

import (
	"errors"
	"strconv"
	"strings"

	"laneswitch/protocol"
)

// LaneStatus is the per-lane part of a Status snapshot
type LaneStatus struct {
	In    bool   `json:"in"`
	Out   bool   `json:"out"`
	Mode  Mode   `json:"mode"`
	Rate  uint32 `json:"sps"`
	Steps uint64 `json:"steps"`
	Fault bool   `json:"autoload_fault"`
}

// Status is a snapshot of the controller state
type Status struct {
	UptimeMs   int64         `json:"uptime_ms"`
	Active     LaneID        `json:"active"`
	Armed      bool          `json:"armed"`
	NeedFeed   bool          `json:"need_feed"`
	Cooldown   bool          `json:"cooldown"`
	Lanes      [2]LaneStatus `json:"lanes"`
	YSplit     bool          `json:"y_split_occupied"`
	BufferLow  bool          `json:"buffer_low"`
	BufferHigh bool          `json:"buffer_high"`
	Indicator  Indicator     `json:"state"`
}

// MaxLineLen bounds a status line including checksum and CRLF, with every
// numeric field at its type's maximum width.
const MaxLineLen = 384

// Per-lane keys, constant so AppendLine does not allocate.
var laneKeys = [2]struct{ in, out, mode, sps, steps, fault string }{
	{"l1_in", "l1_out", "l1_mode", "l1_sps", "l1_steps", "l1_fault"},
	{"l2_in", "l2_out", "l2_mode", "l2_sps", "l2_steps", "l2_fault"},
}

var (
	ErrMalformedStatus = errors.New("malformed status line")
	ErrChecksum        = protocol.ErrChecksum
)

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(b []byte) error {
	v, ok := ParseMode(string(b))
	if !ok {
		return ErrMalformedStatus
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (i Indicator) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *Indicator) UnmarshalText(b []byte) error {
	v, ok := ParseIndicator(string(b))
	if !ok {
		return ErrMalformedStatus
	}
	*i = v
	return nil
}

func appendBool(b []byte, key string, v bool) []byte {
	b = append(b, ' ')
	b = append(b, key...)
	if v {
		return append(b, "=1"...)
	}
	return append(b, "=0"...)
}

func appendUint(b []byte, key string, v uint64) []byte {
	b = append(b, ' ')
	b = append(b, key...)
	b = append(b, '=')
	return strconv.AppendUint(b, v, 10)
}

func appendStr(b []byte, key, v string) []byte {
	b = append(b, ' ')
	b = append(b, key...)
	b = append(b, '=')
	return append(b, v...)
}

// AppendLine appends the status line, without newline, to b.
func (s *Status) AppendLine(b []byte) []byte {
	start := len(b)
	b = append(b, "t="...)
	b = strconv.AppendInt(b, s.UptimeMs, 10)
	b = appendUint(b, "active", uint64(s.Active))
	b = appendBool(b, "armed", s.Armed)
	b = appendBool(b, "need_feed", s.NeedFeed)
	b = appendBool(b, "cooldown", s.Cooldown)
	for i := range s.Lanes {
		l, k := &s.Lanes[i], &laneKeys[i]
		b = appendBool(b, k.in, l.In)
		b = appendBool(b, k.out, l.Out)
		b = appendStr(b, k.mode, l.Mode.String())
		b = appendUint(b, k.sps, uint64(l.Rate))
		b = appendUint(b, k.steps, l.Steps)
		b = appendBool(b, k.fault, l.Fault)
	}
	b = appendBool(b, "y_split", s.YSplit)
	b = appendBool(b, "buf_low", s.BufferLow)
	b = appendBool(b, "buf_high", s.BufferHigh)
	b = appendStr(b, "state", s.Indicator.String())

	return protocol.AppendChecksum(b, start)
}

// Line returns the status line without newline
func (s *Status) Line() string {
	return string(s.AppendLine(make([]byte, 0, MaxLineLen)))
}

// ParseStatus parses and verifies a status line. Unknown keys are ignored.
func ParseStatus(line string) (Status, error) {
	var s Status

	payload, err := protocol.VerifyLine(line)
	switch {
	case errors.Is(err, protocol.ErrChecksum):
		return s, ErrChecksum
	case err != nil:
		return s, ErrMalformedStatus
	}

	seen := false
	for _, field := range strings.Fields(payload) {
		eq := strings.IndexByte(field, '=')
		if eq <= 0 {
			return s, ErrMalformedStatus
		}
		key, val := field[:eq], field[eq+1:]
		if err := s.set(key, val); err != nil {
			return s, err
		}
		if key == "active" {
			seen = true
		}
	}
	if !seen || !s.Active.Valid() {
		return s, ErrMalformedStatus
	}
	return s, nil
}

func (s *Status) set(key, val string) error {
	if len(key) > 3 && key[0] == 'l' && key[2] == '_' && (key[1] == '1' || key[1] == '2') {
		return s.Lanes[key[1]-'1'].set(key[3:], val)
	}

	var err error
	switch key {
	case "t":
		s.UptimeMs, err = strconv.ParseInt(val, 10, 64)
	case "active":
		var n uint64
		n, err = strconv.ParseUint(val, 10, 8)
		s.Active = LaneID(n)
	case "armed":
		s.Armed, err = parseFlag(val)
	case "need_feed":
		s.NeedFeed, err = parseFlag(val)
	case "cooldown":
		s.Cooldown, err = parseFlag(val)
	case "y_split":
		s.YSplit, err = parseFlag(val)
	case "buf_low":
		s.BufferLow, err = parseFlag(val)
	case "buf_high":
		s.BufferHigh, err = parseFlag(val)
	case "state":
		err = s.Indicator.UnmarshalText([]byte(val))
	}
	if err != nil {
		return ErrMalformedStatus
	}
	return nil
}

func (l *LaneStatus) set(key, val string) error {
	var err error
	switch key {
	case "in":
		l.In, err = parseFlag(val)
	case "out":
		l.Out, err = parseFlag(val)
	case "mode":
		err = l.Mode.UnmarshalText([]byte(val))
	case "sps":
		var n uint64
		n, err = strconv.ParseUint(val, 10, 32)
		l.Rate = uint32(n)
	case "steps":
		l.Steps, err = strconv.ParseUint(val, 10, 64)
	case "fault":
		l.Fault, err = parseFlag(val)
	}
	if err != nil {
		return ErrMalformedStatus
	}
	return nil
}

func parseFlag(v string) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, ErrMalformedStatus
}
