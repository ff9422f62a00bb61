package core

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"laneswitch/protocol"
)

func sampleStatus() Status {
	return Status{
		UptimeMs: 123456,
		Active:   Lane2,
		Armed:    true,
		NeedFeed: true,
		Lanes: [2]LaneStatus{
			{In: false, Out: true, Mode: ModeIdle},
			{In: true, Out: true, Mode: ModeFeed, Rate: 2200, Steps: 98765},
		},
		BufferLow: true,
		Indicator: IndicatorFeeding,
	}
}

func TestStatusLineRoundTrip(t *testing.T) {
	t.Parallel()

	s := sampleStatus()
	line := s.Line()
	require.True(t, strings.HasPrefix(line, "t=123456 active=2 armed=1 need_feed=1 cooldown=0 l1_in=0 l1_out=1 l1_mode=idle"), line)
	require.Contains(t, line, " l2_mode=feed l2_sps=2200 l2_steps=98765 l2_fault=0 ")
	require.Contains(t, line, " state=feeding*")

	got, err := ParseStatus(line + "\r\n")
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestStatusLineWorstCaseFitsBuffer(t *testing.T) {
	t.Parallel()

	s := Status{
		UptimeMs:   math.MinInt64,
		Active:     LaneID(math.MaxUint8),
		Armed:      true,
		NeedFeed:   true,
		Cooldown:   true,
		YSplit:     true,
		BufferLow:  true,
		BufferHigh: true,
		Indicator:  IndicatorManualReverse,
	}
	for i := range s.Lanes {
		s.Lanes[i] = LaneStatus{In: true, Out: true, Mode: ModeManualReverse,
			Rate: math.MaxUint32, Steps: math.MaxUint64, Fault: true}
	}
	require.LessOrEqual(t, len(s.Line())+len("\r\n"), MaxLineLen)

	s.Lanes[0].Mode = Mode(math.MaxUint8)
	s.Indicator = Indicator(math.MaxUint8)
	require.LessOrEqual(t, len(s.Line())+len("\r\n"), MaxLineLen)

	// Largest values that still parse back
	s.Active = Lane2
	s.Lanes[0].Mode = ModeManualReverse
	s.Indicator = IndicatorManualReverse
	got, err := ParseStatus(s.Line())
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestStatusAppendLineNoAlloc(t *testing.T) {
	s := sampleStatus()
	buf := make([]byte, 0, MaxLineLen)
	allocs := testing.AllocsPerRun(100, func() {
		buf = s.AppendLine(buf[:0])
	})
	require.Zero(t, allocs)
}

func TestParseStatusChecksum(t *testing.T) {
	t.Parallel()

	s := sampleStatus()
	line := s.Line()
	_, err := ParseStatus(strings.Replace(line, "active=2", "active=1", 1))
	require.ErrorIs(t, err, ErrChecksum)
}

func TestParseStatusMalformed(t *testing.T) {
	t.Parallel()

	frame := func(payload string) string {
		return string(protocol.AppendChecksum([]byte(payload), 0))
	}

	tests := []struct {
		name string
		line string
	}{
		{"no checksum", "t=1 active=1"},
		{"missing active", frame("t=1 armed=0")},
		{"invalid lane", frame("t=1 active=3")},
		{"bad flag", frame("active=1 armed=yes")},
		{"bad mode", frame("active=1 l1_mode=dance")},
		{"bare word", frame("active=1 hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseStatus(tt.line)
			require.ErrorIs(t, err, ErrMalformedStatus)
		})
	}
}

func TestParseStatusIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	line := string(protocol.AppendChecksum([]byte("t=5 fw=2 active=1 l1_temp=30"), 0))
	s, err := ParseStatus(line)
	require.NoError(t, err)
	require.Equal(t, Lane1, s.Active)
	require.Equal(t, int64(5), s.UptimeMs)
}

func TestStatusJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(sampleStatus())
	require.NoError(t, err)
	require.Contains(t, string(b), `"state":"feeding"`)
	require.Contains(t, string(b), `"mode":"feed"`)

	var back Status
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, sampleStatus(), back)
}
