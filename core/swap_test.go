package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCooldown = 800 * time.Millisecond

func readyToSwap() SwapInputs {
	return SwapInputs{
		ActiveInPresent:     false,
		CandidateOutPresent: true,
		NeedFeed:            true,
		YSplitClear:         true,
	}
}

func TestSwapArmLatches(t *testing.T) {
	t.Parallel()

	var log EventLog
	s := NewSwapArbiter(Lane1, testCooldown, &log)
	require.False(t, s.Armed())

	s.Update(time.Millisecond, SwapInputs{ActiveInPresent: false})
	require.True(t, s.Armed())

	// IN coming back does not disarm
	s.Update(2*time.Millisecond, SwapInputs{ActiveInPresent: true})
	require.True(t, s.Armed())
	require.Equal(t, uint32(1), log.Count(), "armed is recorded once")

	s.Reset()
	require.False(t, s.Armed())
	require.Equal(t, Lane1, s.Active())
}

func TestSwapGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*SwapInputs)
	}{
		{"no demand", func(in *SwapInputs) { in.NeedFeed = false }},
		{"y-split occupied", func(in *SwapInputs) { in.YSplitClear = false }},
		{"candidate not loaded", func(in *SwapInputs) { in.CandidateOutPresent = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSwapArbiter(Lane1, testCooldown, nil)
			in := readyToSwap()
			tt.modify(&in)
			for now := time.Duration(0); now < time.Second; now += time.Millisecond {
				require.False(t, s.Update(now, in))
			}
			require.Equal(t, Lane1, s.Active())
			require.True(t, s.Armed())
		})
	}
}

func TestSwapRequiresArm(t *testing.T) {
	t.Parallel()

	s := NewSwapArbiter(Lane2, testCooldown, nil)
	in := readyToSwap()
	in.ActiveInPresent = true
	require.False(t, s.Update(0, in))
	require.Equal(t, Lane2, s.Active())
}

func TestSwapSwitchesAndStartsCooldown(t *testing.T) {
	t.Parallel()

	var log EventLog
	s := NewSwapArbiter(Lane1, testCooldown, &log)

	now := 5 * time.Second
	require.True(t, s.Update(now, readyToSwap()))
	require.Equal(t, Lane2, s.Active())
	require.False(t, s.Armed())
	require.Equal(t, now+testCooldown, s.CooldownUntil())
	require.True(t, s.InCooldown(now))
	require.True(t, s.InCooldown(now+testCooldown-time.Millisecond))
	require.False(t, s.InCooldown(now+testCooldown))

	e, ok := log.Last()
	require.True(t, ok)
	require.Equal(t, EvtSwap, e.Kind)
	require.Equal(t, Lane1, e.Lane)
	require.Equal(t, uint32(Lane2), e.Value)
}

func TestSwapNeverTwiceWithinCooldown(t *testing.T) {
	t.Parallel()

	s := NewSwapArbiter(Lane1, testCooldown, nil)
	var swaps []time.Duration
	for now := time.Duration(0); now < 5*time.Second; now += time.Millisecond {
		if s.Update(now, readyToSwap()) {
			swaps = append(swaps, now)
		}
	}

	require.Greater(t, len(swaps), 2)
	for i := 1; i < len(swaps); i++ {
		require.GreaterOrEqual(t, swaps[i]-swaps[i-1], testCooldown)
	}
}

func TestSwapNoCooldownAtBoot(t *testing.T) {
	t.Parallel()

	s := NewSwapArbiter(LaneID(7), testCooldown, nil)
	require.Equal(t, Lane1, s.Active(), "invalid initial lane falls back to lane 1")
	require.False(t, s.InCooldown(0))
	require.True(t, s.Update(0, readyToSwap()))
}
