package core

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveIndicatorPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state IndicatorState
		want  Indicator
	}{
		{"idle", IndicatorState{}, IndicatorIdle},
		{"fault", IndicatorState{Fault: true}, IndicatorError},
		{"armed over fault", IndicatorState{Armed: true, Fault: true}, IndicatorSwapArmed},
		{"autoload over armed", IndicatorState{Modes: [2]Mode{ModeIdle, ModeAutoload}, Armed: true}, IndicatorAutoloading},
		{"feed over autoload", IndicatorState{Modes: [2]Mode{ModeFeed, ModeAutoload}}, IndicatorFeeding},
		{"reverse over feed", IndicatorState{Modes: [2]Mode{ModeFeed, ModeManualReverse}, Armed: true}, IndicatorManualReverse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ResolveIndicator(tt.state))
		})
	}
}

func TestIndicatorLED(t *testing.T) {
	t.Parallel()

	require.True(t, IndicatorIdle.LED(0))
	require.False(t, IndicatorIdle.LED(BlinkSlot))
	require.True(t, IndicatorIdle.LED(16*BlinkSlot))

	for now := time.Duration(0); now < 2*time.Second; now += 10 * time.Millisecond {
		require.True(t, IndicatorFeeding.LED(now))
	}

	require.True(t, IndicatorAutoloading.LED(0))
	require.False(t, IndicatorAutoloading.LED(BlinkSlot))
}

func TestIndicatorColor(t *testing.T) {
	t.Parallel()

	black := color.RGBA{A: 0xFF}
	require.Equal(t, black, IndicatorIdle.Color(BlinkSlot))
	require.NotEqual(t, black, IndicatorIdle.Color(0))
	require.NotEqual(t, IndicatorFeeding.Color(0), IndicatorError.Color(0))
}

func TestIndicatorNames(t *testing.T) {
	t.Parallel()

	got, ok := ParseIndicator("swap_armed")
	require.True(t, ok)
	require.Equal(t, IndicatorSwapArmed, got)
	require.Equal(t, "manual_reverse", IndicatorManualReverse.String())

	_, ok = ParseIndicator("disco")
	require.False(t, ok)
}
