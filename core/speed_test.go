package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMapRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint32(400), MapRate(0, 400, 4000))
	require.Equal(t, uint32(4000), MapRate(AnalogMax, 400, 4000))
	require.Equal(t, uint32(2200), MapRate(0x8000, 400, 4000))
	require.Equal(t, uint32(500), MapRate(0x8000, 500, 500))
}

func TestSpeedControlFixedWithoutPot(t *testing.T) {
	t.Parallel()

	s := NewSpeedControl(nil, 400, 4000, 50*time.Millisecond, 2200)
	require.Equal(t, uint32(2200), s.Update(0))
	require.Equal(t, uint32(2200), s.Update(time.Hour))
}

func TestSpeedControlPollPeriod(t *testing.T) {
	t.Parallel()

	pot := &fakeAnalog{value: 0}
	s := NewSpeedControl(pot, 4000, 400, 50*time.Millisecond, 2200)

	require.Equal(t, uint32(400), s.Update(0), "min and max are swapped back")
	pot.value = AnalogMax
	require.Equal(t, uint32(400), s.Update(10*time.Millisecond))
	require.Equal(t, 1, pot.reads)

	require.Equal(t, uint32(4000), s.Update(50*time.Millisecond))
	require.Equal(t, 2, pot.reads)
	require.Equal(t, uint32(4000), s.Rate())
}
