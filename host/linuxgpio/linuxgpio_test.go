package linuxgpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"laneswitch/core"
)

type fakeLine struct {
	value int
	err   error
	sets  []int
}

func (l *fakeLine) Value() (int, error) { return l.value, l.err }

func (l *fakeLine) SetValue(v int) error {
	if l.err != nil {
		return l.err
	}
	l.sets = append(l.sets, v)
	l.value = v
	return nil
}

func TestInputKeepsLastLevelOnError(t *testing.T) {
	line := &fakeLine{value: 1}
	var in core.DigitalIn = NewInput(line)
	require.True(t, in.Get())

	line.value = 0
	require.False(t, in.Get())

	line.value = 1
	line.err = errors.New("ioctl failed")
	require.False(t, in.Get())
	require.Equal(t, uint32(1), in.(*Input).Errors())

	line.err = nil
	require.True(t, in.Get())
}

func TestInputStartsHigh(t *testing.T) {
	in := NewInput(&fakeLine{err: errors.New("gone")})
	require.True(t, in.Get())
}

func TestOutput(t *testing.T) {
	line := &fakeLine{}
	var out core.DigitalOut = NewOutput(line)
	out.Set(true)
	out.Set(false)
	require.Equal(t, []int{1, 0}, line.sets)

	line.err = errors.New("busy")
	out.Set(true)
	require.Equal(t, uint32(1), out.(*Output).Errors())
}

func TestPinStepperOnLine(t *testing.T) {
	line := &fakeLine{}
	s := core.NewPinStepper(NewOutput(line), false, 0, nil)
	s.Step()
	require.Equal(t, []int{0, 1, 0}, line.sets)
}

func TestClosedChip(t *testing.T) {
	c := &Chip{}
	_, err := c.Input(4)
	require.ErrorIs(t, err, ErrChipClosed)
	_, err = c.Output(4, false)
	require.ErrorIs(t, err, ErrChipClosed)
	require.NoError(t, c.Close())
}
