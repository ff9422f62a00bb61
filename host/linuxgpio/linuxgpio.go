// Package linuxgpio drives the controller from the GPIO character device of
// a Linux board such as a Raspberry Pi.
package linuxgpio

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/warthog618/gpiod"
)

const consumer = "laneswitch"

var ErrChipClosed = errors.New("gpio chip is closed")

// Chip represents a single GPIO chip and the lines requested from it.
type Chip struct {
	chip  *gpiod.Chip
	lines []*gpiod.Line
}

// Open opens a GPIO character device, e.g. "gpiochip0".
func Open(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &Chip{chip: c}, nil
}

// Input requests offset as a pulled-up input.
func (c *Chip) Input(offset int) (*Input, error) {
	if c.chip == nil {
		return nil, ErrChipClosed
	}
	l, err := c.chip.RequestLine(offset, gpiod.AsInput, gpiod.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	c.lines = append(c.lines, l)
	return NewInput(l), nil
}

// Output requests offset as an output driven to initial.
func (c *Chip) Output(offset int, initial bool) (*Output, error) {
	if c.chip == nil {
		return nil, ErrChipClosed
	}
	l, err := c.chip.RequestLine(offset, gpiod.AsOutput(level(initial)))
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	c.lines = append(c.lines, l)
	return NewOutput(l), nil
}

// Close releases every requested line, then the chip.
func (c *Chip) Close() error {
	var errs []error
	for _, l := range c.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.lines = nil
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, err)
		}
		c.chip = nil
	}
	return errors.Join(errs...)
}

// ValueReader is the read side of a requested line.
type ValueReader interface {
	Value() (int, error)
}

// ValueSetter is the write side of a requested line.
type ValueSetter interface {
	SetValue(value int) error
}

// Input adapts a line to core.DigitalIn. A failed read returns the last
// good level so one bad ioctl does not look like a sensor edge.
type Input struct {
	line   ValueReader
	last   bool
	errors atomic.Uint32
}

// NewInput wraps a requested line. Lines start high, matching the pull-up.
func NewInput(line ValueReader) *Input {
	return &Input{line: line, last: true}
}

// Get returns the line level
func (in *Input) Get() bool {
	v, err := in.line.Value()
	if err != nil {
		in.errors.Add(1)
		return in.last
	}
	in.last = v != 0
	return in.last
}

// Errors returns the number of failed reads
func (in *Input) Errors() uint32 { return in.errors.Load() }

// Output adapts a line to core.DigitalOut.
type Output struct {
	line   ValueSetter
	errors atomic.Uint32
}

// NewOutput wraps a requested line.
func NewOutput(line ValueSetter) *Output {
	return &Output{line: line}
}

// Set drives the line
func (o *Output) Set(value bool) {
	if err := o.line.SetValue(level(value)); err != nil {
		o.errors.Add(1)
	}
}

// Errors returns the number of failed writes
func (o *Output) Errors() uint32 { return o.errors.Load() }

func level(v bool) int {
	if v {
		return 1
	}
	return 0
}
