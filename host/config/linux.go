package config

import (
	"fmt"

	"laneswitch/core"
)

// LinuxConfig maps the controller hardware onto lines of one gpiod chip.
// Optional lines are pointers; nil means not wired.
type LinuxConfig struct {
	Chip       string         `yaml:"chip"`
	Lanes      [2]LaneLines   `yaml:"lanes"`
	BufferLow  int            `yaml:"buffer_low"`
	BufferHigh *int           `yaml:"buffer_high"`
	YSplit     *int           `yaml:"y_split"`
	Polarity   PolarityConfig `yaml:"polarity"`
	// InvertStep drives active-low step inputs
	InvertStep bool `yaml:"invert_step"`
}

// LaneLines are the line offsets of one lane.
type LaneLines struct {
	In      int  `yaml:"in"`
	Out     int  `yaml:"out"`
	Reverse *int `yaml:"reverse"`
	Enable  *int `yaml:"enable"`
	Dir     int  `yaml:"dir"`
	Step    int  `yaml:"step"`
	// EnableActiveHigh is for drivers whose EN line is not the usual active-low
	EnableActiveHigh bool `yaml:"enable_active_high"`
	InvertDir        bool `yaml:"invert_dir"`
}

// PolarityConfig holds polarity names, see core.ParsePolarity.
type PolarityConfig struct {
	Sensors    string `yaml:"sensors"`
	BufferLow  string `yaml:"buffer_low"`
	BufferHigh string `yaml:"buffer_high"`
	YSplit     string `yaml:"y_split"`
	Reverse    string `yaml:"reverse"`
}

func line(n int) *int { return &n }

// DefaultLinux returns a Raspberry Pi 40-pin header layout (BCM numbering).
func DefaultLinux() LinuxConfig {
	return LinuxConfig{
		Chip: DefaultChip,
		Lanes: [2]LaneLines{
			{In: 17, Out: 27, Enable: line(5), Dir: 6, Step: 13},
			{In: 22, Out: 23, Enable: line(19), Dir: 26, Step: 12},
		},
		BufferLow:  25,
		BufferHigh: line(16),
		YSplit:     line(24),
		Polarity: PolarityConfig{
			Sensors:    core.ActiveLow.String(),
			BufferLow:  core.ActiveHigh.String(),
			BufferHigh: core.ActiveLow.String(),
			YSplit:     core.ActiveLow.String(),
			Reverse:    core.ActiveLow.String(),
		},
	}
}

// CorePolarity converts the polarity names. Validate has already checked them.
func (l *LinuxConfig) CorePolarity() core.PolarityConfig {
	p := func(s string) core.Polarity {
		v, _ := core.ParsePolarity(s)
		return v
	}
	return core.PolarityConfig{
		Sensors:    p(l.Polarity.Sensors),
		BufferLow:  p(l.Polarity.BufferLow),
		BufferHigh: p(l.Polarity.BufferHigh),
		YSplit:     p(l.Polarity.YSplit),
		Reverse:    p(l.Polarity.Reverse),
	}
}

// CoreConfig returns the controller tuning with wiring from the pin map.
func (c *Config) CoreConfig() core.Config {
	cc := c.Core
	cc.Polarity = c.Linux.CorePolarity()
	for i, l := range c.Linux.Lanes {
		cc.Actuators[i] = core.ActuatorConfig{
			EnableActiveLow: !l.EnableActiveHigh,
			InvertDir:       l.InvertDir,
		}
	}
	return cc
}

func validateLinux(l *LinuxConfig) error {
	if l.Chip == "" {
		l.Chip = DefaultChip
	}

	for name, s := range map[string]string{
		"sensors":     l.Polarity.Sensors,
		"buffer_low":  l.Polarity.BufferLow,
		"buffer_high": l.Polarity.BufferHigh,
		"y_split":     l.Polarity.YSplit,
		"reverse":     l.Polarity.Reverse,
	} {
		if _, ok := core.ParsePolarity(s); !ok {
			return fmt.Errorf("polarity %s: %w: %q", name, errInvalidPolarity, s)
		}
	}

	used := make(map[int]string)
	claim := func(name string, offset int) error {
		if offset < 0 {
			return fmt.Errorf("line %s: offset %d must not be negative", name, offset)
		}
		if prev, ok := used[offset]; ok {
			return fmt.Errorf("%w: %d (%s and %s)", errDuplicatePin, offset, prev, name)
		}
		used[offset] = name
		return nil
	}
	claimOpt := func(name string, offset *int) error {
		if offset == nil {
			return nil
		}
		return claim(name, *offset)
	}

	for i, lane := range l.Lanes {
		p := fmt.Sprintf("lane%d_", i+1)
		for _, err := range []error{
			claim(p+"in", lane.In),
			claim(p+"out", lane.Out),
			claimOpt(p+"reverse", lane.Reverse),
			claimOpt(p+"enable", lane.Enable),
			claim(p+"dir", lane.Dir),
			claim(p+"step", lane.Step),
		} {
			if err != nil {
				return err
			}
		}
	}
	for _, err := range []error{
		claim("buffer_low", l.BufferLow),
		claimOpt("buffer_high", l.BufferHigh),
		claimOpt("y_split", l.YSplit),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
