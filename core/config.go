package core

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the controller tuning. Changing it requires a rebuild on
// the firmware targets; the Linux runner loads it from YAML.
//
// Debounce, LowDelay and SwapCooldown take zero literally. For every other
// numeric field zero means unset and ApplyDefaults replaces it, so start
// from DefaultConfig rather than a literal.
type Config struct {
	Debounce        time.Duration `yaml:"debounce"`         // switch debounce
	LowDelay        time.Duration `yaml:"low_delay"`        // buffer-low must hold this long
	SwapCooldown    time.Duration `yaml:"swap_cooldown"`    // anti ping-pong
	AutoloadTimeout time.Duration `yaml:"autoload_timeout"` // max autoload time

	FeedRate     uint32 `yaml:"feed_rate"`     // active lane feed, steps/s
	AutoloadRate uint32 `yaml:"autoload_rate"` // autoload, steps/s
	ReverseRate  uint32 `yaml:"reverse_rate"`  // manual reverse, steps/s

	// Potentiometer range, used only when an analog input is wired
	MinFeedRate     uint32        `yaml:"min_feed_rate"`
	MaxFeedRate     uint32        `yaml:"max_feed_rate"`
	SpeedPollPeriod time.Duration `yaml:"speed_poll_period"`

	TickPeriod     time.Duration `yaml:"tick_period"`
	StatusPeriod   time.Duration `yaml:"status_period"`
	StepPulseWidth time.Duration `yaml:"step_pulse_width"`

	BufferHighHysteresis bool `yaml:"buffer_high_hysteresis"`
	YSplitGate           bool `yaml:"y_split_gate"`

	InitialLane LaneID `yaml:"initial_lane"`

	Polarity  PolarityConfig    `yaml:"-"`
	Actuators [2]ActuatorConfig `yaml:"-"`
}

// PolarityConfig sets the active level of each input group.
type PolarityConfig struct {
	Sensors    Polarity // lane IN/OUT
	BufferLow  Polarity
	BufferHigh Polarity
	YSplit     Polarity // active = filament in the junction
	Reverse    Polarity // manual reverse buttons
}

// Defaults
const (
	DefaultLowDelay        = 2 * time.Second
	DefaultSwapCooldown    = 800 * time.Millisecond
	DefaultAutoloadTimeout = 15 * time.Second
	DefaultFeedRate        = 2200
	DefaultAutoloadRate    = 1200
	DefaultReverseRate     = 1200
	DefaultMinFeedRate     = 400
	DefaultMaxFeedRate     = 4000
	DefaultSpeedPollPeriod = 50 * time.Millisecond
	DefaultTickPeriod      = 100 * time.Microsecond
	DefaultStatusPeriod    = 500 * time.Millisecond
)

var (
	ErrInvalidLane      = errors.New("initial lane must be 1 or 2")
	ErrInvalidRateRange = errors.New("min feed rate exceeds max feed rate")
)

// DefaultConfig returns the tuning of the reference build.
func DefaultConfig() Config {
	cfg := Config{
		Debounce:             DefaultDebounce,
		LowDelay:             DefaultLowDelay,
		SwapCooldown:         DefaultSwapCooldown,
		BufferHighHysteresis: true,
		YSplitGate:           true,
		Polarity: PolarityConfig{
			Sensors: ActiveLow,
			// Buffer-low switch is open (line pulled high) when the buffer
			// is low.
			BufferLow:  ActiveHigh,
			BufferHigh: ActiveLow,
			YSplit:     ActiveLow,
			Reverse:    ActiveLow,
		},
		Actuators: [2]ActuatorConfig{
			{EnableActiveLow: true},
			{EnableActiveLow: true},
		},
	}
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults replaces zero values that can never be meant literally.
// A zero rate, period or timeout would stall or spin the controller; a zero
// debounce, buffer-low delay or swap cooldown is a valid setting and is kept.
func ApplyDefaults(cfg *Config) {
	if cfg.AutoloadTimeout == 0 {
		cfg.AutoloadTimeout = DefaultAutoloadTimeout
	}
	if cfg.FeedRate == 0 {
		cfg.FeedRate = DefaultFeedRate
	}
	if cfg.AutoloadRate == 0 {
		cfg.AutoloadRate = DefaultAutoloadRate
	}
	if cfg.ReverseRate == 0 {
		cfg.ReverseRate = DefaultReverseRate
	}
	if cfg.MinFeedRate == 0 {
		cfg.MinFeedRate = DefaultMinFeedRate
	}
	if cfg.MaxFeedRate == 0 {
		cfg.MaxFeedRate = DefaultMaxFeedRate
	}
	if cfg.SpeedPollPeriod == 0 {
		cfg.SpeedPollPeriod = DefaultSpeedPollPeriod
	}
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	if cfg.StatusPeriod == 0 {
		cfg.StatusPeriod = DefaultStatusPeriod
	}
	if cfg.StepPulseWidth == 0 {
		cfg.StepPulseWidth = DefaultPulseWidth
	}
	if cfg.InitialLane == 0 {
		cfg.InitialLane = Lane1
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !c.InitialLane.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidLane, c.InitialLane)
	}
	if c.MinFeedRate > c.MaxFeedRate {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRateRange, c.MinFeedRate, c.MaxFeedRate)
	}
	if c.Debounce < 0 || c.LowDelay < 0 || c.SwapCooldown < 0 || c.AutoloadTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// laneConfig extracts the per-lane task parameters
func (c *Config) laneConfig() LaneConfig {
	return LaneConfig{
		AutoloadRate:    c.AutoloadRate,
		ReverseRate:     c.ReverseRate,
		AutoloadTimeout: c.AutoloadTimeout,
	}
}
