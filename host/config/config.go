package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"laneswitch/core"
	"laneswitch/host/serial"
)

// Config holds the settings of the host tools.
type Config struct {
	// LogLevel is the zap level name; the --log-level flag overrides it.
	LogLevel string `yaml:"log_level"`
	// Serial is the port the firmware writes status lines to.
	Serial serial.Config `yaml:"serial"`
	// MQTT configures status publishing; an empty broker disables it.
	MQTT MQTTConfig `yaml:"mqtt"`
	// HTTP configures the status web server; an empty address disables it.
	HTTP HTTPConfig `yaml:"http"`
	// Core is the controller tuning used by the Linux runner.
	Core core.Config `yaml:"core"`
	// Linux maps controller pins onto gpiod line offsets.
	Linux LinuxConfig `yaml:"linux"`
}

// MQTTConfig defines the mqtt client settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
	// Interval is the heartbeat: an unchanged status is republished after it.
	Interval time.Duration `yaml:"interval"`
	// Timeout bounds connect and publish round trips.
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig defines the web server settings.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

const (
	// DefaultConfigFilename is the default settings file.
	DefaultConfigFilename = "laneswitch.yaml"

	DefaultTopic        = "laneswitch/status"
	DefaultClientID     = "laneswitch"
	DefaultMQTTInterval = 5 * time.Second
	DefaultMQTTTimeout  = 2 * time.Second
	DefaultListen       = ":4000"
	DefaultChip         = "gpiochip0"

	// DefaultFilePermissions is the permission of saved settings files.
	DefaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet   = errors.New("configuration is not set")
	errInvalidBroker    = errors.New("mqtt broker must be a tcp, ssl, ws or wss URL")
	errInvalidQoS       = errors.New("mqtt qos must be 0, 1 or 2")
	errInvalidPolarity  = errors.New("polarity must be active_low or active_high")
	errDuplicatePin     = errors.New("line offset used twice")
	errNegativeDuration = errors.New("durations must not be negative")
)

// Default returns the settings used when a key is absent from the file.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Serial:   *serial.DefaultConfig(""),
		MQTT: MQTTConfig{
			ClientID: DefaultClientID,
			Topic:    DefaultTopic,
			Interval: DefaultMQTTInterval,
			Timeout:  DefaultMQTTTimeout,
		},
		HTTP:  HTTPConfig{Listen: DefaultListen},
		Core:  core.DefaultConfig(),
		Linux: DefaultLinux(),
	}
}

// Load reads the settings at path on top of Default and validates them.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg, err := Parse(contents)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML settings on top of Default and validates them.
func Parse(contents []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}
	if path == "" {
		path = DefaultConfigFilename
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate fills zero values with defaults and checks everything else.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Serial.Device == "" {
		cfg.Serial.Device = serial.DefaultDevice
	}
	if cfg.Serial.Baud <= 0 {
		cfg.Serial.Baud = serial.DefaultBaud
	}
	if cfg.Serial.ReadTimeout < 0 {
		return fmt.Errorf("serial read_timeout: %w", errNegativeDuration)
	}

	if err := validateMQTT(&cfg.MQTT); err != nil {
		return err
	}

	core.ApplyDefaults(&cfg.Core)
	if err := cfg.Core.Validate(); err != nil {
		return fmt.Errorf("core: %w", err)
	}

	return validateLinux(&cfg.Linux)
}

func validateMQTT(m *MQTTConfig) error {
	if m.Topic == "" {
		m.Topic = DefaultTopic
	}
	if m.ClientID == "" {
		m.ClientID = DefaultClientID
	}
	if m.Interval <= 0 {
		m.Interval = DefaultMQTTInterval
	}
	if m.Timeout <= 0 {
		m.Timeout = DefaultMQTTTimeout
	}
	if m.QoS > 2 {
		return errInvalidQoS
	}
	if m.Broker == "" {
		return nil
	}

	u, err := url.Parse(m.Broker)
	if err != nil {
		return fmt.Errorf("invalid mqtt broker: %w", err)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("%w: %q", errInvalidBroker, m.Broker)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBroker, m.Broker)
	}
	return nil
}
