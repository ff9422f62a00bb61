package runner

import (
	"errors"
	"fmt"
	"os"

	"laneswitch/host/config"
	"laneswitch/host/logger"
)

var errUnknownLogLevel = errors.New("unknown log level")

// Options are the command-line settings shared by the host programs.
type Options struct {
	// ConfigPath is the YAML settings file. A missing default file is not
	// an error; built-in defaults apply.
	ConfigPath string
	// LogLevel overrides the log_level setting when not empty.
	LogLevel string
	// Device overrides the serial device when not empty.
	Device string
}

// Load reads the settings named by o and applies the log level.
func Load(o *Options) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && o.ConfigPath == config.DefaultConfigFilename:
		cfg = config.Default()
	default:
		return nil, err
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Device != "" {
		cfg.Serial.Device = o.Device
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}
	logger.SetLevel(level)
	return cfg, nil
}
