package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Any io.ReadWriteCloser in tests
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string `yaml:"device"`

	// Baud rate; USB CDC ignores it, a UART bridge does not
	Baud int `yaml:"baud"`

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Defaults for the firmware status output
const (
	DefaultDevice      = "/dev/ttyACM0"
	DefaultBaud        = 115200
	DefaultReadTimeout = 100 * time.Millisecond
)

// DefaultConfig returns the configuration for the firmware USB CDC port
func DefaultConfig(device string) *Config {
	if device == "" {
		device = DefaultDevice
	}
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}
