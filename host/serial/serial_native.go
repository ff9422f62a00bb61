//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tarm/serial"
)

var errNilConfig = errors.New("config cannot be nil")

// tarmPort is a Port on a local tty. Close may be called from another
// goroutine to unblock a pending Read, and more than once.
type tarmPort struct {
	port   *serial.Port
	device string

	closeOnce sync.Once
	closeErr  error
}

// Open opens the tty named by cfg.Device
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}
	return &tarmPort{port: port, device: cfg.Device}, nil
}

func (p *tarmPort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *tarmPort) Write(b []byte) (int, error) { return p.port.Write(b) }

// Close releases the tty
func (p *tarmPort) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.port.Close()
	})
	return p.closeErr
}

// Flush discards data received but not yet read, such as a partial line
// left from before the monitor started
func (p *tarmPort) Flush() error {
	return p.port.Flush()
}

func (p *tarmPort) String() string {
	return "serial:" + p.device
}
