//go:build rp2040 || rp2350

package main

import (
	"machine"

	"laneswitch/core"
)

// InitUSB initializes USB serial communication
// machine.Serial is USB CDC on RP2040; descriptors come from the runtime.
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// Output lines are built in a fixed buffer to avoid allocating per tick.
// Debug lines longer than the buffer are truncated.
var lineBuf [core.MaxLineLen]byte

// Failed writes since the last successful one. A failed line is dropped,
// never retried, so an unplugged host cannot stall the control loop.
var writeFailures uint32

// writeStatus sends one status line
func writeStatus(s *core.Status) {
	b := s.AppendLine(lineBuf[:0])
	writeLine(append(b, '\r', '\n'))
}

// writeDebug sends a debug line. The '#' prefix marks it as a comment for
// status readers.
func writeDebug(msg string) {
	debugPrintln(msg)
	if limit := len(lineBuf) - len("# \r\n"); len(msg) > limit {
		msg = msg[:limit]
	}
	b := append(lineBuf[:0], "# "...)
	b = append(b, msg...)
	writeLine(append(b, '\r', '\n'))
}

func writeLine(b []byte) {
	written := 0
	for written < len(b) {
		n, err := machine.Serial.Write(b[written:])
		if err != nil || n == 0 {
			writeFailures++
			return
		}
		written += n
	}
	writeFailures = 0
}
