//go:build rp2040 || rp2350

package main

import (
	"machine"
)

var (
	debugUART    *machine.UART
	debugEnabled bool
)

// InitDebugUART initializes UART0 on GPIO0 (TX) and GPIO1 (RX) as a second
// sink for controller events, readable with a USB-UART adapter while the
// USB port is busy with status lines.
// Baud rate: 115200
func InitDebugUART() {
	if !debugUARTFitted {
		return
	}
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       pinDebugTX,
		RX:       pinDebugRX,
	})
	if err != nil {
		debugEnabled = false
		return
	}

	debugEnabled = true
	debugPrintln("laneswitch debug uart")
}

// debugPrintln writes a line to the debug UART
func debugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
