// Command laneswitch-linux runs the laneswitch controller on the GPIO lines
// of a Linux board such as a Raspberry Pi.
package main

import "laneswitch/host/cmd/laneswitch-linux/cmd"

func main() {
	cmd.Execute()
}
