// Command laneswitch-monitor follows the status output of a laneswitch
// board on its USB serial port and republishes it over MQTT and HTTP.
package main

import "laneswitch/host/cmd/laneswitch-monitor/cmd"

func main() {
	cmd.Execute()
}
