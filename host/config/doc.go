// Package config defines the settings of the host tools and loads them
// from YAML.
//
// One file serves both binaries: the monitor reads the serial, mqtt and
// http sections; the Linux runner reads core, linux, mqtt and http.
package config
