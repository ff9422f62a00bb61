package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"laneswitch/host/config"
	"laneswitch/host/runner"
	"laneswitch/host/version"
)

var (
	options = runner.Options{}

	// rootCmd represents the base command for the status monitor.
	rootCmd = &cobra.Command{
		Use:   "laneswitch-monitor [device]",
		Short: "Follow laneswitch status lines and republish them.",
		Long: `Reads the status lines a laneswitch board writes to its USB serial port,
verifies their checksums and keeps the latest snapshot.

The snapshot is published as JSON to the MQTT topic from the configuration
file whenever the lane state changes, and served at /status, /health and
/version when an HTTP listen address is set.
The serial device can be provided as argument to override config.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.Device = args[0]
			}

			cfg, err := runner.Load(&options)
			if err != nil {
				return err
			}
			return runner.Monitor(ctx, cfg)
		},
	}
)

// Execute runs the laneswitch-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&options.LogLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
}
