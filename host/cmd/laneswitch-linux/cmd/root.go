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

	// rootCmd represents the base command for the Linux controller.
	rootCmd = &cobra.Command{
		Use:   "laneswitch-linux",
		Short: "Run the laneswitch controller on Linux GPIO.",
		Long: `Runs the dual-lane filament controller on the GPIO character device
named in the linux section of the configuration file.

Controller events are logged. Status snapshots are published to MQTT and
served over HTTP like laneswitch-monitor does for a microcontroller board.
Both motors are disabled on SIGINT or SIGTERM.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := runner.Load(&options)
			if err != nil {
				return err
			}
			return runner.Linux(ctx, cfg)
		},
	}
)

// Execute runs the laneswitch-linux CLI and exits with non-zero status on error.
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
