// Package runner wires the host packages into the two host programs: the
// serial status monitor and the controller on Linux GPIO.
package runner

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"laneswitch/core"
	"laneswitch/host/config"
	"laneswitch/host/linuxgpio"
	"laneswitch/host/logger"
	"laneswitch/host/monitor"
	"laneswitch/host/serial"
)

// Monitor follows the firmware status output on the configured serial port
// and republishes it until ctx is done.
func Monitor(ctx context.Context, cfg *config.Config) error {
	ctx = logger.WithName(ctx, "monitor")

	port, err := serial.Open(&cfg.Serial)
	if err != nil {
		return err
	}
	logger.InfoKV(ctx, "serial port open", "device", cfg.Serial.Device, "baud", cfg.Serial.Baud)
	if err := port.Flush(); err != nil {
		logger.Warnf(ctx, "flush %s: %v", cfg.Serial.Device, err)
	}

	store := monitor.NewStore()
	g, gctx := errgroup.WithContext(ctx)

	if err := publish(gctx, g, cfg, store); err != nil {
		_ = port.Close()
		return err
	}
	g.Go(func() error {
		return monitor.Follow(gctx, port, store, 0)
	})
	g.Go(func() error {
		// Unblocks a pending read
		<-gctx.Done()
		return port.Close()
	})

	return ignoreCancel(g.Wait())
}

// Linux runs the controller on the gpiod lines of cfg.Linux until ctx is
// done. Motors are disabled on return.
func Linux(ctx context.Context, cfg *config.Config) error {
	ctx = logger.WithName(ctx, "linux")

	chip, err := linuxgpio.Open(cfg.Linux.Chip)
	if err != nil {
		return err
	}
	defer func() {
		if err := chip.Close(); err != nil {
			logger.Errorf(ctx, "close gpio chip: %v", err)
		}
	}()

	cc := cfg.CoreConfig()
	clock := core.NewSystemClock()
	hw, err := linuxgpio.Hardware(chip, &cfg.Linux, cc.StepPulseWidth, clock)
	if err != nil {
		return err
	}

	return Controller(ctx, cfg, cc, hw, clock)
}

// Controller runs a controller built from hw, logging its events and
// feeding its status to the optional MQTT and HTTP outputs.
func Controller(ctx context.Context, cfg *config.Config, cc core.Config, hw core.Hardware, clock core.Clock) error {
	c, err := core.NewController(cc, hw, clock)
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}

	store := monitor.NewStore()
	c.SetDebugWriter(func(msg string) {
		logger.InfoKV(ctx, "event", "msg", msg)
	})
	c.SetStatusSink(func(s *core.Status) {
		store.Update(*s)
		logger.DebugKV(ctx, "status", "line", s.Line())
	})

	logger.InfoKV(ctx, "controller started",
		"active", cc.InitialLane, "feed_sps", cc.FeedRate, "tick", cc.TickPeriod)

	g, gctx := errgroup.WithContext(ctx)
	if err := publish(gctx, g, cfg, store); err != nil {
		return err
	}
	g.Go(func() error {
		err := c.Run(gctx)
		for _, e := range c.Events().Events() {
			logger.DebugKV(ctx, "event log", "event", e.String())
		}
		return err
	})

	return ignoreCancel(g.Wait())
}

// publish starts the MQTT and HTTP outputs that cfg enables. It fails
// before starting anything when the broker is unreachable.
func publish(ctx context.Context, g *errgroup.Group, cfg *config.Config, store *monitor.Store) error {
	if cfg.MQTT.Broker != "" {
		client, err := monitor.Connect(cfg.MQTT)
		if err != nil {
			return err
		}
		logger.InfoKV(ctx, "mqtt connected", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)

		p := monitor.NewPublisher(client, cfg.MQTT)
		g.Go(func() error {
			defer monitor.Disconnect(client)
			return p.Run(ctx, store)
		})
	}

	if cfg.HTTP.Listen != "" {
		app := monitor.NewServer(store)
		g.Go(func() error {
			return monitor.Serve(ctx, app, cfg.HTTP.Listen)
		})
	}
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
