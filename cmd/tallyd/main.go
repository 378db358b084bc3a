package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"tally/internal/config"
	"tally/internal/inventory"
	"tally/internal/ipc"
	"tally/internal/journal"
	"tally/internal/logging"
	"tally/internal/scanner"
	"tally/internal/services/depot"
	"tally/internal/station"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open scan journal", logging.Error(err))
		return
	}
	defer store.Close()

	depotClient := depot.New(cfg.Depot.URL, cfg.Depot.Token,
		depot.WithTimeout(time.Duration(cfg.Depot.TimeoutSeconds)*time.Second))
	resolver := inventory.NewResolver(depotClient)

	pipeline := scanner.NewPipeline(scanner.NewZbarBackend(cfg.Station.DecoderBinary), logger)

	st, err := station.New(station.Options{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,
		Resolver: resolver,
		Journal:  store,
	})
	if err != nil {
		logger.Error("create station", logging.Error(err))
		return
	}

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), st, logger)
	if err != nil {
		logger.Error("start control socket", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := st.Start(ctx); err != nil {
		logger.Error("start station", logging.Error(err))
		return
	}
	defer st.Stop()

	var hotplug *scanner.HotplugMonitor
	if cfg.Station.Hotplug {
		hotplug = scanner.NewHotplugMonitor(logger, func(event scanner.HotplugEvent) {
			handleHotplug(ctx, st, cfg, logger, event)
		})
		if err := hotplug.Start(ctx); err != nil {
			logger.Warn("hotplug monitor unavailable", logging.Error(err))
		} else {
			defer hotplug.Stop()
		}
	}

	logger.Info("tallyd started",
		logging.String("socket", cfg.SocketPath()),
		logging.String("journal", store.Path()))

	select {
	case <-ctx.Done():
		logger.Info("tallyd shutting down on signal")
	case <-st.Done():
		logger.Info("tallyd shutting down on request")
	}
}

// handleHotplug reacts to capture devices coming and going while the
// station runs. A newly added device is ignored unless nothing is
// capturing; a removed active device triggers a switch to whatever
// default remains.
func handleHotplug(ctx context.Context, st *station.Station, cfg *config.Config, logger *slog.Logger, event scanner.HotplugEvent) {
	status := st.Status(ctx)
	switch event.Action {
	case "remove":
		if status.Device != event.DeviceID {
			return
		}
		logger.Warn("active capture device removed", logging.String("device", event.DeviceID))
		devices, err := st.Devices(ctx)
		if err != nil || len(devices) == 0 {
			return
		}
		if err := st.Switch(ctx, devices[0].ID); err != nil {
			logger.Error("failover switch", logging.Error(err))
		}
	case "add":
		if status.Device != "" {
			return
		}
		if cfg.Station.CameraDevice != "" && cfg.Station.CameraDevice != event.DeviceID {
			return
		}
		logger.Info("capture device attached", logging.String("device", event.DeviceID))
		if err := st.Switch(ctx, event.DeviceID); err != nil {
			logger.Error("attach switch", logging.Error(err))
		}
	}
}
