package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slipway-io/slipway/actuator"
	"github.com/slipway-io/slipway/config"
	"github.com/slipway-io/slipway/config/source"
	"github.com/slipway-io/slipway/lifecycle"
	"github.com/slipway-io/slipway/logging"
	"github.com/slipway-io/slipway/web"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1) config: file < env < cli
	var cfg config.Root
	mgr, err := config.NewManager(ctx, &cfg, config.Options{AutoReload: true},
		&source.FileSource{BasePath: "configs", Profile: os.Getenv("SLIPWAY_PROFILE")},
		&source.EnvSource{},
		&source.CLISource{},
	)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	cfg.Normalize()

	// 2) logging
	logger := logging.New(slog.LevelInfo).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// 3) components and their dependency edges
	reg := lifecycle.NewRegistry()
	proc, err := lifecycle.NewProcessor(reg,
		lifecycle.WithLogger(logger),
		lifecycle.WithShutdownTimeout(cfg.Lifecycle.ShutdownTimeout),
		lifecycle.WithMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		logger.Error("processor init failed", "error", err)
		os.Exit(1)
	}

	hb := newHeartbeat(logger, 10*time.Second)
	srv := web.NewServer(cfg.Server, logger,
		web.WithRoutes(web.LifecycleRoutes(proc, reg)),
		web.WithRoutes(actuator.Routes(cfg, proc, reg)),
	)

	must := func(err error) {
		if err != nil {
			logger.Error("component registration failed", "error", err)
			os.Exit(1)
		}
	}
	must(reg.Register("heartbeat", hb,
		lifecycle.WithAsyncStop(),
		lifecycle.WithAutoStart(),
	))
	must(reg.Register(web.Name, srv,
		lifecycle.WithPhase(10),
		lifecycle.WithAsyncStop(),
		lifecycle.WithAutoStart(),
	))
	reg.DependsOn(web.Name, "heartbeat")

	// 4) start everything, phases ascending
	if err := proc.Start(ctx); err != nil {
		logger.Error("startup failed", "error", err)
		_ = proc.Stop(context.Background())
		os.Exit(1)
	}
	logger.Info("started", "components", len(reg.Components()))

	// 5) config reloads trigger a refresh pass for auto-start components
	if cfg.Lifecycle.AutoRefresh {
		events := make(chan config.Event, 4)
		mgr.Subscribe(events)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case evt := <-events:
					logger.Info("config changed", "keys", evt.ChangedKeys)
					if err := proc.OnRefresh(ctx); err != nil {
						logger.Error("refresh failed", "error", err)
					}
				}
			}
		}()
	}

	// 6) wait for a signal, then stop in reverse phase order
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case <-stop:
	}

	logger.Info("shutting down", "timeout_per_phase", cfg.Lifecycle.ShutdownTimeout)
	if err := proc.OnClose(context.Background()); err != nil {
		logger.Error("shutdown interrupted", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
