package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/skywatch/skywatch/internal/admin"
	"github.com/skywatch/skywatch/internal/api"
	"github.com/skywatch/skywatch/internal/config"
	"github.com/skywatch/skywatch/internal/metrics"
	"github.com/skywatch/skywatch/internal/notify"
	"github.com/skywatch/skywatch/internal/opensky"
	"github.com/skywatch/skywatch/internal/registry"
	"github.com/skywatch/skywatch/internal/track"
	"github.com/skywatch/skywatch/internal/watch"
	"github.com/skywatch/skywatch/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("skywatch starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Missing API credentials are a fatal startup condition, not something
	// to discover on the first poll.
	clientID := cfg.OpenSky.ClientID()
	clientSecret := cfg.OpenSky.ClientSecret()
	if clientID == "" || clientSecret == "" {
		slog.Error("OpenSky credentials not set",
			"client_id_env", cfg.OpenSky.ClientIDEnv,
			"client_secret_env", cfg.OpenSky.ClientSecretEnv,
		)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"aircraft", len(cfg.Aircraft),
		"channels", len(cfg.Channels),
		"interval", cfg.Watch.Interval,
		"cooldown", cfg.Watch.Cooldown,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg, err := registry.Open(cfg.State.Path)
	if err != nil {
		slog.Error("failed to open destination registry", "path", cfg.State.Path, "err", err)
		os.Exit(1)
	}
	slog.Info("destination registry loaded", "path", cfg.State.Path, "destinations", reg.Count())
	if reg.Count() == 0 {
		slog.Warn("no destinations registered; sightings will fire but nothing will be delivered",
			"hint", "PUT /api/v1/destinations/{tenant} to bind a channel")
	}

	table := track.NewTable(cfg.Aircraft, cfg.Watch.Cooldown)
	fetcher := opensky.New(cfg.OpenSky, clientID, clientSecret)
	broadcaster := notify.New(reg, cfg.Channels)
	adminSvc := admin.New(reg, cfg.Channels)

	// Sighting stream for WebSocket clients.
	hub := ws.New()
	go hub.Run(ctx)

	runner := watch.New(fetcher, table, cfg.Watch.Interval,
		broadcaster,
		watch.SinkFunc(func(_ context.Context, s track.Sighting) { hub.Publish(s) }),
	)
	runner.Start(ctx)

	// Apply config file edits at runtime. The channel set swaps live;
	// the tracked set, intervals and server settings need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			broadcaster.ReplaceChannels(updated.Channels)
			adminSvc.ReplaceChannels(updated.Channels)
			slog.Info("channel set updated from config edit",
				"channels", len(updated.Channels))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Combined HTTP server: liveness + admin API + sighting stream + metrics.
	mux := http.NewServeMux()
	mux.Handle("/", api.New(table, adminSvc, cfg.Server.Auth, runner))
	mux.Handle("/ws/sightings", hub)
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("skywatch shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
