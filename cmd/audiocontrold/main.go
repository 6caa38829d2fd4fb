package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arung-agamani/audiocontrold/internal/api"
	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/auth"
	"github.com/arung-agamani/audiocontrold/internal/backend/filescan"
	"github.com/arung-agamani/audiocontrold/internal/catalog"
	"github.com/arung-agamani/audiocontrold/internal/config"
	"github.com/arung-agamani/audiocontrold/internal/events"
	"github.com/arung-agamani/audiocontrold/internal/plugin"
	"github.com/arung-agamani/audiocontrold/internal/plugin/activemonitor"
	"github.com/arung-agamani/audiocontrold/internal/plugin/eventlogger"
	"github.com/arung-agamani/audiocontrold/internal/plugin/lastfmscrobble"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("starting audio control daemon",
		"http_addr", cfg.HTTPAddr,
		"filescan_dir", cfg.FileScanDir,
		"plugin_config_path", cfg.PluginConfigPath,
	)

	bus := events.Global()
	cat := catalog.New()
	ctrl := audiocontrol.New(bus, logger)

	loadBuiltinPlugins(ctrl, cfg, logger)

	if cfg.FileScanDir != "" {
		backend, err := filescan.NewFromDirectory("filescan", "default", cfg.FileScanDir, bus)
		if err != nil {
			slog.Error("failed to start filescan backend", "error", err, "dir", cfg.FileScanDir)
		} else {
			ctrl.Registry.Register(backend)
			slog.Info("filescan backend registered", "dir", cfg.FileScanDir, "tracks", backend.TrackCount())
		}
	}

	a := auth.New(auth.Config{
		Username:           cfg.AuthUsername,
		Password:           cfg.AuthPassword,
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           cfg.TokenTTL,
		MaxLoginAttempts:   cfg.MaxLoginAttempts,
		LoginWindowSeconds: cfg.LoginWindowSeconds,
	})

	server := api.New(ctrl, cat, a)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // no timeout: /events streams indefinitely
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutdown signal received")
		cancel()
	}()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		slog.Error("HTTP server error", "error", err)
		ctrl.Shutdown()
		os.Exit(1)
	case <-ctx.Done():
	}

	slog.Info("shutting down gracefully", "grace", cfg.ShutdownGrace)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	ctrl.Shutdown()
	slog.Info("daemon stopped")
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadBuiltinPlugins registers the three bundled ActionPlugin types and
// loads configured instances from cfg.PluginConfigPath, if set. A missing
// or empty path simply means no plugins are loaded — not an error.
func loadBuiltinPlugins(ctrl *audiocontrol.Controller, cfg *config.Config, logger *slog.Logger) {
	factory := plugin.NewFactory(logger)
	factory.Register(activemonitor.TypeName, activemonitor.Constructor(logger))
	factory.Register(eventlogger.TypeName, eventlogger.Constructor(logger))
	factory.Register(lastfmscrobble.TypeName, lastfmscrobble.Constructor(logger))

	if cfg.PluginConfigPath == "" {
		return
	}

	data, err := os.ReadFile(cfg.PluginConfigPath)
	if err != nil {
		slog.Error("failed to read plugin config", "path", cfg.PluginConfigPath, "error", err)
		return
	}

	// The file holds either a single {"<type>": {...}} object or an array
	// of them.
	var loadedPlugins []*plugin.LoadedPlugin
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		lp, err := factory.CreateFromJSON(trimmed)
		if err != nil {
			slog.Error("plugin config: skipping entry", "error", err)
		} else {
			loadedPlugins = append(loadedPlugins, lp)
		}
	} else {
		loadedPlugins = factory.CreatePluginsFromJSON(data)
	}

	for _, loaded := range loadedPlugins {
		if !loaded.Plugin.Init() {
			slog.Warn("plugin init failed, discarding", "type", loaded.TypeName, "instance_id", loaded.InstanceID)
			continue
		}
		loaded.Plugin.Initialize(ctrl.WeakRef())
		ctrl.AddPlugin(loaded.Plugin)
		slog.Info("plugin loaded", "type", loaded.TypeName, "instance_id", loaded.InstanceID)
	}
}
