package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/darkSectorHT83/Darky-Bot/internal/bot"
	"github.com/darkSectorHT83/Darky-Bot/internal/config"
	"github.com/darkSectorHT83/Darky-Bot/internal/notify"
	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
	"github.com/darkSectorHT83/Darky-Bot/internal/telemetry"
	"github.com/darkSectorHT83/Darky-Bot/internal/twitch"
	"github.com/darkSectorHT83/Darky-Bot/internal/watcher"
	"github.com/darkSectorHT83/Darky-Bot/internal/web"
)

const version = "v1.3.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Darky Bot", "version", version)

	telemetry.Init()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start the bot
	b, err := bot.New(cfg)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	// Twitch client: without credentials the watcher runs but every probe
	// reports offline.
	var client *twitch.Client
	if cfg.TwitchConfigured() {
		client = twitch.New(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TwitchAccessToken)
	} else {
		slog.Warn("No Twitch credentials configured, live announcements are disabled")
		client = twitch.NewDisabled()
	}

	trackedPath := filepath.Join(cfg.DataDir, "twitch.json")
	w := watcher.New(
		client,
		notify.New(b.Session()),
		func() ([]storage.Streamer, error) { return storage.LoadTracked(trackedPath) },
		time.Duration(cfg.PollIntervalSeconds)*time.Second,
		time.Duration(cfg.ReloadIntervalSeconds)*time.Second,
	)
	go w.Start(ctx)

	// The authorization files reload on the same cadence as the tracked
	// table.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.ReloadIntervalSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := b.ReloadGate(); err != nil {
					slog.Warn("Failed to reload authorization files", "error", err)
				}
			}
		}
	}()

	// Status HTTP server
	srv := web.New(cfg.HTTPAddr, version, b.Registry())
	srvErr := srv.Start()

	slog.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal or a status-server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case <-sigChan:
		slog.Info("Shutting down...")
	case err := <-srvErr:
		slog.Error("Status server failed", "error", err)
		exitCode = 1
	}
	cancel()

	// Stop everything gracefully
	w.Stop()
	if err := srv.Close(); err != nil {
		slog.Error("Error closing status server", "error", err)
	}
	if err := b.Stop(); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Bot stopped")
	os.Exit(exitCode)
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
