package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vmunix/anistrm/internal/app"
	"github.com/vmunix/anistrm/internal/config"
)

func runServer(configPath string, syncOnStart bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := app.NewLogger(os.Stdout, cfg.Server.LogLevel, cfg.Server.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
	}()

	logger.Info("anistrmd starting",
		"version", version,
		"config", configPath,
		"db", cfg.Database.Path,
		"watcher", cfg.Watcher.Enabled,
		"metrics_addr", cfg.Server.MetricsAddr,
	)

	if syncOnStart {
		go func() {
			a.AllTask.Run(ctx, nil)
			a.FavoritesTask.Run(ctx, nil)
		}()
	}

	if err := a.Runner().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("anistrmd stopped")
	return nil
}
