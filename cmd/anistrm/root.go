package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/app"
	"github.com/vmunix/anistrm/internal/config"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "anistrm",
	Short: "Mirror the AniLibria catalog into a .strm library",
	Long: `anistrm - mirror the AniLibria catalog into a media-server library

Generates .strm playlists, nfo metadata, edl skip markers and posters
for the whole catalog or for your favorites.

Run 'anistrmd' to keep the tree fresh on a schedule.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("anistrm {{.Version}}\n")
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Discover()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// openApp loads the config and wires the components. Logs go to stderr so
// stdout stays clean for --json.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := app.NewLogger(os.Stderr, level, cfg.Server.LogFormat)
	slog.SetDefault(logger)
	return app.Open(ctx, cfg, logger)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
	}
}
