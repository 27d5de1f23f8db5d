package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/adapters/mediahost"
	"github.com/vmunix/anistrm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long:  "Writes the example config to the given path, or to $XDG_CONFIG_HOME/anistrm/config.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without starting anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configTestCmd.Flags().Bool("ping", false, "Also check the media host is reachable")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	ping, _ := cmd.Flags().GetBool("ping")

	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := resolveConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)

	if ping && cfg.MediaHost.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client := mediahost.New(cfg.MediaHost.URL, cfg.MediaHost.APIKey)
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("media host: %w", err)
		}
		fmt.Println("\nMedia host reachable.")
	}

	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, err := range e.Errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server:     log %s/%s, metrics %s\n", cfg.Server.LogLevel, cfg.Server.LogFormat, orNone(cfg.Server.MetricsAddr))
	fmt.Printf("  Database:   %s\n", cfg.Database.Path)
	fmt.Printf("  Catalog:    %s (token %s)\n", cfg.Catalog.APIBase, orNone(cfg.RedactedToken()))
	fmt.Printf("  All:        %s\n", describeTarget(cfg.Targets.All))
	fmt.Printf("  Favorites:  %s\n", describeTarget(cfg.Targets.Favorites))
	fmt.Printf("  Quality:    %s\n", cfg.Generator.Quality)
	if cfg.Watcher.Enabled {
		fmt.Printf("  Watcher:    %s\n", cfg.Watcher.URL)
	} else {
		fmt.Println("  Watcher:    disabled")
	}
	fmt.Printf("  Media host: %s\n", orNone(cfg.MediaHost.URL))
}

func describeTarget(t config.TargetConfig) string {
	if !t.Enabled {
		return "disabled"
	}
	schedule := t.Schedule
	if schedule == "" {
		schedule = "manual"
	}
	return fmt.Sprintf("%s (%s)", t.Path, schedule)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
