package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/server"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the push channel and regenerate changed titles",
	Long: `Connects to the catalog push channel in the foreground and regenerates
every title it reports, until interrupted. Scheduled syncs are not run.`,
	Args: cobra.NoArgs,
	RunE: runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	// running the command is the opt-in
	a.Config.Watcher.Enabled = true

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", a.Config.Watcher.URL)
	runner := server.NewRunner(server.Config{}, nil, server.WithHandlers(a.Watcher(), a.Regenerator()))
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
