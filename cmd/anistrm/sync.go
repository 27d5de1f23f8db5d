package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/app"
	"github.com/vmunix/anistrm/internal/store"
	"github.com/vmunix/anistrm/internal/tasks"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync task once",
}

var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Regenerate the whole catalog tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(func(ctx context.Context, a *app.App) tasks.Report {
			return a.AllTask.Run(ctx, progressPrinter())
		})
	},
}

var syncFavoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Regenerate the favorites tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(func(ctx context.Context, a *app.App) tasks.Report {
			return a.FavoritesTask.Run(ctx, progressPrinter())
		})
	},
}

var syncTitleCmd = &cobra.Command{
	Use:   "title <id>",
	Short: "Regenerate a single title in every target that holds it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTitleID(args[0])
		if err != nil {
			return err
		}
		return runSync(func(ctx context.Context, a *app.App) tasks.Report {
			return a.Titles.Run(ctx, id)
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncAllCmd, syncFavoritesCmd, syncTitleCmd)
}

func parseTitleID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid title id %q", s)
	}
	return id, nil
}

func runSync(fn func(context.Context, *app.App) tasks.Report) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	rep := fn(ctx, a)
	if !jsonOutput {
		fmt.Fprintln(os.Stderr)
	}
	return printReport(rep)
}

func progressPrinter() func(done, total int) {
	if jsonOutput {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r  %d/%d titles", done, total)
	}
}

type reportView struct {
	RunID  string `json:"run_id"`
	Task   string `json:"task"`
	Status string `json:"status"`
	Titles int    `json:"titles"`
	Error  string `json:"error,omitempty"`
}

func printReport(rep tasks.Report) error {
	v := reportView{RunID: rep.RunID, Task: rep.Task, Status: rep.Status, Titles: rep.Titles}
	if rep.Err != nil {
		v.Error = rep.Err.Error()
	}

	if jsonOutput {
		printJSON(v)
	} else {
		fmt.Printf("%s: %s (%d titles, run %s)\n", v.Task, v.Status, v.Titles, v.RunID)
		if v.Error != "" {
			fmt.Printf("  %s\n", v.Error)
		}
	}

	if rep.Status == store.StatusFailed {
		return fmt.Errorf("%s sync failed", rep.Task)
	}
	return nil
}
