package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/store"
	"github.com/vmunix/anistrm/internal/tasks"
)

var logsCmd = &cobra.Command{
	Use:       "logs <task>",
	Short:     "Show the log of the last run of a task",
	Long:      "Prints the captured log of the most recent run of a task (all, favorites or title). With --history, lists recent runs instead.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: taskNames,
	RunE:      runLogsCmd,
}

var taskNames = []string{tasks.NameAll, tasks.NameFavorites, tasks.NameTitle}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().Bool("history", false, "List recent runs instead of the last log")
	logsCmd.Flags().IntP("limit", "n", 10, "Number of runs to list with --history")
}

func validateTask(name string) error {
	for _, n := range taskNames {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("unknown task %q (want one of: %s)", name, strings.Join(taskNames, ", "))
}

type runView struct {
	RunID      string     `json:"run_id"`
	Task       string     `json:"task"`
	Status     string     `json:"status"`
	Titles     int        `json:"titles"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Log        string     `json:"log,omitempty"`
}

func toRunView(r store.Run, withLog bool) runView {
	v := runView{
		RunID:      r.RunID,
		Task:       r.Task,
		Status:     r.Status,
		Titles:     r.Titles,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if withLog {
		v.Log = r.Log
	}
	return v
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	task := args[0]
	if err := validateTask(task); err != nil {
		return err
	}
	history, _ := cmd.Flags().GetBool("history")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if history {
		runs, err := a.Store.Runs(ctx, task, limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		return printRuns(runs)
	}

	run, err := a.Store.LastRun(ctx, task)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("No runs recorded for %s\n", task)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load last run: %w", err)
	}

	if jsonOutput {
		printJSON(toRunView(*run, true))
		return nil
	}

	fmt.Printf("%s run %s: %s, %d titles, started %s", run.Task, run.RunID, run.Status, run.Titles, formatTimeAgo(run.StartedAt))
	if d := run.Duration(); d > 0 {
		fmt.Printf(", took %s", d.Round(time.Second))
	}
	fmt.Println()
	if run.Error != "" {
		fmt.Printf("  %s\n", run.Error)
	}
	fmt.Println()
	fmt.Print(run.Log)
	return nil
}

func printRuns(runs []store.Run) error {
	if jsonOutput {
		views := make([]runView, 0, len(runs))
		for _, r := range runs {
			views = append(views, toRunView(r, false))
		}
		printJSON(views)
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs")
		return nil
	}

	fmt.Printf("  %-12s %-10s %-10s %-7s %-9s\n", "STARTED", "TASK", "STATUS", "TITLES", "TOOK")
	fmt.Println("  " + strings.Repeat("-", 52))
	for _, r := range runs {
		took := "-"
		if d := r.Duration(); d > 0 {
			took = d.Round(time.Second).String()
		}
		fmt.Printf("  %-12s %-10s %-10s %-7d %-9s\n", formatTimeAgo(r.StartedAt), r.Task, r.Status, r.Titles, took)
	}
	return nil
}
