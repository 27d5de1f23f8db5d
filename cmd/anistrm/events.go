package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().Int("title", 0, "Only events for this title id")
	eventsCmd.Flags().StringSlice("type", nil, "Only events of these types")
	eventsCmd.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")
}

type eventView struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	titleID, _ := cmd.Flags().GetInt("title")
	types, _ := cmd.Flags().GetStringSlice("type")
	since, _ := cmd.Flags().GetDuration("since")

	q := events.Query{TitleID: titleID, Types: types, Limit: limit}
	if since > 0 {
		q.Since = time.Now().Add(-since)
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	raw, err := a.EventLog.Find(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	reg := events.DefaultRegistry()
	views := make([]eventView, 0, len(raw))
	for _, r := range raw {
		v := eventView{ID: r.ID, Type: r.EventType, EntityType: r.EntityType, EntityID: r.EntityID, OccurredAt: r.OccurredAt}
		if e, err := reg.Unmarshal(r); err == nil {
			v.Detail = describeEvent(e)
		}
		views = append(views, v)
	}

	if jsonOutput {
		printJSON(views)
		return nil
	}

	if len(views) == 0 {
		fmt.Println("No events")
		return nil
	}

	fmt.Printf("Recent Events (%d):\n\n", len(views))
	fmt.Printf("  %-12s %-26s %-15s %s\n", "TIME", "TYPE", "ENTITY", "DETAIL")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, v := range views {
		entity := fmt.Sprintf("%s/%d", v.EntityType, v.EntityID)
		fmt.Printf("  %-12s %-26s %-15s %s\n", formatTimeAgo(v.OccurredAt), v.Type, entity, v.Detail)
	}

	return nil
}

// describeEvent renders the payload fields worth a glance.
func describeEvent(e events.Event) string {
	switch e := e.(type) {
	case *events.TitleChanged:
		return e.Source
	case *events.TitleRegenerated:
		return fmt.Sprintf("%d files in %s", e.Written, strings.Join(e.Targets, ","))
	case *events.TitleRegenerationFailed:
		return truncate(e.Error, 60)
	case *events.SyncStarted:
		return e.Task
	case *events.SyncCompleted:
		if e.Error != "" {
			return fmt.Sprintf("%s failed: %s", e.Task, truncate(e.Error, 50))
		}
		return fmt.Sprintf("%s: %d titles in %s", e.Task, e.Titles, e.Duration.Round(time.Second))
	default:
		return ""
	}
}
