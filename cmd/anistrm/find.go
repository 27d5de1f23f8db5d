package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/anistrm/internal/catalog"
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy-search the catalog by title",
	Long:  "Fetches the catalog and ranks titles by name similarity. Handy for looking up the id for 'sync title'.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFindCmd,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntP("limit", "n", 10, "Number of results to show")
}

type matchView struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Match string  `json:"match"`
	Score float64 `json:"score"`
}

func runFindCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	all := a.Config.Targets.All
	titles := a.Catalog.FetchAllTitles(ctx, all.PageSize, all.MaxPages)
	if len(titles) == 0 {
		return fmt.Errorf("catalog returned no titles")
	}

	results := catalog.Match(query, titles, limit)
	views := make([]matchView, 0, len(results))
	for _, r := range results {
		views = append(views, matchView{ID: r.Title.ID, Name: r.Title.DisplayName(), Match: r.Name, Score: r.Score})
	}

	if jsonOutput {
		printJSON(views)
		return nil
	}

	if len(views) == 0 {
		fmt.Println("No matches")
		return nil
	}

	fmt.Printf("Matches for %q:\n\n", query)
	fmt.Printf("  %-8s %-6s %s\n", "ID", "SCORE", "TITLE")
	fmt.Println("  " + strings.Repeat("-", 55))
	for _, v := range views {
		fmt.Printf("  %-8d %-6.2f %s\n", v.ID, v.Score, truncate(v.Name, 60))
		if v.Match != v.Name {
			fmt.Printf("  %-8s %-6s (%s)\n", "", "", truncate(v.Match, 60))
		}
	}
	return nil
}
