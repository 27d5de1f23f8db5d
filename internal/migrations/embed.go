// Package migrations provides embedded SQL migration files.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_initial.sql
var InitialSQL string

//go:embed sql/002_favorites.sql
var Migration002Favorites string

// all is applied in order. Every statement is idempotent.
var all = []struct {
	name string
	sql  *string
}{
	{"001_initial", &InitialSQL},
	{"002_favorites", &Migration002Favorites},
}

// Apply runs every migration against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, m := range all {
		if _, err := db.ExecContext(ctx, *m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}
