// Package store persists task run logs and the last known favorites set.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no matching row exists.
var ErrNotFound = errors.New("not found")

// Run status values.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Run is one execution of a sync task.
type Run struct {
	ID         int64
	RunID      string
	Task       string
	Status     string
	Titles     int
	Error      string
	Log        string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration is the run's wall time, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store provides access to task runs and favorites.
type Store struct {
	db *sql.DB
}

// New creates a store over an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// StartRun records the beginning of a task run.
func (s *Store) StartRun(ctx context.Context, task, runID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_runs (run_id, task, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, task, StatusRunning, startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", runID, err)
	}
	return nil
}

// AppendLog appends text to the run's log.
func (s *Store) AppendLog(ctx context.Context, runID, text string) error {
	if text == "" {
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE task_runs SET log = log || ? WHERE run_id = ?`, text, runID,
	)
	if err != nil {
		return fmt.Errorf("append log %s: %w", runID, err)
	}
	return requireRow(res, runID)
}

// FinishRun marks the run as done with its final status.
func (s *Store) FinishRun(ctx context.Context, runID, status string, titles int, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE task_runs SET status = ?, titles = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		status, titles, runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return requireRow(res, runID)
}

func requireRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, run_id, task, status, titles, error, log, started_at, finished_at`

// LastRun returns the most recent run of task.
func (s *Store) LastRun(ctx context.Context, task string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM task_runs WHERE task = ? ORDER BY id DESC LIMIT 1`, task,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last run %s: %w", task, err)
	}
	return r, nil
}

// Runs lists runs newest first. An empty task matches every task.
func (s *Store) Runs(ctx context.Context, task string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM task_runs`
	var args []any
	if task != "" {
		query += ` WHERE task = ?`
		args = append(args, task)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var finished sql.NullTime
	if err := sc.Scan(&r.ID, &r.RunID, &r.Task, &r.Status, &r.Titles, &r.Error, &r.Log, &r.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// SaveFavorites replaces the stored favorites set.
func (s *Store) SaveFavorites(ctx context.Context, ids []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	now := time.Now().UTC()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO favorites (title_id, updated_at) VALUES (?, ?)`, id, now,
		); err != nil {
			return fmt.Errorf("insert favorite %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// LoadFavorites returns the stored favorites in ascending order.
func (s *Store) LoadFavorites(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title_id FROM favorites ORDER BY title_id`)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
