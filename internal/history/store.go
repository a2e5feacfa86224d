package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one orchestration run.
type Run struct {
	ID           string
	Mode         string
	StartedAt    time.Time
	FinishedAt   time.Time
	ItemCount    int
	SkippedItems int
	Steps        []Step
}

// Step is one executed command within a run.
type Step struct {
	Item      string
	Seq       int
	Kind      string
	Command   string
	StartedAt time.Time
	Duration  time.Duration
	ExitCode  int
	Error     string
}

// Summary is the per-run aggregate shown in listings.
type Summary struct {
	ID           string
	Mode         string
	StartedAt    time.Time
	FinishedAt   time.Time
	ItemCount    int
	SkippedItems int
	StepCount    int
	FailedSteps  int
}

// Duration is the wall-clock length of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a run and its steps in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, mode, started_at, finished_at, item_count, skipped_items)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Mode,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.ItemCount,
		run.SkippedItems,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO steps (run_id, item, seq, kind, command, started_at, duration_ms, exit_code, error_message)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare step insert: %w", err)
	}
	defer stmt.Close()

	for _, step := range run.Steps {
		if _, err := stmt.ExecContext(
			ctx,
			run.ID,
			step.Item,
			step.Seq,
			step.Kind,
			step.Command,
			formatTime(step.StartedAt),
			step.Duration.Milliseconds(),
			step.ExitCode,
			nullableString(step.Error),
		); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT r.id, r.mode, r.started_at, r.finished_at, r.item_count, r.skipped_items,
                COUNT(st.id),
                COALESCE(SUM(CASE WHEN st.error_message IS NOT NULL THEN 1 ELSE 0 END), 0)
         FROM runs r
         LEFT JOIN steps st ON st.run_id = r.id
         GROUP BY r.id
         ORDER BY r.started_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary     Summary
			startedRaw  string
			finishedRaw string
		)
		if err := rows.Scan(
			&summary.ID,
			&summary.Mode,
			&startedRaw,
			&finishedRaw,
			&summary.ItemCount,
			&summary.SkippedItems,
			&summary.StepCount,
			&summary.FailedSteps,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.StartedAt = parseTime(startedRaw)
		summary.FinishedAt = parseTime(finishedRaw)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// Steps returns the recorded steps of one run in execution order per item.
func (s *Store) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT item, seq, kind, command, started_at, duration_ms, exit_code, error_message
         FROM steps WHERE run_id = ? ORDER BY item, seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			startedRaw string
			durationMS int64
			errMsg     sql.NullString
		)
		if err := rows.Scan(
			&step.Item,
			&step.Seq,
			&step.Kind,
			&step.Command,
			&startedRaw,
			&durationMS,
			&step.ExitCode,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.StartedAt = parseTime(startedRaw)
		step.Duration = time.Duration(durationMS) * time.Millisecond
		if errMsg.Valid {
			step.Error = errMsg.String
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout has a fixed-width fraction so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
