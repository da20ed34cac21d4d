// Package store persists calendar events and planner tasks in a local
// SQLite database. It is the persistence collaborator the calendar view
// reads its month from and writes emitted intents to.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"

	// modernc.org/sqlite driver name is "sqlite".
	_ "modernc.org/sqlite"
)

// ErrInvalid marks writes rejected before they reach the database.
var ErrInvalid = errors.New("invalid")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

type Store struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// Open opens (creating if needed) the database at path. Times read back
// are converted to loc.
func Open(ctx context.Context, path string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	appLog.Debug("store opened", "path", path)
	return &Store{db: db, loc: loc, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			start_unixms INTEGER NOT NULL,
			end_unixms INTEGER NOT NULL,
			all_day INTEGER NOT NULL,
			priority TEXT NOT NULL,
			completed INTEGER NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			recurrence_kind TEXT NOT NULL DEFAULT 'none',
			recurrence_interval INTEGER NOT NULL DEFAULT 1,
			recurrence_end_date TEXT NOT NULL DEFAULT '',
			recurrence_weekdays TEXT NOT NULL DEFAULT '',
			until_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_range ON events(start_unixms, until_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			start_unixms INTEGER NOT NULL,
			end_unixms INTEGER NOT NULL,
			priority TEXT NOT NULL,
			project_color TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_range ON tasks(start_unixms, end_unixms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func (s *Store) parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(s.loc), nil
}
