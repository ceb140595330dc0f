// Package resultsdb indexes benchmark runs and their episodes in SQLite.
package resultsdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run describes one benchmark invocation.
type Run struct {
	ID        string
	Env       string
	Seed      int64
	Mode      string // "episodes" or "steps"
	StartedAt time.Time
}

// Episode is the outcome of one finished episode.
type Episode struct {
	ID          string
	RunID       string
	Index       int
	Steps       int
	Return      float64
	Utilization float64 // bin-packing only, zero elsewhere
	Duration    time.Duration
}

// RunSummary aggregates the episodes of a run.
type RunSummary struct {
	Run        Run
	Episodes   int
	Steps      int
	MeanReturn float64
}

type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			env TEXT NOT NULL,
			seed INTEGER NOT NULL,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			episode_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			idx INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			total_return REAL NOT NULL,
			utilization REAL NOT NULL,
			duration_ns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id, idx);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error { return d.db.Close() }

// RecordRun inserts a run.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO runs(run_id, env, seed, mode, started_at) VALUES(?,?,?,?,?)`,
		r.ID, r.Env, r.Seed, r.Mode, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// RecordEpisode inserts an episode of a recorded run.
func (d *DB) RecordEpisode(ctx context.Context, e Episode) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO episodes(episode_id, run_id, idx, steps, total_return, utilization, duration_ns) VALUES(?,?,?,?,?,?,?)`,
		e.ID, e.RunID, e.Index, e.Steps, e.Return, e.Utilization, e.Duration.Nanoseconds())
	if err != nil {
		return fmt.Errorf("record episode %s: %w", e.ID, err)
	}
	return nil
}

// Episodes returns the episodes of a run in index order.
func (d *DB) Episodes(ctx context.Context, runID string) ([]Episode, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT episode_id, run_id, idx, steps, total_return, utilization, duration_ns
		 FROM episodes WHERE run_id=? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		var (
			e  Episode
			ns int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Index, &e.Steps, &e.Return, &e.Utilization, &ns); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ns)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs returns every run with its episode aggregates, newest first.
func (d *DB) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT r.run_id, r.env, r.seed, r.mode, r.started_at,
		        COUNT(e.episode_id), COALESCE(SUM(e.steps), 0), COALESCE(AVG(e.total_return), 0)
		 FROM runs r LEFT JOIN episodes e ON e.run_id = r.run_id
		 GROUP BY r.run_id
		 ORDER BY r.started_at DESC, r.run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s       RunSummary
			started string
		)
		if err := rows.Scan(&s.Run.ID, &s.Run.Env, &s.Run.Seed, &s.Run.Mode, &started,
			&s.Episodes, &s.Steps, &s.MeanReturn); err != nil {
			return nil, err
		}
		if s.Run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", s.Run.ID, started, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
