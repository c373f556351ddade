// Package runlog keeps a SQLite audit trail of monitor runs: one row per
// site check and one summary row per run. It exists for inspection and
// debugging — change detection never reads it, and a run log failure never
// fails the run.
package runlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS site_checks (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    site_key      TEXT NOT NULL,
    url           TEXT NOT NULL,
    status        TEXT NOT NULL,
    content_hash  TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    checked_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_site_checks_site ON site_checks(site_key, checked_at DESC);

CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    sites       INTEGER NOT NULL,
    changed     INTEGER NOT NULL,
    errors      INTEGER NOT NULL
);
`

// Check is one audit row for a single site check.
type Check struct {
	SiteKey      string
	URL          string
	Status       string // ok | unchanged | changed | baseline | invalid | error
	ContentHash  string
	ErrorMessage string
	DurationMs   int64
	CheckedAt    int64 // epoch millis
}

// RunSummary is one audit row for a whole run.
type RunSummary struct {
	StartedAt  int64 // epoch millis
	FinishedAt int64
	Sites      int
	Changed    int
	Errors     int
}

// Log is the SQLite-backed audit trail.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the run log database at path and applies
// the schema.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	// Single-writer one-shot process; WAL keeps readers unblocked while
	// a run is writing.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("runlog: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	return &Log{db: db}, nil
}

// RecordCheck inserts one site-check row.
func (l *Log) RecordCheck(ctx context.Context, c *Check) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO site_checks (site_key, url, status, content_hash,
		 error_message, duration_ms, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.SiteKey, c.URL, c.Status, c.ContentHash,
		c.ErrorMessage, c.DurationMs, c.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("runlog: record check: %w", err)
	}
	return nil
}

// RecordRun inserts the per-run summary row.
func (l *Log) RecordRun(ctx context.Context, r *RunSummary) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, sites, changed, errors)
		 VALUES (?, ?, ?, ?, ?)`,
		r.StartedAt, r.FinishedAt, r.Sites, r.Changed, r.Errors,
	)
	if err != nil {
		return fmt.Errorf("runlog: record run: %w", err)
	}
	return nil
}

// History returns the newest check rows for a site key, newest first.
func (l *Log) History(ctx context.Context, siteKey string, limit int) ([]*Check, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT site_key, url, status, content_hash, error_message,
		 duration_ms, checked_at
		 FROM site_checks WHERE site_key = ?
		 ORDER BY checked_at DESC, id DESC LIMIT ?`, siteKey, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: history: %w", err)
	}
	defer rows.Close()

	var result []*Check
	for rows.Next() {
		var c Check
		if err := rows.Scan(&c.SiteKey, &c.URL, &c.Status, &c.ContentHash,
			&c.ErrorMessage, &c.DurationMs, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("runlog: scan check: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}
