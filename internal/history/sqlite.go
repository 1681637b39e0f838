// Package history keeps a local SQLite log of every compile and generated
// header so past builds can be inspected after the watcher has moved on.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS compiles (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session     TEXT NOT NULL DEFAULT '',
    shader      TEXT NOT NULL,
    entry       TEXT NOT NULL,
    stage       TEXT NOT NULL,
    debug       INTEGER NOT NULL DEFAULT 0,
    exit_code   INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    output      TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS compiles_shader ON compiles(shader);

CREATE TABLE IF NOT EXISTS headers (
    path       TEXT PRIMARY KEY,
    shader     TEXT NOT NULL,
    buffers    INTEGER NOT NULL DEFAULT 0,
    written_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Compile is one recorded compiler invocation.
type Compile struct {
	ID        int64
	Session   string
	Shader    string
	Entry     string
	Stage     string
	Debug     bool
	ExitCode  int
	Duration  time.Duration
	Output    string
	StartedAt time.Time
}

// OK reports whether the compile succeeded.
func (c Compile) OK() bool { return c.ExitCode == 0 }

// Header is the most recent write of a generated header file.
type Header struct {
	Path      string
	Shader    string
	Buffers   int
	WrittenAt time.Time
}

// Store records compiles in a local SQLite database in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode and
// busy timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps the PRAGMAs
	// below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// RecordCompile appends one compile. A zero StartedAt is stored as now.
func (s *Store) RecordCompile(ctx context.Context, c Compile) error {
	started := c.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	const q = `
		INSERT INTO compiles (session, shader, entry, stage, debug, exit_code, duration_ms, output, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		c.Session, c.Shader, c.Entry, c.Stage, boolInt(c.Debug), c.ExitCode,
		c.Duration.Milliseconds(), c.Output, started.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("history: record compile %s/%s: %w", c.Shader, c.Entry, err)
	}
	return nil
}

// RecordHeader upserts the latest write of a generated header.
func (s *Store) RecordHeader(ctx context.Context, h Header) error {
	written := h.WrittenAt
	if written.IsZero() {
		written = time.Now()
	}
	const q = `
		INSERT INTO headers (path, shader, buffers, written_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			shader     = excluded.shader,
			buffers    = excluded.buffers,
			written_at = excluded.written_at`
	if _, err := s.db.ExecContext(ctx, q, h.Path, h.Shader, h.Buffers, written.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("history: record header %q: %w", h.Path, err)
	}
	return nil
}

// Recent returns up to limit compiles, newest first. With failedOnly set only
// nonzero exits are returned. A limit <= 0 returns every row.
func (s *Store) Recent(ctx context.Context, limit int, failedOnly bool) ([]Compile, error) {
	q := `SELECT id, session, shader, entry, stage, debug, exit_code, duration_ms, output, started_at
		FROM compiles`
	if failedOnly {
		q += ` WHERE exit_code != 0`
	}
	q += ` ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query compiles: %w", err)
	}
	defer rows.Close()

	var result []Compile
	for rows.Next() {
		var (
			c          Compile
			debug      int
			durationMS int64
			ts         string
		)
		if err := rows.Scan(&c.ID, &c.Session, &c.Shader, &c.Entry, &c.Stage, &debug, &c.ExitCode, &durationMS, &c.Output, &ts); err != nil {
			return nil, fmt.Errorf("history: scan compile: %w", err)
		}
		c.Debug = debug != 0
		c.Duration = time.Duration(durationMS) * time.Millisecond
		startedAt, parseErr := parseTimestamp(ts)
		if parseErr != nil {
			return nil, fmt.Errorf("history: parse compile timestamp: %w", parseErr)
		}
		c.StartedAt = startedAt
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate compiles: %w", err)
	}
	return result, nil
}

// Headers returns every recorded header ordered by path.
func (s *Store) Headers(ctx context.Context) ([]Header, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, shader, buffers, written_at FROM headers ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("history: query headers: %w", err)
	}
	defer rows.Close()

	var result []Header
	for rows.Next() {
		var h Header
		var ts string
		if err := rows.Scan(&h.Path, &h.Shader, &h.Buffers, &ts); err != nil {
			return nil, fmt.Errorf("history: scan header: %w", err)
		}
		writtenAt, parseErr := parseTimestamp(ts)
		if parseErr != nil {
			return nil, fmt.Errorf("history: parse header timestamp: %w", parseErr)
		}
		h.WrittenAt = writtenAt
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate headers: %w", err)
	}
	return result, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// parseTimestamp accepts the RFC 3339 values written by this package and the
// space-separated form SQLite uses for CURRENT_TIMESTAMP.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
