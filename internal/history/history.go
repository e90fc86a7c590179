// Package history keeps a SQLite record of builds and the pages each one
// wrote.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a build ID is unknown.
var ErrNotFound = errors.New("build not found")

// Page is one page written by a build.
type Page struct {
	Source      string
	Output      string
	Fingerprint string
}

// Record summarises one build.
type Record struct {
	BuildID  string
	Started  time.Time
	Duration time.Duration
	Outcome  string
	Pages    int
	Assets   int
	Failed   int
	Error    string
	// PageList is only populated by ByBuildID.
	PageList []Page
}

// Store persists build records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		assets INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE TABLE IF NOT EXISTS pages (
		build_id TEXT NOT NULL REFERENCES builds(build_id),
		source TEXT NOT NULL,
		output TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		PRIMARY KEY (build_id, source)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores a build and its pages in one transaction.
func (s *Store) Append(ctx context.Context, r Record) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, duration_ms, outcome, pages, assets, failed, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.BuildID, r.Started.UnixMilli(), r.Duration.Milliseconds(), r.Outcome, r.Pages, r.Assets, r.Failed, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	for _, p := range r.PageList {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO pages (build_id, source, output, fingerprint) VALUES (?, ?, ?, ?)",
			r.BuildID, p.Source, p.Output, p.Fingerprint,
		); err != nil {
			return fmt.Errorf("insert page %s: %w", p.Source, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ByBuildID returns one build including its pages.
func (s *Store) ByBuildID(ctx context.Context, buildID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT build_id, started_at, duration_ms, outcome, pages, assets, failed, error FROM builds WHERE build_id = ?",
		buildID,
	)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, output, fingerprint FROM pages WHERE build_id = ? ORDER BY source",
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.Source, &p.Output, &p.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		r.PageList = append(r.PageList, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return r, nil
}

// Recent returns up to limit builds, newest first, without page lists.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, started_at, duration_ms, outcome, pages, assets, failed, error FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return records, nil
}

// Fingerprints returns source → fingerprint for the pages of the newest
// successful build, or an empty map if there is none.
func (s *Store) Fingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, fingerprint FROM pages WHERE build_id = (
			SELECT build_id FROM builds WHERE outcome = 'success'
			ORDER BY started_at DESC, rowid DESC LIMIT 1
		)`)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var source, fp string
		if err := rows.Scan(&source, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		out[source] = fp
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		r          Record
		startedMS  int64
		durationMS int64
		errText    sql.NullString
	)
	if err := row.Scan(&r.BuildID, &startedMS, &durationMS, &r.Outcome, &r.Pages, &r.Assets, &r.Failed, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan build: %w", err)
	}
	r.Started = time.UnixMilli(startedMS)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.Error = errText.String
	return &r, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
