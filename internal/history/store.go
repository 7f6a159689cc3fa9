// Package history persists a record of every build run in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pagesmith/internal/build"
)

var _ build.Observer = (*Store)(nil)

// ErrNotFound is returned when no build matches the requested ID.
var ErrNotFound = errors.New("history: build not found")

// Entry is one recorded build run.
type Entry struct {
	ID       string
	Kind     string
	Env      string
	Revision string
	Start    time.Time
	Duration time.Duration
	Outcome  string
	Pages    int
	Assets   int
	Error    string
	// Stages maps stage names to their durations.
	Stages map[string]time.Duration
}

// Store records build runs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database at path. Use ":memory:" for an
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		env TEXT,
		revision TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		assets INTEGER NOT NULL,
		error TEXT,
		stages TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores e, replacing any entry with the same ID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages := make(map[string]int64, len(e.Stages))
	for k, v := range e.Stages {
		stages[k] = v.Milliseconds()
	}
	stagesJSON, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds (id, kind, env, revision, started_at, duration_ms, outcome, pages, assets, error, stages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Env, e.Revision, e.Start.UnixMilli(), e.Duration.Milliseconds(),
		e.Outcome, e.Pages, e.Assets, e.Error, string(stagesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Get returns the build with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectBuilds+" WHERE id = ?", id)
	if err != nil {
		return Entry{}, fmt.Errorf("query build: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNotFound
	}
	return entries[0], nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectBuilds+" ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

const selectBuilds = `SELECT id, kind, env, revision, started_at, duration_ms, outcome, pages, assets, error, stages FROM builds`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var env, revision, errText, stagesJSON sql.NullString
		var startMS, durMS int64
		if err := rows.Scan(&e.ID, &e.Kind, &env, &revision, &startMS, &durMS, &e.Outcome,
			&e.Pages, &e.Assets, &errText, &stagesJSON); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Env = env.String
		e.Revision = revision.String
		e.Error = errText.String
		e.Start = time.UnixMilli(startMS)
		e.Duration = time.Duration(durMS) * time.Millisecond

		if stagesJSON.String != "" {
			var stages map[string]int64
			if err := json.Unmarshal([]byte(stagesJSON.String), &stages); err != nil {
				return nil, fmt.Errorf("unmarshal stages: %w", err)
			}
			e.Stages = make(map[string]time.Duration, len(stages))
			for k, v := range stages {
				e.Stages[k] = time.Duration(v) * time.Millisecond
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// FromReport converts a finished build report into an Entry.
func FromReport(r *build.Report) Entry {
	e := Entry{
		ID:       r.ID,
		Kind:     string(r.Kind),
		Env:      r.Env,
		Revision: r.Revision,
		Start:    r.Start,
		Duration: r.Duration(),
		Outcome:  string(r.Outcome),
		Pages:    r.Pages,
		Assets:   r.Assets,
		Stages:   make(map[string]time.Duration, len(r.StageDurations)),
	}
	if err := r.Err(); err != nil {
		e.Error = err.Error()
	}
	for k, v := range r.StageDurations {
		e.Stages[string(k)] = v
	}
	return e
}

// OnBuildComplete records the finished build.
func (s *Store) OnBuildComplete(ctx context.Context, r *build.Report) error {
	return s.Record(ctx, FromReport(r))
}
