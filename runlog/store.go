// Package runlog records timer activity in SQLite so runs can be reviewed afterwards.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"memsplit/timer"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// kindGameTime marks a row recording a game time pause change
const kindGameTime = "game_time"

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store persists timer events. It implements timer.Handler: every Start opens a new run and
// later events are attached to it. Events before the first Start are dropped.
type Store struct {
	sqlDB *sql.DB

	mu    sync.Mutex
	runID int64
}

var _ timer.Handler = (*Store)(nil)

// Open opens or creates the run log at path
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CurrentRun returns the id of the run being recorded, zero before the first Start
func (s *Store) CurrentRun() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

func (s *Store) HandleEvent(e timer.Event, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	if e == timer.Start {
		res, err := s.sqlDB.ExecContext(ctx, `INSERT INTO runs (started_at) VALUES (?)`, toMillis(at))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("run id: %w", err)
		}
		s.runID = id
	}

	if s.runID == 0 {
		return nil
	}

	return s.insert(ctx, e.String(), sql.NullBool{}, at)
}

func (s *Store) HandleGameTime(paused bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runID == 0 {
		return nil
	}
	return s.insert(context.Background(), kindGameTime, sql.NullBool{Bool: paused, Valid: true}, at)
}

func (s *Store) insert(ctx context.Context, kind string, paused sql.NullBool, at time.Time) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO events (run_id, kind, paused, at) VALUES (?, ?, ?, ?)`,
		s.runID, kind, paused, toMillis(at))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Record is one stored event
type Record struct {
	Kind   string
	Paused *bool // set for game time records
	At     time.Time
}

// Run summarizes a recorded run
type Run struct {
	ID        int64
	StartedAt time.Time
	Splits    int
}

// Events returns the events of a run in insertion order
func (s *Store) Events(ctx context.Context, runID int64) ([]Record, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT kind, paused, at FROM events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			paused sql.NullBool
			at     int64
		)
		if err := rows.Scan(&rec.Kind, &paused, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if paused.Valid {
			p := paused.Bool
			rec.Paused = &p
		}
		rec.At = fromMillis(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Runs lists recorded runs, most recent first
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT r.id, r.started_at, COUNT(e.id)
		   FROM runs r
		   LEFT JOIN events e ON e.run_id = r.id AND e.kind = ?
		  GROUP BY r.id
		  ORDER BY r.id DESC`, timer.Split.String())
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run     Run
			started int64
		)
		if err := rows.Scan(&run.ID, &started, &run.Splits); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = fromMillis(started)
		out = append(out, run)
	}
	return out, rows.Err()
}
