// Package storage keeps the host journal in SQLite: staging passes and
// surface negotiations. Uses the pure-Go modernc.org/sqlite driver to
// avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/enginehost/internal/host"
)

// timeLayout is how timestamps are written; it sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the journal database connection.
type Store struct {
	db *sql.DB
}

// StageRunEntry is a stored staging pass.
type StageRunEntry struct {
	ID int64
	host.StageRun
}

// NegotiationEntry is a stored negotiation.
type NegotiationEntry struct {
	ID int64
	host.Negotiation
}

// Summary aggregates the journal.
type Summary struct {
	StageRuns          int
	FilesStaged        int64
	BytesStaged        int64
	SkippedEntries     int64
	Negotiations       int
	FailedNegotiations int
	LastStaged         time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stage_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL DEFAULT '',
			dest TEXT NOT NULL,
			files INTEGER NOT NULL DEFAULT 0,
			bytes INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			errors TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_stage_runs_started ON stage_runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS negotiations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy TEXT NOT NULL,
			request TEXT NOT NULL,
			config_id INTEGER NOT NULL DEFAULT 0,
			config TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_negotiations_at ON negotiations(at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveStageRun implements host.Journal.
func (s *Store) SaveStageRun(run host.StageRun) error {
	_, err := s.db.Exec(
		`INSERT INTO stage_runs
		 (source, dest, files, bytes, skipped, errors, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Source,
		run.Dest,
		run.Files,
		run.Bytes,
		run.Skipped,
		strings.Join(run.Errors, "\n"),
		formatTime(run.Started),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save stage run: %w", err)
	}
	return nil
}

// SaveNegotiation implements host.Journal.
func (s *Store) SaveNegotiation(n host.Negotiation) error {
	_, err := s.db.Exec(
		`INSERT INTO negotiations (strategy, request, config_id, config, error, at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.Strategy,
		n.Request,
		n.ConfigID,
		n.Config,
		n.Error,
		formatTime(n.At),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save negotiation: %w", err)
	}
	return nil
}

var _ host.Journal = (*Store)(nil)

// RecentStageRuns returns the latest staging passes, newest first.
func (s *Store) RecentStageRuns(limit int) ([]StageRunEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, source, dest, files, bytes, skipped, errors, started_at, duration_ms
		 FROM stage_runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query stage runs: %w", err)
	}
	defer rows.Close()

	var entries []StageRunEntry
	for rows.Next() {
		var e StageRunEntry
		var errorsText, started string
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Dest, &e.Files, &e.Bytes, &e.Skipped,
			&errorsText, &started, &durationMs); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if errorsText != "" {
			e.Errors = strings.Split(errorsText, "\n")
		}
		e.Started = parseTime(started)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// RecentNegotiations returns the latest negotiations, newest first.
func (s *Store) RecentNegotiations(limit int) ([]NegotiationEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, strategy, request, config_id, config, error, at
		 FROM negotiations
		 ORDER BY at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query negotiations: %w", err)
	}
	defer rows.Close()

	var entries []NegotiationEntry
	for rows.Next() {
		var e NegotiationEntry
		var at string
		if err := rows.Scan(&e.ID, &e.Strategy, &e.Request, &e.ConfigID, &e.Config, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.At = parseTime(at)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// Summary aggregates all journal rows.
func (s *Store) Summary() (*Summary, error) {
	sum := &Summary{}

	var last sql.NullString
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(files), 0), COALESCE(SUM(bytes), 0),
		        COALESCE(SUM(skipped), 0), MAX(started_at)
		 FROM stage_runs`,
	).Scan(&sum.StageRuns, &sum.FilesStaged, &sum.BytesStaged, &sum.SkippedEntries, &last)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot summarize stage runs: %w", err)
	}
	if last.Valid {
		sum.LastStaged = parseTime(last.String)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0)
		 FROM negotiations`,
	).Scan(&sum.Negotiations, &sum.FailedNegotiations)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot summarize negotiations: %w", err)
	}

	return sum, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	if parsed, err := time.Parse(timeLayout, v); err == nil {
		return parsed
	}
	return time.Time{}
}
