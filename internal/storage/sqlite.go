// Package storage provides SQLite-based persistence for contact history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/collider/internal/collision"
)

// ErrNoRun is returned when events are recorded before BeginRun.
var ErrNoRun = errors.New("storage: no run in progress")

// Store manages the SQLite database connection for contact history.
type Store struct {
	db    *sql.DB
	runID atomic.Int64 // Current run, 0 = none
}

// Run is one recorded detection session.
type Run struct {
	ID        int64
	Scene     string
	Threaded  bool
	Events    int
	StartedAt time.Time
	EndedAt   time.Time // Zero while the run is open
}

// ContactRecord is a stored contact transition.
// BodyA always sorts before BodyB.
type ContactRecord struct {
	ID    int64
	RunID int64
	Cycle uint64
	BodyA string
	BodyB string
	Kind  collision.EventKind
	At    time.Time
}

// PairCount is how many times a pair started touching.
type PairCount struct {
	BodyA    string
	BodyB    string
	Contacts int
	LastSeen time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
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
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scene TEXT NOT NULL,
			threaded INTEGER NOT NULL DEFAULT 1,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		);

		CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			cycle INTEGER NOT NULL,
			body_a TEXT NOT NULL,
			body_b TEXT NOT NULL,
			kind TEXT NOT NULL,
			at_ns INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_run ON contacts(run_id);
		CREATE INDEX IF NOT EXISTS idx_contacts_pair ON contacts(body_a, body_b);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close ends the current run, if any, and closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	endErr := s.EndRun()
	if errors.Is(endErr, ErrNoRun) {
		endErr = nil
	}
	return errors.Join(endErr, s.db.Close())
}

// BeginRun opens a new run for the named scene and makes it current.
// An open run is ended first.
func (s *Store) BeginRun(sceneName string, threaded bool) (int64, error) {
	if err := s.EndRun(); err != nil && !errors.Is(err, ErrNoRun) {
		return 0, err
	}

	res, err := s.db.Exec(
		"INSERT INTO runs (scene, threaded) VALUES (?, ?)",
		sceneName, threaded,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	s.runID.Store(id)
	return id, nil
}

// EndRun stamps the current run as finished.
func (s *Store) EndRun() error {
	id := s.runID.Swap(0)
	if id == 0 {
		return ErrNoRun
	}
	_, err := s.db.Exec("UPDATE runs SET ended_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot end run %d: %w", id, err)
	}
	return nil
}

// CurrentRun returns the ID of the open run, or 0.
func (s *Store) CurrentRun() int64 {
	return s.runID.Load()
}

// RecordEvent stores a single contact transition in the current run.
func (s *Store) RecordEvent(e collision.Event) error {
	return s.RecordEvents([]collision.Event{e})
}

// RecordEvents stores a batch of transitions in one transaction.
// Implements collision.Recorder.
func (s *Store) RecordEvents(events []collision.Event) error {
	if len(events) == 0 {
		return nil
	}
	runID := s.runID.Load()
	if runID == 0 {
		return ErrNoRun
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO contacts (run_id, cycle, body_a, body_b, kind, at_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		a, b := ordered(e.Pair.A, e.Pair.B)
		at := e.At
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := stmt.Exec(runID, int64(e.Cycle), a, b, string(e.Kind), at.UnixNano()); err != nil {
			return fmt.Errorf("storage: cannot save contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit contacts: %w", err)
	}
	return nil
}

// Ensure Store implements Recorder
var _ collision.Recorder = (*Store)(nil)

// RecentEvents retrieves the most recent contact transitions across all runs,
// newest first.
func (s *Store) RecentEvents(limit int) ([]ContactRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, cycle, body_a, body_b, kind, at_ns
		 FROM contacts
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query contacts: %w", err)
	}
	return scanContacts(rows)
}

// PairHistory retrieves transitions for the unordered pair {a, b}, newest first.
func (s *Store) PairHistory(a, b string, limit int) ([]ContactRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	a, b = ordered(a, b)

	rows, err := s.db.Query(
		`SELECT id, run_id, cycle, body_a, body_b, kind, at_ns
		 FROM contacts
		 WHERE body_a = ? AND body_b = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		a, b, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query pair history: %w", err)
	}
	return scanContacts(rows)
}

// ContactCounts returns how often each pair started touching, most frequent first.
func (s *Store) ContactCounts() ([]PairCount, error) {
	rows, err := s.db.Query(
		`SELECT body_a, body_b, COUNT(*), MAX(at_ns)
		 FROM contacts
		 WHERE kind = ?
		 GROUP BY body_a, body_b
		 ORDER BY COUNT(*) DESC, body_a, body_b`,
		string(collision.ContactBegin),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count contacts: %w", err)
	}
	defer rows.Close()

	var counts []PairCount
	for rows.Next() {
		var c PairCount
		var lastNs int64
		if err := rows.Scan(&c.BodyA, &c.BodyB, &c.Contacts, &lastNs); err != nil {
			return nil, fmt.Errorf("storage: cannot scan count row: %w", err)
		}
		c.LastSeen = time.Unix(0, lastNs)
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return counts, nil
}

// Runs retrieves the most recent runs with their event counts.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.scene, r.threaded, r.started_at, r.ended_at,
		        (SELECT COUNT(*) FROM contacts c WHERE c.run_id = r.id)
		 FROM runs r
		 ORDER BY r.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, endedAt any
		if err := rows.Scan(&r.ID, &r.Scene, &r.Threaded, &startedAt, &endedAt, &r.Events); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.EndedAt = parseTimestamp(endedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

func scanContacts(rows *sql.Rows) ([]ContactRecord, error) {
	defer rows.Close()

	var records []ContactRecord
	for rows.Next() {
		var r ContactRecord
		var cycle, atNs int64
		var kind string
		if err := rows.Scan(&r.ID, &r.RunID, &cycle, &r.BodyA, &r.BodyB, &kind, &atNs); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Cycle = uint64(cycle)
		r.Kind = collision.EventKind(kind)
		r.At = time.Unix(0, atNs)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// parseTimestamp handles both time.Time and string datetimes from the driver.
func parseTimestamp(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func ordered(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
