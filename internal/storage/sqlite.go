// Package storage provides SQLite-based persistence for the script load
// journal and finished host sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/scriptarena/internal/scripting"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScriptLoad is one journaled load or reload of a script.
type ScriptLoad struct {
	ID        int64
	Name      string
	Hash      string
	Outcome   string // "loaded", "reloaded" or "failed"
	Error     string // empty unless Outcome is "failed"
	CreatedAt time.Time
}

// Session is the summary of one finished host run.
type Session struct {
	ID        int64
	GameID    string
	Mode      string // "play", "headless" or "serve"
	Ticks     int64
	Entities  int
	Reloads   int
	Failures  int
	Duration  int // seconds
	CreatedAt time.Time
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

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS script_loads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			hash TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_script_loads_name ON script_loads(name);

		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			entities INTEGER NOT NULL DEFAULT 0,
			reloads INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_game_id ON sessions(game_id);
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

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScriptLoad records one script load outcome.
// Returns the ID of the inserted record.
func (s *Store) SaveScriptLoad(load ScriptLoad) (int64, error) {
	var errText sql.NullString
	if load.Error != "" {
		errText = sql.NullString{String: load.Error, Valid: true}
	}
	result, err := s.db.Exec(
		"INSERT INTO script_loads (name, hash, outcome, error) VALUES (?, ?, ?, ?)",
		load.Name, load.Hash, load.Outcome, errText,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save script load: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordScriptLoad adapts SaveScriptLoad to the reload controller's journal.
func (s *Store) RecordScriptLoad(name, hash, outcome string, loadErr error) error {
	load := ScriptLoad{Name: name, Hash: hash, Outcome: outcome}
	if loadErr != nil {
		load.Error = loadErr.Error()
	}
	_, err := s.SaveScriptLoad(load)
	return err
}

// Ensure Store implements the reload journal
var _ scripting.Journal = (*Store)(nil)

// RecentScriptLoads retrieves the most recent loads, newest first.
// An empty name returns loads of every script.
func (s *Store) RecentScriptLoads(name string, limit int) ([]ScriptLoad, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, name, hash, outcome, error, created_at
		 FROM script_loads`
	args := []any{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query script loads: %w", err)
	}
	defer rows.Close()

	var loads []ScriptLoad
	for rows.Next() {
		var l ScriptLoad
		var errText sql.NullString
		var createdAt any
		if err := rows.Scan(&l.ID, &l.Name, &l.Hash, &l.Outcome, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if errText.Valid {
			l.Error = errText.String
		}
		l.CreatedAt = parseTime(createdAt)
		loads = append(loads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return loads, nil
}

// ClearScriptLoads deletes the journal for one script, or all of it when
// name is empty.
func (s *Store) ClearScriptLoads(name string) error {
	var err error
	if name == "" {
		_, err = s.db.Exec("DELETE FROM script_loads")
	} else {
		_, err = s.db.Exec("DELETE FROM script_loads WHERE name = ?", name)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot clear script loads: %w", err)
	}
	return nil
}

// ScriptStats contains aggregated journal statistics for a script.
type ScriptStats struct {
	Name       string
	Loads      int
	Failures   int
	LastHash   string
	LastLoaded time.Time
}

// GetScriptStats retrieves aggregated statistics for every journaled script.
func (s *Store) GetScriptStats() (map[string]*ScriptStats, error) {
	rows, err := s.db.Query(
		`SELECT name,
		        COUNT(*),
		        SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
		        MAX(created_at)
		 FROM script_loads
		 GROUP BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get script stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScriptStats)
	for rows.Next() {
		var st ScriptStats
		var lastLoaded any
		if err := rows.Scan(&st.Name, &st.Loads, &st.Failures, &lastLoaded); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastLoaded = parseTime(lastLoaded)
		stats[st.Name] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for name, st := range stats {
		err := s.db.QueryRow(
			`SELECT hash FROM script_loads
			 WHERE name = ? AND outcome != 'failed'
			 ORDER BY id DESC LIMIT 1`,
			name,
		).Scan(&st.LastHash)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("storage: cannot get last hash: %w", err)
		}
	}

	return stats, nil
}

// SaveSession records the summary of a finished host run.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(session Session) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO sessions
		 (game_id, mode, ticks, entities, reloads, failures, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.GameID,
		session.Mode,
		session.Ticks,
		session.Entities,
		session.Reloads,
		session.Failures,
		session.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, mode, ticks, entities, reloads, failures, duration_secs, created_at
		 FROM sessions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var results []Session
	for rows.Next() {
		var r Session
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.GameID,
			&r.Mode,
			&r.Ticks,
			&r.Entities,
			&r.Reloads,
			&r.Failures,
			&r.Duration,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}
