package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SessionRow represents a room in the database.
type SessionRow struct {
	Code       string     `json:"code"`
	GameType   string     `json:"gameType"`
	Status     string     `json:"status"` // "waiting", "playing", "finished"
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

const sessionColumns = "code, game_type, status, created_at, finished_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (SessionRow, error) {
	var (
		sr       SessionRow
		finished sql.NullTime
	)
	if err := sc.Scan(&sr.Code, &sr.GameType, &sr.Status, &sr.CreatedAt, &finished); err != nil {
		return SessionRow{}, err
	}
	if finished.Valid {
		sr.FinishedAt = &finished.Time
	}
	return sr, nil
}

// ResultRow is one player's final standing in an archived match.
type ResultRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Bot      bool   `json:"bot"`
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
}

// Store is the SQLite match-history archive. Live games are never loaded
// back from it.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: sqlite has a single writer, and every connection to
	// ":memory:" would otherwise get its own empty database.
	db.SetMaxOpenConns(1)
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			code       TEXT PRIMARY KEY,
			game_type  TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'waiting',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);
		CREATE TABLE IF NOT EXISTS match_results (
			session_code TEXT NOT NULL REFERENCES sessions(code),
			player_id    TEXT NOT NULL,
			name         TEXT NOT NULL,
			bot          INTEGER NOT NULL DEFAULT 0,
			rank         INTEGER NOT NULL,
			score        INTEGER NOT NULL,
			PRIMARY KEY (session_code, player_id)
		);
		CREATE TABLE IF NOT EXISTS action_log (
			session_code TEXT NOT NULL REFERENCES sessions(code),
			seq          INTEGER NOT NULL,
			line         TEXT NOT NULL,
			PRIMARY KEY (session_code, seq)
		);
	`)
	return err
}

// CreateSession inserts a new session.
func (s *Store) CreateSession(code, gameType string) error {
	_, err := s.db.Exec(
		"INSERT INTO sessions (code, game_type, status) VALUES (?, ?, 'waiting')",
		code, gameType,
	)
	return err
}

// GetSession retrieves a session by code.
func (s *Store) GetSession(code string) (*SessionRow, error) {
	sr, err := scanSession(s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE code = ?", code))
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// UpdateSessionStatus changes a session's status.
func (s *Store) UpdateSessionStatus(code, status string) error {
	_, err := s.db.Exec("UPDATE sessions SET status = ? WHERE code = ?", status, code)
	return err
}

// ListSessions returns all sessions with the given status (or all if status is empty).
func (s *Store) ListSessions(status string) ([]SessionRow, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query("SELECT " + sessionColumns + " FROM sessions ORDER BY created_at DESC, code")
	} else {
		rows, err = s.db.Query("SELECT "+sessionColumns+" FROM sessions WHERE status = ? ORDER BY created_at DESC, code", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []SessionRow
	for rows.Next() {
		sr, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sr)
	}
	return result, rows.Err()
}

// ArchiveMatch records the final standings and action log of a finished
// match and marks the session finished at finishedAt. Archiving the same
// session again replaces the earlier record.
func (s *Store) ArchiveMatch(code string, finishedAt time.Time, results []ResultRow, log []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM match_results WHERE session_code = ?", code); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM action_log WHERE session_code = ?", code); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := tx.Exec(
			"INSERT INTO match_results (session_code, player_id, name, bot, rank, score) VALUES (?, ?, ?, ?, ?, ?)",
			code, r.PlayerID, r.Name, r.Bot, r.Rank, r.Score,
		); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}
	for i, line := range log {
		if _, err := tx.Exec(
			"INSERT INTO action_log (session_code, seq, line) VALUES (?, ?, ?)",
			code, i, line,
		); err != nil {
			return fmt.Errorf("insert log line: %w", err)
		}
	}
	res, err := tx.Exec("UPDATE sessions SET status = 'finished', finished_at = ? WHERE code = ?", finishedAt.UTC(), code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("archive %s: %w", code, sql.ErrNoRows)
	}
	return tx.Commit()
}

// GetResults returns the archived standings of a session, best rank first.
func (s *Store) GetResults(code string) ([]ResultRow, error) {
	rows, err := s.db.Query(
		"SELECT player_id, name, bot, rank, score FROM match_results WHERE session_code = ? ORDER BY rank, player_id",
		code,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Bot, &r.Rank, &r.Score); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetActionLog returns the archived action log of a session in order.
func (s *Store) GetActionLog(code string) ([]string, error) {
	rows, err := s.db.Query("SELECT line FROM action_log WHERE session_code = ? ORDER BY seq", code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// DeleteSession removes a session and everything archived for it.
func (s *Store) DeleteSession(code string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, q := range []string{
		"DELETE FROM match_results WHERE session_code = ?",
		"DELETE FROM action_log WHERE session_code = ?",
		"DELETE FROM sessions WHERE code = ?",
	} {
		if _, err := tx.Exec(q, code); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
