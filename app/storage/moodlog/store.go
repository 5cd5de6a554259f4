// Package moodlog persists mood-tagged conversation turns in sqlite. Turns
// are written once and never mutated.
package moodlog

import (
	"calmbot/app/config"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	user_id   INTEGER NOT NULL,
	timestamp TEXT    NOT NULL,
	mood      TEXT    NOT NULL,
	message   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_user ON responses (user_id, timestamp);
`

type Turn struct {
	UserID    int64
	Timestamp string
	Mood      string
	Message   string
}

var _ do.Shutdownable = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.DB.Path)
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mood database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping mood database: %w", err)
	}

	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply mood schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append records one turn with a server-side timestamp.
func (s *Store) Append(userID int64, mood, message string) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (user_id, timestamp, mood, message) VALUES (?, datetime('now'), ?, ?)`,
		userID, mood, message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mood turn: %w", err)
	}

	return nil
}

// RecentByUser returns the user's latest turns, newest first.
func (s *Store) RecentByUser(userID int64, limit int) ([]Turn, error) {
	rows, err := s.db.Query(
		`SELECT user_id, timestamp, mood, message FROM responses WHERE user_id = ? ORDER BY timestamp DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err = rows.Scan(&t.UserID, &t.Timestamp, &t.Mood, &t.Message); err != nil {
			return nil, fmt.Errorf("failed to scan mood turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood turns: %w", err)
	}

	return turns, nil
}

func (s *Store) Shutdown() error {
	return s.db.Close()
}
