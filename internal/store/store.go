package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Timestamps are stored as integer Unix milliseconds throughout; day
// bucketing for streaks happens in UTC.
const schema = `
CREATE TABLE IF NOT EXISTS mastery_states (
    user_id             TEXT NOT NULL,
    topic_id            TEXT NOT NULL,
    mastery_score       REAL NOT NULL,
    learning_rate       REAL NOT NULL,
    forgetting_rate     REAL NOT NULL,
    confidence_interval REAL NOT NULL,
    attempts_count      INTEGER NOT NULL DEFAULT 0,
    correct_count       INTEGER NOT NULL DEFAULT 0,
    time_spent_seconds  REAL NOT NULL DEFAULT 0,
    last_attempt_ms     INTEGER,
    mastery_achieved_ms INTEGER,
    updated_ms          INTEGER NOT NULL,
    PRIMARY KEY (user_id, topic_id)
);

CREATE TABLE IF NOT EXISTS bandit_models (
    user_id            TEXT PRIMARY KEY,
    arms               TEXT NOT NULL,
    total_interactions INTEGER NOT NULL DEFAULT 0,
    context_features   TEXT NOT NULL DEFAULT '{}',
    last_updated_ms    INTEGER,
    updated_ms         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL,
    topic_id           TEXT NOT NULL,
    correct            INTEGER NOT NULL,
    difficulty         REAL NOT NULL,
    time_taken_seconds REAL NOT NULL,
    at_ms              INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_user_topic_at ON attempts(user_id, topic_id, at_ms DESC);
CREATE INDEX IF NOT EXISTS idx_attempts_user_at ON attempts(user_id, at_ms DESC);
`

// Store is the SQLite-backed Backend, the default for single-node
// deployments and the CLI.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn, applies the recommended
// pragmas, and creates the schema if needed.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a second connection would only block.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Mastery returns the mastery repository backed by this store.
func (s *Store) Mastery() MasteryRepo {
	return &masteryRepo{db: s.db}
}

// Bandits returns the bandit repository backed by this store.
func (s *Store) Bandits() BanditRepo {
	return &banditRepo{db: s.db}
}

// Attempts returns the attempt repository backed by this store.
func (s *Store) Attempts() AttemptRepo {
	return &attemptRepo{db: s.db}
}

// Reset deletes all state for one user.
func (s *Store) Reset(ctx context.Context, userID string) error {
	for _, q := range []string{
		"DELETE FROM mastery_states WHERE user_id = ?",
		"DELETE FROM bandit_models WHERE user_id = ?",
		"DELETE FROM attempts WHERE user_id = ?",
	} {
		if _, err := s.db.ExecContext(ctx, q, userID); err != nil {
			return fmt.Errorf("reset user %s: %w", userID, err)
		}
	}
	return nil
}

// ResetAll deletes all state for all users.
func (s *Store) ResetAll(ctx context.Context) error {
	for _, q := range []string{
		"DELETE FROM mastery_states",
		"DELETE FROM bandit_models",
		"DELETE FROM attempts",
	} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("reset all: %w", err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for single-writer durability.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PACER_DB environment variable
// 2. $XDG_DATA_HOME/pacer/pacer.db
// 3. ~/.local/share/pacer/pacer.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PACER_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "pacer", "pacer.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
