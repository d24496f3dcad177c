package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteFileName     = "tasks.sqlite"
	legacyJSONFileName = "tasks.json"
)

// Store is the SQLite-backed task repository.
type Store struct {
	Dir string
	db  *sql.DB
}

func (s *Store) SQLitePath() string { return filepath.Join(s.Dir, sqliteFileName) }

// Open opens (creating if needed) the task database under dir. When the
// database is empty and a legacy tasks.json exists next to it, that file is
// imported once.
func Open(ctx context.Context, dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: missing dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{Dir: dir}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.SQLitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db

	empty, err := s.empty(ctx)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if empty {
		legacy := filepath.Join(dir, legacyJSONFileName)
		if _, err := os.Stat(legacy); err == nil {
			if _, err := s.ImportJSON(ctx, legacy); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			rank TEXT NOT NULL,
			title TEXT NOT NULL,
			completed INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id, rank);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) empty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
