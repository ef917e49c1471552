// Package store persists analysis runs in a SQLite database so results can
// be compared across runs.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for runs, files and spaces.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled and
// applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              INTEGER PRIMARY KEY,
  started_at      TIMESTAMP NOT NULL,
  finished_at     TIMESTAMP NOT NULL,
  root            TEXT NOT NULL,
  files           INTEGER NOT NULL,
  failed          INTEGER NOT NULL,
  summary         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path            TEXT NOT NULL,
  language        TEXT NOT NULL,
  hash            TEXT,
  cyclomatic      INTEGER NOT NULL,
  maintainability REAL NOT NULL,
  sloc            INTEGER NOT NULL,
  UNIQUE (run_id, path)
);

CREATE TABLE IF NOT EXISTS spaces (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  parent_id       INTEGER REFERENCES spaces(id),
  depth           INTEGER NOT NULL,
  kind            TEXT NOT NULL,
  name            TEXT,
  start_line      INTEGER NOT NULL,
  end_line        INTEGER NOT NULL,
  cyclomatic      INTEGER NOT NULL,
  own_cyclomatic  INTEGER NOT NULL,
  max_nesting     INTEGER NOT NULL,
  nargs           INTEGER NOT NULL,
  nexits          INTEGER NOT NULL,
  volume          REAL NOT NULL,
  maintainability REAL NOT NULL,
  sloc            INTEGER NOT NULL,
  ploc            INTEGER NOT NULL,
  lloc            INTEGER NOT NULL,
  cloc            INTEGER NOT NULL,
  blank           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
CREATE INDEX IF NOT EXISTS idx_spaces_file ON spaces(file_id);
`
