// Package store persists duplicate reports to SQLite so runs can be
// compared over time.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for saved reports.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL,
  started_at      TIMESTAMP NOT NULL,
  files           INTEGER NOT NULL DEFAULT 0,
  functions       INTEGER NOT NULL DEFAULT 0,
  excluded        INTEGER NOT NULL DEFAULT 0,
  distinct_fps    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id),
  path            TEXT NOT NULL,
  hash            TEXT,
  functions       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS groups_ (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id),
  ordinal         INTEGER NOT NULL,
  fingerprint     TEXT NOT NULL,
  source          TEXT
);

CREATE TABLE IF NOT EXISTS occurrences (
  id              INTEGER PRIMARY KEY,
  group_id        INTEGER NOT NULL REFERENCES groups_(id),
  ordinal         INTEGER NOT NULL,
  module          TEXT NOT NULL,
  class           TEXT,
  function        TEXT NOT NULL,
  line            INTEGER
);

CREATE TABLE IF NOT EXISTS exclusions (
  id              INTEGER PRIMARY KEY,
  run_id          INTEGER NOT NULL REFERENCES runs(id),
  module          TEXT NOT NULL,
  class           TEXT,
  function        TEXT NOT NULL,
  line            INTEGER,
  reason          TEXT
);

CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
CREATE INDEX IF NOT EXISTS idx_groups_run ON groups_(run_id);
CREATE INDEX IF NOT EXISTS idx_groups_fingerprint ON groups_(fingerprint);
CREATE INDEX IF NOT EXISTS idx_occurrences_group ON occurrences(group_id);
CREATE INDEX IF NOT EXISTS idx_exclusions_run ON exclusions(run_id);
`

// DeleteRun transactionally removes a run and everything recorded for it.
// Deletes in reverse-dependency order to respect FK constraints.
func (s *Store) DeleteRun(runID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT id FROM groups_ WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("query groups: %w", err)
	}
	var groupIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan group id: %w", err)
		}
		groupIDs = append(groupIDs, id)
	}
	rows.Close()

	if len(groupIDs) > 0 {
		q := "DELETE FROM occurrences WHERE group_id IN (" + placeholderList(len(groupIDs)) + ")"
		if _, err := tx.Exec(q, int64sToArgs(groupIDs)...); err != nil {
			return fmt.Errorf("delete occurrences: %w", err)
		}
	}

	for _, q := range []string{
		"DELETE FROM groups_ WHERE run_id = ?",
		"DELETE FROM exclusions WHERE run_id = ?",
		"DELETE FROM files WHERE run_id = ?",
		"DELETE FROM runs WHERE id = ?",
	} {
		if _, err := tx.Exec(q, runID); err != nil {
			return fmt.Errorf("delete run data: %w", err)
		}
	}

	return tx.Commit()
}
