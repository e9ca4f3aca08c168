package store

import (
	"database/sql"
	"fmt"
)

// SaveRun inserts a run with its files, groups and exclusions within a
// single transaction and returns the new run ID. IDs are written back into
// every record.
//
// Insert order respects FK dependencies:
//  1. Run
//  2. Files and exclusions (depend on run_id)
//  3. Groups (depend on run_id)
//  4. Occurrences (depend on group_id)
func (s *Store) SaveRun(run *Run, files []*File, groups []*Group, exclusions []*Exclusion) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	runID, err := insertRunTx(tx, run)
	if err != nil {
		return 0, fmt.Errorf("save run: run: %w", err)
	}
	run.ID = runID

	for _, f := range files {
		f.RunID = runID
		if f.ID, err = insertFileTx(tx, f); err != nil {
			return 0, fmt.Errorf("save run: file %q: %w", f.Path, err)
		}
	}

	for _, ex := range exclusions {
		ex.RunID = runID
		if ex.ID, err = insertExclusionTx(tx, ex); err != nil {
			return 0, fmt.Errorf("save run: exclusion %q: %w", ex.Function, err)
		}
	}

	for i, g := range groups {
		g.RunID = runID
		g.Ordinal = i
		if g.ID, err = insertGroupTx(tx, g); err != nil {
			return 0, fmt.Errorf("save run: group %s: %w", g.Fingerprint, err)
		}
		for j, occ := range g.Occurrences {
			occ.GroupID = g.ID
			occ.Ordinal = j
			if occ.ID, err = insertOccurrenceTx(tx, occ); err != nil {
				return 0, fmt.Errorf("save run: occurrence %q: %w", occ.Function, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save run: commit: %w", err)
	}
	return runID, nil
}

func insertRunTx(tx *sql.Tx, r *Run) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO runs (root, started_at, files, functions, excluded, distinct_fps)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Root, r.StartedAt, r.Files, r.Functions, r.Excluded, r.Distinct,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertFileTx(tx *sql.Tx, f *File) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO files (run_id, path, hash, functions) VALUES (?, ?, ?, ?)",
		f.RunID, f.Path, nullString(f.Hash), f.Functions,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertGroupTx(tx *sql.Tx, g *Group) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO groups_ (run_id, ordinal, fingerprint, source) VALUES (?, ?, ?, ?)",
		g.RunID, g.Ordinal, g.Fingerprint, nullString(g.Source),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertOccurrenceTx(tx *sql.Tx, o *Occurrence) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO occurrences (group_id, ordinal, module, class, function, line)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.GroupID, o.Ordinal, o.Module, nullString(o.Class), o.Function, o.Line,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertExclusionTx(tx *sql.Tx, e *Exclusion) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO exclusions (run_id, module, class, function, line, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Module, nullString(e.Class), e.Function, e.Line, nullString(e.Reason),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
