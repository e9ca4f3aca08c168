package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = "id, root, started_at, files, functions, excluded, distinct_fps"

func scanRun(scanner interface{ Scan(...any) error }) (*Run, error) {
	r := &Run{}
	err := scanner.Scan(&r.ID, &r.Root, &r.StartedAt, &r.Files, &r.Functions, &r.Excluded, &r.Distinct)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Runs returns every saved run, oldest first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query("SELECT " + runColumns + " FROM runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun returns the most recent run, or nil when none was saved.
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY id DESC LIMIT 1")
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// Files returns the files a run visited, in visit order.
func (s *Store) Files(runID int64) ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, path, hash, functions FROM files WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()
	var out []*File
	for rows.Next() {
		f := &File{}
		var hash sql.NullString
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &hash, &f.Functions); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Hash = hash.String
		out = append(out, f)
	}
	return out, rows.Err()
}

// Groups returns a run's duplicate groups with their occurrences, both in
// report order.
func (s *Store) Groups(runID int64) ([]*Group, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, ordinal, fingerprint, source FROM groups_ WHERE run_id = ? ORDER BY ordinal", runID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	var groups []*Group
	byID := make(map[int64]*Group)
	for rows.Next() {
		g := &Group{}
		var src sql.NullString
		if err := rows.Scan(&g.ID, &g.RunID, &g.Ordinal, &g.Fingerprint, &src); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Source = src.String
		groups = append(groups, g)
		byID[g.ID] = g
	}
	rows.Close()
	if len(groups) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	occRows, err := s.db.Query(
		`SELECT id, group_id, ordinal, module, class, function, line FROM occurrences
		 WHERE group_id IN (`+placeholderList(len(ids))+`) ORDER BY group_id, ordinal`,
		int64sToArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer occRows.Close()
	for occRows.Next() {
		o := &Occurrence{}
		var class sql.NullString
		if err := occRows.Scan(&o.ID, &o.GroupID, &o.Ordinal, &o.Module, &class, &o.Function, &o.Line); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		o.Class = class.String
		if g := byID[o.GroupID]; g != nil {
			g.Occurrences = append(g.Occurrences, o)
		}
	}
	return groups, occRows.Err()
}

// Exclusions returns the functions a run kept out of comparison.
func (s *Store) Exclusions(runID int64) ([]*Exclusion, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, module, class, function, line, reason FROM exclusions
		 WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	defer rows.Close()
	var out []*Exclusion
	for rows.Next() {
		e := &Exclusion{}
		var class, reason sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Module, &class, &e.Function, &e.Line, &reason); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		e.Class, e.Reason = class.String, reason.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// RunsWithFingerprint returns the IDs of runs that reported a group with
// the given fingerprint, oldest first.
func (s *Store) RunsWithFingerprint(fingerprint string) ([]int64, error) {
	rows, err := s.db.Query(
		"SELECT DISTINCT run_id FROM groups_ WHERE fingerprint = ? ORDER BY run_id", fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query fingerprint runs: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
