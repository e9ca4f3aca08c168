package pydups

import (
	"fmt"

	"github.com/jward/pydups/internal/store"
)

// OpenStore opens (creating if needed) the SQLite database at path and
// migrates its schema.
func OpenStore(path string) (*Store, error) {
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("pydups: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("pydups: migrate: %w", err)
	}
	return s, nil
}

// SaveReport writes r to s as one run and returns the run ID.
func SaveReport(s *Store, r *Report) (int64, error) {
	run := &store.Run{
		Root:      r.Root,
		StartedAt: r.StartedAt,
		Files:     len(r.Files),
		Functions: r.Functions,
		Excluded:  len(r.Excluded),
		Distinct:  r.Distinct,
	}

	files := make([]*store.File, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, &store.File{Path: f.Path, Hash: f.Hash, Functions: f.Functions})
	}

	groups := make([]*store.Group, 0, len(r.Groups))
	for _, g := range r.Groups {
		sg := &store.Group{Fingerprint: g.Fingerprint.String(), Source: Source(g)}
		for _, occ := range g.Occurrences {
			sg.Occurrences = append(sg.Occurrences, &store.Occurrence{
				Module:   occ.Module,
				Class:    occ.Class,
				Function: occ.Function,
				Line:     occ.Line,
			})
		}
		groups = append(groups, sg)
	}

	exclusions := make([]*store.Exclusion, 0, len(r.Excluded))
	for _, ex := range r.Excluded {
		exclusions = append(exclusions, &store.Exclusion{
			Module:   ex.Module,
			Class:    ex.Class,
			Function: ex.Function,
			Line:     ex.Line,
			Reason:   ex.Reason,
		})
	}

	id, err := s.SaveRun(run, files, groups, exclusions)
	if err != nil {
		return 0, fmt.Errorf("pydups: save report: %w", err)
	}
	return id, nil
}

// NewGroups counts the groups of run runID whose fingerprint was not
// recorded by any other run in s.
func NewGroups(s *Store, r *Report, runID int64) (int, error) {
	n := 0
	for _, g := range r.Groups {
		runs, err := s.RunsWithFingerprint(g.Fingerprint.String())
		if err != nil {
			return 0, fmt.Errorf("pydups: prior runs: %w", err)
		}
		seen := false
		for _, id := range runs {
			if id != runID {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n, nil
}

// PruneRuns deletes the oldest runs so that at most keep remain. A keep of
// zero or less keeps everything. It returns the number of runs deleted.
func PruneRuns(s *Store, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	runs, err := s.Runs()
	if err != nil {
		return 0, fmt.Errorf("pydups: list runs: %w", err)
	}
	deleted := 0
	for len(runs)-deleted > keep {
		if err := s.DeleteRun(runs[deleted].ID); err != nil {
			return deleted, fmt.Errorf("pydups: delete run %d: %w", runs[deleted].ID, err)
		}
		deleted++
	}
	return deleted, nil
}
