package store

import "time"

// Run is one saved scan.
type Run struct {
	ID        int64
	Root      string
	StartedAt time.Time
	Files     int
	Functions int
	Excluded  int
	Distinct  int
}

// File is a source file visited by a run.
type File struct {
	ID        int64
	RunID     int64
	Path      string
	Hash      string
	Functions int
}

// Group is a saved duplicate group. Ordinal preserves report order.
type Group struct {
	ID          int64
	RunID       int64
	Ordinal     int
	Fingerprint string
	Source      string
	Occurrences []*Occurrence
}

type Occurrence struct {
	ID       int64
	GroupID  int64
	Ordinal  int
	Module   string
	Class    string
	Function string
	Line     int
}

// Exclusion records a function a rule or pattern kept out of comparison.
type Exclusion struct {
	ID       int64
	RunID    int64
	Module   string
	Class    string
	Function string
	Line     int
	Reason   string
}
