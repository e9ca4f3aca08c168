package pydups

import (
	"time"

	"github.com/jward/pydups/internal/syntax"
)

// Report is the outcome of one scan.
type Report struct {
	Root      string
	StartedAt time.Time
	Files     []FileStat
	// Functions counts fingerprinted functions; excluded ones are not
	// included.
	Functions int
	Excluded  []Exclusion
	// Distinct is the number of distinct fingerprints seen.
	Distinct int
	Groups   []Group
}

// FileStat records one scanned file.
type FileStat struct {
	Path      string `json:"path" yaml:"path"`
	Hash      string `json:"hash" yaml:"hash"`
	Functions int    `json:"functions" yaml:"functions"`
}

// Exclusion is a function kept out of comparison, with the trivial shape
// or rule that excluded it. Functions nested inside it are not listed.
type Exclusion struct {
	Location `yaml:",inline"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Source renders the representative occurrence of g.
func Source(g Group) string {
	return OccurrenceSource(g.Representative())
}

// OccurrenceSource renders one occurrence as it appears in its file,
// dedented to column zero.
func OccurrenceSource(o Occurrence) string {
	return syntax.Print(o.Func)
}

// Duplicates returns the total number of occurrences across all groups.
func (r *Report) Duplicates() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Occurrences)
	}
	return n
}
