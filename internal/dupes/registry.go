package dupes

import "github.com/jward/pydups/internal/syntax"

// Occurrence is one function that produced a fingerprint.
type Occurrence struct {
	Location `yaml:",inline"`
	Func *syntax.FuncDef `json:"-" yaml:"-"`
}

// Group is every occurrence sharing one fingerprint, in first-seen order.
type Group struct {
	Fingerprint Fingerprint
	Occurrences []Occurrence
}

// Representative returns the first occurrence, the one a report prints.
func (g Group) Representative() Occurrence {
	return g.Occurrences[0]
}

// Registry accumulates fingerprints in registration order. It is built for
// one run and is not safe for concurrent use.
type Registry struct {
	index  map[Fingerprint]int
	groups []Group
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[Fingerprint]int)}
}

// Register appends occ to fp's occurrence list, creating it on first use.
func (r *Registry) Register(fp Fingerprint, occ Occurrence) {
	i, ok := r.index[fp]
	if !ok {
		i = len(r.groups)
		r.index[fp] = i
		r.groups = append(r.groups, Group{Fingerprint: fp})
	}
	r.groups[i].Occurrences = append(r.groups[i].Occurrences, occ)
}

// Duplicates returns every group with at least two occurrences, ordered by
// when its fingerprint was first registered.
func (r *Registry) Duplicates() []Group {
	var out []Group
	for _, g := range r.groups {
		if len(g.Occurrences) < 2 {
			continue
		}
		out = append(out, Group{
			Fingerprint: g.Fingerprint,
			Occurrences: g.Occurrences[:len(g.Occurrences):len(g.Occurrences)],
		})
	}
	return out
}

// Len returns the number of distinct fingerprints registered.
func (r *Registry) Len() int {
	return len(r.groups)
}

// Count returns the number of occurrences registered under fp.
func (r *Registry) Count(fp Fingerprint) int {
	i, ok := r.index[fp]
	if !ok {
		return 0
	}
	return len(r.groups[i].Occurrences)
}
