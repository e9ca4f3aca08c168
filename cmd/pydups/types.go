package main

import "github.com/jward/pydups"

// CLIReport is the json and yaml shape of a finished scan.
type CLIReport struct {
	Root       string         `json:"root" yaml:"root"`
	Files      int            `json:"files" yaml:"files"`
	Functions  int            `json:"functions" yaml:"functions"`
	Distinct   int            `json:"distinct" yaml:"distinct"`
	Duplicates int            `json:"duplicates" yaml:"duplicates"`
	Groups     []CLIGroup     `json:"groups" yaml:"groups"`
	Excluded   []CLIExclusion `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// CLIGroup is one set of structurally identical functions.
type CLIGroup struct {
	Fingerprint string        `json:"fingerprint" yaml:"fingerprint"`
	Source      string        `json:"source" yaml:"source"`
	Occurrences []CLILocation `json:"occurrences" yaml:"occurrences"`
}

// CLILocation is a function's position, with its display form.
type CLILocation struct {
	Location string `json:"location" yaml:"location"`
	Module   string `json:"module" yaml:"module"`
	Class    string `json:"class,omitempty" yaml:"class,omitempty"`
	Function string `json:"function" yaml:"function"`
	Line     int    `json:"line" yaml:"line"`
}

// CLIExclusion is a function kept out of comparison.
type CLIExclusion struct {
	CLILocation `yaml:",inline"`
	Reason      string `json:"reason" yaml:"reason"`
}

func toCLILocation(loc pydups.Location) CLILocation {
	return CLILocation{
		Location: loc.String(),
		Module:   loc.Module,
		Class:    loc.Class,
		Function: loc.Function,
		Line:     loc.Line,
	}
}

func toCLIReport(r *pydups.Report) CLIReport {
	out := CLIReport{
		Root:       r.Root,
		Files:      len(r.Files),
		Functions:  r.Functions,
		Distinct:   r.Distinct,
		Duplicates: r.Duplicates(),
		Groups:     make([]CLIGroup, 0, len(r.Groups)),
	}
	for _, g := range r.Groups {
		cg := CLIGroup{
			Fingerprint: g.Fingerprint.String(),
			Source:      pydups.Source(g),
		}
		for _, occ := range g.Occurrences {
			cg.Occurrences = append(cg.Occurrences, toCLILocation(occ.Location))
		}
		out.Groups = append(out.Groups, cg)
	}
	for _, ex := range r.Excluded {
		out.Excluded = append(out.Excluded, CLIExclusion{
			CLILocation: toCLILocation(ex.Location),
			Reason:      ex.Reason,
		})
	}
	return out
}
