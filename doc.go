// Package pydups finds duplicate Python functions by comparing the
// structure of their syntax trees rather than their text.
//
// # Pipeline
//
// A scan walks a directory in lexical order and, for every .py file:
//
//  1. Parse: tree-sitter parses the file into a closed set of syntax nodes.
//     Any syntax error aborts the whole scan with a [ParseError].
//
//  2. Extract: every function definition is visited depth-first, methods
//     qualified by their enclosing classes (Outer.Inner.method).
//
//  3. Filter: boilerplate bodies (pass, "...", raise NotImplementedError,
//     constant returns, field-assigning __init__) and functions matched by
//     Risor exclusion scripts are dropped together with anything nested in
//     them.
//
//  4. Fingerprint: the function is serialized with its own name replaced by
//     "f" and its parameters by "x0", "x1", ... and hashed with blake3.
//
//  5. Group: functions sharing a fingerprint form a duplicate group, in the
//     order they were first seen.
//
// # Usage
//
//	e, err := pydups.New(pydups.WithLogger(logger))
//	if err != nil { ... }
//
//	report, err := e.Scan(ctx, "path/to/project")
//	for _, g := range report.Groups {
//		fmt.Print(pydups.Source(g))
//		for _, occ := range g.Occurrences {
//			fmt.Println(occ)
//		}
//	}
//
// # Exclusion scripts
//
// [WithExclusionScripts] loads Risor scripts that run once per function with
// a global fn map (name, class, module, line, params, body_kinds,
// decorators, ...). A non-empty string or other truthy result excludes the
// function. See the internal/runtime package for the full set of keys.
// Built-in rules ship in the scripts package and load through
// [WithScriptsFS].
//
// # Export
//
// [SaveReport] writes a finished report to SQLite via [OpenStore].
// [NewGroups] compares a saved run with earlier ones and [PruneRuns] caps
// the history. Saved runs are never read back by a scan.
package pydups
