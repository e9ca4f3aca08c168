// Package dupes finds structurally identical Python functions. It extracts
// function definitions from a syntax.Module, drops boilerplate bodies,
// reduces each remaining function to a rename-invariant Fingerprint and
// groups functions that share one.
package dupes

import (
	"iter"
	"strings"

	"github.com/jward/pydups/internal/syntax"
)

// Location identifies where a function was found. It is never used for
// matching.
type Location struct {
	Module   string `json:"module" yaml:"module"`
	Class    string `json:"class,omitempty" yaml:"class,omitempty"`
	Function string `json:"function" yaml:"function"`
	Line     int    `json:"line" yaml:"line"`
}

// String formats the location as module::[Class.]function.
func (l Location) String() string {
	if l.Class == "" {
		return l.Module + "::" + l.Function
	}
	return l.Module + "::" + l.Class + "." + l.Function
}

// PruneFunc decides whether a function is skipped together with everything
// nested inside it.
type PruneFunc func(fn *syntax.FuncDef, loc Location) bool

// Extract yields every function definition in mod, depth-first in source
// order, at any nesting depth. Functions for which prune returns true are
// neither yielded nor descended into. A nil prune keeps everything.
func Extract(mod *syntax.Module, prune PruneFunc) iter.Seq2[*syntax.FuncDef, Location] {
	return func(yield func(*syntax.FuncDef, Location) bool) {
		w := &walker{module: mod.Path, prune: prune, yield: yield}
		w.walkAll(mod.Body)
	}
}

// walker carries the traversal context. classes is a stack: entering a class
// body pushes its name, leaving pops it.
type walker struct {
	module  string
	classes []string
	prune   PruneFunc
	yield   func(*syntax.FuncDef, Location) bool
	stopped bool
}

func (w *walker) walkAll(nodes []syntax.Node) {
	for _, n := range nodes {
		if w.stopped {
			return
		}
		w.walk(n)
	}
}

func (w *walker) walk(n syntax.Node) {
	switch n := n.(type) {
	case *syntax.FuncDef:
		loc := Location{
			Module:   w.module,
			Class:    strings.Join(w.classes, "."),
			Function: n.Name,
			Line:     n.Line(),
		}
		if w.prune != nil && w.prune(n, loc) {
			return
		}
		if !w.yield(n, loc) {
			w.stopped = true
			return
		}
		w.walkAll(n.Body)
	case *syntax.ClassDef:
		w.classes = append(w.classes, n.Name)
		w.walkAll(n.Body)
		w.classes = w.classes[:len(w.classes)-1]
	case *syntax.Generic:
		for _, f := range n.Fields {
			if w.stopped {
				return
			}
			w.walk(f.Node)
		}
	case *syntax.Module:
		w.walkAll(n.Body)
	case *syntax.Lambda, *syntax.Param, *syntax.Name, *syntax.Token:
		// no definitions below these
	default:
		panic("dupes: unexpected syntax node in extractor")
	}
}
