package dupes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pydups/internal/syntax"
)

func parse(t *testing.T, path, src string) *syntax.Module {
	t.Helper()
	mod, err := syntax.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return mod
}

// only parses src and returns its single top-level function.
func only(t *testing.T, src string) *syntax.FuncDef {
	t.Helper()
	var out []*syntax.FuncDef
	for fn := range Extract(parse(t, "m.py", src), nil) {
		out = append(out, fn)
	}
	require.NotEmpty(t, out)
	return out[0]
}

func locations(mod *syntax.Module, prune PruneFunc) []string {
	var out []string
	for _, loc := range Extract(mod, prune) {
		out = append(out, loc.String())
	}
	return out
}

func TestLocation_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "pkg/a.py::run", Location{Module: "pkg/a.py", Function: "run"}.String())
	assert.Equal(t, "pkg/a.py::A.B.run", Location{Module: "pkg/a.py", Class: "A.B", Function: "run"}.String())
}

func TestExtract_DepthFirstSourceOrder(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `def first(a):
    def inner(b):
        return b
    return inner(a)

class C:
    def method(self):
        return 1

    @staticmethod
    def helper(x):
        return x

def last():
    return 2
`)
	assert.Equal(t, []string{
		"m.py::first",
		"m.py::inner",
		"m.py::C.method",
		"m.py::C.helper",
		"m.py::last",
	}, locations(mod, nil))
}

func TestExtract_NestedClassesUseAStack(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `class A:
    class B:
        def m(self):
            return 1

    def n(self):
        return 2

def free():
    return 3
`)
	assert.Equal(t, []string{"m.py::A.B.m", "m.py::A.n", "m.py::free"}, locations(mod, nil))
}

func TestExtract_FunctionsInsideCompoundStatements(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `if True:
    def a():
        return 1
else:
    def b():
        return 2

try:
    import fast
except ImportError:
    def c():
        return 3
`)
	assert.Equal(t, []string{"m.py::a", "m.py::b", "m.py::c"}, locations(mod, nil))
}

func TestExtract_Lines(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `import os


class C:
    @property
    def name(self):
        return os.name
`)
	var lines []int
	for _, loc := range Extract(mod, nil) {
		lines = append(lines, loc.Line)
	}
	assert.Equal(t, []int{5}, lines)
}

func TestExtract_PruneSkipsSubtree(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `def outer():
    def inner():
        return 1
    return inner

def other():
    return 2
`)
	prune := func(fn *syntax.FuncDef, _ Location) bool { return fn.Name == "outer" }
	assert.Equal(t, []string{"m.py::other"}, locations(mod, prune))
}

func TestExtract_PruneSeesLocation(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `class C:
    def m(self):
        return 1

def m():
    return 2
`)
	prune := func(_ *syntax.FuncDef, loc Location) bool { return loc.Class == "C" }
	assert.Equal(t, []string{"m.py::m"}, locations(mod, prune))
}

func TestExtract_EarlyStop(t *testing.T) {
	t.Parallel()
	mod := parse(t, "m.py", `def a():
    def b():
        return 1
    return b

def c():
    return 2
`)
	var seen []string
	for fn := range Extract(mod, nil) {
		seen = append(seen, fn.Name)
		if fn.Name == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestExtract_EmptyModule(t *testing.T) {
	t.Parallel()
	assert.Empty(t, locations(parse(t, "empty.py", ""), nil))
}
