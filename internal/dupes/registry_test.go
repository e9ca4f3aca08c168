package dupes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pydups/internal/syntax"
)

func fp(b byte) Fingerprint {
	var f Fingerprint
	f[0] = b
	return f
}

func occ(module, fn string) Occurrence {
	return Occurrence{Location: Location{Module: module, Function: fn, Line: 1}}
}

func TestRegistry_DuplicatesInFirstSeenOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(fp(2), occ("a.py", "two"))
	r.Register(fp(1), occ("a.py", "one"))
	r.Register(fp(3), occ("a.py", "lonely"))
	r.Register(fp(1), occ("b.py", "one"))
	r.Register(fp(2), occ("b.py", "two"))
	r.Register(fp(2), occ("c.py", "two"))

	groups := r.Duplicates()
	require.Len(t, groups, 2)

	assert.Equal(t, fp(2), groups[0].Fingerprint)
	assert.Equal(t, []Occurrence{occ("a.py", "two"), occ("b.py", "two"), occ("c.py", "two")}, groups[0].Occurrences)
	assert.Equal(t, occ("a.py", "two"), groups[0].Representative())

	assert.Equal(t, fp(1), groups[1].Fingerprint)
	assert.Equal(t, []Occurrence{occ("a.py", "one"), occ("b.py", "one")}, groups[1].Occurrences)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Count(fp(2)))
	assert.Equal(t, 1, r.Count(fp(3)))
	assert.Equal(t, 0, r.Count(fp(9)))
}

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	assert.Empty(t, r.Duplicates())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DuplicatesDoNotAliasInternalState(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(fp(1), occ("a.py", "f"))
	r.Register(fp(1), occ("b.py", "f"))

	groups := r.Duplicates()
	groups[0].Occurrences = append(groups[0].Occurrences, occ("x.py", "f"))
	r.Register(fp(1), occ("c.py", "f"))

	again := r.Duplicates()
	require.Len(t, again[0].Occurrences, 3)
	assert.Equal(t, "c.py", again[0].Occurrences[2].Module)
}

// register runs the whole pipeline over the given files in order.
func register(t *testing.T, files map[string]string, order []string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, path := range order {
		mod := parse(t, path, files[path])
		for fn, loc := range Extract(mod, skipTrivial) {
			r.Register(Canonicalize(fn), Occurrence{Location: loc, Func: fn})
		}
	}
	return r
}

func skipTrivial(fn *syntax.FuncDef, _ Location) bool { return IsTrivial(fn) }

func groupLocations(groups []Group) [][]string {
	var out [][]string
	for _, g := range groups {
		var locs []string
		for _, o := range g.Occurrences {
			locs = append(locs, o.String())
		}
		out = append(out, locs)
	}
	return out
}

func TestPipeline_Scenarios(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"file1.py": "def add(a, b):\n    return a + b\n",
		"file2.py": "def sum(x, y):\n    return x + y\n",
		"file3.py": "def add(a, b):\n    return a - b\n",
	}
	r := register(t, files, []string{"file1.py", "file2.py", "file3.py"})
	assert.Equal(t, [][]string{{"file1.py::add", "file2.py::sum"}}, groupLocations(r.Duplicates()))
}

func TestPipeline_NoOpCopiesNeverReported(t *testing.T) {
	t.Parallel()
	files := map[string]string{}
	var order []string
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py", "e.py"} {
		files[name] = "def foo(self):\n    pass\n"
		order = append(order, name)
	}
	r := register(t, files, order)
	assert.Empty(t, r.Duplicates())
	assert.Equal(t, 0, r.Len())
}

func TestPipeline_TrivialInitializersNeverReported(t *testing.T) {
	t.Parallel()
	src := "class Point:\n    def __init__(self, a):\n        self.a = a\n"
	files := map[string]string{"p.py": src, "q.py": src}
	r := register(t, files, []string{"p.py", "q.py"})
	assert.Empty(t, r.Duplicates())
}

func TestPipeline_NestedDuplicates(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"m.py": `class A:
    class B:
        def area(self, w, h):
            return w * h * self.scale

    def size(self, x, y):
        return x * y * self.scale
`,
	}
	r := register(t, files, []string{"m.py"})
	assert.Equal(t, [][]string{{"m.py::A.B.area", "m.py::A.size"}}, groupLocations(r.Duplicates()))
}

func TestPipeline_Idempotent(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"x.py": "def f(a):\n    return g(a)\n\ndef h(b):\n    return g(b)\n",
		"y.py": "def k(c):\n    return g(c)\n\ndef m(a):\n    return a * 2\n\ndef n(a):\n    return a * 2\n",
	}
	order := []string{"x.py", "y.py"}
	first := register(t, files, order).Duplicates()
	second := register(t, files, order).Duplicates()

	want := [][]string{{"x.py::f", "x.py::h", "y.py::k"}, {"y.py::m", "y.py::n"}}
	assert.Equal(t, want, groupLocations(first))
	assert.Equal(t, groupLocations(first), groupLocations(second))
	for i := range first {
		assert.Equal(t, first[i].Fingerprint, second[i].Fingerprint)
	}
}
