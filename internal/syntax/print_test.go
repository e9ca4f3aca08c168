package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint_TopLevel(t *testing.T) {
	t.Parallel()
	src := "def add(a, b):\n    return a + b\n"
	fn := funcs(mustParse(t, src).Body)[0]
	assert.Equal(t, src, Print(fn))
}

func TestPrint_MethodIsDedented(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `class C:
    @dec
    def m(self, x):
        # comment
        return x + 1
`)
	fns := funcs(mod.Body)
	require.Len(t, fns, 1)
	assert.Equal(t, "@dec\ndef m(self, x):\n    # comment\n    return x + 1\n", Print(fns[0]))
}

func TestPrint_CollapsesBlankRuns(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, "def f(a):\n    x = a\n\n\n\n    return x\n")
	fn := funcs(mod.Body)[0]
	assert.Equal(t, "def f(a):\n    x = a\n\n    return x\n", Print(fn))
}

func TestPrint_KeepsStringsVerbatim(t *testing.T) {
	t.Parallel()
	src := "def f(name):\n    return f\"hi {name}\\n\" + 'x'\n"
	fn := funcs(mustParse(t, src).Body)[0]
	assert.Equal(t, src, Print(fn))
}

func TestPrint_KeepsLambdaKeyword(t *testing.T) {
	t.Parallel()
	src := "def f(xs):\n    return sorted(xs, key=lambda x: x[0])\n"
	fn := funcs(mustParse(t, src).Body)[0]
	assert.Equal(t, src, Print(fn))
}

func TestPrint_NestedLambdas(t *testing.T) {
	t.Parallel()
	src := "def f(n):\n    g = lambda a: lambda b: a + b + n\n    return g(1)(2)\n"
	fn := funcs(mustParse(t, src).Body)[0]
	assert.Equal(t, src, Print(fn))
}

func TestPrintLeaves_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", PrintLeaves(nil))
}

func TestText_Decorators(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `@app.route("/x", methods=["GET"])
@retry(on=lambda e: e.code == 503)
def handler(req):
    return req
`)
	fn := funcs(mod.Body)[0]
	require.Len(t, fn.Decorators, 2)
	assert.Equal(t, `@app.route("/x", methods=["GET"])`, Text(fn.Decorators[0]))
	assert.Equal(t, `@retry(on=lambda e: e.code == 503)`, Text(fn.Decorators[1]))
}
