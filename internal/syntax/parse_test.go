package syntax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Module {
	t.Helper()
	mod, err := Parse(context.Background(), "test.py", []byte(src))
	require.NoError(t, err)
	return mod
}

// funcs collects every FuncDef reachable from nodes, depth-first.
func funcs(nodes []Node) []*FuncDef {
	var out []*FuncDef
	var walk func(n Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *FuncDef:
			out = append(out, n)
			for _, c := range n.Body {
				walk(c)
			}
		case *ClassDef:
			for _, c := range n.Body {
				walk(c)
			}
		case *Generic:
			for _, f := range n.Fields {
				walk(f.Node)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"script.py", "python", true},
		{"pkg/mod.PY", "python", true},
		{"happy", "", false},
		{"main.go", "", false},
		{"notes.pyc", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrammarForLanguage(t *testing.T) {
	t.Parallel()

	l, ok := GrammarForLanguage(Python)
	require.True(t, ok)
	assert.NotNil(t, l)

	_, ok = GrammarForLanguage("cobol")
	assert.False(t, ok)
}

func TestParse_FunctionShape(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def add(a, b):
    return a + b
`)
	require.Len(t, mod.Body, 1)
	fn, ok := mod.Body[0].(*FuncDef)
	require.True(t, ok, "expected *FuncDef, got %T", mod.Body[0])

	assert.Equal(t, "add", fn.Name)
	assert.False(t, fn.Async)
	assert.Equal(t, []string{"a", "b"}, fn.ParamNames())
	assert.Equal(t, 1, fn.Line())
	require.Len(t, fn.Statements(), 1)
	assert.Equal(t, "return_statement", Kind(fn.Statements()[0]))
}

func TestParse_AsyncAndDecorators(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `import functools

@functools.cache
@trace
async def fetch(url):
    return await get(url)
`)
	fns := funcs(mod.Body)
	require.Len(t, fns, 1)
	fn := fns[0]
	assert.Equal(t, "fetch", fn.Name)
	assert.True(t, fn.Async)
	assert.Len(t, fn.Decorators, 2)
	assert.Equal(t, 3, fn.Line(), "line includes decorators")
}

func TestParse_ParamKinds(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def f(a, b: int, /, c, d=1, *args, e, f: str = "x", **kw):
    return a
`)
	fn := funcs(mod.Body)[0]

	type want struct {
		kind ParamKind
		name string
	}
	var got []want
	for _, p := range fn.Params {
		got = append(got, want{p.Kind, p.Name})
	}
	assert.Equal(t, []want{
		{ParamPositionalOnly, "a"},
		{ParamPositionalOnly, "b"},
		{ParamPositionalSeparator, ""},
		{ParamPositional, "c"},
		{ParamPositional, "d"},
		{ParamVarArgs, "args"},
		{ParamKeywordOnly, "e"},
		{ParamKeywordOnly, "f"},
		{ParamKwArgs, "kw"},
	}, got)

	assert.NotNil(t, fn.Params[1].Type, "annotation kept")
	assert.NotNil(t, fn.Params[4].Default, "default kept")
	assert.NotNil(t, fn.Params[7].Type)
	assert.NotNil(t, fn.Params[7].Default)
	assert.Equal(t, []string{"a", "b", "c", "d", "args", "e", "f", "kw"}, fn.ParamNames())
}

func TestParse_BareStarMakesKeywordOnly(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def f(a, *, b):
    return a + b
`)
	fn := funcs(mod.Body)[0]
	require.Len(t, fn.Params, 3)
	assert.Equal(t, ParamPositional, fn.Params[0].Kind)
	assert.Equal(t, ParamKeywordSeparator, fn.Params[1].Kind)
	assert.Equal(t, ParamKeywordOnly, fn.Params[2].Kind)
}

func TestParse_AttributeNamesAreLabels(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def f(x):
    return x.name
`)
	fn := funcs(mod.Body)[0]
	ret := fn.Statements()[0].(*Generic)
	attr, ok := ret.NamedChildren()[0].(*Generic)
	require.True(t, ok)
	require.Equal(t, "attribute", attr.Kind)

	_, isName := attr.Child("object").(*Name)
	assert.True(t, isName, "object is a reference")
	label, isToken := attr.Child("attribute").(*Token)
	require.True(t, isToken, "attribute is a label")
	assert.Equal(t, "name", label.Text)
}

func TestParse_KeywordArgumentNamesAreLabels(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def f(a):
    return g(a=a)
`)
	fn := funcs(mod.Body)[0]
	var kw *Generic
	var find func(n Node)
	find = func(n Node) {
		if g, ok := n.(*Generic); ok {
			if g.Kind == "keyword_argument" {
				kw = g
				return
			}
			for _, f := range g.Fields {
				find(f.Node)
			}
		}
	}
	for _, s := range fn.Body {
		find(s)
	}
	require.NotNil(t, kw)
	_, isToken := kw.Child("name").(*Token)
	assert.True(t, isToken)
	_, isName := kw.Child("value").(*Name)
	assert.True(t, isName)
}

func TestParse_NestedDefinitions(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `class Outer:
    class Inner:
        def method(self):
            def helper():
                return 1
            return helper()
`)
	fns := funcs(mod.Body)
	require.Len(t, fns, 2)
	assert.Equal(t, "method", fns[0].Name)
	assert.Equal(t, "helper", fns[1].Name)
	assert.Equal(t, 3, fns[0].Line())
	assert.Equal(t, 4, fns[1].Line())
}

func TestParse_CommentsStayOutOfTree(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, `def f(a):
    # only a comment
    return a  # trailing
`)
	fn := funcs(mod.Body)[0]
	require.Len(t, fn.Statements(), 1)
	assert.Equal(t, "return_statement", Kind(fn.Statements()[0]))

	var comments int
	for _, l := range fn.Leaves {
		if l.Kind == "comment" {
			comments++
		}
	}
	assert.Equal(t, 2, comments, "comments are kept as leaves for printing")
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), "broken.py", []byte("def f(:\n    return\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken.py", perr.Path)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, err.Error(), "broken.py:1:")
}

func TestParse_UnclosedBracketFails(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), "open.py", []byte("def f(a):\n    return g(a,\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "open.py", perr.Path)
}

func TestParse_EmptyModule(t *testing.T) {
	t.Parallel()
	mod := mustParse(t, "")
	assert.Empty(t, mod.Body)
	assert.Equal(t, "test.py", mod.Path)
}
