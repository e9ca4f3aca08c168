package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseError reports the first syntax error tree-sitter recovered from.
type ParseError struct {
	Path   string
	Line   int
	Column int
	// Missing is true when the parser inserted a token that was absent from
	// the source rather than skipping unexpected input.
	Missing bool
}

func (e *ParseError) Error() string {
	what := "invalid syntax"
	if e.Missing {
		what = "incomplete input"
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, what)
}

// Parse parses Python source and converts it into a Module. A source that
// tree-sitter can only parse with error recovery is rejected with a
// *ParseError.
func Parse(ctx context.Context, path string, src []byte) (*Module, error) {
	lang, ok := GrammarForLanguage(Python)
	if !ok {
		return nil, fmt.Errorf("syntax: no grammar for %s", Python)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: tree-sitter parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, newParseError(path, root)
	}

	c := &converter{src: src}
	return c.module(path, root), nil
}

func newParseError(path string, root *sitter.Node) *ParseError {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pt := bad.StartPoint()
	return &ParseError{
		Path:    path,
		Line:    int(pt.Row) + 1,
		Column:  int(pt.Column) + 1,
		Missing: bad.IsMissing(),
	}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}
