package syntax

import "strings"

// Node is one element of a converted Python syntax tree. The set of
// implementations is closed: *Module, *ClassDef, *FuncDef, *Lambda, *Param,
// *Name, *Token and *Generic. Consumers switch over all of them and treat
// anything else as a bug.
type Node interface {
	node()
}

// Point is a zero-based row/column position in the source, in bytes.
type Point struct {
	Row int
	Col int
}

// Module is the root of one parsed file.
type Module struct {
	Path   string
	Body   []Node
	Leaves []*Token
}

// ClassDef is a class definition. Decorators are folded in from an enclosing
// decorated_definition.
type ClassDef struct {
	Name       string
	Decorators []Node
	TypeParams Node
	Bases      Node
	Body       []Node
	Extra      []Field
	Leaves     []*Token
}

// FuncDef is a function or method definition with its full subtree.
type FuncDef struct {
	Name       string
	Async      bool
	Decorators []Node
	TypeParams Node
	Params     []*Param
	ReturnType Node
	Body       []Node
	// Extra holds named children the converter has no dedicated slot for.
	Extra  []Field
	Leaves []*Token
}

// Lambda is a lambda expression. It binds parameters like a FuncDef but is
// never extracted on its own.
type Lambda struct {
	Params []*Param
	Body   Node
	Leaves []*Token
}

// ParamKind classifies a formal parameter.
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamPositionalOnly
	ParamKeywordOnly
	ParamVarArgs
	ParamKwArgs
	ParamPositionalSeparator // bare "/"
	ParamKeywordSeparator    // bare "*"
	ParamPattern             // tuple unpacking and other non-name targets
)

var paramKindNames = [...]string{
	ParamPositional:          "positional",
	ParamPositionalOnly:      "positional_only",
	ParamKeywordOnly:         "keyword_only",
	ParamVarArgs:             "var_args",
	ParamKwArgs:              "kw_args",
	ParamPositionalSeparator: "positional_separator",
	ParamKeywordSeparator:    "keyword_separator",
	ParamPattern:             "pattern",
}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return "unknown"
}

// Param is one entry of a parameter list. Separators have no Name.
type Param struct {
	Kind    ParamKind
	Name    string
	Type    Node
	Default Node
	Pattern Node
}

// Named reports whether the parameter binds a name.
func (p *Param) Named() bool {
	return p.Name != ""
}

// Name is an identifier in a binding or reference position.
type Name struct {
	ID   string
	Leaf *Token
}

// Token is a leaf: a literal, keyword, operator, punctuation mark, or an
// identifier used as a label (attribute or keyword-argument name).
type Token struct {
	Kind  string
	Text  string
	Named bool
	Start Point
	End   Point
}

// Field is a child together with the tree-sitter field name it occupies.
// Name is empty for unnamed positions.
type Field struct {
	Name string
	Node Node
}

// Generic is any statement or expression without a dedicated variant.
type Generic struct {
	Kind   string
	Fields []Field
}

func (*Module) node()   {}
func (*ClassDef) node() {}
func (*FuncDef) node()  {}
func (*Lambda) node()   {}
func (*Param) node()    {}
func (*Name) node()     {}
func (*Token) node()    {}
func (*Generic) node()  {}

// Line returns the 1-based line on which the definition starts, including
// any decorators.
func (f *FuncDef) Line() int {
	if len(f.Leaves) == 0 {
		return 0
	}
	return f.Leaves[0].Start.Row + 1
}

// Statements returns the body without stray punctuation such as ";".
func (f *FuncDef) Statements() []Node {
	return statements(f.Body)
}

// ParamNames returns the names bound by the parameter list, in order.
func (f *FuncDef) ParamNames() []string {
	var names []string
	for _, p := range f.Params {
		if p.Named() {
			names = append(names, p.Name)
		}
	}
	return names
}

// Statements returns the class body without stray punctuation.
func (c *ClassDef) Statements() []Node {
	return statements(c.Body)
}

func statements(body []Node) []Node {
	out := make([]Node, 0, len(body))
	for _, n := range body {
		if t, ok := n.(*Token); ok && !t.Named {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Child returns the first child stored under the given field name, or nil.
func (g *Generic) Child(field string) Node {
	for _, f := range g.Fields {
		if f.Name == field {
			return f.Node
		}
	}
	return nil
}

// NamedChildren returns children that are not anonymous tokens.
func (g *Generic) NamedChildren() []Node {
	var out []Node
	for _, f := range g.Fields {
		if t, ok := f.Node.(*Token); ok && !t.Named {
			continue
		}
		out = append(out, f.Node)
	}
	return out
}

// HasToken reports whether an anonymous token with the given text is a
// direct child.
func (g *Generic) HasToken(text string) bool {
	for _, f := range g.Fields {
		if t, ok := f.Node.(*Token); ok && !t.Named && t.Text == text {
			return true
		}
	}
	return false
}

// Leaves returns the tokens n spans, in source order. A Param carries no
// token for its own name, so only its pattern, annotation and default
// contribute.
func Leaves(n Node) []*Token {
	switch n := n.(type) {
	case *Module:
		return n.Leaves
	case *ClassDef:
		return n.Leaves
	case *FuncDef:
		return n.Leaves
	case *Lambda:
		return n.Leaves
	case *Param:
		var out []*Token
		for _, c := range []Node{n.Pattern, n.Type, n.Default} {
			out = append(out, Leaves(c)...)
		}
		return out
	case *Name:
		return []*Token{n.Leaf}
	case *Token:
		return []*Token{n}
	case *Generic:
		var out []*Token
		for _, f := range n.Fields {
			out = append(out, Leaves(f.Node)...)
		}
		return out
	case nil:
		return nil
	default:
		panic("syntax: unknown node type")
	}
}

// Text renders n on its own, trimmed of surrounding whitespace.
func Text(n Node) string {
	return strings.TrimSpace(PrintLeaves(Leaves(n)))
}

// Kind returns the tree-sitter kind a node was converted from.
func Kind(n Node) string {
	switch n := n.(type) {
	case *Module:
		return "module"
	case *ClassDef:
		return "class_definition"
	case *FuncDef:
		return "function_definition"
	case *Lambda:
		return "lambda"
	case *Param:
		return "parameter"
	case *Name:
		return "identifier"
	case *Token:
		return n.Kind
	case *Generic:
		return n.Kind
	case nil:
		return ""
	default:
		panic("syntax: unknown node type")
	}
}
