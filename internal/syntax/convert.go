package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// converter turns a tree-sitter CST into the closed Node set. Every leaf it
// visits, comments included, is appended to leaves exactly once and in
// source order, so definitions can later be printed from their slice of it.
type converter struct {
	src     []byte
	leaves  []*Token
	pending []span
}

// span records the leaf range of a definition until the leaf slice stops
// growing.
type span struct {
	start, end int
	set        func([]*Token)
}

// child is a CST child paired with its field name.
type child struct {
	field string
	node  *sitter.Node
}

func children(n *sitter.Node) []child {
	count := int(n.ChildCount())
	if count == 0 {
		return nil
	}
	out := make([]child, 0, count)
	cursor := sitter.NewTreeCursor(n)
	defer cursor.Close()
	if !cursor.GoToFirstChild() {
		return nil
	}
	for {
		out = append(out, child{field: cursor.CurrentFieldName(), node: cursor.CurrentNode()})
		if !cursor.GoToNextSibling() {
			break
		}
	}
	return out
}

func (c *converter) module(path string, root *sitter.Node) *Module {
	mod := &Module{Path: path}
	for _, ch := range children(root) {
		if v := c.convert(ch.node); v != nil {
			mod.Body = append(mod.Body, v)
		}
	}
	mod.Leaves = c.leaves
	for _, s := range c.pending {
		s.set(c.leaves[s.start:s.end:s.end])
	}
	c.pending = nil
	return mod
}

func (c *converter) convert(n *sitter.Node) Node {
	switch n.Type() {
	case "comment":
		// Kept for printing only; comments never enter the tree.
		c.leaf(n)
		return nil
	case "function_definition":
		return c.funcDef(n, len(c.leaves), nil)
	case "class_definition":
		return c.classDef(n, len(c.leaves), nil)
	case "decorated_definition":
		return c.decorated(n)
	case "lambda":
		// The keyword token shares the node's type.
		if n.IsNamed() {
			return c.lambda(n)
		}
	case "identifier":
		tok := c.leaf(n)
		return &Name{ID: tok.Text, Leaf: tok}
	case "string_content":
		// Escape sequences are children of string_content, but the text
		// between them is not, so the whole run is one leaf.
		return c.leaf(n)
	case "string":
		if !hasChildOfKind(n, "string_start") {
			return c.leaf(n)
		}
	}
	if n.ChildCount() == 0 {
		return c.leaf(n)
	}
	return c.generic(n)
}

func hasChildOfKind(n *sitter.Node, kind string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch != nil && ch.Type() == kind {
			return true
		}
	}
	return false
}

func (c *converter) leaf(n *sitter.Node) *Token {
	sp, ep := n.StartPoint(), n.EndPoint()
	tok := &Token{
		Kind:  n.Type(),
		Text:  n.Content(c.src),
		Named: n.IsNamed(),
		Start: Point{Row: int(sp.Row), Col: int(sp.Column)},
		End:   Point{Row: int(ep.Row), Col: int(ep.Column)},
	}
	c.leaves = append(c.leaves, tok)
	return tok
}

// isLabel reports whether an identifier in this position names a member
// rather than referring to a variable.
func isLabel(parentKind, field string) bool {
	switch {
	case parentKind == "attribute" && field == "attribute":
		return true
	case parentKind == "keyword_argument" && field == "name":
		return true
	}
	return false
}

func (c *converter) generic(n *sitter.Node) *Generic {
	g := &Generic{Kind: n.Type()}
	for _, ch := range children(n) {
		v := c.convert(ch.node)
		if v == nil {
			continue
		}
		if name, ok := v.(*Name); ok && isLabel(g.Kind, ch.field) {
			v = name.Leaf
		}
		g.Fields = append(g.Fields, Field{Name: ch.field, Node: v})
	}
	return g
}

func (c *converter) track(start int, set func([]*Token)) {
	c.pending = append(c.pending, span{start: start, end: len(c.leaves), set: set})
}

func (c *converter) funcDef(n *sitter.Node, start int, decorators []Node) *FuncDef {
	fn := &FuncDef{Decorators: decorators}
	for _, ch := range children(n) {
		switch {
		case ch.field == "name":
			fn.Name = c.leaf(ch.node).Text
		case ch.field == "parameters":
			fn.Params = c.params(ch.node)
		case ch.field == "return_type":
			fn.ReturnType = c.convert(ch.node)
		case ch.field == "type_parameters":
			fn.TypeParams = c.convert(ch.node)
		case ch.field == "body":
			fn.Body = c.block(ch.node)
		case !ch.node.IsNamed() && ch.node.ChildCount() == 0:
			if c.leaf(ch.node).Text == "async" {
				fn.Async = true
			}
		default:
			if v := c.convert(ch.node); v != nil {
				fn.Extra = append(fn.Extra, Field{Name: ch.field, Node: v})
			}
		}
	}
	c.track(start, func(l []*Token) { fn.Leaves = l })
	return fn
}

func (c *converter) classDef(n *sitter.Node, start int, decorators []Node) *ClassDef {
	cls := &ClassDef{Decorators: decorators}
	for _, ch := range children(n) {
		switch {
		case ch.field == "name":
			cls.Name = c.leaf(ch.node).Text
		case ch.field == "superclasses":
			cls.Bases = c.convert(ch.node)
		case ch.field == "type_parameters":
			cls.TypeParams = c.convert(ch.node)
		case ch.field == "body":
			cls.Body = c.block(ch.node)
		case !ch.node.IsNamed() && ch.node.ChildCount() == 0:
			c.leaf(ch.node)
		default:
			if v := c.convert(ch.node); v != nil {
				cls.Extra = append(cls.Extra, Field{Name: ch.field, Node: v})
			}
		}
	}
	c.track(start, func(l []*Token) { cls.Leaves = l })
	return cls
}

// decorated folds the decorators of a decorated_definition into the
// definition it wraps, so the definition's leaves start at the first "@".
func (c *converter) decorated(n *sitter.Node) Node {
	start := len(c.leaves)
	var decorators []Node
	var fields []Field
	var def Node
	for _, ch := range children(n) {
		if ch.field == "definition" {
			switch ch.node.Type() {
			case "function_definition":
				def = c.funcDef(ch.node, start, decorators)
			case "class_definition":
				def = c.classDef(ch.node, start, decorators)
			default:
				if v := c.convert(ch.node); v != nil {
					fields = append(fields, Field{Name: ch.field, Node: v})
				}
			}
			continue
		}
		if v := c.convert(ch.node); v != nil {
			decorators = append(decorators, v)
			fields = append(fields, Field{Name: ch.field, Node: v})
		}
	}
	if def != nil {
		return def
	}
	return &Generic{Kind: n.Type(), Fields: fields}
}

func (c *converter) lambda(n *sitter.Node) *Lambda {
	start := len(c.leaves)
	l := &Lambda{}
	for _, ch := range children(n) {
		switch ch.field {
		case "parameters":
			l.Params = c.params(ch.node)
		case "body":
			l.Body = c.convert(ch.node)
		default:
			c.convert(ch.node)
		}
	}
	c.track(start, func(t []*Token) { l.Leaves = t })
	return l
}

func (c *converter) block(n *sitter.Node) []Node {
	if n.Type() != "block" {
		if v := c.convert(n); v != nil {
			return []Node{v}
		}
		return nil
	}
	var body []Node
	for _, ch := range children(n) {
		if v := c.convert(ch.node); v != nil {
			body = append(body, v)
		}
	}
	return body
}

func (c *converter) params(n *sitter.Node) []*Param {
	var params []*Param
	for _, ch := range children(n) {
		if !ch.node.IsNamed() || ch.node.Type() == "comment" {
			c.convert(ch.node)
			continue
		}
		params = append(params, c.param(ch.node))
	}
	classifyParams(params)
	return params
}

func (c *converter) param(n *sitter.Node) *Param {
	switch n.Type() {
	case "identifier":
		return &Param{Kind: ParamPositional, Name: c.leaf(n).Text}

	case "keyword_separator":
		c.convert(n)
		return &Param{Kind: ParamKeywordSeparator}

	case "positional_separator":
		c.convert(n)
		return &Param{Kind: ParamPositionalSeparator}

	case "list_splat_pattern", "dictionary_splat_pattern":
		p := &Param{Kind: ParamVarArgs}
		if n.Type() == "dictionary_splat_pattern" {
			p.Kind = ParamKwArgs
		}
		for _, ch := range children(n) {
			if ch.node.Type() == "identifier" && p.Name == "" {
				p.Name = c.leaf(ch.node).Text
				continue
			}
			if v := c.convert(ch.node); v != nil && ch.node.IsNamed() {
				p.Pattern = v
			}
		}
		return p

	case "typed_parameter":
		var p *Param
		var typ Node
		for _, ch := range children(n) {
			switch {
			case ch.field == "type":
				typ = c.convert(ch.node)
			case !ch.node.IsNamed() || ch.node.Type() == "comment":
				c.convert(ch.node)
			case p == nil:
				p = c.param(ch.node)
			default:
				c.convert(ch.node)
			}
		}
		if p == nil {
			p = &Param{Kind: ParamPattern}
		}
		p.Type = typ
		return p

	case "default_parameter", "typed_default_parameter":
		var p *Param
		var typ, def Node
		for _, ch := range children(n) {
			switch ch.field {
			case "name":
				p = c.param(ch.node)
			case "type":
				typ = c.convert(ch.node)
			case "value":
				def = c.convert(ch.node)
			default:
				c.convert(ch.node)
			}
		}
		if p == nil {
			p = &Param{Kind: ParamPattern}
		}
		p.Type = typ
		p.Default = def
		return p
	}
	return &Param{Kind: ParamPattern, Pattern: c.convert(n)}
}

// classifyParams marks parameters before a bare "/" as positional-only and
// parameters after "*" or "*args" as keyword-only.
func classifyParams(params []*Param) {
	slash := -1
	for i, p := range params {
		if p.Kind == ParamPositionalSeparator {
			slash = i
		}
	}
	for i := 0; i < slash; i++ {
		if params[i].Kind == ParamPositional {
			params[i].Kind = ParamPositionalOnly
		}
	}
	keywordOnly := false
	for _, p := range params {
		switch p.Kind {
		case ParamKeywordSeparator, ParamVarArgs:
			keywordOnly = true
		case ParamPositional:
			if keywordOnly {
				p.Kind = ParamKeywordOnly
			}
		}
	}
}
