package dupes

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/jward/pydups/internal/syntax"
)

// FunctionPlaceholder replaces the definition name of the function being
// fingerprinted.
const FunctionPlaceholder = "f"

// ParamPlaceholder returns the placeholder for the i-th named parameter.
func ParamPlaceholder(i int) string {
	return "x" + strconv.Itoa(i)
}

// Fingerprint is the blake3 digest of a function's canonical serialization.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex digits, enough to tell groups apart in a
// report.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// MarshalText encodes the fingerprint as hex for JSON and YAML output.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Canonicalize returns fn's fingerprint. Two functions share a fingerprint
// iff they are structurally identical after renaming the function itself
// and its parameters.
func Canonicalize(fn *syntax.FuncDef) Fingerprint {
	return blake3.Sum256([]byte(Canonical(fn)))
}

// Canonical returns the serialization Canonicalize hashes. Placeholders are
// written bare while source identifiers are always quoted, so an identifier
// spelled "x0" never collides with a placeholder.
func Canonical(fn *syntax.FuncDef) string {
	var s serializer
	s.funcDef(fn, nil, true)
	return s.b.String()
}

// scope maps parameter names to the placeholders that replace them.
type scope map[string]string

// without returns s minus the given names, which a nested function or
// lambda rebinds.
func (s scope) without(names []string) scope {
	shadowed := false
	for _, n := range names {
		if _, ok := s[n]; ok {
			shadowed = true
			break
		}
	}
	if !shadowed {
		return s
	}
	out := make(scope, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

type serializer struct {
	b strings.Builder
	// raw is set while writing the body of a raw string literal.
	raw bool
}

func (s *serializer) open(kind string) {
	s.b.WriteByte('(')
	s.b.WriteString(kind)
}

func (s *serializer) close() {
	s.b.WriteByte(')')
}

func (s *serializer) label(name string) {
	s.b.WriteByte(' ')
	if name != "" {
		s.b.WriteString(name)
		s.b.WriteByte(':')
	}
}

func (s *serializer) field(name string, n syntax.Node, sc scope) {
	if n == nil {
		return
	}
	s.label(name)
	s.node(n, sc)
}

func (s *serializer) list(name string, nodes []syntax.Node, sc scope) {
	if len(nodes) == 0 {
		return
	}
	s.label(name)
	s.b.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			s.b.WriteByte(' ')
		}
		s.node(n, sc)
	}
	s.b.WriteByte(']')
}

// funcDef writes a definition. Decorators, annotations and defaults are
// evaluated in the enclosing scope, so they use outer. Only the root
// definition has its name and parameters replaced; a nested definition
// merely shadows the outer substitutions it rebinds.
func (s *serializer) funcDef(fn *syntax.FuncDef, outer scope, root bool) {
	s.open("def")
	if fn.Async {
		s.b.WriteString(" async")
	}
	name := strconv.Quote(fn.Name)
	var own scope
	inner := outer.without(fn.ParamNames())
	if root {
		name = FunctionPlaceholder
		own = make(scope)
		for i, p := range fn.ParamNames() {
			own[p] = ParamPlaceholder(i)
		}
		inner = own
	}
	s.label("name")
	s.b.WriteString(name)
	s.list("decorators", fn.Decorators, outer)
	s.field("type_params", fn.TypeParams, outer)
	s.params(fn.Params, outer, own)
	s.field("returns", fn.ReturnType, outer)
	s.list("body", fn.Body, inner)
	for _, f := range fn.Extra {
		s.field(f.Name, f.Node, inner)
	}
	s.close()
}

// params writes a parameter list. rename holds the placeholders for the
// parameter names themselves and is nil for nested definitions.
func (s *serializer) params(params []*syntax.Param, outer, rename scope) {
	s.label("params")
	s.b.WriteByte('[')
	for i, p := range params {
		if i > 0 {
			s.b.WriteByte(' ')
		}
		s.param(p, outer, rename)
	}
	s.b.WriteByte(']')
}

func (s *serializer) param(p *syntax.Param, outer, rename scope) {
	s.open("param ")
	s.b.WriteString(p.Kind.String())
	if p.Named() {
		s.label("name")
		if ph, ok := rename[p.Name]; ok {
			s.b.WriteString(ph)
		} else {
			s.b.WriteString(strconv.Quote(p.Name))
		}
	}
	s.field("type", p.Type, outer)
	s.field("default", p.Default, outer)
	s.field("pattern", p.Pattern, rename)
	s.close()
}

func (s *serializer) node(n syntax.Node, sc scope) {
	switch n := n.(type) {
	case *syntax.FuncDef:
		s.funcDef(n, sc, false)
	case *syntax.ClassDef:
		s.open("class")
		s.label("name")
		s.b.WriteString(strconv.Quote(n.Name))
		s.list("decorators", n.Decorators, sc)
		s.field("type_params", n.TypeParams, sc)
		s.field("bases", n.Bases, sc)
		s.list("body", n.Body, sc)
		for _, f := range n.Extra {
			s.field(f.Name, f.Node, sc)
		}
		s.close()
	case *syntax.Lambda:
		s.open("lambda")
		var names []string
		for _, p := range n.Params {
			if p.Named() {
				names = append(names, p.Name)
			}
		}
		s.params(n.Params, sc, nil)
		s.field("body", n.Body, sc.without(names))
		s.close()
	case *syntax.Param:
		s.param(n, sc, nil)
	case *syntax.Name:
		s.open("name ")
		if ph, ok := sc[n.ID]; ok {
			s.b.WriteString(ph)
		} else {
			s.b.WriteString(strconv.Quote(n.ID))
		}
		s.close()
	case *syntax.Token:
		s.token(n)
	case *syntax.Generic:
		if inner := unparenthesized(n); inner != nil {
			s.node(inner, sc)
			return
		}
		kind := n.Kind
		tuple := kind == "tuple" || kind == "expression_list"
		if tuple {
			kind = "tuple"
		}
		if kind == "string" {
			defer s.enterString(n)()
		}
		s.open(kind)
		for i, f := range n.Fields {
			if tok, ok := f.Node.(*syntax.Token); ok {
				if ignorable(tok) || (tok.Text == "," && closesBracket(n.Fields, i+1)) {
					continue
				}
				// Brackets and commas of a tuple are optional punctuation.
				if tuple && !tok.Named {
					continue
				}
			}
			s.field(f.Name, f.Node, sc)
		}
		s.close()
	case *syntax.Module:
		panic("dupes: module nested inside a function")
	default:
		panic(fmt.Sprintf("dupes: unexpected syntax node %T", n))
	}
}

// unparenthesized returns the expression inside redundant parentheses, or
// nil when n is not a parenthesized expression.
func unparenthesized(n *syntax.Generic) syntax.Node {
	if n.Kind != "parenthesized_expression" {
		return nil
	}
	named := n.NamedChildren()
	if len(named) != 1 {
		return nil
	}
	return named[0]
}

// enterString sets the raw flag from the literal's opener and returns a
// func restoring the previous value, since strings nest inside f-string
// interpolations.
func (s *serializer) enterString(n *syntax.Generic) func() {
	prev := s.raw
	s.raw = false
	for _, f := range n.Fields {
		if tok, ok := f.Node.(*syntax.Token); ok && tok.Kind == "string_start" {
			s.raw = strings.Contains(stringPrefix(tok.Text), "r")
			break
		}
	}
	return func() { s.raw = prev }
}

// ignorable reports tokens that only carry formatting.
func ignorable(tok *syntax.Token) bool {
	return tok.Text == "" || tok.Kind == "line_continuation" || tok.Kind == "string_end"
}

// closesBracket reports whether the field at i is a closing bracket, which
// makes a preceding comma a trailing one.
func closesBracket(fields []syntax.Field, i int) bool {
	if i >= len(fields) {
		return false
	}
	tok, ok := fields[i].Node.(*syntax.Token)
	if !ok || tok.Named {
		return false
	}
	switch tok.Text {
	case ")", "]", "}":
		return true
	}
	return false
}

func (s *serializer) token(tok *syntax.Token) {
	if ignorable(tok) {
		return
	}
	text := tok.Text
	switch tok.Kind {
	case "string_start":
		text = stringPrefix(text)
	case "string_content":
		if !s.raw {
			text = unescapeQuotes(text)
		}
	case "string":
		text = normalizeString(text)
	}
	if tok.Named {
		s.b.WriteString(tok.Kind)
		s.b.WriteByte(':')
	}
	s.b.WriteString(strconv.Quote(text))
}

// stringPrefix strips the quote characters from a string opener, keeping
// the lower-cased prefix such as "f", "b" or "rb".
func stringPrefix(start string) string {
	return strings.ToLower(strings.TrimRight(start, `'"`))
}

// normalizeString drops the quoting of a string literal that tree-sitter
// produced as a single leaf, keeping its prefix and body.
func normalizeString(lit string) string {
	i := strings.IndexAny(lit, `'"`)
	if i < 0 {
		return lit
	}
	prefix, rest := strings.ToLower(lit[:i]), lit[i:]
	q := rest[:1]
	if strings.HasPrefix(rest, q+q+q) && len(rest) >= 6 {
		q = q + q + q
	}
	if len(rest) >= 2*len(q) && strings.HasSuffix(rest, q) {
		rest = rest[len(q) : len(rest)-len(q)]
	}
	if !strings.Contains(prefix, "r") {
		rest = unescapeQuotes(rest)
	}
	return prefix + "|" + rest
}

// unescapeQuotes replaces \' and \" with the bare quote. Other escapes,
// including an escaped backslash, are kept as written.
func unescapeQuotes(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		if next := body[i]; next != '\'' && next != '"' {
			b.WriteByte(c)
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
