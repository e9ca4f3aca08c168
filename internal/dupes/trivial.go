package dupes

import (
	"slices"

	"github.com/jward/pydups/internal/syntax"
)

// Reason names the boilerplate shape a trivial function matched.
type Reason string

const (
	ReasonNoOp        Reason = "no-op"
	ReasonStub        Reason = "not-implemented"
	ReasonConstant    Reason = "constant-return"
	ReasonInitializer Reason = "trivial-initializer"
)

const notImplementedError = "NotImplementedError"

// IsTrivial reports whether fn's body is boilerplate that should never be
// compared.
func IsTrivial(fn *syntax.FuncDef) bool {
	_, ok := Trivial(fn)
	return ok
}

// Trivial classifies fn's body. The predicates are independent; the first
// match is returned.
func Trivial(fn *syntax.FuncDef) (Reason, bool) {
	body := fn.Statements()
	if len(body) == 1 {
		switch stmt := body[0]; {
		case isNoOp(stmt):
			return ReasonNoOp, true
		case isNotImplemented(stmt):
			return ReasonStub, true
		case isConstantReturn(stmt):
			return ReasonConstant, true
		}
	}
	if fn.Name == "__init__" && isFieldAssignments(body, fn.ParamNames()) {
		return ReasonInitializer, true
	}
	return "", false
}

// isNoOp matches "pass" and a bare "..." statement.
func isNoOp(stmt syntax.Node) bool {
	switch syntax.Kind(stmt) {
	case "pass_statement":
		return true
	case "expression_statement":
		g, ok := stmt.(*syntax.Generic)
		if !ok {
			return false
		}
		exprs := g.NamedChildren()
		return len(exprs) == 1 && syntax.Kind(exprs[0]) == "ellipsis"
	}
	return false
}

// isNotImplemented matches "raise NotImplementedError" with or without a
// constructor call.
func isNotImplemented(stmt syntax.Node) bool {
	g, ok := stmt.(*syntax.Generic)
	if !ok || g.Kind != "raise_statement" {
		return false
	}
	exprs := g.NamedChildren()
	if len(exprs) == 0 {
		return false
	}
	target := exprs[0]
	if call, ok := target.(*syntax.Generic); ok && call.Kind == "call" {
		target = call.Child("function")
	}
	name, ok := target.(*syntax.Name)
	return ok && name.ID == notImplementedError
}

// isConstantReturn matches a bare return or a return of a literal constant.
func isConstantReturn(stmt syntax.Node) bool {
	g, ok := stmt.(*syntax.Generic)
	if !ok || g.Kind != "return_statement" {
		return false
	}
	values := g.NamedChildren()
	switch len(values) {
	case 0:
		return true
	case 1:
		return isConstant(values[0])
	}
	return false
}

// isConstant reports whether n is a literal whose value needs no
// evaluation: True, False, None, numbers (optionally signed), plain strings
// and "...".
func isConstant(n syntax.Node) bool {
	switch syntax.Kind(n) {
	case "true", "false", "none", "integer", "float", "ellipsis":
		return true
	case "string":
		g, ok := n.(*syntax.Generic)
		if !ok {
			return true
		}
		for _, part := range g.NamedChildren() {
			if syntax.Kind(part) == "interpolation" {
				return false
			}
		}
		return true
	case "concatenated_string":
		g := n.(*syntax.Generic)
		return !slices.ContainsFunc(g.NamedChildren(), func(part syntax.Node) bool {
			return !isConstant(part)
		})
	case "unary_operator":
		g := n.(*syntax.Generic)
		if !g.HasToken("-") && !g.HasToken("+") {
			return false
		}
		switch syntax.Kind(g.Child("argument")) {
		case "integer", "float":
			return true
		}
	}
	return false
}

// isFieldAssignments reports whether every statement assigns a parameter or
// a constant to an attribute, as in "self.x = x".
func isFieldAssignments(body []syntax.Node, params []string) bool {
	if len(body) == 0 {
		return false
	}
	for _, stmt := range body {
		g, ok := stmt.(*syntax.Generic)
		if !ok || g.Kind != "expression_statement" {
			return false
		}
		exprs := g.NamedChildren()
		if len(exprs) != 1 || !isFieldAssignment(exprs[0], params) {
			return false
		}
	}
	return true
}

func isFieldAssignment(n syntax.Node, params []string) bool {
	assign, ok := n.(*syntax.Generic)
	if !ok || assign.Kind != "assignment" {
		return false
	}
	left, ok := assign.Child("left").(*syntax.Generic)
	if !ok || left.Kind != "attribute" {
		return false
	}
	if _, ok := left.Child("object").(*syntax.Name); !ok {
		return false
	}
	switch right := assign.Child("right").(type) {
	case nil:
		// annotation only: "self.x: int"
		return true
	case *syntax.Name:
		return slices.Contains(params, right.ID)
	default:
		return isConstant(right)
	}
}
