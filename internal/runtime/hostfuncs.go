package runtime

import (
	"fmt"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/pydups/internal/dupes"
	"github.com/jward/pydups/internal/syntax"
)

// functionObject exposes a function to rule scripts as a Risor map. Risor
// cannot walk Go syntax nodes usefully through a proxy, so the fields a
// rule can match on are flattened Go-side.
//
//	fn["name"], fn["class"], fn["module"], fn["qualname"]  strings
//	fn["line"], fn["body_len"]                            ints
//	fn["async"]                                           bool
//	fn["params"], fn["param_kinds"]                       lists of strings
//	fn["body_kinds"], fn["decorators"]                    lists of strings
//	fn["source"], fn["fingerprint"]                       strings
func functionObject(fn *syntax.FuncDef, loc dupes.Location) *object.Map {
	body := fn.Statements()
	bodyKinds := make([]object.Object, 0, len(body))
	for _, stmt := range body {
		bodyKinds = append(bodyKinds, object.NewString(syntax.Kind(stmt)))
	}

	var params, kinds []object.Object
	for _, p := range fn.Params {
		kinds = append(kinds, object.NewString(p.Kind.String()))
		if p.Named() {
			params = append(params, object.NewString(p.Name))
		}
	}

	decorators := make([]object.Object, 0, len(fn.Decorators))
	for _, d := range fn.Decorators {
		decorators = append(decorators, object.NewString(decoratorName(d)))
	}

	return object.NewMap(map[string]object.Object{
		"name":        object.NewString(loc.Function),
		"class":       object.NewString(loc.Class),
		"module":      object.NewString(loc.Module),
		"qualname":    object.NewString(loc.String()),
		"line":        object.NewInt(int64(loc.Line)),
		"body_len":    object.NewInt(int64(len(body))),
		"async":       object.NewBool(fn.Async),
		"params":      listOf(params),
		"param_kinds": listOf(kinds),
		"body_kinds":  object.NewList(bodyKinds),
		"decorators":  object.NewList(decorators),
		"source":      object.NewString(syntax.Print(fn)),
		"fingerprint": object.NewString(dupes.Canonicalize(fn).Short()),
	})
}

func listOf(items []object.Object) *object.List {
	if items == nil {
		items = []object.Object{}
	}
	return object.NewList(items)
}

// decoratorName returns a decorator's expression without the "@".
func decoratorName(d syntax.Node) string {
	text := syntax.Text(d)
	if len(text) > 0 && text[0] == '@' {
		return text[1:]
	}
	return text
}

// verdict interprets a rule's result. A non-empty string excludes and is
// the reason; a map is read as {"exclude": bool, "reason": string}; any
// other value excludes when truthy.
func verdict(result object.Object) (bool, string) {
	switch v := result.(type) {
	case nil:
		return false, ""
	case *object.String:
		return v.Value() != "", v.Value()
	case *object.Map:
		m := v.Value()
		return getBool(m, "exclude"), getString(m, "reason")
	}
	return result.IsTruthy(), ""
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getBool(m map[string]object.Object, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	if b, ok := v.(*object.Bool); ok {
		return b.Value()
	}
	return false
}

// logObject provides log.Debug/Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Debug(msg string) {
	l.logger.Debug(msg, "source", "rule")
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "rule")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "rule")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "rule")
}

// Describe renders a rule list for verbose logging.
func Describe(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for i, r := range rules {
		out = append(out, fmt.Sprintf("%d:%s", i+1, r.Name))
	}
	return out
}
