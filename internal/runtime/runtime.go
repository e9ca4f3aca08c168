// Package runtime embeds a Risor VM that evaluates user exclusion rules
// against extracted functions.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/pydups/internal/dupes"
	"github.com/jward/pydups/internal/syntax"
)

// Rule is one loaded exclusion script.
type Rule struct {
	Name   string
	Source string
}

// Runtime evaluates exclusion rules. Each rule runs once per function with
// the function exposed as the "fn" global; a truthy result excludes it.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
	rules      []Rule
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the scripts' log global.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves scripts and imports relative to
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRule registers an exclusion rule from source.
func (r *Runtime) AddRule(name, source string) {
	r.rules = append(r.rules, Rule{Name: name, Source: source})
}

// LoadRule reads a script with LoadScript and registers it under its path.
func (r *Runtime) LoadRule(path string) error {
	src, err := r.LoadScript(path)
	if err != nil {
		return err
	}
	r.AddRule(path, src)
	return nil
}

// Rules returns the registered rules in evaluation order.
func (r *Runtime) Rules() []Rule {
	return r.rules
}

// Exclude runs every rule against fn until one excludes it. The returned
// reason is the rule's string result, or the rule name when the rule only
// returned a truthy value.
func (r *Runtime) Exclude(ctx context.Context, fn *syntax.FuncDef, loc dupes.Location) (bool, string, error) {
	if len(r.rules) == 0 {
		return false, "", nil
	}
	globals := map[string]any{"fn": functionObject(fn, loc)}
	for _, rule := range r.rules {
		result, err := r.RunSource(ctx, rule.Source, globals)
		if err != nil {
			return false, "", fmt.Errorf("runtime: rule %s: %w", rule.Name, err)
		}
		if ok, reason := verdict(result); ok {
			if reason == "" {
				reason = rule.Name
			}
			r.logger.Debug("function excluded by rule",
				"rule", rule.Name, "function", loc.String(), "reason", reason)
			return true, reason, nil
		}
	}
	return false, "", nil
}

// RunSource executes Risor source with the standard globals plus any extra
// globals and returns the value of its final expression.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) (object.Object, error) {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("runtime: eval: %w", err)
	}
	return result, nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
