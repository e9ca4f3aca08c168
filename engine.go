package pydups

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jward/pydups/internal/dupes"
	"github.com/jward/pydups/internal/runtime"
	"github.com/jward/pydups/internal/store"
	"github.com/jward/pydups/internal/syntax"
)

// Engine orchestrates a scan: file discovery, parsing, extraction,
// filtering, fingerprinting and grouping. An Engine keeps no state between
// scans.
type Engine struct {
	logger     *slog.Logger
	excludes   []*regexp.Regexp
	scripts    []string
	scriptsDir string
	scriptsFS  fs.FS
	runtime    *runtime.Runtime
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for per-file debug events and rule logging.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithExcludes skips every discovered path matching one of the patterns.
// A matching directory is skipped with everything below it.
func WithExcludes(patterns ...*regexp.Regexp) Option {
	return func(e *Engine) {
		e.excludes = append(e.excludes, patterns...)
	}
}

// WithExclusionScripts loads Risor exclusion rules from the given paths,
// resolved against the scripts directory or filesystem.
func WithExclusionScripts(paths ...string) Option {
	return func(e *Engine) {
		e.scripts = append(e.scripts, paths...)
	}
}

// WithScriptsDir sets the directory exclusion scripts and their imports are
// resolved against.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithScriptsFS configures the Engine to load exclusion scripts from the
// given filesystem instead of from disk. This enables embedding scripts via
// go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// New creates an Engine and loads its exclusion scripts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	rtOpts := []runtime.RuntimeOption{runtime.WithLogger(e.logger)}
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)
	for _, path := range e.scripts {
		if err := e.runtime.LoadRule(path); err != nil {
			return nil, fmt.Errorf("pydups: load exclusion script: %w", err)
		}
	}
	if len(e.scripts) > 0 {
		e.logger.Debug("exclusion rules loaded", "rules", runtime.Describe(e.runtime.Rules()))
	}
	return e, nil
}

// Discover returns every Python file under root in lexical walk order.
// A root that is itself a file is returned alone if it is a Python file.
func (e *Engine) Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && e.excluded(path) {
			e.logger.Debug("path excluded", "path", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := syntax.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pydups: discover %s: %w", root, err)
	}
	return paths, nil
}

func (e *Engine) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, re := range e.excludes {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

// Scan analyses every Python file under root and returns the finished
// report. Files are processed one at a time in discovery order. Any parse
// failure aborts the scan; the error wraps a *syntax.ParseError.
func (e *Engine) Scan(ctx context.Context, root string) (*Report, error) {
	started := time.Now()
	paths, err := e.Discover(root)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root, StartedAt: started}
	reg := dupes.NewRegistry()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.scanFile(ctx, path, reg, report); err != nil {
			return nil, err
		}
	}

	report.Distinct = reg.Len()
	report.Groups = reg.Duplicates()
	e.logger.Debug("scan finished",
		"root", root,
		"files", len(report.Files),
		"functions", report.Functions,
		"excluded", len(report.Excluded),
		"groups", len(report.Groups),
		"elapsed", time.Since(started))
	return report, nil
}

func (e *Engine) scanFile(ctx context.Context, path string, reg *dupes.Registry, report *Report) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("pydups: read %s: %w", path, err)
	}
	mod, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return fmt.Errorf("pydups: parse: %w", err)
	}

	var ruleErr error
	prune := func(fn *syntax.FuncDef, loc dupes.Location) bool {
		if ruleErr != nil {
			return true
		}
		if reason, ok := dupes.Trivial(fn); ok {
			report.Excluded = append(report.Excluded, Exclusion{Location: loc, Reason: string(reason)})
			return true
		}
		excluded, reason, err := e.runtime.Exclude(ctx, fn, loc)
		if err != nil {
			ruleErr = err
			return true
		}
		if excluded {
			report.Excluded = append(report.Excluded, Exclusion{Location: loc, Reason: reason})
		}
		return excluded
	}

	count := 0
	for fn, loc := range dupes.Extract(mod, prune) {
		reg.Register(dupes.Canonicalize(fn), dupes.Occurrence{Location: loc, Func: fn})
		count++
	}
	if ruleErr != nil {
		return fmt.Errorf("pydups: exclusion rule on %s: %w", path, ruleErr)
	}

	report.Functions += count
	report.Files = append(report.Files, FileStat{
		Path:      path,
		Hash:      store.ContentHash(src),
		Functions: count,
	})
	e.logger.Debug("file scanned", "path", path, "functions", count)
	return nil
}
