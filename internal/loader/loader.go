// Package loader implements module resolution and caching for the
// interpreter pipeline. The checker and evaluator depend only on the
// Loader interface; InMemoryLoader is the reference implementation used
// by the CLI and tests. A disk-backed resolver with tsconfig path
// mapping belongs to the host tooling, not here.
package loader

import (
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/parser"
)

// Loader resolves import specifiers to canonical paths and produces
// parsed, cached module ASTs.
type Loader interface {
	Resolve(specifier, importerPath string) (string, error)
	Load(absolutePath string) (*ast.Program, error)
}

// ParseError reports that a loaded module failed to parse; it carries the
// module path and the parser's diagnostics so callers can render them
// with full source locations.
type ParseError struct {
	Path        string
	Diagnostics []diag.Diagnostic
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %d parse error(s)", e.Path, len(e.Diagnostics))
}

type parsedModule struct {
	prog  *ast.Program
	diags []diag.Diagnostic
}

// InMemoryLoader serves modules from a registered path -> source map,
// parsing each at most once. Built-in modules registered through
// RegisterBuiltin resolve without an importer and load as pre-parsed
// export bundles.
type InMemoryLoader struct {
	mu      sync.Mutex
	sources map[string]string
	cache   map[string]*parsedModule
}

// NewInMemory builds an empty loader; register sources with Add.
func NewInMemory() *InMemoryLoader {
	return &InMemoryLoader{
		sources: make(map[string]string),
		cache:   make(map[string]*parsedModule),
	}
}

// RegisterBuiltin registers a built-in module (e.g. "stream", "fs") as a
// placeholder export bundle written in source form; its real behavior is
// provided by the host runtime. `import { Readable } from "stream"`
// resolves through the same path as user modules.
func (l *InMemoryLoader) RegisterBuiltin(name, source string) {
	l.Add("/"+name+".ts", source)
}

// Add registers a module's source text under a canonical path (e.g.
// "/lib/util.ts"). Re-adding a path replaces the source and invalidates
// its cached AST.
func (l *InMemoryLoader) Add(path, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[path] = source
	delete(l.cache, path)
}

// Resolve canonicalizes specifier against the importing module's path.
// Relative specifiers ("./util", "../a/b") join against the importer's
// directory; bare specifiers resolve from the root. A missing ".ts"
// extension is supplied.
func (l *InMemoryLoader) Resolve(specifier, importerPath string) (string, error) {
	p := specifier
	if strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		base := "/"
		if importerPath != "" {
			base = path.Dir(importerPath)
		}
		p = path.Join(base, p)
	} else if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if path.Ext(p) == "" {
		p += ".ts"
	}
	l.mu.Lock()
	_, ok := l.sources[p]
	l.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("cannot resolve module %q (imported from %q)", specifier, importerPath)
	}
	return p, nil
}

// Load parses the module at absolutePath, returning the cached AST on
// subsequent calls. Parse failures are returned as *ParseError and are
// cached too, so a broken module reports the same diagnostics every time
// it is imported.
func (l *InMemoryLoader) Load(absolutePath string) (*ast.Program, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(absolutePath)
}

func (l *InMemoryLoader) loadLocked(absolutePath string) (*ast.Program, error) {
	if m, ok := l.cache[absolutePath]; ok {
		return m.prog, parseErrOrNil(absolutePath, m.diags)
	}
	src, ok := l.sources[absolutePath]
	if !ok {
		return nil, fmt.Errorf("module not found: %s", absolutePath)
	}
	prog, diags := parser.New(lexer.New(src)).Parse()
	m := &parsedModule{prog: prog, diags: diags}
	l.cache[absolutePath] = m
	return prog, parseErrOrNil(absolutePath, diags)
}

func parseErrOrNil(path string, diags []diag.Diagnostic) error {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return &ParseError{Path: path, Diagnostics: diags}
		}
	}
	return nil
}

// Preload parses every registered module concurrently, bounded by the
// host's CPU count. Parsing is embarrassingly parallel since modules
// share no parser state; the cache fill is serialized per module by
// Load's lock. The first parse failure is returned, but all modules are
// still parsed and cached.
func (l *InMemoryLoader) Preload() error {
	l.mu.Lock()
	paths := make([]string, 0, len(l.sources))
	for p := range l.sources {
		paths = append(paths, p)
	}
	l.mu.Unlock()
	sort.Strings(paths)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, p := range paths {
		p := p
		g.Go(func() error {
			_, err := l.Load(p)
			return err
		})
	}
	return g.Wait()
}

// DependencyOrder returns entry's transitive import graph in evaluation
// order: leaves first, entry last. Cycles are tolerated (the member of a
// cycle reached first is emitted before the module that completes the
// cycle, matching the evaluator's partial-namespace cycle semantics).
func (l *InMemoryLoader) DependencyOrder(entry string) ([]string, error) {
	abs, err := l.Resolve(entry, "")
	if err != nil {
		return nil, err
	}
	var order []string
	visited := make(map[string]bool)
	var visit func(p string) error
	visit = func(p string) error {
		if visited[p] {
			return nil
		}
		visited[p] = true
		prog, err := l.Load(p)
		if err != nil {
			return err
		}
		for _, spec := range importSpecifiers(prog) {
			dep, err := l.Resolve(spec, p)
			if err != nil {
				return err
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, p)
		return nil
	}
	if err := visit(abs); err != nil {
		return nil, err
	}
	return order, nil
}

// importSpecifiers lists the static import/re-export specifiers of a
// parsed module, in declaration order.
func importSpecifiers(prog *ast.Program) []string {
	var specs []string
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.ImportDecl:
			if !s.TypeOnly {
				specs = append(specs, s.Module)
			}
		case *ast.ExportDecl:
			if s.Module != "" && !s.TypeOnly {
				specs = append(specs, s.Module)
			}
		}
	}
	return specs
}
