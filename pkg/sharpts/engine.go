// Package sharpts is the embedding facade for the SharpTS front end:
// lex, parse, type-check, and interpret TypeScript source through one
// Engine value. The CLI in cmd/sharpts is a thin wrapper over this
// package; tests drive whole programs through it and assert on captured
// output.
package sharpts

import (
	"fmt"
	"io"
	"os"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/checker"
	"github.com/sharpts-lang/sharpts/internal/diag"
	"github.com/sharpts-lang/sharpts/internal/evaluator"
	"github.com/sharpts-lang/sharpts/internal/lexer"
	"github.com/sharpts-lang/sharpts/internal/loader"
	"github.com/sharpts-lang/sharpts/internal/parser"
)

// Engine bundles the front-end pipeline behind a single reusable value.
// An Engine is not safe for concurrent use; create one per goroutine.
type Engine struct {
	out       io.Writer
	loader    loader.Loader
	typeCheck bool
}

// Option configures a new Engine.
type Option func(*Engine) error

// WithOutput redirects `console.log` and friends; defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) error {
		if w == nil {
			return fmt.Errorf("sharpts: nil output writer")
		}
		e.out = w
		return nil
	}
}

// WithLoader injects the module loader used to resolve `import`
// declarations; without one, importing modules is a runtime error.
func WithLoader(l loader.Loader) Option {
	return func(e *Engine) error {
		e.loader = l
		return nil
	}
}

// WithoutTypeCheck skips static checking before evaluation; parse errors
// still abort. Used by the REPL, where incomplete programs are routine.
func WithoutTypeCheck() Option {
	return func(e *Engine) error {
		e.typeCheck = false
		return nil
	}
}

// New builds an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{out: os.Stdout, typeCheck: true}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Result carries the outcome of an Eval run: the final statement's value
// (rendered), and any diagnostics that were produced on the way.
type Result struct {
	Value       string
	Diagnostics []diag.Diagnostic
}

// Parse runs the lexer and parser only.
func (e *Engine) Parse(source string) (*ast.Program, []diag.Diagnostic) {
	return parser.New(lexer.New(source)).Parse()
}

// Check parses and type-checks source, returning all diagnostics in
// source order. An empty slice means the program is well-formed.
func (e *Engine) Check(source string) []diag.Diagnostic {
	prog, diags := e.Parse(source)
	if hasErrors(diags) {
		return diags
	}
	_, checkDiags := checker.Check(prog)
	return append(diags, checkDiags...)
}

// Eval parses, checks, and interprets source. Compile-time errors abort
// before evaluation and are returned in Result.Diagnostics alongside a
// non-nil error; runtime errors surface as the returned error with the
// thrown value's name and message.
func (e *Engine) Eval(source string) (*Result, error) {
	prog, diags := e.Parse(source)
	if hasErrors(diags) {
		return &Result{Diagnostics: diags}, fmt.Errorf("parsing failed with %d error(s)", countErrors(diags))
	}

	var typeMap *checker.TypeMap
	if e.typeCheck {
		tm, checkDiags := checker.Check(prog)
		diags = append(diags, checkDiags...)
		if hasErrors(checkDiags) {
			return &Result{Diagnostics: diags}, fmt.Errorf("type checking failed with %d error(s)", countErrors(checkDiags))
		}
		typeMap = tm
	}

	evOpts := []evaluator.Option{
		evaluator.WithStdout(func(s string) { fmt.Fprintln(e.out, s) }),
	}
	if typeMap != nil {
		evOpts = append(evOpts, evaluator.WithTypeMap(typeMap))
	}
	if e.loader != nil {
		evOpts = append(evOpts, evaluator.WithLoader(e.loader))
	}
	ev := evaluator.New(evOpts...)
	res, err := ev.Run(prog)
	if err != nil {
		return &Result{Diagnostics: diags}, err
	}
	out := &Result{Diagnostics: diags}
	if res.Value != nil {
		out.Value = res.Value.String()
	}
	return out, nil
}

func hasErrors(diags []diag.Diagnostic) bool { return countErrors(diags) > 0 }

func countErrors(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.Error {
			n++
		}
	}
	return n
}
