// Package evaluator implements the tree-walking interpreter: a
// dispatch-table-driven evaluator that executes internal/ast nodes
// against an internal/runtime.Environment scope chain, threading an
// explicit ExecutionResult sum through statement execution instead of
// host exceptions for break/continue/return/throw.
//
// Throw is a first-class abrupt completion rather than a side-channel
// field so that try/catch/finally interaction falls out of ordinary
// completion propagation. Host panics are reserved for interpreter
// bugs; the boundary translates anything else into a thrown Error
// value before user code can observe it.
package evaluator

import (
	"fmt"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/checker"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// ResultKind discriminates ExecutionResult's completion type.
type ResultKind int

const (
	Normal ResultKind = iota
	ReturnResult
	BreakResult
	ContinueResult
	ThrowResult
)

// ExecutionResult is the evaluator's abrupt-completion sum. A Normal
// result carries the last expression-statement's value (used by REPL-like
// callers); any other kind is "abrupt" and propagates through statement
// lists until a construct (loop, switch, function call, try/catch)
// consumes it.
type ExecutionResult struct {
	Kind  ResultKind
	Value runtime.Value // Return/Throw payload
	Label string        // Break/Continue target label, "" if unlabeled
}

func normal(v runtime.Value) ExecutionResult { return ExecutionResult{Kind: Normal, Value: v} }

// IsAbrupt reports whether r is anything other than Normal.
func (r ExecutionResult) IsAbrupt() bool { return r.Kind != Normal }

// Loader is the injected module-loading collaborator; the
// evaluator calls it to pull additional module ASTs into the pipeline
// when it evaluates an Import/DynamicImport/re-export.
type Loader interface {
	Resolve(specifier, importerPath string) (string, error)
	Load(absolutePath string) (*ast.Program, error)
}

// Evaluator holds all state threaded through one Run call: the global
// scope, the dispatch registries, the microtask queue driving async
// resumption, and the module loader.
type Evaluator struct {
	globals *runtime.Environment
	types   *checker.TypeMap
	loader  Loader

	exprDispatch map[string]exprHandler
	stmtDispatch map[string]stmtHandler

	microtasks []func()

	callStack []callFrame
	maxDepth  int

	stdout func(string)

	modules       map[string]*runtime.Namespace // absolute path -> cached, evaluated module exports
	currentModule string                        // importer path threaded through nested Resolve calls
}

type callFrame struct {
	funcName string
}

type exprHandler func(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value
type stmtHandler func(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult

// Option configures a new Evaluator, following the same functional-
// option convention the lexer and parser use.
type Option func(*Evaluator)

// WithLoader injects a module loader; if omitted, import/export of other
// modules is unsupported and evaluating one throws an Error.
func WithLoader(l Loader) Option {
	return func(ev *Evaluator) { ev.loader = l }
}

// WithTypeMap injects the checker's resolved TypeMap so the evaluator can
// consult static types for runtime decisions, e.g.
// whether a `+` operand pair is numeric-add or string-concat when one
// side is statically `any`.
func WithTypeMap(tm *checker.TypeMap) Option {
	return func(ev *Evaluator) { ev.types = tm }
}

// WithStdout overrides where `console.log` and friends write; defaults to
// fmt.Println-equivalent behavior collecting nothing.
func WithStdout(w func(string)) Option {
	return func(ev *Evaluator) { ev.stdout = w }
}

const defaultMaxRecursionDepth = 2048

// New builds an Evaluator with a fresh global scope seeded with the
// host-runtime placeholder built-ins (console, Math, JSON, Promise,
// Date, RegExp) and a frozen, exhaustiveness-checked dispatch registry.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		globals:  runtime.NewEnvironment(),
		maxDepth: defaultMaxRecursionDepth,
		modules:  make(map[string]*runtime.Namespace),
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.stdout == nil {
		ev.stdout = func(s string) { fmt.Println(s) }
	}
	ev.installExprDispatch()
	ev.installStmtDispatch()
	installBuiltins(ev, ev.globals)
	return ev
}

// Globals exposes the root scope, letting callers (the CLI REPL, tests)
// inject additional bindings before Run.
func (ev *Evaluator) Globals() *runtime.Environment { return ev.globals }

// Run evaluates an entire program's top-level statements against the
// global scope and drains the microtask queue (settling any promises
// that were still pending once synchronous execution finished). All user
// code runs on the single goroutine that called Run.
func (ev *Evaluator) Run(program *ast.Program) (ExecutionResult, error) {
	ctx := &Context{env: ev.globals, thisVal: runtime.Undefined{}, disposals: &disposalScope{}}
	result := runCatchingThrow(func() ExecutionResult {
		return ev.execStatements(ctx, program.Statements)
	})
	result = ev.disposeScope(ctx, ctx.disposals, result)
	ev.DrainMicrotasks()
	if result.Kind == ThrowResult {
		return result, &UncaughtError{Value: result.Value}
	}
	return result, nil
}

// UncaughtError wraps a runtime Throw value that escaped top-level
// script execution, for callers that report uncaught errors.
type UncaughtError struct{ Value runtime.Value }

func (e *UncaughtError) Error() string {
	if errVal, ok := e.Value.(*runtime.Error); ok {
		return errVal.Name + ": " + errVal.Message
	}
	return "Uncaught: " + e.Value.String()
}

// QueueMicrotask appends fn to the cooperative microtask queue: promise
// reactions and async resumption never run until the current synchronous
// stack unwinds.
func (ev *Evaluator) QueueMicrotask(fn func()) {
	ev.microtasks = append(ev.microtasks, fn)
}

// DrainMicrotasks runs queued microtasks to exhaustion (a microtask may
// itself enqueue more, e.g. chained `.then`s), preserving FIFO resolution
// order.
func (ev *Evaluator) DrainMicrotasks() {
	for len(ev.microtasks) > 0 {
		next := ev.microtasks[0]
		ev.microtasks = ev.microtasks[1:]
		next()
	}
}

// Context threads the pieces of evaluation state that change per lexical
// and dynamic scope (the current environment, `this`, the enclosing
// function's async/generator control surfaces, the block's disposal
// scope, and a module's export namespace) without a global mutable
// Evaluator field.
type Context struct {
	env     *runtime.Environment
	thisVal runtime.Value

	// async/generator suspension hook: non-nil only inside an async
	// function/arrow body or an async generator body. await/yield call
	// through it instead of returning directly.
	suspend *suspendSurface

	disposals *disposalScope

	// exports is the namespace collecting `export` declarations while a
	// module's top-level code runs; nil for plain scripts.
	exports *runtime.Namespace
}

// child returns a Context sharing everything but a fresh nested
// Environment, used for block scopes, loop bodies, and catch bindings.
func (c *Context) child() *Context {
	n := *c
	n.env = c.env.Child()
	n.disposals = nil
	return &n
}

// withThis returns a Context with a rebound `this`, used for function
// calls that bind `this` from the call site (plain functions, methods).
func (c *Context) withThis(this runtime.Value) *Context {
	n := *c
	n.thisVal = this
	return &n
}
