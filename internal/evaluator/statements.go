package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// execStatements threads an ExecutionResult through a statement list:
// each statement runs in order; the first abrupt completion stops the
// list and propagates upward.
func (ev *Evaluator) execStatements(ctx *Context, stmts []ast.Statement) ExecutionResult {
	last := normal(runtime.Undefined{})
	for _, s := range stmts {
		last = ev.Exec(ctx, s)
		if last.IsAbrupt() {
			return last
		}
	}
	return last
}

func execExpressionStatement(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ExpressionStatement)
	v := ev.Eval(ctx, n.Expr)
	return normal(v)
}

func execSequence(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Sequence)
	return ev.execStatements(ctx, n.Statements)
}

// execBlock pushes a fresh lexical scope (block statements introduce a
// child scope for let/const) and a disposal tracker for any
// `using` bindings declared directly within it, disposing them in
// reverse-declaration order on every exit path, normal or abrupt.
func execBlock(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Block)
	return ev.runBlockBody(ctx, n.Statements)
}

func (ev *Evaluator) runBlockBody(ctx *Context, stmts []ast.Statement) ExecutionResult {
	inner := ctx.child()
	scope := &disposalScope{}
	inner.disposals = scope
	result := runCatchingThrow(func() ExecutionResult {
		return ev.execStatements(inner, stmts)
	})
	return ev.disposeScope(inner, scope, result)
}

func execVarStatement(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.VarStatement)
	isConst := n.Kind == ast.VarConst
	for _, d := range n.Declarators {
		var v runtime.Value = runtime.Undefined{}
		if d.Initializer != nil {
			v = ev.Eval(ctx, d.Initializer)
		}
		if d.Pattern != nil {
			if res := ev.bindPattern(ctx, d.Pattern, v, isConst); res.IsAbrupt() {
				return res
			}
			continue
		}
		ctx.env.Define(d.Name, v, isConst)
	}
	return normal(runtime.Undefined{})
}

func execIf(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.If)
	if truthy(ev.Eval(ctx, n.Cond)) {
		return ev.Exec(ctx, n.Consequent)
	}
	if n.Alternate != nil {
		return ev.Exec(ctx, n.Alternate)
	}
	return normal(runtime.Undefined{})
}

func execWhile(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.While)
	for truthy(ev.Eval(ctx, n.Cond)) {
		r := ev.Exec(ctx, n.Body)
		if brk, done := handleLoopResult(r, ""); done {
			return brk
		}
	}
	return normal(runtime.Undefined{})
}

func execDoWhile(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.DoWhile)
	for {
		r := ev.Exec(ctx, n.Body)
		if brk, done := handleLoopResult(r, ""); done {
			return brk
		}
		if !truthy(ev.Eval(ctx, n.Cond)) {
			break
		}
	}
	return normal(runtime.Undefined{})
}

// execFor implements the C-style for loop directly against ast.For's
// original (non-desugared) fields: the parser retains Init/Cond/Update
// so the checker (and this evaluator) can work from the original form
// without re-deriving it. Each iteration gets its own child scope so a
// `let`-bound loop variable is captured per-iteration by closures formed
// in the body, matching ECMAScript's per-iteration binding semantics.
func execFor(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.For)
	loopCtx := ctx.child()
	if n.Init != nil {
		if r := ev.Exec(loopCtx, n.Init); r.IsAbrupt() {
			return r
		}
	}
	for n.Cond == nil || truthy(ev.Eval(loopCtx, n.Cond)) {
		iterCtx := loopCtx.child()
		copyBindings(loopCtx.env, iterCtx.env)
		r := ev.Exec(iterCtx, n.Body)
		copyBindingsBack(iterCtx.env, loopCtx.env)
		if brk, done := handleLoopResult(r, ""); done {
			return brk
		}
		if n.Update != nil {
			ev.Eval(loopCtx, n.Update)
		}
	}
	return normal(runtime.Undefined{})
}

// copyBindings/copyBindingsBack give each for-loop iteration its own
// binding for variables declared in the Init clause while keeping the
// value threaded across iterations, matching JS's "fresh per-iteration
// `let` binding initialized from the previous iteration's value" rule.
func copyBindings(from, to *runtime.Environment) {
	for _, name := range from.OwnNames() {
		v, _ := from.Get(name)
		to.Define(name, v, false)
	}
}

func copyBindingsBack(from, to *runtime.Environment) {
	for _, name := range from.OwnNames() {
		v, _ := from.Get(name)
		to.Assign(name, v)
	}
}

// handleLoopResult interprets an ExecutionResult produced by a loop
// body: Break (matching label or unlabeled) ends the loop (returned
// wrapped as Normal so the enclosing statement list keeps going); a
// matching Continue ends the current iteration only; anything else
// (Return, Throw, or a Break/Continue with a different label) propagates.
func handleLoopResult(r ExecutionResult, label string) (ExecutionResult, bool) {
	switch r.Kind {
	case BreakResult:
		if r.Label == "" || r.Label == label {
			return normal(runtime.Undefined{}), true
		}
		return r, true
	case ContinueResult:
		if r.Label == "" || r.Label == label {
			return ExecutionResult{}, false
		}
		return r, true
	case ReturnResult, ThrowResult:
		return r, true
	default:
		return ExecutionResult{}, false
	}
}

func execForOf(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ForOf)
	iterable := ev.Eval(ctx, n.Iterable)
	it, thrown := ev.getIterator(ctx, iterable, n.Await)
	if thrown != nil {
		return *thrown
	}
	for {
		value, done, thrown := ev.iteratorNext(ctx, it, n.Await)
		if thrown != nil {
			return *thrown
		}
		if done {
			break
		}
		iterCtx := ctx.child()
		if n.Pattern != nil {
			if r := ev.bindPattern(iterCtx, n.Pattern, value, n.Kind == ast.VarConst); r.IsAbrupt() {
				return r
			}
		} else {
			iterCtx.env.Define(n.Name, value, n.Kind == ast.VarConst)
		}
		r := ev.Exec(iterCtx, n.Body)
		if brk, stop := handleLoopResult(r, ""); stop {
			ev.closeIterator(it)
			return brk
		}
	}
	return normal(runtime.Undefined{})
}

func execForIn(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ForIn)
	objVal := ev.Eval(ctx, n.Object)
	keys := enumerableKeys(objVal)
	for _, k := range keys {
		iterCtx := ctx.child()
		if n.Pattern != nil {
			if r := ev.bindPattern(iterCtx, n.Pattern, runtime.String(k), n.Kind == ast.VarConst); r.IsAbrupt() {
				return r
			}
		} else {
			iterCtx.env.Define(n.Name, runtime.String(k), n.Kind == ast.VarConst)
		}
		r := ev.Exec(iterCtx, n.Body)
		if brk, stop := handleLoopResult(r, ""); stop {
			return brk
		}
	}
	return normal(runtime.Undefined{})
}

// enumerableKeys returns the for-in enumeration order for v: ascending
// numeric-index keys first, then string keys in insertion order (Object already keeps this
// order; Instance/Array are generalized to the same rule here).
func enumerableKeys(v runtime.Value) []string {
	switch o := v.(type) {
	case *runtime.Object:
		return o.Keys()
	case *runtime.Array:
		keys := make([]string, len(o.Elements))
		for i := range o.Elements {
			keys[i] = intToKey(i)
		}
		return keys
	case *runtime.Instance:
		names := make([]string, 0, len(o.Fields))
		for name := range o.Fields {
			names = append(names, name)
		}
		return names
	default:
		return nil
	}
}

func execSwitch(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Switch)
	discriminant := ev.Eval(ctx, n.Discriminant)
	switchCtx := ctx.child()
	matched := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		if strictEquals(discriminant, ev.Eval(switchCtx, c.Test)) {
			matched = i
			break
		}
	}
	if matched == -1 {
		for i, c := range n.Cases {
			if c.Test == nil {
				matched = i
				break
			}
		}
	}
	if matched == -1 {
		return normal(runtime.Undefined{})
	}
	for i := matched; i < len(n.Cases); i++ {
		r := ev.execStatements(switchCtx, n.Cases[i].Statements)
		if r.IsAbrupt() {
			if r.Kind == BreakResult && r.Label == "" {
				return normal(runtime.Undefined{})
			}
			return r
		}
	}
	return normal(runtime.Undefined{})
}

// execTryCatch: the finally block always runs
// (even when try/catch produced an abrupt completion), and a finally
// block that itself completes abruptly overrides any pending result.
func execTryCatch(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.TryCatch)
	result := ev.runBlockBody(ctx, n.Try.Statements)
	if result.Kind == ThrowResult && n.Catch != nil {
		catchCtx := ctx.child()
		if n.Catch.ParamName != "" {
			catchCtx.env.Define(n.Catch.ParamName, result.Value, false)
		} else if n.Catch.Pattern != nil {
			ev.bindPattern(catchCtx, n.Catch.Pattern, result.Value, false)
		}
		result = ev.runBlockBody(catchCtx, n.Catch.Body.Statements)
	}
	if n.Finally != nil {
		finallyResult := ev.runBlockBody(ctx, n.Finally.Statements)
		if finallyResult.IsAbrupt() {
			return finallyResult
		}
	}
	return result
}

func execThrow(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Throw)
	v := ev.Eval(ctx, n.Expr)
	if errVal, ok := v.(*runtime.Error); ok && errVal.Stack == "" {
		errVal.Stack = ev.stackTrace()
	}
	return ExecutionResult{Kind: ThrowResult, Value: v}
}

func execReturn(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Return)
	var v runtime.Value = runtime.Undefined{}
	if n.Expr != nil {
		v = ev.Eval(ctx, n.Expr)
	}
	return ExecutionResult{Kind: ReturnResult, Value: v}
}

func execBreak(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Break)
	return ExecutionResult{Kind: BreakResult, Label: n.Label}
}

func execContinue(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Continue)
	return ExecutionResult{Kind: ContinueResult, Label: n.Label}
}

// execLabeledStatement runs Body, absorbing a Break/Continue that
// carries its own label (a labeled break/continue unwinds until it meets
// a labeled statement whose label matches).
// For a labeled loop, Continue is handled one level down by the loop's
// own handleLoopResult call using this label; here we only need to catch
// a Break aimed at this exact label (e.g. `outer: { ... break outer; }`
// on a non-loop body, or a Break that escaped the loop body unmatched).
func execLabeledStatement(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.LabeledStatement)
	r := ev.execLabeled(ctx, n.Label, n.Body)
	if r.Kind == BreakResult && r.Label == n.Label {
		return normal(runtime.Undefined{})
	}
	return r
}

// execLabeled dispatches Body the same as Exec, except loop statements
// are given the enclosing label so their own break/continue handling can
// match it directly, before the outer LabeledStatement wrapper does.
func (ev *Evaluator) execLabeled(ctx *Context, label string, body ast.Statement) ExecutionResult {
	switch n := body.(type) {
	case *ast.While:
		for truthy(ev.Eval(ctx, n.Cond)) {
			r := ev.Exec(ctx, n.Body)
			if brk, done := handleLoopResult(r, label); done {
				return brk
			}
		}
		return normal(runtime.Undefined{})
	case *ast.DoWhile:
		for {
			r := ev.Exec(ctx, n.Body)
			if brk, done := handleLoopResult(r, label); done {
				return brk
			}
			if !truthy(ev.Eval(ctx, n.Cond)) {
				break
			}
		}
		return normal(runtime.Undefined{})
	case *ast.For:
		return ev.execForLabeled(ctx, n, label)
	case *ast.ForOf:
		return ev.execForOfLabeled(ctx, n, label)
	case *ast.ForIn:
		return ev.execForInLabeled(ctx, n, label)
	default:
		return ev.Exec(ctx, body)
	}
}

func (ev *Evaluator) execForLabeled(ctx *Context, n *ast.For, label string) ExecutionResult {
	loopCtx := ctx.child()
	if n.Init != nil {
		if r := ev.Exec(loopCtx, n.Init); r.IsAbrupt() {
			return r
		}
	}
	for n.Cond == nil || truthy(ev.Eval(loopCtx, n.Cond)) {
		iterCtx := loopCtx.child()
		copyBindings(loopCtx.env, iterCtx.env)
		r := ev.Exec(iterCtx, n.Body)
		copyBindingsBack(iterCtx.env, loopCtx.env)
		if brk, done := handleLoopResult(r, label); done {
			return brk
		}
		if n.Update != nil {
			ev.Eval(loopCtx, n.Update)
		}
	}
	return normal(runtime.Undefined{})
}

func (ev *Evaluator) execForOfLabeled(ctx *Context, n *ast.ForOf, label string) ExecutionResult {
	iterable := ev.Eval(ctx, n.Iterable)
	it, thrown := ev.getIterator(ctx, iterable, n.Await)
	if thrown != nil {
		return *thrown
	}
	for {
		value, done, thrown := ev.iteratorNext(ctx, it, n.Await)
		if thrown != nil {
			return *thrown
		}
		if done {
			break
		}
		iterCtx := ctx.child()
		if n.Pattern != nil {
			ev.bindPattern(iterCtx, n.Pattern, value, n.Kind == ast.VarConst)
		} else {
			iterCtx.env.Define(n.Name, value, n.Kind == ast.VarConst)
		}
		r := ev.Exec(iterCtx, n.Body)
		if brk, stop := handleLoopResult(r, label); stop {
			ev.closeIterator(it)
			return brk
		}
	}
	return normal(runtime.Undefined{})
}

func (ev *Evaluator) execForInLabeled(ctx *Context, n *ast.ForIn, label string) ExecutionResult {
	objVal := ev.Eval(ctx, n.Object)
	for _, k := range enumerableKeys(objVal) {
		iterCtx := ctx.child()
		if n.Pattern != nil {
			ev.bindPattern(iterCtx, n.Pattern, runtime.String(k), n.Kind == ast.VarConst)
		} else {
			iterCtx.env.Define(n.Name, runtime.String(k), n.Kind == ast.VarConst)
		}
		r := ev.Exec(iterCtx, n.Body)
		if brk, stop := handleLoopResult(r, label); stop {
			return brk
		}
	}
	return normal(runtime.Undefined{})
}

func execFunctionDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.FunctionDecl)
	if n.Body == nil || n.Name == "" {
		return normal(runtime.Undefined{}) // overload signature; no runtime effect
	}
	fn := ev.makeFunction(ctx, n)
	ctx.env.Define(n.Name, fn, false)
	return normal(runtime.Undefined{})
}

func execNamespaceDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.NamespaceDecl)
	nsEnv := ctx.env.Child()
	nsCtx := ctx.child()
	nsCtx.env = nsEnv
	if r := ev.execStatements(nsCtx, n.Members); r.IsAbrupt() {
		return r
	}
	members := make(map[string]runtime.Value)
	for _, name := range nsEnv.OwnNames() {
		v, _ := nsEnv.Get(name)
		members[name] = v
	}
	ctx.env.Define(n.Name, &runtime.Namespace{Name: n.Name, Members: members}, false)
	return normal(runtime.Undefined{})
}

func execImportDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ImportDecl)
	return ev.loadModuleInto(ctx, n.Module, n.Default, n.Namespace, n.Specifiers)
}

func execImportAliasDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ImportAliasDecl)
	var v runtime.Value = runtime.Undefined{}
	if len(n.Path) > 0 {
		v, _ = ctx.env.Get(n.Path[0])
		for _, p := range n.Path[1:] {
			v = ev.getMember(v, p)
		}
	}
	ctx.env.Define(n.Name, v, false)
	return normal(runtime.Undefined{})
}

func execExportDecl(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.ExportDecl)
	if n.TypeOnly {
		return normal(runtime.Undefined{})
	}
	if n.Decl != nil {
		r := ev.Exec(ctx, n.Decl)
		if r.IsAbrupt() {
			return r
		}
		if n.Default && ctx.exports != nil {
			if _, ok := n.Decl.(*ast.ExpressionStatement); ok {
				// `export default <expr>` carries no binding name; the
				// expression's value is the export itself.
				ctx.exports.Members["default"] = r.Value
				return r
			}
		}
		ev.recordExports(ctx, n.Decl, n.Default)
		return r
	}
	if n.Module != "" {
		// Re-export: pull the source module's bindings straight into the
		// export namespace without touching the local scope.
		ns, err := ev.loadModule(n.Module)
		if err != nil {
			if ue, ok := err.(*UncaughtError); ok {
				return ExecutionResult{Kind: ThrowResult, Value: ue.Value}
			}
			return ExecutionResult{Kind: ThrowResult, Value: newError("Error", err.Error())}
		}
		if ctx.exports != nil {
			if len(n.Specifiers) == 0 {
				// `export * from "mod"` forwards every named export.
				for name, v := range ns.Members {
					if name != "default" {
						ctx.exports.Members[name] = v
					}
				}
			}
			for _, sp := range n.Specifiers {
				if sp.TypeOnly {
					continue
				}
				local := sp.Local
				if local == "" {
					local = sp.Imported
				}
				ctx.exports.Members[local] = memberOrUndefined(ns, sp.Imported)
			}
		}
		return normal(runtime.Undefined{})
	}
	// `export { a, b as c }` referencing existing local bindings.
	if ctx.exports != nil {
		for _, sp := range n.Specifiers {
			if sp.TypeOnly {
				continue
			}
			local := sp.Local
			if local == "" {
				local = sp.Imported
			}
			v, _ := ctx.env.Get(sp.Imported)
			ctx.exports.Members[local] = v
		}
	}
	return normal(runtime.Undefined{})
}

func intToKey(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
