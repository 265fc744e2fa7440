package evaluator

import (
	"strings"

	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// throwPanic carries an uncaught Throw ExecutionResult across a Go call
// boundary that has no ExecutionResult-typed return path (expression
// evaluation). The evaluator never uses host exceptions for *normal*
// control flow; this is strictly an implementation mechanism to cross Eval's `Value`-only return type, and
// is always recovered at the nearest enclosing block or function-call
// boundary and turned back into an ordinary ExecutionResult before any
// caller-visible behavior is decided).
type throwPanic struct{ result ExecutionResult }

func newThrowPanic(v runtime.Value) throwPanic {
	return throwPanic{ExecutionResult{Kind: ThrowResult, Value: v}}
}

// runCatchingThrow executes f, converting a throwPanic that unwinds out
// of it back into the ExecutionResult it carries; any other panic (a
// genuine interpreter defect) is not recovered and continues unwinding.
func runCatchingThrow(f func() ExecutionResult) (result ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			if tp, ok := r.(throwPanic); ok {
				result = tp.result
				return
			}
			panic(r)
		}
	}()
	return f()
}

func (ev *Evaluator) evalArgs(ctx *Context, args []ast.Expression) []runtime.Value {
	var out []runtime.Value
	for _, a := range args {
		if spread, ok := a.(*ast.Spread); ok {
			out = append(out, ev.spreadValues(ctx, spread.Expr)...)
			continue
		}
		out = append(out, ev.Eval(ctx, a))
	}
	return out
}

func evalCall(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Call)
	if sup, ok := n.Callee.(*ast.Super); ok && sup.Kind == ast.SuperConstructorCall {
		args := ev.evalArgs(ctx, n.Args)
		ev.callSuperConstructor(ctx, args)
		return runtime.Undefined{}
	}
	// Method call: `obj.method(args)` evaluates the receiver once and
	// binds it as `this`, rather than evaluating Get then calling the
	// resulting closure with an unbound `this`.
	if get, ok := n.Callee.(*ast.Get); ok {
		if sup, ok := get.Object.(*ast.Super); ok {
			_ = sup
			method := ev.getSuperMember(ctx, get.Name.Name)
			args := ev.evalArgs(ctx, n.Args)
			return ev.callValue(ctx, method, ctx.thisVal, args)
		}
		receiver := ev.Eval(ctx, get.Object)
		if (get.Optional || n.Optional) && isNullish(receiver) {
			return runtime.Undefined{}
		}
		method := ev.getMember(receiver, get.Name.Name)
		args := ev.evalArgs(ctx, n.Args)
		if isNullish(method) {
			if n.Optional {
				return runtime.Undefined{}
			}
			panic(newThrowPanic(newError("TypeError", receiver.String()+"."+get.Name.Name+" is not a function")))
		}
		return ev.callValue(ctx, method, receiver, args)
	}
	if getIdx, ok := n.Callee.(*ast.GetIndex); ok {
		receiver := ev.Eval(ctx, getIdx.Object)
		method := ev.getIndexed(receiver, ev.Eval(ctx, getIdx.Index))
		args := ev.evalArgs(ctx, n.Args)
		return ev.callValue(ctx, method, receiver, args)
	}
	callee := ev.Eval(ctx, n.Callee)
	if n.Optional && isNullish(callee) {
		return runtime.Undefined{}
	}
	args := ev.evalArgs(ctx, n.Args)
	return ev.callValue(ctx, callee, runtime.Undefined{}, args)
}

// callValue invokes any callable runtime.Value: a user/native Function,
// or a Class used as a tag function is not applicable (classes are only
// invocable through `new`, enforced by the checker; calling one at
// runtime throws).
func (ev *Evaluator) callValue(ctx *Context, callee runtime.Value, this runtime.Value, args []runtime.Value) runtime.Value {
	fn, ok := callee.(*runtime.Function)
	if !ok {
		panic(newThrowPanic(newError("TypeError", toStringValue(callee)+" is not a function")))
	}
	return ev.invokeFunction(fn, this, args)
}

// invokeFunction calls fn. Natives run directly; a generator function
// returns its generator object and an async function its Promise. An
// ordinary function runs to completion: a fresh RuntimeEnvironment
// child of the function's captured Env, parameters bound by position
// (with defaults/rest), and a Return completion converted into the call
// expression's value. A Throw completion is converted to a throwPanic so
// it can cross back out through Eval's Value-only return type to the
// nearest enclosing recovery point.
func (ev *Evaluator) invokeFunction(fn *runtime.Function, this runtime.Value, args []runtime.Value) runtime.Value {
	if fn.ThisAwareNative != nil {
		return fn.ThisAwareNative(args, this)
	}
	if fn.Native != nil {
		v, err := fn.Native(args)
		if err != nil {
			panic(newThrowPanic(newError("Error", err.Error())))
		}
		return v
	}
	ev.pushFrame(fn.Name)
	defer ev.popFrame()
	if fn.IsGenerator {
		return ev.makeGenerator(fn, this, args)
	}
	if fn.IsAsync {
		return ev.runAsyncFunction(fn, this, args)
	}
	bodyEnv := fn.Env.Child()
	thisVal := this
	if fn.ThisVal != nil {
		thisVal = fn.ThisVal // arrow functions: `this` is lexically captured, never rebound
	}
	ev.bindParams(bodyEnv, fn.Params, args)
	bodyCtx := &Context{env: bodyEnv, thisVal: thisVal}
	result := ev.runFunctionBody(bodyCtx, fn.Body)
	switch result.Kind {
	case ThrowResult:
		panic(throwPanic{result})
	case ReturnResult:
		return result.Value
	default:
		return runtime.Undefined{}
	}
}

// pushFrame records the active call for stack traces and enforces the
// recursion ceiling; an overflow is a RangeError thrown into user code,
// not a Go stack exhaustion.
func (ev *Evaluator) pushFrame(name string) {
	if len(ev.callStack) >= ev.maxDepth {
		panic(newThrowPanic(newError("RangeError", "Maximum call stack size exceeded")))
	}
	if name == "" {
		name = "<anonymous>"
	}
	ev.callStack = append(ev.callStack, callFrame{funcName: name})
}

func (ev *Evaluator) popFrame() {
	ev.callStack = ev.callStack[:len(ev.callStack)-1]
}

// stackTrace renders the active call stack innermost-first, captured at
// throw time into Error values.
func (ev *Evaluator) stackTrace() string {
	var sb strings.Builder
	for i := len(ev.callStack) - 1; i >= 0; i-- {
		sb.WriteString("    at ")
		sb.WriteString(ev.callStack[i].funcName)
		sb.WriteString("\n")
	}
	sb.WriteString("    at <top level>\n")
	return sb.String()
}

// runFunctionBody executes a function's body, which is either a *ast.Block
// (the common case) or a bare Expression (a concise-body arrow function,
// whose value is always the implicit return value).
func (ev *Evaluator) runFunctionBody(ctx *Context, body interface{}) ExecutionResult {
	switch b := body.(type) {
	case *ast.Block:
		return ev.runBlockBody(ctx, b.Statements)
	case ast.Expression:
		v := runCatchingThrow(func() ExecutionResult {
			return normal(ev.Eval(ctx, b))
		})
		if v.Kind == ThrowResult {
			return v
		}
		return ExecutionResult{Kind: ReturnResult, Value: v.Value}
	default:
		return normal(runtime.Undefined{})
	}
}

// bindParams binds positional arguments to fn's parameter list, handling
// rest parameters, destructuring patterns, and defaults (applied when
// the caller passed undefined or omitted the argument).
func (ev *Evaluator) bindParams(env *runtime.Environment, params []runtime.Param, args []runtime.Value) {
	defCtx := &Context{env: env, thisVal: runtime.Undefined{}}
	for i, p := range params {
		if p.Rest {
			rest := &runtime.Array{}
			if i < len(args) {
				rest.Elements = append(rest.Elements, args[i:]...)
			}
			env.Define(p.Name, rest, false)
			return
		}
		var v runtime.Value = runtime.Undefined{}
		if i < len(args) {
			v = args[i]
		}
		if _, isUndef := v.(runtime.Undefined); isUndef && p.HasDefault {
			if defExpr, ok := p.Default.(ast.Expression); ok {
				v = ev.Eval(defCtx, defExpr)
			}
		}
		if pattern, ok := p.Pattern.(ast.Expression); ok && pattern != nil {
			ev.bindPattern(defCtx, pattern, v, false)
			continue
		}
		if p.Name != "" {
			env.Define(p.Name, v, false)
		}
	}
}

func evalNew(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.New)
	calleeVal := ev.Eval(ctx, n.Callee)
	args := ev.evalArgs(ctx, n.Args)
	switch callee := calleeVal.(type) {
	case *runtime.Class:
		return ev.instantiate(ctx, callee, args)
	case *runtime.Function:
		// Built-in constructors (Error, Map, Date, ...) are native
		// functions whose call and construct behavior coincide.
		if callee.Native != nil {
			return ev.callValue(ctx, callee, runtime.Undefined{}, args)
		}
	}
	panic(newThrowPanic(newError("TypeError", toStringValue(calleeVal)+" is not a constructor")))
}

func (ev *Evaluator) evalArrowFunctionBody(ctx *Context, n *ast.ArrowFunction) *runtime.Function {
	fn := &runtime.Function{
		Name:        "",
		Params:      toRuntimeParams(n.Params),
		IsAsync:     n.Flags.IsAsync,
		IsGenerator: n.Flags.IsGenerator,
		Env:         ctx.env,
		Body:        arrowBody(n),
	}
	// Arrows capture the enclosing `this` lexically; `function`
	// expressions (HasOwnThis) bind it from the call site instead.
	if !n.Flags.HasOwnThis {
		fn.ThisVal = ctx.thisVal
	}
	return fn
}

func arrowBody(n *ast.ArrowFunction) interface{} {
	switch b := n.Body.(type) {
	case *ast.Block:
		return b
	case ast.Expression:
		return b
	default:
		return nil
	}
}

func evalArrowFunction(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	return ev.evalArrowFunctionBody(ctx, e.(*ast.ArrowFunction))
}

func toRuntimeParams(params []ast.Param) []runtime.Param {
	out := make([]runtime.Param, len(params))
	for i, p := range params {
		out[i] = runtime.Param{
			Name:       p.Name,
			Rest:       p.Modifiers.Rest,
			HasDefault: p.Modifiers.HasDefault,
			Default:    p.Default,
			Pattern:    p.Pattern,
		}
	}
	return out
}

// makeFunction builds a closure Function value for a named function
// declaration or method, capturing ctx.env as its lexical scope. A named function expression additionally defines its
// own name, read-only, inside its own body scope.
func (ev *Evaluator) makeFunction(ctx *Context, n *ast.FunctionDecl) *runtime.Function {
	closureEnv := ctx.env
	if n.Name != "" {
		closureEnv = ctx.env.Child()
	}
	fn := &runtime.Function{
		Name:        n.Name,
		Params:      toRuntimeParams(n.Params),
		IsAsync:     n.Flags.Async,
		IsGenerator: n.Flags.Generator,
		Env:         closureEnv,
		Body:        n.Body,
	}
	if n.Name != "" {
		closureEnv.Define(n.Name, fn, false)
		closureEnv.MarkReadOnly(n.Name)
	}
	return fn
}
