package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// makeGenerator starts a generator function's body on its own
// coroutine, reusing the same suspendSurface mechanism async
// functions use for `await` so an async generator's body can freely mix
// `yield` and `await`.
func (ev *Evaluator) makeGenerator(fn *runtime.Function, this runtime.Value, args []runtime.Value) *runtime.Generator {
	return runtime.NewGenerator(fn.IsAsync, func(ctl *runtime.GeneratorControl) {
		bodyEnv := fn.Env.Child()
		thisVal := this
		if fn.ThisVal != nil {
			thisVal = fn.ThisVal
		}
		ev.bindParams(bodyEnv, fn.Params, args)
		bodyCtx := &Context{env: bodyEnv, thisVal: thisVal, suspend: &suspendSurface{ctl: ctl}}
		execResult := runCatchingThrow(func() ExecutionResult {
			return ev.runFunctionBody(bodyCtx, fn.Body)
		})
		switch execResult.Kind {
		case ThrowResult:
			ctl.Fail(execResult.Value)
		case ReturnResult:
			ctl.Finish(execResult.Value)
		default:
			ctl.Finish(runtime.Undefined{})
		}
	})
}

func evalYield(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Yield)
	if ctx.suspend == nil {
		panic(newThrowPanic(newError("SyntaxError", "yield is only valid inside a generator function")))
	}
	var v runtime.Value = runtime.Undefined{}
	if n.Expr != nil {
		v = ev.Eval(ctx, n.Expr)
	}
	if n.Delegate {
		return ev.yieldDelegate(ctx, v)
	}
	return yieldOne(ctx, v)
}

// yieldOne performs a single yield round-trip, re-raising `.throw()`/
// `.return()` resumption requests at the suspension point.
func yieldOne(ctx *Context, v runtime.Value) runtime.Value {
	kind, resumeVal := ctx.suspend.ctl.Yield(v)
	switch kind {
	case runtime.ResumeThrow:
		panic(newThrowPanic(resumeVal))
	case runtime.ResumeReturn:
		panic(throwPanic{ExecutionResult{Kind: ReturnResult, Value: resumeVal}})
	default:
		return resumeVal
	}
}

// yieldDelegate implements `yield* iterable`: pulls every value from
// iterable's iterator and re-yields it, returning the delegate's final
// (done) value as `yield*`'s own result.
func (ev *Evaluator) yieldDelegate(ctx *Context, iterable runtime.Value) runtime.Value {
	it, thrown := ev.getIterator(ctx, iterable, false)
	if thrown != nil {
		panic(throwPanic{*thrown})
	}
	for {
		val, done, thrown := ev.iteratorNext(ctx, it, false)
		if thrown != nil {
			panic(throwPanic{*thrown})
		}
		if done {
			return val
		}
		yieldOne(ctx, val)
	}
}

// generatorMember resolves the `next`/`return`/`throw` iterator-protocol
// methods on a generator object.
func (ev *Evaluator) generatorMember(g *runtime.Generator, name string) runtime.Value {
	switch name {
	case "next":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(args) > 0 {
				v = args[0]
			}
			val, done, err := g.Next(v)
			if err != nil {
				panic(newThrowPanic(err))
			}
			return iterResultObject(val, done), nil
		})
	case "return":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(args) > 0 {
				v = args[0]
			}
			val, done, err := g.Return(v)
			if err != nil {
				panic(newThrowPanic(err))
			}
			return iterResultObject(val, done), nil
		})
	case "throw":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(args) > 0 {
				v = args[0]
			}
			val, done, err := g.Throw(v)
			if err != nil {
				panic(newThrowPanic(err))
			}
			return iterResultObject(val, done), nil
		})
	default:
		return runtime.Undefined{}
	}
}

func iterResultObject(v runtime.Value, done bool) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("value", v)
	obj.Set("done", runtime.Boolean(done))
	return obj
}
