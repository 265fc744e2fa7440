package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// suspendSurface is the handle an async function body's Context carries
// so `await` can suspend it. It reuses the generator
// coroutine machinery (internal/runtime.GeneratorControl): an `await` is
// implemented as a yield of the awaited value, with the driving trampoline
// in runAsyncFunction resuming the coroutine once the awaited promise
// settles, via the cooperative microtask queue.
type suspendSurface struct {
	ctl *runtime.GeneratorControl
}

func evalAwait(ev *Evaluator, ctx *Context, e ast.Expression) runtime.Value {
	n := e.(*ast.Await)
	v := ev.Eval(ctx, n.Expr)
	return ev.awaitValue(ctx, v)
}

// awaitValue suspends the current async body (if any) until v (coerced to
// a promise when it is not already one) settles, returning the
// fulfillment value or re-raising the rejection as a thrown value.
// Outside any async context (a bare top-level `await` in module code) it
// synchronously drains the microtask queue until the promise settles,
// which is what makes bare top-level await in module code work.
func (ev *Evaluator) awaitValue(ctx *Context, v runtime.Value) runtime.Value {
	if ctx.suspend == nil {
		p := toPromise(v)
		for p.State == runtime.PromisePending && len(ev.microtasks) > 0 {
			next := ev.microtasks[0]
			ev.microtasks = ev.microtasks[1:]
			next()
		}
		if p.State == runtime.PromiseRejected {
			panic(newThrowPanic(p.Value))
		}
		return p.Value
	}
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

func toPromise(v runtime.Value) *runtime.Promise {
	if p, ok := v.(*runtime.Promise); ok {
		return p
	}
	p := runtime.NewPromise()
	p.Settle(runtime.PromiseFulfilled, v)
	return p
}

// runAsyncFunction drives an async function body to completion through
// the generator-coroutine trampoline described above, returning the
// Promise that settles with its eventual return value or thrown error.
func (ev *Evaluator) runAsyncFunction(fn *runtime.Function, this runtime.Value, args []runtime.Value) runtime.Value {
	result := runtime.NewPromise()
	gen := runtime.NewGenerator(false, func(ctl *runtime.GeneratorControl) {
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

	var step func(resumeVal runtime.Value, isThrow bool)
	step = func(resumeVal runtime.Value, isThrow bool) {
		var value runtime.Value
		var done bool
		var errv runtime.Value
		if isThrow {
			value, done, errv = gen.Throw(resumeVal)
		} else {
			value, done, errv = gen.Next(resumeVal)
		}
		if errv != nil {
			result.Settle(runtime.PromiseRejected, errv)
			return
		}
		if done {
			result.Resolve(value)
			return
		}
		awaited := toPromise(value)
		awaited.OnSettled(func(state runtime.PromiseState, v runtime.Value) {
			ev.QueueMicrotask(func() {
				step(v, state == runtime.PromiseRejected)
			})
		})
	}
	step(runtime.Undefined{}, false)
	return result
}

// promiseMember resolves Promise.prototype members: then, catch, and
// finally.
func (ev *Evaluator) promiseMember(p *runtime.Promise, name string) runtime.Value {
	switch name {
	case "then":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var onFulfilled, onRejected runtime.Value
			if len(args) > 0 {
				onFulfilled = args[0]
			}
			if len(args) > 1 {
				onRejected = args[1]
			}
			return ev.promiseThen(p, onFulfilled, onRejected), nil
		})
	case "catch":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var onRejected runtime.Value
			if len(args) > 0 {
				onRejected = args[0]
			}
			return ev.promiseThen(p, nil, onRejected), nil
		})
	case "finally":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return p, nil
			}
			onFinally := args[0]
			next := runtime.NewPromise()
			p.OnSettled(func(state runtime.PromiseState, v runtime.Value) {
				ev.QueueMicrotask(func() {
					ev.callValue(ev.globalCtx(), onFinally, runtime.Undefined{}, nil)
					next.Settle(state, v)
				})
			})
			return next, nil
		})
	default:
		return runtime.Undefined{}
	}
}

func (ev *Evaluator) promiseThen(p *runtime.Promise, onFulfilled, onRejected runtime.Value) *runtime.Promise {
	next := runtime.NewPromise()
	p.OnSettled(func(state runtime.PromiseState, v runtime.Value) {
		ev.QueueMicrotask(func() {
			handler := onFulfilled
			if state == runtime.PromiseRejected {
				handler = onRejected
			}
			if isNullish(handler) {
				next.Settle(state, v)
				return
			}
			settled := false
			func() {
				defer func() {
					if r := recover(); r != nil {
						if tp, ok := r.(throwPanic); ok {
							next.Settle(runtime.PromiseRejected, tp.result.Value)
							settled = true
							return
						}
						panic(r)
					}
				}()
				out := ev.callValue(ev.globalCtx(), handler, runtime.Undefined{}, []runtime.Value{v})
				if !settled {
					next.Resolve(out)
				}
			}()
		})
	})
	return next
}
