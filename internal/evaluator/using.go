package evaluator

import (
	"github.com/sharpts-lang/sharpts/internal/ast"
	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// disposalScope tracks the `using` bindings declared directly inside one
// block, in declaration order. Disposal runs last-declared-first on every
// exit path.
type disposalScope struct {
	entries []disposalEntry
}

type disposalEntry struct {
	value   runtime.Value
	isAsync bool
}

// execUsing evaluates each binding's initializer, checks it exposes the
// disposal protocol, defines the binding read-only, and registers it with
// the enclosing block's disposal tracker. `using x = null` is permitted
// and registers nothing, matching the proposal's null/undefined escape
// hatch.
func execUsing(ev *Evaluator, ctx *Context, s ast.Statement) ExecutionResult {
	n := s.(*ast.Using)
	for _, b := range n.Bindings {
		v := ev.Eval(ctx, b.Initializer)
		if !isNullish(v) {
			if _, ok := disposeMethod(v, n.Await); !ok {
				sym := "Symbol.dispose"
				if n.Await {
					sym = "Symbol.asyncDispose"
				}
				return ExecutionResult{Kind: ThrowResult, Value: newError("TypeError", "value declared with `using` has no "+sym+" method")}
			}
			if ctx.disposals == nil {
				// `using` at top level of a script: disposed when Run's
				// outermost statement list finishes.
				ctx.disposals = &disposalScope{}
			}
			ctx.disposals.entries = append(ctx.disposals.entries, disposalEntry{value: v, isAsync: n.Await})
		}
		ctx.env.Define(b.Name, v, true)
	}
	return normal(runtime.Undefined{})
}

// disposeMethod finds the disposal callable on v: Symbol.asyncDispose
// (falling back to Symbol.dispose) for `await using`, Symbol.dispose for
// plain `using`.
func disposeMethod(v runtime.Value, await bool) (runtime.Value, bool) {
	holder, ok := v.(*runtime.Object)
	if !ok {
		if inst, isInst := v.(*runtime.Instance); isInst {
			if await {
				if fn, ok := inst.SymbolFields[runtime.SymbolAsyncDispose.ID]; ok {
					return fn, true
				}
			}
			fn, ok := inst.SymbolFields[runtime.SymbolDispose.ID]
			return fn, ok
		}
		return nil, false
	}
	if await {
		if fn, ok := holder.GetSymbol(runtime.SymbolAsyncDispose); ok {
			return fn, true
		}
	}
	return holder.GetSymbol(runtime.SymbolDispose)
}

// disposeScope disposes a block's `using` bindings in reverse declaration
// order once the block has produced result. A disposal failure while
// result is already abrupt-with-throw (or while an earlier disposal has
// already failed) wraps both into a SuppressedError; chained failures
// nest, most recent outermost.
func (ev *Evaluator) disposeScope(ctx *Context, scope *disposalScope, result ExecutionResult) ExecutionResult {
	for i := len(scope.entries) - 1; i >= 0; i-- {
		entry := scope.entries[i]
		fn, ok := disposeMethod(entry.value, entry.isAsync)
		if !ok {
			continue
		}
		disposal := runCatchingThrow(func() ExecutionResult {
			out := ev.callValue(ctx, fn, entry.value, nil)
			if entry.isAsync {
				out = ev.awaitValue(ctx, out)
			}
			return normal(out)
		})
		if disposal.Kind == ThrowResult {
			if result.Kind == ThrowResult {
				result = ExecutionResult{Kind: ThrowResult, Value: &runtime.Error{
					Name:       "SuppressedError",
					Message:    "an error was suppressed during disposal",
					Error_:     result.Value,
					Suppressed: disposal.Value,
				}}
			} else {
				result = disposal
			}
		}
	}
	return result
}
