package evaluator

import "github.com/sharpts-lang/sharpts/internal/runtime"

// iterHandle is the evaluator's uniform handle for an in-progress
// iteration, wrapping either a built-in pull-based runtime.Iterator
// (arrays, strings, Map, Set, generators) or a user-defined iterator
// object obtained by calling `[Symbol.iterator]()`/`[Symbol.asyncIterator]()`.
type iterHandle struct {
	pull   *runtime.Iterator
	custom runtime.Value
}

// getIterator resolves value's iterator per the `for-of`/`for-await-of`/
// spread protocol: built-in containers get a direct pull-based Iterator;
// everything else is asked for `[Symbol.iterator]` (or `[Symbol.asyncIterator]`
// when await is true, falling back to the sync protocol).
func (ev *Evaluator) getIterator(ctx *Context, value runtime.Value, await bool) (*iterHandle, *ExecutionResult) {
	switch v := value.(type) {
	case *runtime.Array:
		return &iterHandle{pull: runtime.NewArrayIterator(v)}, nil
	case runtime.String:
		return &iterHandle{pull: runtime.NewStringIterator(v)}, nil
	case *runtime.Map:
		return &iterHandle{pull: runtime.NewMapIterator(v)}, nil
	case *runtime.Set:
		return &iterHandle{pull: runtime.NewSetIterator(v)}, nil
	case *runtime.Generator:
		return &iterHandle{pull: runtime.NewGeneratorIterator(v)}, nil
	case *runtime.Iterator:
		return &iterHandle{pull: v}, nil
	case *runtime.Object:
		if await {
			if fn, ok := v.GetSymbol(runtime.SymbolAsyncIterator); ok {
				return &iterHandle{custom: ev.callValue(ctx, fn, v, nil)}, nil
			}
		}
		if fn, ok := v.GetSymbol(runtime.SymbolIterator); ok {
			return &iterHandle{custom: ev.callValue(ctx, fn, v, nil)}, nil
		}
	}
	r := newThrowPanic(newError("TypeError", toStringValue(value)+" is not iterable")).result
	return nil, &r
}

// iteratorNext pulls the next {value, done} pair. For custom iterators,
// `.next()`'s return value is awaited first when await is true (an async
// generator's `next()` resolves to a Promise).
func (ev *Evaluator) iteratorNext(ctx *Context, it *iterHandle, await bool) (runtime.Value, bool, *ExecutionResult) {
	if it.pull != nil {
		v, done := it.pull.Pull()
		return v, done, nil
	}
	nextFn := ev.getMember(it.custom, "next")
	result := ev.callValue(ctx, nextFn, it.custom, nil)
	if await {
		result = ev.awaitValue(ctx, result)
	}
	obj, ok := result.(*runtime.Object)
	if !ok {
		return runtime.Undefined{}, true, nil
	}
	doneVal, _ := obj.Get("done")
	valueVal, ok := obj.Get("value")
	if !ok {
		valueVal = runtime.Undefined{}
	}
	return valueVal, truthy(doneVal), nil
}

// closeIterator calls a custom iterator's `.return()` (when present) on
// early exit (break/return/throw out of a for-of body). Built-in pull iterators have nothing to
// release.
func (ev *Evaluator) closeIterator(it *iterHandle) {
	if it == nil || it.custom == nil {
		return
	}
	retFn := ev.getMember(it.custom, "return")
	if isNullish(retFn) {
		return
	}
	defer func() { recover() }()
	ev.callValue(&Context{env: ev.globals, thisVal: runtime.Undefined{}}, retFn, it.custom, nil)
}
