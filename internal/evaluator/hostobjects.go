package evaluator

import (
	"time"

	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// installHostConstructors seeds the global scope with the constructible
// host objects: the Error family, the collection classes, Date, and
// RegExp. Each is a native function whose call and construct behavior
// coincide, matching how the corresponding JS built-ins behave when
// called without `new`.
func installHostConstructors(ev *Evaluator, g *runtime.Environment) {
	for _, name := range []string{"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError"} {
		g.Define(name, errorCtor(name), false)
	}
	g.Define("AggregateError", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		e := &runtime.Error{Name: "AggregateError"}
		if len(args) > 0 {
			e.Cause = args[0] // the errors list, surfaced as `.errors`
		}
		if len(args) > 1 {
			e.Message = toStringValue(args[1])
		}
		return e, nil
	}), false)
	g.Define("SuppressedError", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		e := &runtime.Error{Name: "SuppressedError", Message: "an error was suppressed during disposal"}
		if len(args) > 0 {
			e.Error_ = args[0]
		}
		if len(args) > 1 {
			e.Suppressed = args[1]
		}
		if len(args) > 2 {
			e.Message = toStringValue(args[2])
		}
		return e, nil
	}), false)

	g.Define("Map", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		m := runtime.NewMap()
		if len(args) > 0 {
			if entries, ok := args[0].(*runtime.Array); ok {
				for _, entry := range entries.Elements {
					if pair, ok := entry.(*runtime.Array); ok && len(pair.Elements) >= 2 {
						m.Set(pair.Elements[0], pair.Elements[1])
					}
				}
			}
		}
		return m, nil
	}), false)
	g.Define("Set", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		s := runtime.NewSet()
		if len(args) > 0 {
			if values, ok := args[0].(*runtime.Array); ok {
				for _, v := range values.Elements {
					s.Add(v)
				}
			}
		}
		return s, nil
	}), false)
	g.Define("WeakMap", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		return runtime.NewWeakMap(), nil
	}), false)
	g.Define("WeakSet", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		return runtime.NewWeakSet(), nil
	}), false)

	dateCtor := nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		if len(args) > 0 {
			return &runtime.Date{Millis: toNumber(args[0])}, nil
		}
		return &runtime.Date{Millis: float64(time.Now().UnixMilli())}, nil
	})
	dateCtor.Properties = map[string]runtime.Value{
		"now": nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(time.Now().UnixMilli())), nil
		}),
	}
	g.Define("Date", dateCtor, false)

	g.Define("RegExp", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		re := &runtime.RegExp{}
		if len(args) > 0 {
			if prior, ok := args[0].(*runtime.RegExp); ok {
				re.Source, re.Flags = prior.Source, prior.Flags
			} else {
				re.Source = toStringValue(args[0])
			}
		}
		if len(args) > 1 {
			re.Flags = toStringValue(args[1])
		}
		return re, nil
	}), false)
}

// errorCtor builds one member of the Error constructor family. The second
// argument may carry a `{ cause }` options bag.
func errorCtor(name string) *runtime.Function {
	return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		e := &runtime.Error{Name: name}
		if len(args) > 0 {
			e.Message = toStringValue(args[0])
		}
		if len(args) > 1 {
			if opts, ok := args[1].(*runtime.Object); ok {
				if cause, ok := opts.Get("cause"); ok {
					e.Cause = cause
				}
			}
		}
		return e, nil
	})
}

// promiseStatics attaches resolve/reject/all/allSettled/race/any to the
// Promise constructor.
func promiseStatics(ev *Evaluator, ctor *runtime.Function) {
	ctor.Properties = map[string]runtime.Value{
		"resolve": nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(args) > 0 {
				v = args[0]
			}
			// Promise.resolve(p) returns p itself rather than wrapping.
			if p, ok := v.(*runtime.Promise); ok {
				return p, nil
			}
			p := runtime.NewPromise()
			p.Resolve(v)
			return p, nil
		}),
		"reject": nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(args) > 0 {
				v = args[0]
			}
			p := runtime.NewPromise()
			p.Settle(runtime.PromiseRejected, v)
			return p, nil
		}),
		"all":        promiseCombinator(ev, combineAll),
		"allSettled": promiseCombinator(ev, combineAllSettled),
		"race":       promiseCombinator(ev, combineRace),
		"any":        promiseCombinator(ev, combineAny),
	}
}

type combineMode int

const (
	combineAll combineMode = iota
	combineAllSettled
	combineRace
	combineAny
)

// promiseCombinator implements the four Promise combinators over an array
// argument. Result ordering for all/allSettled follows input order, not
// settlement order.
func promiseCombinator(ev *Evaluator, mode combineMode) *runtime.Function {
	return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		result := runtime.NewPromise()
		arr, ok := argAsArray(args)
		if !ok {
			result.Settle(runtime.PromiseRejected, newError("TypeError", "argument is not iterable"))
			return result, nil
		}
		n := len(arr.Elements)
		if n == 0 {
			switch mode {
			case combineRace:
				// A race with no contestants stays pending forever.
			case combineAny:
				result.Settle(runtime.PromiseRejected, &runtime.Error{Name: "AggregateError", Message: "All promises were rejected", Cause: &runtime.Array{}})
			default:
				result.Resolve(&runtime.Array{})
			}
			return result, nil
		}

		values := make([]runtime.Value, n)
		remaining := n
		for i, el := range arr.Elements {
			i := i
			toPromise(el).OnSettled(func(state runtime.PromiseState, v runtime.Value) {
				ev.QueueMicrotask(func() {
					switch mode {
					case combineRace:
						result.Settle(state, v)
					case combineAll:
						if state == runtime.PromiseRejected {
							result.Settle(runtime.PromiseRejected, v)
							return
						}
						values[i] = v
						if remaining--; remaining == 0 {
							result.Resolve(&runtime.Array{Elements: values})
						}
					case combineAllSettled:
						entry := runtime.NewObject()
						if state == runtime.PromiseRejected {
							entry.Set("status", runtime.String("rejected"))
							entry.Set("reason", v)
						} else {
							entry.Set("status", runtime.String("fulfilled"))
							entry.Set("value", v)
						}
						values[i] = entry
						if remaining--; remaining == 0 {
							result.Resolve(&runtime.Array{Elements: values})
						}
					case combineAny:
						if state == runtime.PromiseFulfilled {
							result.Settle(runtime.PromiseFulfilled, v)
							return
						}
						values[i] = v
						if remaining--; remaining == 0 {
							result.Settle(runtime.PromiseRejected, &runtime.Error{Name: "AggregateError", Message: "All promises were rejected", Cause: &runtime.Array{Elements: values}})
						}
					}
				})
			})
		}
		return result, nil
	})
}

func argAsArray(args []runtime.Value) (*runtime.Array, bool) {
	if len(args) == 0 {
		return nil, false
	}
	arr, ok := args[0].(*runtime.Array)
	return arr, ok
}
