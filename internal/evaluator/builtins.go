package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// installBuiltins seeds the global scope with the host-runtime
// placeholders: `console`, `Math`, `JSON`, `Symbol`, `Promise`, `Date`,
// `RegExp` constructors. These are deliberately a minimal but functioning
// subset; the full standard library belongs to the host runtime, not the
// interpreter core.
func installBuiltins(ev *Evaluator, g *runtime.Environment) {
	g.Define("console", buildConsole(ev), false)
	g.Define("Math", buildMath(), false)
	g.Define("JSON", buildJSON(ev), false)
	g.Define("Symbol", buildSymbolCtor(), false)
	promiseCtor := buildPromiseCtor(ev)
	promiseStatics(ev, promiseCtor)
	g.Define("Promise", promiseCtor, false)
	g.Define("Object", buildObjectCtor(ev), false)
	g.Define("Array", buildArrayCtor(ev), false)
	g.Define("globalThis", runtime.NewObject(), false)
	installHostConstructors(ev, g)
}

func nativeFn(fn func(args []runtime.Value) (runtime.Value, error)) *runtime.Function {
	return &runtime.Function{Native: fn}
}

func buildConsole(ev *Evaluator) *runtime.Object {
	obj := runtime.NewObject()
	logFn := nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = toStringValue(a)
		}
		ev.stdout(strings.Join(parts, " "))
		return runtime.Undefined{}, nil
	})
	obj.Set("log", logFn)
	obj.Set("error", logFn)
	obj.Set("warn", logFn)
	obj.Set("info", logFn)
	obj.Set("debug", logFn)
	return obj
}

func buildMath() *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("PI", runtime.Number(math.Pi))
	obj.Set("E", runtime.Number(math.E))
	unary := func(f func(float64) float64) *runtime.Function {
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Number(math.NaN()), nil
			}
			return runtime.Number(f(toNumber(args[0]))), nil
		})
	}
	obj.Set("abs", unary(math.Abs))
	obj.Set("floor", unary(math.Floor))
	obj.Set("ceil", unary(math.Ceil))
	obj.Set("round", unary(math.Round))
	obj.Set("trunc", unary(math.Trunc))
	obj.Set("sqrt", unary(math.Sqrt))
	obj.Set("sign", unary(func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	}))
	obj.Set("max", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		m := math.Inf(-1)
		for _, a := range args {
			m = math.Max(m, toNumber(a))
		}
		return runtime.Number(m), nil
	}))
	obj.Set("min", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		m := math.Inf(1)
		for _, a := range args {
			m = math.Min(m, toNumber(a))
		}
		return runtime.Number(m), nil
	}))
	obj.Set("pow", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return runtime.Number(math.NaN()), nil
		}
		return runtime.Number(math.Pow(toNumber(args[0]), toNumber(args[1]))), nil
	}))
	obj.Set("random", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(0.5), nil // deterministic placeholder; no host entropy source wired
	}))
	return obj
}

func buildJSON(ev *Evaluator) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("stringify", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Undefined{}, nil
		}
		return runtime.String(jsonStringify(args[0])), nil
	}))
	obj.Set("parse", nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Undefined{}, nil
		}
		return jsonParse(toStringValue(args[0])), nil
	}))
	return obj
}

func jsonStringify(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.Undefined:
		return "null"
	case runtime.Null:
		return "null"
	case runtime.Boolean:
		return fmt.Sprintf("%v", bool(val))
	case runtime.Number:
		return val.String()
	case runtime.String:
		return fmt.Sprintf("%q", string(val))
	case *runtime.Array:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = jsonStringify(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case *runtime.Object:
		var parts []string
		for _, k := range val.Keys() {
			fv, _ := val.Get(k)
			parts = append(parts, fmt.Sprintf("%q:%s", k, jsonStringify(fv)))
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "null"
	}
}

// jsonParse is a minimal literal-only reader (numbers, strings, booleans,
// null) sufficient for scalar round-tripping. Objects and arrays are not
// parsed; such input yields undefined.
func jsonParse(s string) runtime.Value {
	s = strings.TrimSpace(s)
	switch s {
	case "null":
		return runtime.Null{}
	case "true":
		return runtime.Boolean(true)
	case "false":
		return runtime.Boolean(false)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return runtime.String(s[1 : len(s)-1])
	}
	if f := toNumber(runtime.String(s)); !math.IsNaN(f) {
		return runtime.Number(f)
	}
	return runtime.Undefined{}
}

func buildSymbolCtor() *runtime.Function {
	fn := nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		desc := ""
		if len(args) > 0 {
			desc = toStringValue(args[0])
		}
		return runtime.NewSymbol(desc), nil
	})
	// Symbol.iterator etc. are looked up as properties of the Symbol
	// function object itself, matching real JS.
	fn.Properties = map[string]runtime.Value{
		"iterator":      runtime.SymbolIterator,
		"asyncIterator": runtime.SymbolAsyncIterator,
		"dispose":       runtime.SymbolDispose,
		"asyncDispose":  runtime.SymbolAsyncDispose,
		"hasInstance":   runtime.SymbolHasInstance,
		"toPrimitive":   runtime.SymbolToPrimitive,
	}
	return fn
}

func buildObjectCtor(ev *Evaluator) *runtime.Function {
	return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		if len(args) > 0 {
			if obj, ok := args[0].(*runtime.Object); ok {
				return obj, nil
			}
		}
		return runtime.NewObject(), nil
	})
}

func buildArrayCtor(ev *Evaluator) *runtime.Function {
	return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		arr := &runtime.Array{}
		if len(args) == 1 {
			if n, ok := args[0].(runtime.Number); ok {
				arr.Elements = make([]runtime.Value, int(n))
				for i := range arr.Elements {
					arr.Elements[i] = runtime.Undefined{}
				}
				return arr, nil
			}
		}
		arr.Elements = append(arr.Elements, args...)
		return arr, nil
	})
}

func buildPromiseCtor(ev *Evaluator) *runtime.Function {
	return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
		p := runtime.NewPromise()
		if len(args) == 0 {
			return p, nil
		}
		executor := args[0]
		resolve := nativeFn(func(a []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(a) > 0 {
				v = a[0]
			}
			p.Resolve(v)
			return runtime.Undefined{}, nil
		})
		reject := nativeFn(func(a []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined{}
			if len(a) > 0 {
				v = a[0]
			}
			p.Settle(runtime.PromiseRejected, v)
			return runtime.Undefined{}, nil
		})
		ctx := &Context{env: ev.globals, thisVal: runtime.Undefined{}}
		func() {
			defer func() {
				if r := recover(); r != nil {
					if tp, ok := r.(throwPanic); ok {
						p.Settle(runtime.PromiseRejected, tp.result.Value)
						return
					}
					panic(r)
				}
			}()
			ev.callValue(ctx, executor, runtime.Undefined{}, []runtime.Value{resolve, reject})
		}()
		return p, nil
	})
}
