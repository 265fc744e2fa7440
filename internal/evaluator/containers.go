package evaluator

import (
	"strings"

	"github.com/sharpts-lang/sharpts/internal/runtime"
)

// arrayMember resolves Array.prototype members: `length` plus the
// handful of higher-order/query methods common idioms exercise.
func (ev *Evaluator) arrayMember(arr *runtime.Array, name string) runtime.Value {
	switch name {
	case "length":
		return runtime.Number(len(arr.Elements))
	case "push":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			arr.Elements = append(arr.Elements, args...)
			return runtime.Number(len(arr.Elements)), nil
		})
	case "pop":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(arr.Elements) == 0 {
				return runtime.Undefined{}, nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		})
	case "shift":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(arr.Elements) == 0 {
				return runtime.Undefined{}, nil
			}
			first := arr.Elements[0]
			arr.Elements = arr.Elements[1:]
			return first, nil
		})
	case "unshift":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			arr.Elements = append(append([]runtime.Value{}, args...), arr.Elements...)
			return runtime.Number(len(arr.Elements)), nil
		})
	case "slice":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			start, end := sliceBounds(args, len(arr.Elements))
			out := append([]runtime.Value(nil), arr.Elements[start:end]...)
			return &runtime.Array{Elements: out}, nil
		})
	case "concat":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			out := append([]runtime.Value(nil), arr.Elements...)
			for _, a := range args {
				if other, ok := a.(*runtime.Array); ok {
					out = append(out, other.Elements...)
				} else {
					out = append(out, a)
				}
			}
			return &runtime.Array{Elements: out}, nil
		})
	case "join":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			sep := ","
			if len(args) > 0 && !isNullish(args[0]) {
				sep = toStringValue(args[0])
			}
			parts := make([]string, len(arr.Elements))
			for i, e := range arr.Elements {
				if isNullish(e) {
					parts[i] = ""
				} else {
					parts[i] = toStringValue(e)
				}
			}
			return runtime.String(strings.Join(parts, sep)), nil
		})
	case "includes":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			for _, e := range arr.Elements {
				if runtime.SameValueZero(e, args[0]) {
					return runtime.Boolean(true), nil
				}
			}
			return runtime.Boolean(false), nil
		})
	case "indexOf":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Number(-1), nil
			}
			for i, e := range arr.Elements {
				if strictEquals(e, args[0]) {
					return runtime.Number(i), nil
				}
			}
			return runtime.Number(-1), nil
		})
	case "forEach":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Undefined{}, nil
			}
			for i, e := range arr.Elements {
				ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})
			}
			return runtime.Undefined{}, nil
		})
	case "map":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			out := make([]runtime.Value, len(arr.Elements))
			if len(args) == 0 {
				return &runtime.Array{Elements: out}, nil
			}
			for i, e := range arr.Elements {
				out[i] = ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})
			}
			return &runtime.Array{Elements: out}, nil
		})
	case "filter":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var out []runtime.Value
			if len(args) == 0 {
				return &runtime.Array{}, nil
			}
			for i, e := range arr.Elements {
				if truthy(ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})) {
					out = append(out, e)
				}
			}
			return &runtime.Array{Elements: out}, nil
		})
	case "find":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Undefined{}, nil
			}
			for i, e := range arr.Elements {
				if truthy(ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})) {
					return e, nil
				}
			}
			return runtime.Undefined{}, nil
		})
	case "some":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			for i, e := range arr.Elements {
				if truthy(ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})) {
					return runtime.Boolean(true), nil
				}
			}
			return runtime.Boolean(false), nil
		})
	case "every":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(true), nil
			}
			for i, e := range arr.Elements {
				if !truthy(ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{e, runtime.Number(i), arr})) {
					return runtime.Boolean(false), nil
				}
			}
			return runtime.Boolean(true), nil
		})
	case "reduce":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Undefined{}, nil
			}
			i := 0
			var acc runtime.Value
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(arr.Elements) == 0 {
					panic(newThrowPanic(newError("TypeError", "Reduce of empty array with no initial value")))
				}
				acc = arr.Elements[0]
				i = 1
			}
			for ; i < len(arr.Elements); i++ {
				acc = ev.callValue(ev.globalCtx(), args[0], runtime.Undefined{}, []runtime.Value{acc, arr.Elements[i], runtime.Number(i), arr})
			}
			return acc, nil
		})
	case "reverse":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			for i, j := 0, len(arr.Elements)-1; i < j; i, j = i+1, j-1 {
				arr.Elements[i], arr.Elements[j] = arr.Elements[j], arr.Elements[i]
			}
			return arr, nil
		})
	case "flat":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var out []runtime.Value
			for _, e := range arr.Elements {
				if inner, ok := e.(*runtime.Array); ok {
					out = append(out, inner.Elements...)
				} else {
					out = append(out, e)
				}
			}
			return &runtime.Array{Elements: out}, nil
		})
	default:
		if i, ok := arrayIndex(name); ok {
			if i >= 0 && i < len(arr.Elements) {
				return arr.Elements[i]
			}
		}
		return runtime.Undefined{}
	}
}

func sliceBounds(args []runtime.Value, length int) (int, int) {
	start, end := 0, length
	if len(args) > 0 {
		start = normalizeIndex(toNumber(args[0]), length)
	}
	if len(args) > 1 && !isNullish(args[1]) {
		end = normalizeIndex(toNumber(args[1]), length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func normalizeIndex(f float64, length int) int {
	i := int(f)
	if i < 0 {
		i += length
	}
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

// globalCtx returns a bare Context rooted at the global scope, used by
// built-in higher-order methods (Array.prototype.map and friends) that
// need to call back into user code without any enclosing lexical state
// of their own.
func (ev *Evaluator) globalCtx() *Context {
	return &Context{env: ev.globals, thisVal: runtime.Undefined{}}
}

func stringMember(s runtime.String, name string) runtime.Value {
	runes := []rune(string(s))
	switch name {
	case "length":
		return runtime.Number(len(runes))
	case "charAt":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			i := 0
			if len(args) > 0 {
				i = int(toNumber(args[0]))
			}
			if i < 0 || i >= len(runes) {
				return runtime.String(""), nil
			}
			return runtime.String(string(runes[i])), nil
		})
	case "toUpperCase":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			return runtime.String(strings.ToUpper(string(s))), nil
		})
	case "toLowerCase":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			return runtime.String(strings.ToLower(string(s))), nil
		})
	case "trim":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			return runtime.String(strings.TrimSpace(string(s))), nil
		})
	case "includes":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(strings.Contains(string(s), toStringValue(args[0]))), nil
		})
	case "indexOf":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Number(-1), nil
			}
			return runtime.Number(strings.Index(string(s), toStringValue(args[0]))), nil
		})
	case "slice":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			start, end := sliceBounds(args, len(runes))
			return runtime.String(string(runes[start:end])), nil
		})
	case "split":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return &runtime.Array{Elements: []runtime.Value{s}}, nil
			}
			parts := strings.Split(string(s), toStringValue(args[0]))
			out := make([]runtime.Value, len(parts))
			for i, p := range parts {
				out[i] = runtime.String(p)
			}
			return &runtime.Array{Elements: out}, nil
		})
	case "concat":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			out := string(s)
			for _, a := range args {
				out += toStringValue(a)
			}
			return runtime.String(out), nil
		})
	case "repeat":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			n := 0
			if len(args) > 0 {
				n = int(toNumber(args[0]))
			}
			if n < 0 {
				panic(newThrowPanic(newError("RangeError", "Invalid count value")))
			}
			return runtime.String(strings.Repeat(string(s), n)), nil
		})
	case "padStart":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) { return padString(s, args, true), nil })
	case "padEnd":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) { return padString(s, args, false), nil })
	case "startsWith":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(strings.HasPrefix(string(s), toStringValue(args[0]))), nil
		})
	case "endsWith":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(strings.HasSuffix(string(s), toStringValue(args[0]))), nil
		})
	case "replace":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) < 2 {
				return s, nil
			}
			return runtime.String(strings.Replace(string(s), toStringValue(args[0]), toStringValue(args[1]), 1)), nil
		})
	case "replaceAll":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) < 2 {
				return s, nil
			}
			return runtime.String(strings.ReplaceAll(string(s), toStringValue(args[0]), toStringValue(args[1]))), nil
		})
	default:
		if i, ok := arrayIndex(name); ok && i >= 0 && i < len(runes) {
			return runtime.String(string(runes[i]))
		}
		return runtime.Undefined{}
	}
}

func padString(s runtime.String, args []runtime.Value, start bool) runtime.Value {
	if len(args) == 0 {
		return s
	}
	target := int(toNumber(args[0]))
	pad := " "
	if len(args) > 1 {
		pad = toStringValue(args[1])
	}
	runes := []rune(string(s))
	if len(runes) >= target || pad == "" {
		return s
	}
	need := target - len(runes)
	padRunes := []rune(strings.Repeat(pad, need/len([]rune(pad))+1))[:need]
	if start {
		return runtime.String(string(padRunes) + string(s))
	}
	return runtime.String(string(s) + string(padRunes))
}

func mapMember(m *runtime.Map, name string) runtime.Value {
	switch name {
	case "size":
		return runtime.Number(m.Size())
	case "get":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Undefined{}, nil
			}
			if v, ok := m.Get(args[0]); ok {
				return v, nil
			}
			return runtime.Undefined{}, nil
		})
	case "set":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) < 2 {
				return m, nil
			}
			m.Set(args[0], args[1])
			return m, nil
		})
	case "has":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(m.Has(args[0])), nil
		})
	case "delete":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(m.Delete(args[0])), nil
		})
	case "keys":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var out []runtime.Value
			for _, e := range m.Entries() {
				out = append(out, e.Key)
			}
			return runtime.NewArrayIterator(&runtime.Array{Elements: out}), nil
		})
	case "values":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			var out []runtime.Value
			for _, e := range m.Entries() {
				out = append(out, e.Value)
			}
			return runtime.NewArrayIterator(&runtime.Array{Elements: out}), nil
		})
	default:
		return runtime.Undefined{}
	}
}

func setMember(s *runtime.Set, name string) runtime.Value {
	switch name {
	case "size":
		return runtime.Number(s.Size())
	case "add":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) > 0 {
				s.Add(args[0])
			}
			return s, nil
		})
	case "has":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(s.Has(args[0])), nil
		})
	case "delete":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			return runtime.Boolean(s.Delete(args[0])), nil
		})
	default:
		return runtime.Undefined{}
	}
}

func weakMapMember(w *runtime.WeakMap, name string) runtime.Value {
	switch name {
	case "get":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Undefined{}, nil
			}
			if inst, ok := args[0].(*runtime.Instance); ok {
				if v, ok := w.Get(inst); ok {
					return v, nil
				}
			}
			return runtime.Undefined{}, nil
		})
	case "set":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) < 2 {
				return w, nil
			}
			if inst, ok := args[0].(*runtime.Instance); ok {
				w.Set(inst, args[1])
			}
			return w, nil
		})
	case "has":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			inst, ok := args[0].(*runtime.Instance)
			return runtime.Boolean(ok && w.Has(inst)), nil
		})
	case "delete":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			inst, ok := args[0].(*runtime.Instance)
			return runtime.Boolean(ok && w.Delete(inst)), nil
		})
	default:
		return runtime.Undefined{}
	}
}

func weakSetMember(w *runtime.WeakSet, name string) runtime.Value {
	switch name {
	case "add":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) > 0 {
				if inst, ok := args[0].(*runtime.Instance); ok {
					w.Add(inst)
				}
			}
			return w, nil
		})
	case "has":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			inst, ok := args[0].(*runtime.Instance)
			return runtime.Boolean(ok && w.Has(inst)), nil
		})
	case "delete":
		return nativeFn(func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Boolean(false), nil
			}
			inst, ok := args[0].(*runtime.Instance)
			return runtime.Boolean(ok && w.Delete(inst)), nil
		})
	default:
		return runtime.Undefined{}
	}
}
